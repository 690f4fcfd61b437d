package services

import (
	"context"
	"strconv"
	"time"

	"github.com/beerbuddy/beerbuddy/pkg/logger"
	"github.com/beerbuddy/beerbuddy/pkg/queue"
)

// EventPublisher is satisfied by *queue.KafkaProducer.
type EventPublisher interface {
	Publish(ctx context.Context, key string, value interface{}) error
}

// defaultPublishTimeout bounds how long a request waits on the broker.
const defaultPublishTimeout = 2 * time.Second

// eventSink publishes best effort: a failed publish is logged and never fails
// the mutation that caused it. A nil publisher drops events.
type eventSink struct {
	publisher EventPublisher
	logger    *logger.Logger
	timeout   time.Duration
}

func (e eventSink) publish(ctx context.Context, actorID uint, eventType queue.EventType, data interface{}) {
	if e.publisher == nil {
		return
	}

	event, err := queue.NewEvent(eventType, data)
	if err != nil {
		e.logger.WithError(err).WithField("event_type", eventType).Error("Failed to build event")
		return
	}

	timeout := e.timeout
	if timeout <= 0 {
		timeout = defaultPublishTimeout
	}
	// the mutation is already committed, so a client hanging up must not
	// cancel its event
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	if err := e.publisher.Publish(ctx, strconv.FormatUint(uint64(actorID), 10), event); err != nil {
		e.logger.WithError(err).WithField("event_type", eventType).Error("Failed to publish event")
	}
}
