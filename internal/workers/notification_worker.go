package workers

import (
	"context"
	"fmt"

	"github.com/beerbuddy/beerbuddy/pkg/logger"
	"github.com/beerbuddy/beerbuddy/pkg/queue"
	"github.com/sirupsen/logrus"
)

// EventSource delivers messages to handler until ctx is done.
// *queue.KafkaConsumer implements it.
type EventSource interface {
	Subscribe(ctx context.Context, handler func(context.Context, queue.Message) error) error
	Close() error
}

// EventHandler consumes one decoded social event.
type EventHandler interface {
	HandleEvent(ctx context.Context, event queue.Event) error
}

// NotificationWorker feeds social events into the notification inbox.
type NotificationWorker struct {
	source  EventSource
	handler EventHandler
	logger  *logger.Logger
}

func NewNotificationWorker(source EventSource, handler EventHandler, logger *logger.Logger) *NotificationWorker {
	return &NotificationWorker{
		source:  source,
		handler: handler,
		logger:  logger,
	}
}

// Start blocks until ctx is cancelled.
func (w *NotificationWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting notification worker...")
	return w.source.Subscribe(ctx, w.handleMessage)
}

func (w *NotificationWorker) handleMessage(ctx context.Context, msg queue.Message) error {
	event, err := queue.DecodeEvent(msg.Value)
	if err != nil {
		return fmt.Errorf("failed to decode event: %w", err)
	}

	w.logger.WithFields(logrus.Fields{
		"event_type": event.Type,
		"key":        msg.Key,
		"timestamp":  event.Timestamp,
	}).Debug("Processing event")

	if err := w.handler.HandleEvent(ctx, event); err != nil {
		return fmt.Errorf("failed to handle %s event: %w", event.Type, err)
	}
	return nil
}

func (w *NotificationWorker) Stop() error {
	w.logger.Info("Stopping notification worker...")
	return w.source.Close()
}
