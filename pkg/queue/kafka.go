package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

type KafkaProducer struct {
	writer *kafka.Writer
}

type KafkaConsumer struct {
	reader *kafka.Reader
	log    logrus.FieldLogger
}

func NewKafkaProducer(brokers []string, topic string) *KafkaProducer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		Async:                  false,
		BatchTimeout:           10 * time.Millisecond,
		WriteTimeout:           2 * time.Second,
		MaxAttempts:            3,
		AllowAutoTopicCreation: true,
	}

	return &KafkaProducer{writer: writer}
}

func NewKafkaConsumer(brokers []string, topic, groupID string, log logrus.FieldLogger) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		MaxWait:        500 * time.Millisecond,
		CommitInterval: 1 * time.Second,
		StartOffset:    kafka.FirstOffset,
	})

	return &KafkaConsumer{reader: reader, log: log}
}

// Publish marshals value to JSON and writes it under key.
func (p *KafkaProducer) Publish(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	message := kafka.Message{
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	}

	return p.writer.WriteMessages(ctx, message)
}

// Subscribe blocks until ctx is done. A message is committed after the handler
// ran, whether or not it succeeded; failures are logged.
func (c *KafkaConsumer) Subscribe(ctx context.Context, handler func(context.Context, Message) error) error {
	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			c.log.WithError(err).Warn("Failed to fetch message")
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Second):
			}
			continue
		}

		msg := Message{
			Key:   string(m.Key),
			Value: m.Value,
			Topic: m.Topic,
		}
		if err := handler(ctx, msg); err != nil {
			c.log.WithError(err).WithField("key", msg.Key).Error("Failed to handle message")
		}

		if err := c.reader.CommitMessages(ctx, m); err != nil && ctx.Err() == nil {
			c.log.WithError(err).Warn("Failed to commit message")
		}
	}
}

func (c *KafkaConsumer) Close() error {
	return c.reader.Close()
}

func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}

type Message struct {
	Key   string
	Value []byte
	Topic string
}

type EventType string

const (
	EventUserCreated    EventType = "user_created"
	EventUserUpdated    EventType = "user_updated"
	EventPostCreated    EventType = "post_created"
	EventPostDeleted    EventType = "post_deleted"
	EventFollowCreated  EventType = "follow_created"
	EventFollowDeleted  EventType = "follow_deleted"
	EventLikeCreated    EventType = "like_created"
	EventLikeDeleted    EventType = "like_deleted"
	EventCommentCreated EventType = "comment_created"
	EventCommentDeleted EventType = "comment_deleted"
)

type Event struct {
	Type      EventType       `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// NewEvent stamps data with the current time.
func NewEvent(t EventType, data interface{}) (Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Event{}, fmt.Errorf("failed to marshal event data: %w", err)
	}
	return Event{Type: t, Timestamp: time.Now(), Data: raw}, nil
}

// DecodeEvent parses a message value written by Publish.
func DecodeEvent(value []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(value, &ev); err != nil {
		return Event{}, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	if ev.Type == "" {
		return Event{}, errors.New("event type missing")
	}
	return ev, nil
}

type UserEventData struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email,omitempty"`
}

type PostEventData struct {
	PostID     uint   `json:"post_id"`
	AuthorID   uint   `json:"author_id"`
	Title      string `json:"title,omitempty"`
	BeersCount int    `json:"beers_count,omitempty"`
}

type FollowEventData struct {
	FollowerID  uint `json:"follower_id"`
	FollowingID uint `json:"following_id"`
}

type LikeEventData struct {
	UserID       uint `json:"user_id"`
	PostID       uint `json:"post_id"`
	PostAuthorID uint `json:"post_author_id"`
}

type CommentEventData struct {
	CommentID    uint   `json:"comment_id"`
	UserID       uint   `json:"user_id"`
	PostID       uint   `json:"post_id"`
	PostAuthorID uint   `json:"post_author_id"`
	Text         string `json:"text,omitempty"`
}
