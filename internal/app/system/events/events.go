// internal/app/system/events/events.go
// Package events publishes operator actions to Kafka so downstream services
// (payouts, notifications) can react. With no brokers configured the
// publisher is a no-op.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Event types.
const (
	TypeBalanceAdjusted = "admin.balance_adjusted"
	TypeBlockToggled    = "admin.block_toggled"
	TypePasswordReset   = "admin.password_reset"
	TypeVideoChanged    = "catalog.video_changed"
)

// DefaultTopic is used when no topic is configured.
const DefaultTopic = "stratareview.admin-actions"

// Event is one published operator action.
type Event struct {
	ID         string            `json:"id"`
	Type       string            `json:"type"`
	ActorID    string            `json:"actor_id"`
	TargetID   string            `json:"target_id"`
	OccurredAt time.Time         `json:"occurred_at"`
	Data       map[string]string `json:"data,omitempty"`
}

// NewEvent stamps a new event with a random id and the current time.
func NewEvent(eventType, actorID, targetID string, data map[string]string) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		ActorID:    actorID,
		TargetID:   targetID,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
}

// Encode returns the wire form of e.
func Encode(e Event) ([]byte, error) {
	return json.Marshal(e)
}

// Publisher sends events somewhere.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Config describes the Kafka connection.
type Config struct {
	Brokers      []string
	Topic        string
	WriteTimeout time.Duration
}

// New returns a Kafka publisher, or a Nop when no brokers are configured.
func New(cfg Config, log *zap.Logger) Publisher {
	if len(cfg.Brokers) == 0 {
		return Nop{}
	}
	return NewKafkaPublisher(cfg, log)
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

// KafkaPublisher writes events to a single topic keyed by target id, so all
// events about one profile land on the same partition in order.
type KafkaPublisher struct {
	w   *kafka.Writer
	log *zap.Logger
}

// NewKafkaPublisher builds a writer for cfg.Topic.
func NewKafkaPublisher(cfg Config, log *zap.Logger) *KafkaPublisher {
	topic := cfg.Topic
	if topic == "" {
		topic = DefaultTopic
	}
	timeout := cfg.WriteTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &KafkaPublisher{
		w: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			WriteTimeout: timeout,
		},
		log: log,
	}
}

// Publish writes e synchronously.
func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	value, err := Encode(e)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(e.TargetID),
		Value: value,
		Time:  e.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(e.Type)},
			{Key: "event_id", Value: []byte(e.ID)},
		},
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s: %w", e.Type, err)
	}
	p.log.Debug("event published", zap.String("type", e.Type), zap.String("id", e.ID))
	return nil
}

// Close flushes and closes the writer.
func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}
