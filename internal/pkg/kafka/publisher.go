// Package kafka publishes audit entries to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/cmlabs-hris/hris-leave-ledger/internal/domain/audit"
)

// Writer is the subset of *kafkago.Writer the publisher needs.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

func NewWriter(brokers []string, topic string) *kafkago.Writer {
	return &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
		BatchTimeout:           50 * time.Millisecond,
	}
}

type message struct {
	ID         string          `json:"id"`
	Action     string          `json:"action"`
	EntityType string          `json:"entity_type"`
	EntityID   string          `json:"entity_id"`
	ActorID    string          `json:"actor_id,omitempty"`
	ActorRole  string          `json:"actor_role,omitempty"`
	Changes    json.RawMessage `json:"changes,omitempty"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
	RequestID  string          `json:"request_id,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

type AuditPublisher struct {
	writer Writer
}

func NewAuditPublisher(writer Writer) *AuditPublisher {
	return &AuditPublisher{writer: writer}
}

// Publish implements audit.Publisher. Messages are keyed by entity so the
// history of one record stays ordered within a partition.
func (p *AuditPublisher) Publish(ctx context.Context, entries []audit.Entry) error {
	msgs := make([]kafkago.Message, 0, len(entries))
	for _, e := range entries {
		payload, err := json.Marshal(message{
			ID:         e.ID,
			Action:     e.Action,
			EntityType: e.EntityType,
			EntityID:   e.EntityID,
			ActorID:    e.ActorID,
			ActorRole:  e.ActorRole,
			Changes:    e.Changes,
			Metadata:   e.Metadata,
			RequestID:  e.RequestID,
			CreatedAt:  e.CreatedAt,
		})
		if err != nil {
			return fmt.Errorf("encode audit log %s: %w", e.ID, err)
		}
		msgs = append(msgs, kafkago.Message{
			Key:   []byte(e.EntityType + ":" + e.EntityID),
			Value: payload,
			Headers: []kafkago.Header{
				{Key: "event_type", Value: []byte(e.Action)},
				{Key: "aggregate_type", Value: []byte(e.EntityType)},
			},
		})
	}
	return p.writer.WriteMessages(ctx, msgs...)
}

func (p *AuditPublisher) Close() error {
	return p.writer.Close()
}
