// Package events publishes engine lifecycle events for downstream
// consumers (notifications, analytics). Publishing is best effort and
// never part of a settlement transaction.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

type OrderCreated struct {
	OrderID    string    `json:"order_id"`
	UserID     string    `json:"user_id"`
	Total      string    `json:"total"`
	CouponCode string    `json:"coupon_code,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Publisher interface {
	PublishOrderCreated(ctx context.Context, event OrderCreated) error
	Close() error
}

type kafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) Publisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}
	return &kafkaPublisher{writer: writer}
}

func (p *kafkaPublisher) PublishOrderCreated(ctx context.Context, event OrderCreated) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal order created event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	msg := kafka.Message{
		Key:   []byte(event.OrderID),
		Value: payload,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte("order.created")},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write order created event: %w", err)
	}
	return nil
}

func (p *kafkaPublisher) Close() error {
	return p.writer.Close()
}

// NoopPublisher is used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishOrderCreated(context.Context, OrderCreated) error { return nil }
func (NoopPublisher) Close() error                                            { return nil }
