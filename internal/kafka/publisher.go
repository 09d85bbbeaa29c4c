package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

// EventBus publishes order events to a Kafka topic.
type EventBus struct {
	writer *kafkago.Writer
}

// NewEventBus constructs a publisher for the given brokers and topic.
func NewEventBus(brokers []string, topic string) *EventBus {
	return &EventBus{
		writer: &kafkago.Writer{
			Addr:         kafkago.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafkago.LeastBytes{},
			RequiredAcks: kafkago.RequireAll,
		},
	}
}

type orderReceivedEvent struct {
	OrderID    int64     `json:"order_id"`
	Valid      bool      `json:"valid"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (b *EventBus) PublishOrderReceived(ctx context.Context, orderID int64, valid bool) error {
	payload, err := json.Marshal(orderReceivedEvent{
		OrderID:    orderID,
		Valid:      valid,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode order_received event: %w", err)
	}

	msg := kafkago.Message{
		Key:   []byte(strconv.FormatInt(orderID, 10)),
		Value: payload,
	}
	if err := b.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish order_received event: %w", err)
	}

	return nil
}

// Close flushes and closes the underlying writer.
func (b *EventBus) Close() error {
	return b.writer.Close()
}
