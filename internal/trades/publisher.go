// Package trades publishes executed fills to Kafka for downstream
// consumers (reporting, market data, settlement).
package trades

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/clobworks/matchbook/internal/book"
)

// Message is one submission's fill batch on the wire. Keyed by market so a
// market's trades stay ordered within one partition.
type Message struct {
	Market       string    `json:"market"`
	TakerOrderID uuid.UUID `json:"taker_order_id"`
	Fills        []FillMsg `json:"fills"`
	ExecutedAt   time.Time `json:"executed_at"`
}

type FillMsg struct {
	OrderID  uuid.UUID `json:"order_id"`
	Status   string    `json:"status"`
	Price    string    `json:"price"`
	Quantity string    `json:"quantity"`
}

type Publisher struct {
	writer *kafka.Writer
}

func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			RequiredAcks: kafka.RequireAll,
			Async:        false,
			BatchTimeout: 10 * time.Millisecond,
		},
	}
}

func (p *Publisher) Publish(ctx context.Context, market string, taker uuid.UUID, fills []book.Fill) error {
	msg := Message{
		Market:       market,
		TakerOrderID: taker,
		Fills:        make([]FillMsg, 0, len(fills)),
		ExecutedAt:   time.Now().UTC(),
	}
	for _, f := range fills {
		msg.Fills = append(msg.Fills, FillMsg{
			OrderID:  f.OrderID,
			Status:   f.Status.String(),
			Price:    f.Price.String(),
			Quantity: f.Quantity.String(),
		})
	}

	value, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal trade message: %w", err)
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(market),
		Value: value,
	})
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
