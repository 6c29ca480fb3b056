package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/TemirB/invoice-processor/internal/config"
	"github.com/TemirB/invoice-processor/internal/domain"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher puts work items on the topic the ingestor consumes. Messages are
// keyed by user email so one requester's invoices stay on one partition.
type Publisher struct {
	writer messageWriter
}

func NewPublisher(cfg config.Kafka) *Publisher {
	return &Publisher{writer: &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
	}}
}

func (p *Publisher) Publish(ctx context.Context, item domain.WorkItem) error {
	b, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("marshal work item: %w", err)
	}
	return p.writer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(item.UserEmail),
		Value: b,
		Time:  time.Now(),
	})
}

func (p *Publisher) Close() error { return p.writer.Close() }
