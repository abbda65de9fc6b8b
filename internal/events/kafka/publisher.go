// Package kafka publishes committed posting and cascade events.
package kafka

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"github.com/campusbooks/student-ledger/internal/interfaces"
)

// Publisher writes JSON-encoded events to Kafka. Publishing happens after
// the unit of work committed; callers treat failures as log-and-continue.
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher connects a writer to the given brokers. The topic is chosen
// per message.
func NewPublisher(brokers []string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Balancer: &kafka.LeastBytes{},
		},
	}
}

func (p *Publisher) Publish(topic string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(
		context.Background(),
		kafka.Message{
			Topic: topic,
			Value: data,
		},
	)
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

var _ interfaces.EventPublisher = (*Publisher)(nil)
