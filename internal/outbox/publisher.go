package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"example.com/workouts/internal/events"
)

// messageWriter is satisfied by *kafka.Writer.
type messageWriter interface {
	WriteMessages(context.Context, ...kafka.Message) error
}

// Publisher encodes events as JSON and writes them to a single topic.
type Publisher struct {
	writer messageWriter
	topic  string
	now    func() time.Time
}

// NewPublisher constructs a Publisher over writer.
func NewPublisher(writer messageWriter, topic string) *Publisher {
	return &Publisher{writer: writer, topic: topic, now: time.Now}
}

// Publish implements events.Publisher.
func (p *Publisher) Publish(ctx context.Context, env events.Envelope) error {
	start := p.now()

	body, err := json.Marshal(env.Payload)
	if err != nil {
		failedCounter.WithLabelValues(env.Type).Inc()
		return fmt.Errorf("encode %s: %w", env.Type, err)
	}

	msg := kafka.Message{
		Topic: p.topic,
		Key:   []byte(env.PartitionKey),
		Value: body,
		Time:  start.UTC(),
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(env.Type)},
			{Key: "content_type", Value: []byte("application/json")},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		failedCounter.WithLabelValues(env.Type).Inc()
		return fmt.Errorf("publish %s to %s: %w", env.Type, p.topic, err)
	}

	deliveredCounter.WithLabelValues(env.Type).Inc()
	publishDuration.Observe(p.now().Sub(start).Seconds())
	return nil
}
