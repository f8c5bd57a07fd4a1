// Package outbox delivers workout events to Kafka.
package outbox

import (
	"time"

	"github.com/segmentio/kafka-go"
)

// WriterConfig describes the Kafka writer shared by every publisher in a
// process. The topic travels on each message, so one writer serves all topics.
type WriterConfig struct {
	Brokers      []string
	BatchTimeout time.Duration
	// AutoCreateTopics lets the broker create missing topics on first write.
	AutoCreateTopics bool
}

// DefaultWriterConfig returns the settings used by the API process.
func DefaultWriterConfig(brokers []string) WriterConfig {
	return WriterConfig{
		Brokers:          brokers,
		BatchTimeout:     50 * time.Millisecond,
		AutoCreateTopics: true,
	}
}

// NewWriter builds a kafka.Writer that hashes on the message key, so every
// event for one activity lands on the same partition.
func NewWriter(cfg WriterConfig) *kafka.Writer {
	batchTimeout := cfg.BatchTimeout
	if batchTimeout <= 0 {
		batchTimeout = 50 * time.Millisecond
	}
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		Compression:            kafka.Snappy,
		BatchTimeout:           batchTimeout,
		AllowAutoTopicCreation: cfg.AutoCreateTopics,
	}
}
