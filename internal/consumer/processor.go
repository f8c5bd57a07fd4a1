// Package consumer reads workout events from Kafka and hands them to a Handler.
package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"example.com/workouts/internal/events"
)

// Reader exposes the minimal kafka.Reader interface needed by the processor.
type Reader interface {
	FetchMessage(context.Context) (kafka.Message, error)
	CommitMessages(context.Context, ...kafka.Message) error
	Close() error
}

// Handler receives decoded messages from Kafka.
type Handler interface {
	Handle(context.Context, Message) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(context.Context, Message) error

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, msg Message) error { return f(ctx, msg) }

// Message is the decoded representation of one workout event record.
type Message struct {
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	EventType string
	// Key is the partition key: the activity id, or the slot key for clears.
	Key     string
	Payload json.RawMessage
}

// ActivityID returns the id carried by activity events, empty for clears.
func (m Message) ActivityID() string {
	if m.EventType == events.TypeCleared {
		return ""
	}
	return m.Key
}

// Option configures optional behaviour for the Processor.
type Option func(*Processor)

// WithLogger overrides the logger used to report errors.
func WithLogger(logger *log.Logger) Option {
	return func(p *Processor) {
		p.logger = logger
	}
}

// Processor pulls messages from Kafka, decodes them, and dispatches to a Handler.
type Processor struct {
	reader  Reader
	handler Handler
	logger  *log.Logger
}

// NewProcessor constructs a Processor with the provided reader and handler.
func NewProcessor(reader Reader, handler Handler, opts ...Option) *Processor {
	p := &Processor{
		reader:  reader,
		handler: handler,
		logger:  log.New(log.Writer(), "[consumer] ", log.LstdFlags|log.Lshortfile),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run processes messages until the context is cancelled.
func (p *Processor) Run(ctx context.Context) error {
	for ctx.Err() == nil {
		record, err := p.reader.FetchMessage(ctx)
		switch {
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return err
		case err != nil:
			p.logger.Printf("fetch failed: %v", err)
			continue
		}

		if !p.process(ctx, record) {
			continue
		}
		if err := p.reader.CommitMessages(ctx, record); err != nil {
			p.logger.Printf("commit %s/%d@%d failed: %v", record.Topic, record.Partition, record.Offset, err)
		}
	}
	return ctx.Err()
}

// process reports whether record should be committed. Malformed records are
// committed so they are not redelivered; handler failures are not, so the
// record is retried after a rebalance or restart.
func (p *Processor) process(ctx context.Context, record kafka.Message) bool {
	msg, err := decodeMessage(record)
	if err != nil {
		p.logger.Printf("skipping %s/%d@%d: %v", record.Topic, record.Partition, record.Offset, err)
		recordDecodeError(record.Topic)
		return true
	}

	if err := p.handler.Handle(ctx, msg); err != nil {
		p.logger.Printf("handle %s (key=%s) failed: %v", msg.EventType, msg.Key, err)
		recordHandlerError(msg)
		return false
	}
	recordProcessed(msg)
	return true
}

func decodeMessage(msg kafka.Message) (Message, error) {
	eventType, ok := headerValue(msg, "event_type")
	if !ok {
		return Message{}, errors.New("missing event_type header")
	}
	if !knownEventType(string(eventType)) {
		return Message{}, fmt.Errorf("unknown event type %q", eventType)
	}
	if !json.Valid(msg.Value) {
		return Message{}, fmt.Errorf("payload is not valid JSON (%d bytes)", len(msg.Value))
	}

	return Message{
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Timestamp: msg.Time,
		EventType: string(eventType),
		Key:       string(msg.Key),
		Payload:   json.RawMessage(append([]byte(nil), msg.Value...)),
	}, nil
}

func knownEventType(t string) bool {
	switch t {
	case events.TypeLogged, events.TypeUpdated, events.TypeRemoved, events.TypeCleared:
		return true
	}
	return false
}

func headerValue(msg kafka.Message, key string) ([]byte, bool) {
	for _, header := range msg.Headers {
		if header.Key == key {
			return header.Value, true
		}
	}
	return nil, false
}
