// Package persistence snapshots the activity collection into a single durable
// key-value slot and restores typed activities from it.
package persistence

import (
	"context"
	"errors"
	"log"

	"example.com/workouts/internal/domain"
	"example.com/workouts/internal/observability"
)

// DefaultSlotKey is the key the collection is stored under.
const DefaultSlotKey = "workouts"

// ErrSlotEmpty is returned by Slot.Read when nothing has been stored.
var ErrSlotEmpty = errors.New("persistence slot is empty")

// Slot is one named durable value.
type Slot interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, payload []byte) error
	Delete(ctx context.Context) error
}

// Option configures optional behaviour for the Adapter.
type Option func(*Adapter)

// WithLogger overrides the logger used to report restore warnings.
func WithLogger(logger *log.Logger) Option {
	return func(a *Adapter) {
		a.logger = logger
	}
}

// Adapter converts between activity sequences and the slot payload.
type Adapter struct {
	slot   Slot
	logger *log.Logger
}

// NewAdapter constructs an Adapter over slot.
func NewAdapter(slot Slot, opts ...Option) *Adapter {
	a := &Adapter{
		slot:   slot,
		logger: log.New(log.Writer(), "[persistence] ", log.LstdFlags|log.Lshortfile),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Save replaces the slot contents with the ordered sequence.
func (a *Adapter) Save(ctx context.Context, activities []domain.Activity) error {
	payload, err := Encode(activities)
	if err != nil {
		observability.RecordSaveFailure()
		return &domain.PersistenceError{Op: "encode", Err: err}
	}
	if err := a.slot.Write(ctx, payload); err != nil {
		observability.RecordSaveFailure()
		return &domain.PersistenceError{Op: "write", Err: err}
	}
	observability.RecordSave(len(activities), len(payload))
	return nil
}

// Load restores the stored sequence. A missing or unreadable slot yields an
// empty collection; failures are logged, never returned.
func (a *Adapter) Load(ctx context.Context) []domain.Activity {
	payload, err := a.slot.Read(ctx)
	if err != nil {
		if !errors.Is(err, ErrSlotEmpty) {
			a.logger.Printf("restore skipped, slot unreadable: %v", err)
			observability.RecordRestoreFailure()
		}
		return []domain.Activity{}
	}
	if len(payload) == 0 {
		return []domain.Activity{}
	}

	activities, skipped, err := Decode(payload)
	if err != nil {
		a.logger.Printf("restore skipped, slot unparsable: %v", err)
		observability.RecordRestoreFailure()
		return []domain.Activity{}
	}
	for _, skipErr := range skipped {
		a.logger.Printf("dropped stored activity: %v", skipErr)
	}
	return activities
}

// Clear removes the slot.
func (a *Adapter) Clear(ctx context.Context) error {
	if err := a.slot.Delete(ctx); err != nil {
		return &domain.PersistenceError{Op: "clear", Err: err}
	}
	return nil
}
