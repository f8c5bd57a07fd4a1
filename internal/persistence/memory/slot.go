// Package memory provides an in-process persistence slot for tests and
// throwaway runs.
package memory

import (
	"context"
	"sync"

	"example.com/workouts/internal/persistence"
)

// Slot keeps the payload in memory.
type Slot struct {
	mu      sync.RWMutex
	payload []byte
	set     bool
	// WriteErr, when set, is returned by Write to simulate storage failures.
	WriteErr error
}

// NewSlot constructs an empty Slot.
func NewSlot() *Slot {
	return &Slot{}
}

// Read implements persistence.Slot.
func (s *Slot) Read(context.Context) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.set {
		return nil, persistence.ErrSlotEmpty
	}
	return append([]byte(nil), s.payload...), nil
}

// Write implements persistence.Slot.
func (s *Slot) Write(_ context.Context, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.WriteErr != nil {
		return s.WriteErr
	}
	s.payload = append([]byte(nil), payload...)
	s.set = true
	return nil
}

// Delete implements persistence.Slot.
func (s *Slot) Delete(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payload = nil
	s.set = false
	return nil
}

// Set stores raw bytes, bypassing encoding. Used to seed corrupt payloads.
func (s *Slot) Set(payload []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payload = append([]byte(nil), payload...)
	s.set = true
}
