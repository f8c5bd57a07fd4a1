// Package store holds the in-memory, insertion-ordered activity collection.
// It performs no I/O and no locking; callers serialise access.
package store

import (
	"example.com/workouts/internal/domain"
)

// Store owns the activity collection. Values going in and out are copies.
// The zero value is an empty store ready to use.
type Store struct {
	activities []domain.Activity
	index      map[string]int
}

// New constructs an empty Store.
func New() *Store {
	return &Store{index: make(map[string]int)}
}

// Add appends an activity. Ids must be unique.
func (s *Store) Add(a domain.Activity) error {
	if _, exists := s.index[a.ID]; exists {
		return domain.ErrDuplicateID
	}
	if s.index == nil {
		s.index = make(map[string]int)
	}
	s.index[a.ID] = len(s.activities)
	s.activities = append(s.activities, a.Clone())
	return nil
}

// RemoveByID deletes the activity and returns it; false when the id is unknown.
func (s *Store) RemoveByID(id string) (domain.Activity, bool) {
	pos, ok := s.index[id]
	if !ok {
		return domain.Activity{}, false
	}
	removed := s.activities[pos]
	s.activities = append(s.activities[:pos], s.activities[pos+1:]...)
	s.reindex()
	return removed, true
}

// FindByID returns a copy of the activity.
func (s *Store) FindByID(id string) (domain.Activity, bool) {
	pos, ok := s.index[id]
	if !ok {
		return domain.Activity{}, false
	}
	return s.activities[pos].Clone(), true
}

// Update applies fn to the stored activity in place and returns the result.
func (s *Store) Update(id string, fn func(*domain.Activity)) (domain.Activity, bool) {
	pos, ok := s.index[id]
	if !ok {
		return domain.Activity{}, false
	}
	fn(&s.activities[pos])
	return s.activities[pos].Clone(), true
}

// List returns the activities in insertion order.
func (s *Store) List() []domain.Activity {
	out := make([]domain.Activity, len(s.activities))
	for i, a := range s.activities {
		out[i] = a.Clone()
	}
	return out
}

// Replace swaps the whole collection, e.g. after restoring from persistence.
// Later duplicates of an id are dropped and their count returned.
func (s *Store) Replace(activities []domain.Activity) int {
	s.Clear()
	dropped := 0
	for _, a := range activities {
		if err := s.Add(a); err != nil {
			dropped++
		}
	}
	return dropped
}

// Clear empties the store.
func (s *Store) Clear() {
	s.activities = nil
	s.index = make(map[string]int)
}

// Len reports the number of activities.
func (s *Store) Len() int { return len(s.activities) }

func (s *Store) reindex() {
	s.index = make(map[string]int, len(s.activities))
	for i, a := range s.activities {
		s.index[a.ID] = i
	}
}
