// Package service composes the activity store, its persistence slot and event
// publishing into the operations the HTTP API and CLI call.
package service

import (
	"context"
	"errors"
	"log"
	"math"
	"sync"
	"time"

	"example.com/workouts/internal/domain"
	"example.com/workouts/internal/events"
	"example.com/workouts/internal/observability"
	"example.com/workouts/internal/persistence"
	"example.com/workouts/internal/query"
	"example.com/workouts/internal/store"
)

// Snapshotter persists and restores the collection.
type Snapshotter interface {
	Save(ctx context.Context, activities []domain.Activity) error
	Load(ctx context.Context) []domain.Activity
	Clear(ctx context.Context) error
}

// Option configures optional behaviour for the Service.
type Option func(*Service)

// WithLogger overrides the logger used to report non-fatal failures.
func WithLogger(logger *log.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithPublisher sets the event sink. Defaults to events.NoopPublisher.
func WithPublisher(p events.Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithFactory overrides how ids and timestamps are assigned.
func WithFactory(f domain.Factory) Option {
	return func(s *Service) {
		s.factory = f
	}
}

// WithSlotName labels emitted events with the slot they came from.
func WithSlotName(name string) Option {
	return func(s *Service) {
		s.slot = name
	}
}

// Service serialises every operation behind one mutex, so the store keeps
// a single logical thread of control even under concurrent callers.
type Service struct {
	mu        sync.Mutex
	store     *store.Store
	snap      Snapshotter
	publisher events.Publisher
	factory   domain.Factory
	logger    *log.Logger
	slot      string
	now       func() time.Time
}

// New constructs a Service with an empty store. Call Restore to load saved activities.
func New(snap Snapshotter, opts ...Option) *Service {
	s := &Service{
		store:     store.New(),
		snap:      snap,
		publisher: events.NoopPublisher{},
		factory:   domain.DefaultFactory,
		logger:    log.New(log.Writer(), "[service] ", log.LstdFlags|log.Lshortfile),
		slot:      persistence.DefaultSlotKey,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Restore replaces the in-memory collection with the persisted one and
// returns how many activities were loaded.
func (s *Service) Restore(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	loaded := s.snap.Load(ctx)
	if dropped := s.store.Replace(loaded); dropped > 0 {
		s.logger.Printf("restore dropped %d activities with duplicate ids", dropped)
	}
	return s.store.Len()
}

// Log validates req, appends the new activity and persists the collection.
// A ValidationError leaves the store untouched. A PersistenceError is returned
// alongside the created activity, which stays in memory.
func (s *Service) Log(ctx context.Context, req domain.CreateRequest) (domain.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.factory.NewActivity(req)
	if err != nil {
		observability.RecordActivityRejected()
		return domain.Activity{}, err
	}
	if err := s.store.Add(a); err != nil {
		return domain.Activity{}, err
	}
	observability.RecordActivityLogged(string(a.Kind))

	if err := s.save(ctx); err != nil {
		return a, err
	}
	s.publishChange(ctx, events.TypeLogged, a)
	return a, nil
}

// Get returns one activity.
func (s *Service) Get(id string) (domain.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.store.FindByID(id)
	if !ok {
		return domain.Activity{}, domain.ErrActivityNotFound
	}
	return a, nil
}

// List returns every activity in insertion order.
func (s *Service) List() []domain.Activity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.List()
}

// Sorted returns the collection ordered by metric in the caller's direction.
func (s *Service) Sorted(metric domain.Metric, dir query.Direction) []domain.Activity {
	return query.SortBy(s.List(), metric, dir)
}

// Bounds returns the extent of every activity position.
func (s *Service) Bounds() (query.Bounds, error) {
	return query.BoundingBox(s.List())
}

// Visit increments the activity's interaction counter and persists.
func (s *Service) Visit(ctx context.Context, id string) (domain.Activity, error) {
	return s.mutate(ctx, id, domain.MarkVisited)
}

// Edit replaces the editable fields of id and recomputes its derived metric.
// Positivity is not re-checked, but NaN and infinite values are refused
// because they cannot be persisted.
func (s *Service) Edit(ctx context.Context, id string, e domain.Edit) (domain.Activity, error) {
	return s.edit(ctx, id, func(domain.Activity) domain.Edit { return e })
}

// Patch merges the set fields of p into the current record and applies the
// result as one edit, so concurrent patches to different fields both land.
func (s *Service) Patch(ctx context.Context, id string, p domain.Patch) (domain.Activity, error) {
	return s.edit(ctx, id, p.Merge)
}

func (s *Service) edit(ctx context.Context, id string, resolve func(domain.Activity) domain.Edit) (domain.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.store.FindByID(id)
	if !ok {
		return domain.Activity{}, domain.ErrActivityNotFound
	}
	e := resolve(current)
	if err := requireFiniteEdit(e); err != nil {
		return domain.Activity{}, err
	}
	return s.updateLocked(ctx, id, func(a *domain.Activity) { domain.ApplyEdit(a, e) })
}

func requireFiniteEdit(e domain.Edit) error {
	fields := []struct {
		name  string
		value float64
	}{
		{"distanceKm", e.DistanceKm},
		{"durationMin", e.DurationMin},
		{"variantValue", e.VariantValue},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return &domain.ValidationError{Field: f.name, Value: f.value, Reason: "must be a finite number"}
		}
	}
	return nil
}

func (s *Service) mutate(ctx context.Context, id string, fn func(*domain.Activity)) (domain.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateLocked(ctx, id, fn)
}

// updateLocked requires s.mu.
func (s *Service) updateLocked(ctx context.Context, id string, fn func(*domain.Activity)) (domain.Activity, error) {
	updated, ok := s.store.Update(id, fn)
	if !ok {
		return domain.Activity{}, domain.ErrActivityNotFound
	}
	if err := s.save(ctx); err != nil {
		return updated, err
	}
	s.publishChange(ctx, events.TypeUpdated, updated)
	return updated, nil
}

// Remove deletes one activity and persists.
func (s *Service) Remove(ctx context.Context, id string) (domain.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed, ok := s.store.RemoveByID(id)
	if !ok {
		return domain.Activity{}, domain.ErrActivityNotFound
	}
	if err := s.save(ctx); err != nil {
		return removed, err
	}
	s.publishChange(ctx, events.TypeRemoved, removed)
	return removed, nil
}

// Clear removes every activity and deletes the slot. It returns how many
// activities were removed.
func (s *Service) Clear(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := s.store.Len()
	s.store.Clear()
	if err := s.snap.Clear(ctx); err != nil {
		return removed, err
	}

	s.publish(ctx, events.Envelope{
		Type:         events.TypeCleared,
		PartitionKey: s.slot,
		Payload:      events.LogCleared{Slot: s.slot, Removed: removed, OccurredAt: s.now().UTC()},
	})
	return removed, nil
}

func (s *Service) save(ctx context.Context) error {
	err := s.snap.Save(ctx, s.store.List())
	if err != nil {
		s.logger.Printf("save failed, in-memory state kept: %v", err)
		var perr *domain.PersistenceError
		if !errors.As(err, &perr) {
			err = &domain.PersistenceError{Op: "save", Err: err}
		}
	}
	return err
}

func (s *Service) publishChange(ctx context.Context, eventType string, a domain.Activity) {
	s.publish(ctx, events.Envelope{
		Type:         eventType,
		PartitionKey: a.ID,
		Payload: events.ActivityChanged{
			Slot:       s.slot,
			Activity:   FeedItem(a),
			OccurredAt: s.now().UTC(),
		},
	})
}

func (s *Service) publish(ctx context.Context, env events.Envelope) {
	if err := s.publisher.Publish(ctx, env); err != nil {
		s.logger.Printf("publish %s failed: %v", env.Type, err)
	}
}

// FeedItem converts an activity into the rendering feed shape.
func FeedItem(a domain.Activity) events.Activity {
	metric, value := domain.DerivedValue(a)
	item := events.Activity{
		ActivityID:       a.ID,
		Kind:             string(a.Kind),
		Label:            a.Label,
		Position:         [2]float64{a.Position.Lat, a.Position.Lng},
		DistanceKm:       a.DistanceKm,
		DurationMin:      a.DurationMin,
		DerivedMetric:    string(metric),
		InteractionCount: a.InteractionCount,
		CreatedAt:        a.CreatedAt,
	}
	if !math.IsNaN(value) && !math.IsInf(value, 0) {
		item.DerivedValue = &value
	}
	return item
}
