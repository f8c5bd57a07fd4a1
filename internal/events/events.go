// Package events defines the payloads emitted when the activity log changes.
package events

import (
	"context"
	"time"
)

// Event types.
const (
	TypeLogged  = "workout.logged"
	TypeUpdated = "workout.updated"
	TypeRemoved = "workout.removed"
	TypeCleared = "workouts.cleared"
)

// Activity is the rendering feed view of one activity carried in events.
type Activity struct {
	ActivityID       string     `json:"activity_id"`
	Kind             string     `json:"kind"`
	Label            string     `json:"label"`
	Position         [2]float64 `json:"position"`
	DistanceKm       float64    `json:"distance_km"`
	DurationMin      float64    `json:"duration_min"`
	DerivedMetric    string     `json:"derived_metric"`
	DerivedValue     *float64   `json:"derived_value,omitempty"`
	InteractionCount int        `json:"interaction_count"`
	CreatedAt        time.Time  `json:"created_at"`
}

// ActivityChanged is emitted for logged, updated and removed activities.
type ActivityChanged struct {
	Slot       string    `json:"slot"`
	Activity   Activity  `json:"activity"`
	OccurredAt time.Time `json:"occurred_at"`
}

// LogCleared is emitted when every activity in a slot is removed.
type LogCleared struct {
	Slot       string    `json:"slot"`
	Removed    int       `json:"removed"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Envelope pairs a payload with its routing metadata.
type Envelope struct {
	Type         string
	PartitionKey string
	Payload      any
}

// Publisher delivers envelopes to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, env Envelope) error
}

// NoopPublisher drops every event.
type NoopPublisher struct{}

// Publish performs no action.
func (NoopPublisher) Publish(context.Context, Envelope) error { return nil }
