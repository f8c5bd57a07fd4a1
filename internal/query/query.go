// Package query orders and inspects activity sequences. Every function is pure:
// inputs are never modified and results are fresh slices.
package query

import (
	"math"
	"sort"
	"strings"

	"example.com/workouts/internal/domain"
)

// Direction selects how SortBy orders its output.
type Direction string

const (
	// Ascending orders by metric value, smallest first.
	Ascending Direction = "ascending"
	// Insertion keeps the original order.
	Insertion Direction = "insertion"
)

// Flip returns the other direction. Callers hold the toggle state and flip it
// between repeated sort requests.
func (d Direction) Flip() Direction {
	if d == Ascending {
		return Insertion
	}
	return Ascending
}

// ParseDirection accepts "ascending"/"asc" and "insertion"/"original"; empty means Ascending.
func ParseDirection(raw string) (Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "asc", string(Ascending):
		return Ascending, true
	case "original", string(Insertion):
		return Insertion, true
	}
	return "", false
}

// SortBy orders activities by metric.
//
// With Ascending, records whose variant lacks the metric, or whose value is zero
// or NaN, are left out; the rest are stably sorted by value. With Insertion the
// input order is returned unchanged.
func SortBy(activities []domain.Activity, metric domain.Metric, dir Direction) []domain.Activity {
	if dir == Insertion {
		return cloneAll(activities)
	}

	type keyed struct {
		value    float64
		activity domain.Activity
	}
	kept := make([]keyed, 0, len(activities))
	for _, a := range activities {
		v, ok := domain.Value(a, metric)
		if !ok || v == 0 || math.IsNaN(v) {
			continue
		}
		kept = append(kept, keyed{value: v, activity: a.Clone()})
	}

	sort.SliceStable(kept, func(i, j int) bool { return kept[i].value < kept[j].value })

	out := make([]domain.Activity, len(kept))
	for i, k := range kept {
		out[i] = k.activity
	}
	return out
}

// FindByID returns the activity with the given id.
func FindByID(activities []domain.Activity, id string) (domain.Activity, bool) {
	for _, a := range activities {
		if a.ID == id {
			return a.Clone(), true
		}
	}
	return domain.Activity{}, false
}

// Bounds is the geographic extent of a set of positions.
type Bounds struct {
	MinLat float64
	MaxLat float64
	MinLng float64
	MaxLng float64
}

// BoundingBox computes the extent covering every activity position.
func BoundingBox(activities []domain.Activity) (Bounds, error) {
	if len(activities) == 0 {
		return Bounds{}, domain.ErrEmptyInput
	}

	first := activities[0].Position
	b := Bounds{MinLat: first.Lat, MaxLat: first.Lat, MinLng: first.Lng, MaxLng: first.Lng}
	for _, a := range activities[1:] {
		b.MinLat = math.Min(b.MinLat, a.Position.Lat)
		b.MaxLat = math.Max(b.MaxLat, a.Position.Lat)
		b.MinLng = math.Min(b.MinLng, a.Position.Lng)
		b.MaxLng = math.Max(b.MaxLng, a.Position.Lng)
	}
	return b, nil
}

func cloneAll(activities []domain.Activity) []domain.Activity {
	out := make([]domain.Activity, len(activities))
	for i, a := range activities {
		out[i] = a.Clone()
	}
	return out
}
