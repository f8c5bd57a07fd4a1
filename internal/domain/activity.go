// Package domain defines the workout record, its two variants and their derived metrics.
package domain

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind discriminates the activity variants.
type Kind string

const (
	// KindDistance is the distance-based ("running") variant carrying cadence and pace.
	KindDistance Kind = "running"
	// KindElevation is the elevation-based ("cycling") variant carrying elevation gain and speed.
	KindElevation Kind = "cycling"
)

// ParseKind resolves a stored or requested discriminator.
func ParseKind(raw string) (Kind, bool) {
	switch Kind(strings.ToLower(strings.TrimSpace(raw))) {
	case KindDistance:
		return KindDistance, true
	case KindElevation:
		return KindElevation, true
	}
	return "", false
}

// Position is a latitude/longitude pair.
type Position struct {
	Lat float64
	Lng float64
}

// DistanceDetails holds the running-specific payload.
type DistanceDetails struct {
	CadenceSpm   float64
	PaceMinPerKm float64
}

// ElevationDetails holds the cycling-specific payload.
type ElevationDetails struct {
	ElevationGainM float64
	SpeedKmPerH    float64
}

// Activity is one logged outing. Exactly one of Distance or Elevation is set,
// matching Kind.
type Activity struct {
	ID               string
	CreatedAt        time.Time
	Position         Position
	DistanceKm       float64
	DurationMin      float64
	InteractionCount int
	Kind             Kind
	Label            string

	Distance  *DistanceDetails
	Elevation *ElevationDetails
}

// Clone returns a deep copy so callers never share variant payloads.
func (a Activity) Clone() Activity {
	out := a
	if a.Distance != nil {
		d := *a.Distance
		out.Distance = &d
	}
	if a.Elevation != nil {
		e := *a.Elevation
		out.Elevation = &e
	}
	return out
}

// Factory stamps new activities with an id and creation time.
type Factory struct {
	Now   func() time.Time
	NewID func() string
}

// DefaultFactory uses the wall clock and random UUIDs.
var DefaultFactory = Factory{
	Now:   func() time.Time { return time.Now().UTC() },
	NewID: uuid.NewString,
}

// CreateRequest is the plain creation payload handed in by the UI or CLI.
type CreateRequest struct {
	Kind           Kind
	Position       Position
	DistanceKm     float64
	DurationMin    float64
	CadenceSpm     float64
	ElevationGainM float64
}

// NewActivity builds the variant selected by req.Kind.
func (f Factory) NewActivity(req CreateRequest) (Activity, error) {
	switch req.Kind {
	case KindDistance:
		return f.NewDistanceActivity(req.Position, req.DistanceKm, req.DurationMin, req.CadenceSpm)
	case KindElevation:
		return f.NewElevationActivity(req.Position, req.DistanceKm, req.DurationMin, req.ElevationGainM)
	default:
		return Activity{}, &ValidationError{Field: "kind", Value: math.NaN(), Reason: fmt.Sprintf("unknown kind %q", req.Kind)}
	}
}

// NewDistanceActivity validates the inputs and builds a running record.
func (f Factory) NewDistanceActivity(pos Position, distanceKm, durationMin, cadenceSpm float64) (Activity, error) {
	if err := requirePosition(pos); err != nil {
		return Activity{}, err
	}
	if err := requirePositive("distanceKm", distanceKm); err != nil {
		return Activity{}, err
	}
	if err := requirePositive("durationMin", durationMin); err != nil {
		return Activity{}, err
	}
	if err := requirePositive("cadenceSpm", cadenceSpm); err != nil {
		return Activity{}, err
	}

	a := f.base(KindDistance, pos, distanceKm, durationMin)
	a.Distance = &DistanceDetails{CadenceSpm: cadenceSpm}
	RecomputeDerived(&a)
	return a, nil
}

// NewElevationActivity validates the inputs and builds a cycling record.
// Elevation gain only has to be finite; zero and negative gains are accepted.
func (f Factory) NewElevationActivity(pos Position, distanceKm, durationMin, elevationGainM float64) (Activity, error) {
	if err := requirePosition(pos); err != nil {
		return Activity{}, err
	}
	if err := requirePositive("distanceKm", distanceKm); err != nil {
		return Activity{}, err
	}
	if err := requirePositive("durationMin", durationMin); err != nil {
		return Activity{}, err
	}
	if err := requireFinite("elevationGainM", elevationGainM); err != nil {
		return Activity{}, err
	}

	a := f.base(KindElevation, pos, distanceKm, durationMin)
	a.Elevation = &ElevationDetails{ElevationGainM: elevationGainM}
	RecomputeDerived(&a)
	return a, nil
}

// NewDistanceActivity uses DefaultFactory.
func NewDistanceActivity(pos Position, distanceKm, durationMin, cadenceSpm float64) (Activity, error) {
	return DefaultFactory.NewDistanceActivity(pos, distanceKm, durationMin, cadenceSpm)
}

// NewElevationActivity uses DefaultFactory.
func NewElevationActivity(pos Position, distanceKm, durationMin, elevationGainM float64) (Activity, error) {
	return DefaultFactory.NewElevationActivity(pos, distanceKm, durationMin, elevationGainM)
}

func (f Factory) base(kind Kind, pos Position, distanceKm, durationMin float64) Activity {
	now, newID := f.Now, f.NewID
	if now == nil {
		now = DefaultFactory.Now
	}
	if newID == nil {
		newID = DefaultFactory.NewID
	}
	createdAt := now()
	return Activity{
		ID:          newID(),
		CreatedAt:   createdAt,
		Position:    pos,
		DistanceKm:  distanceKm,
		DurationMin: durationMin,
		Kind:        kind,
		Label:       Label(kind, createdAt),
	}
}

// RecomputeDerived refreshes pace or speed from the primary fields.
// A zero divisor yields Inf or NaN; that is not treated as an error.
func RecomputeDerived(a *Activity) {
	switch a.Kind {
	case KindDistance:
		if a.Distance == nil {
			a.Distance = &DistanceDetails{}
		}
		a.Distance.PaceMinPerKm = a.DurationMin / a.DistanceKm
	case KindElevation:
		if a.Elevation == nil {
			a.Elevation = &ElevationDetails{}
		}
		a.Elevation.SpeedKmPerH = a.DistanceKm / (a.DurationMin / 60)
	}
}

// MarkVisited bumps the interaction counter.
func MarkVisited(a *Activity) {
	a.InteractionCount++
}

// Edit carries replacement values for the editable fields. VariantValue is the
// cadence for running and the elevation gain for cycling.
type Edit struct {
	DistanceKm   float64
	DurationMin  float64
	VariantValue float64
}

// Patch is a partial edit: nil fields keep the current value. Only the
// variant field matching the record's kind is used.
type Patch struct {
	DistanceKm     *float64
	DurationMin    *float64
	CadenceSpm     *float64
	ElevationGainM *float64
}

// Merge resolves p against current into a full Edit.
func (p Patch) Merge(current Activity) Edit {
	e := Edit{DistanceKm: current.DistanceKm, DurationMin: current.DurationMin}
	variant := p.CadenceSpm
	switch current.Kind {
	case KindDistance:
		if current.Distance != nil {
			e.VariantValue = current.Distance.CadenceSpm
		}
	case KindElevation:
		if current.Elevation != nil {
			e.VariantValue = current.Elevation.ElevationGainM
		}
		variant = p.ElevationGainM
	}
	if p.DistanceKm != nil {
		e.DistanceKm = *p.DistanceKm
	}
	if p.DurationMin != nil {
		e.DurationMin = *p.DurationMin
	}
	if variant != nil {
		e.VariantValue = *variant
	}
	return e
}

// ApplyEdit overwrites the editable fields and recomputes the derived metric.
// Values are not re-validated.
func ApplyEdit(a *Activity, e Edit) {
	a.DistanceKm = e.DistanceKm
	a.DurationMin = e.DurationMin
	switch a.Kind {
	case KindDistance:
		if a.Distance == nil {
			a.Distance = &DistanceDetails{}
		}
		a.Distance.CadenceSpm = e.VariantValue
	case KindElevation:
		if a.Elevation == nil {
			a.Elevation = &ElevationDetails{}
		}
		a.Elevation.ElevationGainM = e.VariantValue
	}
	RecomputeDerived(a)
}

// Label renders "<Kind> on <Month> <day>", e.g. "Running on March 5".
func Label(kind Kind, t time.Time) string {
	name := string(kind)
	if name != "" {
		name = strings.ToUpper(name[:1]) + name[1:]
	}
	return fmt.Sprintf("%s on %s %d", name, t.Month().String(), t.Day())
}

func requirePositive(field string, v float64) error {
	if err := requireFinite(field, v); err != nil {
		return err
	}
	if v <= 0 {
		return &ValidationError{Field: field, Value: v, Reason: "must be a positive number"}
	}
	return nil
}

// requirePosition only rejects coordinates that cannot be stored; range is not checked.
func requirePosition(pos Position) error {
	if err := requireFinite("lat", pos.Lat); err != nil {
		return err
	}
	return requireFinite("lng", pos.Lng)
}

func requireFinite(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &ValidationError{Field: field, Value: v, Reason: "must be a finite number"}
	}
	return nil
}
