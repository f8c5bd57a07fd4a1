package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"example.com/workouts/internal/domain"
)

// record is the flat stored shape of one activity.
type record struct {
	ID               string     `json:"id"`
	CreatedAt        time.Time  `json:"createdAt"`
	Position         []float64  `json:"position"`
	DistanceKm       *float64   `json:"distanceKm"`
	DurationMin      *float64   `json:"durationMin"`
	InteractionCount int        `json:"interactionCount"`
	Kind             string     `json:"kind"`
	Label            string     `json:"label"`
	CadenceSpm       *float64   `json:"cadenceSpm,omitempty"`
	PaceMinPerKm     *jsonFloat `json:"paceMinPerKm,omitempty"`
	ElevationGainM   *float64   `json:"elevationGainM,omitempty"`
	SpeedKmPerH      *jsonFloat `json:"speedKmPerH,omitempty"`
}

// jsonFloat writes non-finite values as null, since JSON has no Inf or NaN.
type jsonFloat float64

func (f jsonFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}

var (
	errUnknownKind   = errors.New("unknown activity kind")
	errMissingFields = errors.New("missing required fields")
)

// Encode serialises activities as a JSON array of flat records.
func Encode(activities []domain.Activity) ([]byte, error) {
	records := make([]record, 0, len(activities))
	for _, a := range activities {
		rec, err := toRecord(a)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return json.Marshal(records)
}

func toRecord(a domain.Activity) (record, error) {
	distance, duration := a.DistanceKm, a.DurationMin
	rec := record{
		ID:               a.ID,
		CreatedAt:        a.CreatedAt.UTC(),
		Position:         []float64{a.Position.Lat, a.Position.Lng},
		DistanceKm:       &distance,
		DurationMin:      &duration,
		InteractionCount: a.InteractionCount,
		Kind:             string(a.Kind),
		Label:            a.Label,
	}

	switch a.Kind {
	case domain.KindDistance:
		if a.Distance == nil {
			return record{}, fmt.Errorf("activity %s: running payload missing", a.ID)
		}
		cadence, pace := a.Distance.CadenceSpm, jsonFloat(a.Distance.PaceMinPerKm)
		rec.CadenceSpm, rec.PaceMinPerKm = &cadence, &pace
	case domain.KindElevation:
		if a.Elevation == nil {
			return record{}, fmt.Errorf("activity %s: cycling payload missing", a.ID)
		}
		gain, speed := a.Elevation.ElevationGainM, jsonFloat(a.Elevation.SpeedKmPerH)
		rec.ElevationGainM, rec.SpeedKmPerH = &gain, &speed
	default:
		return record{}, fmt.Errorf("activity %s: %w %q", a.ID, errUnknownKind, a.Kind)
	}
	return rec, nil
}

// Decode parses a stored array. Records with an unknown kind are skipped
// silently; records of a known kind that fail to decode are reported in
// skipped and left out.
func Decode(data []byte) (activities []domain.Activity, skipped []error, err error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("decode activity array: %w", err)
	}

	activities = make([]domain.Activity, 0, len(raw))
	for i, item := range raw {
		a, decodeErr := decodeRecord(item)
		switch {
		case decodeErr == nil:
			activities = append(activities, a)
		case errors.Is(decodeErr, errUnknownKind):
		default:
			skipped = append(skipped, fmt.Errorf("record %d: %w", i, decodeErr))
		}
	}
	return activities, skipped, nil
}

func decodeRecord(item json.RawMessage) (domain.Activity, error) {
	var rec record
	if err := json.Unmarshal(item, &rec); err != nil {
		return domain.Activity{}, err
	}

	kind, ok := domain.ParseKind(rec.Kind)
	if !ok {
		return domain.Activity{}, fmt.Errorf("%w %q", errUnknownKind, rec.Kind)
	}
	if rec.ID == "" || len(rec.Position) != 2 || rec.DistanceKm == nil || rec.DurationMin == nil {
		return domain.Activity{}, errMissingFields
	}

	a := domain.Activity{
		ID:               rec.ID,
		CreatedAt:        rec.CreatedAt,
		Position:         domain.Position{Lat: rec.Position[0], Lng: rec.Position[1]},
		DistanceKm:       *rec.DistanceKm,
		DurationMin:      *rec.DurationMin,
		InteractionCount: rec.InteractionCount,
		Kind:             kind,
		Label:            rec.Label,
	}

	switch kind {
	case domain.KindDistance:
		if rec.CadenceSpm == nil {
			return domain.Activity{}, fmt.Errorf("%w: cadenceSpm", errMissingFields)
		}
		a.Distance = &domain.DistanceDetails{CadenceSpm: *rec.CadenceSpm}
	case domain.KindElevation:
		if rec.ElevationGainM == nil {
			return domain.Activity{}, fmt.Errorf("%w: elevationGainM", errMissingFields)
		}
		a.Elevation = &domain.ElevationDetails{ElevationGainM: *rec.ElevationGainM}
	}

	// Derived metrics are a pure function of the primary fields; stored values
	// are informational and never trusted over a recomputation.
	domain.RecomputeDerived(&a)
	if a.Label == "" {
		a.Label = domain.Label(kind, a.CreatedAt)
	}
	return a, nil
}
