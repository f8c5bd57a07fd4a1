package api

import (
	"errors"
	"fmt"
	"math"
	"time"

	"example.com/workouts/internal/domain"
)

// CreateActivityRequest is the payload for POST /v1/activities.
type CreateActivityRequest struct {
	Kind           string    `json:"kind"`
	Position       []float64 `json:"position"`
	DistanceKm     *float64  `json:"distanceKm"`
	DurationMin    *float64  `json:"durationMin"`
	CadenceSpm     *float64  `json:"cadenceSpm,omitempty"`
	ElevationGainM *float64  `json:"elevationGainM,omitempty"`
}

// toDomain checks the request shape. Numeric ranges are left to the domain constructors.
func (r CreateActivityRequest) toDomain() (domain.CreateRequest, error) {
	kind, ok := domain.ParseKind(r.Kind)
	if !ok {
		return domain.CreateRequest{}, fmt.Errorf("kind must be %q or %q", domain.KindDistance, domain.KindElevation)
	}
	if len(r.Position) != 2 {
		return domain.CreateRequest{}, errors.New("position must be [lat, lng]")
	}
	if r.DistanceKm == nil {
		return domain.CreateRequest{}, errors.New("distanceKm is required")
	}
	if r.DurationMin == nil {
		return domain.CreateRequest{}, errors.New("durationMin is required")
	}

	req := domain.CreateRequest{
		Kind:        kind,
		Position:    domain.Position{Lat: r.Position[0], Lng: r.Position[1]},
		DistanceKm:  *r.DistanceKm,
		DurationMin: *r.DurationMin,
	}
	switch kind {
	case domain.KindDistance:
		if r.CadenceSpm == nil {
			return domain.CreateRequest{}, errors.New("cadenceSpm is required for running")
		}
		req.CadenceSpm = *r.CadenceSpm
	case domain.KindElevation:
		if r.ElevationGainM == nil {
			return domain.CreateRequest{}, errors.New("elevationGainM is required for cycling")
		}
		req.ElevationGainM = *r.ElevationGainM
	}
	return req, nil
}

// EditActivityRequest is the payload for PATCH /v1/activities/{id}. Omitted
// fields keep their current value. The variant field is cadenceSpm for
// running and elevationGainM for cycling.
type EditActivityRequest struct {
	DistanceKm     *float64 `json:"distanceKm,omitempty"`
	DurationMin    *float64 `json:"durationMin,omitempty"`
	CadenceSpm     *float64 `json:"cadenceSpm,omitempty"`
	ElevationGainM *float64 `json:"elevationGainM,omitempty"`
}

func (r EditActivityRequest) patch() domain.Patch {
	return domain.Patch{
		DistanceKm:     r.DistanceKm,
		DurationMin:    r.DurationMin,
		CadenceSpm:     r.CadenceSpm,
		ElevationGainM: r.ElevationGainM,
	}
}

// ActivityView exposes full details about an activity.
type ActivityView struct {
	ID               string     `json:"id"`
	Kind             string     `json:"kind"`
	Label            string     `json:"label"`
	CreatedAt        time.Time  `json:"createdAt"`
	Position         [2]float64 `json:"position"`
	DistanceKm       float64    `json:"distanceKm"`
	DurationMin      float64    `json:"durationMin"`
	InteractionCount int        `json:"interactionCount"`
	CadenceSpm       *float64   `json:"cadenceSpm,omitempty"`
	ElevationGainM   *float64   `json:"elevationGainM,omitempty"`
	DerivedMetric    string     `json:"derivedMetric"`
	// DerivedValue is null when the pace or speed is not finite.
	DerivedValue *float64 `json:"derivedValue"`
}

// ListActivitiesResponse packages list results. Sort fields are set only
// for sorted listings; NextDirection is the direction a toggle would apply.
type ListActivitiesResponse struct {
	Items         []ActivityView `json:"items"`
	Sort          string         `json:"sort,omitempty"`
	Direction     string         `json:"direction,omitempty"`
	NextDirection string         `json:"nextDirection,omitempty"`
}

// ClearResponse reports how many activities DELETE /v1/activities removed.
type ClearResponse struct {
	Removed int `json:"removed"`
}

// BoundsView is the map extent of every logged position.
type BoundsView struct {
	MinLat float64 `json:"minLat"`
	MaxLat float64 `json:"maxLat"`
	MinLng float64 `json:"minLng"`
	MaxLng float64 `json:"maxLng"`
}

func toActivityView(a domain.Activity) ActivityView {
	metric, value := domain.DerivedValue(a)
	view := ActivityView{
		ID:               a.ID,
		Kind:             string(a.Kind),
		Label:            a.Label,
		CreatedAt:        a.CreatedAt,
		Position:         [2]float64{a.Position.Lat, a.Position.Lng},
		DistanceKm:       a.DistanceKm,
		DurationMin:      a.DurationMin,
		InteractionCount: a.InteractionCount,
		DerivedMetric:    string(metric),
	}
	if !math.IsNaN(value) && !math.IsInf(value, 0) {
		view.DerivedValue = &value
	}
	switch a.Kind {
	case domain.KindDistance:
		if a.Distance != nil {
			cadence := a.Distance.CadenceSpm
			view.CadenceSpm = &cadence
		}
	case domain.KindElevation:
		if a.Elevation != nil {
			gain := a.Elevation.ElevationGainM
			view.ElevationGainM = &gain
		}
	}
	return view
}

func toActivityViews(activities []domain.Activity) []ActivityView {
	items := make([]ActivityView, 0, len(activities))
	for _, a := range activities {
		items = append(items, toActivityView(a))
	}
	return items
}
