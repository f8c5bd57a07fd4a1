package domain

import "math"

// Metric names a sortable numeric field.
type Metric string

const (
	MetricDistanceKm     Metric = "distanceKm"
	MetricDurationMin    Metric = "durationMin"
	MetricCadenceSpm     Metric = "cadenceSpm"
	MetricPaceMinPerKm   Metric = "paceMinPerKm"
	MetricElevationGainM Metric = "elevationGainM"
	MetricSpeedKmPerH    Metric = "speedKmPerH"
)

// Metrics lists every sortable metric.
var Metrics = []Metric{
	MetricDistanceKm,
	MetricDurationMin,
	MetricCadenceSpm,
	MetricPaceMinPerKm,
	MetricElevationGainM,
	MetricSpeedKmPerH,
}

// ParseMetric validates a metric name.
func ParseMetric(raw string) (Metric, error) {
	for _, m := range Metrics {
		if string(m) == raw {
			return m, nil
		}
	}
	return "", &ValidationError{Field: "metric", Value: math.NaN(), Reason: "unknown metric " + raw}
}

// Value returns the metric for a, or false when a's variant does not define it.
func Value(a Activity, m Metric) (float64, bool) {
	switch m {
	case MetricDistanceKm:
		return a.DistanceKm, true
	case MetricDurationMin:
		return a.DurationMin, true
	}

	switch a.Kind {
	case KindDistance:
		if a.Distance == nil {
			return 0, false
		}
		switch m {
		case MetricCadenceSpm:
			return a.Distance.CadenceSpm, true
		case MetricPaceMinPerKm:
			return a.Distance.PaceMinPerKm, true
		}
	case KindElevation:
		if a.Elevation == nil {
			return 0, false
		}
		switch m {
		case MetricElevationGainM:
			return a.Elevation.ElevationGainM, true
		case MetricSpeedKmPerH:
			return a.Elevation.SpeedKmPerH, true
		}
	}
	return 0, false
}

// DerivedValue returns the variant's derived metric (pace or speed).
func DerivedValue(a Activity) (Metric, float64) {
	switch a.Kind {
	case KindDistance:
		v, _ := Value(a, MetricPaceMinPerKm)
		return MetricPaceMinPerKm, v
	case KindElevation:
		v, _ := Value(a, MetricSpeedKmPerH)
		return MetricSpeedKmPerH, v
	}
	return "", 0
}
