package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	lastSavedGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "workouts",
		Subsystem: "persistence",
		Name:      "last_save_timestamp_seconds",
		Help:      "Unix timestamp of the most recent successful slot write.",
	})
	storedActivitiesGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "workouts",
		Subsystem: "persistence",
		Name:      "stored_activities",
		Help:      "Number of activities in the last successful slot write.",
	})
	payloadBytesGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "workouts",
		Subsystem: "persistence",
		Name:      "payload_bytes",
		Help:      "Size of the last successful slot write.",
	})
	saveFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "workouts",
		Subsystem: "persistence",
		Name:      "save_failures_total",
		Help:      "Number of slot writes that failed.",
	})
	restoreFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "workouts",
		Subsystem: "persistence",
		Name:      "restore_failures_total",
		Help:      "Number of restores that fell back to an empty collection.",
	})
	loggedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workouts",
		Subsystem: "activities",
		Name:      "logged_total",
		Help:      "Number of activities created, by kind.",
	}, []string{"kind"})
	rejectedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "workouts",
		Subsystem: "activities",
		Name:      "rejected_total",
		Help:      "Number of creation requests rejected by validation.",
	})

	now = time.Now
)

func init() {
	prometheus.MustRegister(lastSavedGauge, storedActivitiesGauge, payloadBytesGauge, saveFailures, restoreFailures, loggedCounter, rejectedCounter)
}

// RecordSave updates the persistence watermark gauges.
func RecordSave(count, bytes int) {
	lastSavedGauge.Set(float64(now().Unix()))
	storedActivitiesGauge.Set(float64(count))
	payloadBytesGauge.Set(float64(bytes))
}

// RecordSaveFailure counts a failed slot write.
func RecordSaveFailure() {
	saveFailures.Inc()
}

// RecordRestoreFailure counts a restore that degraded to an empty collection.
func RecordRestoreFailure() {
	restoreFailures.Inc()
}

// RecordActivityLogged counts a created activity.
func RecordActivityLogged(kind string) {
	loggedCounter.WithLabelValues(kind).Inc()
}

// RecordActivityRejected counts a creation request that failed validation.
func RecordActivityRejected() {
	rejectedCounter.Inc()
}
