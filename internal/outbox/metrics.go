package outbox

import "github.com/prometheus/client_golang/prometheus"

var (
	deliveredCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workouts",
		Subsystem: "outbox",
		Name:      "events_delivered_total",
		Help:      "Number of events successfully published to Kafka.",
	}, []string{"event_type"})

	failedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workouts",
		Subsystem: "outbox",
		Name:      "events_failed_total",
		Help:      "Number of events that could not be encoded or published.",
	}, []string{"event_type"})

	publishDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "workouts",
		Subsystem: "outbox",
		Name:      "publish_duration_seconds",
		Help:      "Time spent writing a single event to Kafka.",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
	})
)

func init() {
	prometheus.MustRegister(deliveredCounter, failedCounter, publishDuration)
}
