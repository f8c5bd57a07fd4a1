package consumer

import "github.com/prometheus/client_golang/prometheus"

// Outcomes recorded per consumed record.
const (
	outcomeHandled      = "handled"
	outcomeHandlerError = "handler_error"
	outcomeMalformed    = "malformed"
)

var (
	recordsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workouts",
		Subsystem: "consumer",
		Name:      "records_total",
		Help:      "Consumed workout event records by outcome.",
	}, []string{"topic", "event_type", "outcome"})

	newestRecordSeconds = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "workouts",
		Subsystem: "consumer",
		Name:      "newest_record_timestamp_seconds",
		Help:      "Produce time of the newest handled record per topic.",
	}, []string{"topic"})
)

func init() {
	prometheus.MustRegister(recordsTotal, newestRecordSeconds)
}

func recordProcessed(msg Message) {
	recordsTotal.WithLabelValues(msg.Topic, msg.EventType, outcomeHandled).Inc()
	if !msg.Timestamp.IsZero() {
		newestRecordSeconds.WithLabelValues(msg.Topic).Set(float64(msg.Timestamp.Unix()))
	}
}

func recordHandlerError(msg Message) {
	recordsTotal.WithLabelValues(msg.Topic, msg.EventType, outcomeHandlerError).Inc()
}

// Malformed records carry no trustworthy event type.
func recordDecodeError(topic string) {
	recordsTotal.WithLabelValues(topic, "", outcomeMalformed).Inc()
}
