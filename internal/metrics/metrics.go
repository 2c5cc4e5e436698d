package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SendsTotal counts delivery attempts by outcome
	SendsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "broadcast_sends_total",
			Help: "Delivery attempts by outcome",
		},
		[]string{"result"}, // success, expected_failure, unexpected_failure
	)

	// TickDuration tracks the wall-clock duration of engine ticks
	TickDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "broadcast_tick_duration_seconds",
			Help:    "Duration of broadcast engine ticks in seconds",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 10, 30, 60, 120},
		},
	)

	// CampaignsCompleted counts campaigns that reached the sent state
	CampaignsCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "broadcast_campaigns_completed_total",
			Help: "Campaigns that reached their terminal sent state",
		},
	)
)

// RecordSend records the outcome of one delivery attempt
func RecordSend(result string) {
	SendsTotal.WithLabelValues(result).Inc()
}

// RecordTick records the duration of one engine tick
func RecordTick(seconds float64) {
	TickDuration.Observe(seconds)
}
