package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WebhookEventsTotal counts acknowledged webhook deliveries.
	// Labels: type (event type or "unhandled"), status (HTTP status code)
	WebhookEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meetingsync_webhook_events_total",
			Help: "Webhook deliveries by event type and response status",
		},
		[]string{"type", "status"},
	)

	// TransitionsTotal counts conditional status updates.
	// Labels: to (target status), outcome (applied/skipped)
	TransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meetingsync_transitions_total",
			Help: "Meeting status transitions by target status and outcome",
		},
		[]string{"to", "outcome"},
	)

	// AgentLaunchTotal counts agent session launch attempts.
	// Labels: result (success/retry/failed/dropped/released)
	AgentLaunchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meetingsync_agent_launch_total",
			Help: "Agent session launch attempts by result",
		},
		[]string{"result"},
	)

	// UpstreamFailuresTotal counts provider and queue calls that failed after the local change committed.
	// Labels: operation (end_call/connect_agent/enqueue)
	UpstreamFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meetingsync_upstream_failures_total",
			Help: "Failed calls to the video provider or job queue",
		},
		[]string{"operation"},
	)

	WebhookDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "meetingsync_webhook_duration_seconds",
			Help:    "Webhook handling latency in seconds by event type",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"type"},
	)
)

func RecordTransition(to string, applied bool) {
	outcome := "applied"
	if !applied {
		outcome = "skipped"
	}
	TransitionsTotal.WithLabelValues(to, outcome).Inc()
}

func RecordAgentLaunch(result string) {
	AgentLaunchTotal.WithLabelValues(result).Inc()
}

func RecordUpstreamFailure(operation string) {
	UpstreamFailuresTotal.WithLabelValues(operation).Inc()
}
