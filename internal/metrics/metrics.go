// Package metrics defines the Prometheus instrumentation for the coordinator.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DevicesRegisteredTotal counts successful device registrations.
	DevicesRegisteredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "devices_registered_total",
			Help: "Total devices registered",
		},
	)

	// SessionsStartedTotal counts successfully started mirroring sessions.
	SessionsStartedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sessions_started_total",
			Help: "Total mirroring sessions started",
		},
	)

	// SessionsStoppedTotal counts stop calls that removed an active session.
	SessionsStoppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sessions_stopped_total",
			Help: "Total mirroring sessions stopped",
		},
	)

	// SessionsDeniedTotal counts denied admissions by reason
	// (unauthorized_device, already_active).
	SessionsDeniedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sessions_denied_total",
			Help: "Total denied session admissions by reason",
		},
		[]string{"reason"},
	)

	// AnalysisRequestsTotal counts analysis gateway calls by outcome
	// (ok, fallback, error).
	AnalysisRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analysis_requests_total",
			Help: "Total analysis gateway requests by outcome",
		},
		[]string{"outcome"},
	)

	// SessionEventSubscribers tracks currently connected change-feed clients.
	SessionEventSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "session_event_subscribers",
			Help: "Currently connected session change-feed subscribers",
		},
	)
)
