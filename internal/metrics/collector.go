package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Collector metrics
	EventsCollected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saf_events_collected_total",
			Help: "Events emitted by collectors",
		},
		[]string{"pipeline"},
	)
	LinesMismatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saf_lines_mismatched_total",
			Help: "Raw lines dropped because they did not match the log format",
		},
		[]string{"collector"},
	)

	// Processor metrics
	EventsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saf_events_dropped_total",
			Help: "Events a processor returned no output for",
		},
		[]string{"pipeline"},
	)
	ProcessErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saf_process_errors_total",
			Help: "Events a processor failed on",
		},
		[]string{"pipeline"},
	)

	// Forwarder metrics
	EventsForwarded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saf_events_forwarded_total",
			Help: "Events delivered by forwarders",
		},
		[]string{"pipeline"},
	)
	EventsUndelivered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saf_events_undelivered_total",
			Help: "Events a forwarder failed to deliver after retries",
		},
		[]string{"pipeline"},
	)
	ForwardRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saf_forward_retries_total",
			Help: "Forward write attempts that were retried",
		},
		[]string{"forwarder"},
	)

	// Engine metrics
	PipelinesRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "saf_pipelines_running",
			Help: "Number of pipelines currently running",
		},
	)
	StagePanics = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saf_stage_panics_total",
			Help: "Panics recovered inside pipeline stages",
		},
		[]string{"pipeline", "stage"},
	)
)
