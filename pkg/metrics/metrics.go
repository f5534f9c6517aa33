package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Duplicate detection
	DuplicateChecks      prometheus.Counter
	DuplicatesFound      *prometheus.CounterVec
	DuplicateOverrides   prometheus.Counter
	UnparsableTimestamps prometheus.Counter
	HistoryErrors        prometheus.Counter

	// Results
	ResultsClassified *prometheus.CounterVec

	// Orders
	OrdersSubmitted *prometheus.CounterVec
	DraftOutcomes   *prometheus.CounterVec

	// Outbox related metrics
	OutboxEventsProcessed   prometheus.Counter
	OutboxEventsFailed      prometheus.Counter
	OutboxProcessingLatency prometheus.Histogram
	OutboxQueueSize         prometheus.Gauge
	OutboxRetries           *prometheus.CounterVec

	// Broker metrics
	BrokerOperations *prometheus.CounterVec
	BrokerLatency    *prometheus.HistogramVec
}

// NewMetrics creates and registers all application metrics on reg. A nil
// reg registers on the default registry.
func NewMetrics(namespace, subsystem string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		DuplicateChecks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "duplicate_checks_total",
			Help:      "Total number of duplicate-test checks run",
		}),
		DuplicatesFound: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "duplicate_tests_found_total",
			Help:      "Candidate tests flagged as duplicates, by window",
		}, []string{"window"}),
		DuplicateOverrides: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "duplicate_overrides_total",
			Help:      "Submissions that proceeded with a justification despite duplicates",
		}),
		UnparsableTimestamps: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "history_unparsable_timestamps_total",
			Help:      "History records skipped because their timestamp could not be parsed",
		}),
		HistoryErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "history_lookup_errors_total",
			Help:      "History lookups that failed and were treated as empty",
		}),
		ResultsClassified: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "results_classified_total",
			Help:      "Result values classified against their reference range, by flag",
		}, []string{"flag"}),
		OrdersSubmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "orders_submitted_total",
			Help:      "Orders appended to the order store, by kind",
		}, []string{"kind"}),
		DraftOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "draft_outcomes_total",
			Help:      "Terminal draft states reached",
		}, []string{"state"}),

		// Outbox metrics
		OutboxEventsProcessed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "outbox_events_processed_total",
			Help:      "Total number of successfully processed outbox events",
		}),
		OutboxEventsFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "outbox_events_failed_total",
			Help:      "Total number of failed outbox events",
		}),
		OutboxProcessingLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "outbox_processing_duration_seconds",
			Help:      "Time spent processing outbox events",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),
		OutboxQueueSize: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "outbox_queue_size",
			Help:      "Current number of events in the outbox queue",
		}),
		OutboxRetries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "outbox_retry_attempts_total",
			Help:      "Total number of retry attempts for outbox events",
		}, []string{"event_type"}),

		// Broker metrics
		BrokerOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "broker_operations_total",
			Help:      "Total number of broker operations",
		}, []string{"operation", "status"}),
		BrokerLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "broker_operation_duration_seconds",
			Help:      "Duration of broker operations",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5},
		}, []string{"operation"}),
	}
}

// NewNop returns metrics registered on a throwaway registry, for tests and
// offline commands.
func NewNop() *Metrics {
	return NewMetrics("edtracker", "", prometheus.NewRegistry())
}
