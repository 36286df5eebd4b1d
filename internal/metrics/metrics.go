package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	SweepCount         prometheus.Counter
	AccountsProcessed  prometheus.Counter
	AccountsBusy       prometheus.Counter
	AccountFailures    prometheus.Counter
	ReviewsIngested    prometheus.Counter
	DuplicatesSkipped  prometheus.Counter
	FallbackResponses  prometheus.Counter
	CandidateFailures  prometheus.Counter
	PlatformFailures   prometheus.Counter
	SweepDuration      prometheus.Histogram
	AccountsInProgress prometheus.Gauge
}

// NewMetrics creates Prometheus metrics registered with reg. A nil reg uses
// the default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		SweepCount: factory.NewCounter(prometheus.CounterOpts{
			Name: "review_responder_sweep_count",
			Help: "Total number of automation sweeps started",
		}),
		AccountsProcessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "review_responder_accounts_processed",
			Help: "Total number of account pipelines completed",
		}),
		AccountsBusy: factory.NewCounter(prometheus.CounterOpts{
			Name: "review_responder_accounts_busy",
			Help: "Total number of account runs skipped or rejected because the account was already processing",
		}),
		AccountFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "review_responder_account_failures",
			Help: "Total number of account pipelines that ended in error",
		}),
		ReviewsIngested: factory.NewCounter(prometheus.CounterOpts{
			Name: "review_responder_reviews_ingested",
			Help: "Total number of new reviews stored with an automatic response",
		}),
		DuplicatesSkipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "review_responder_duplicates_skipped",
			Help: "Total number of candidate reviews skipped because they were already stored",
		}),
		FallbackResponses: factory.NewCounter(prometheus.CounterOpts{
			Name: "review_responder_fallback_responses",
			Help: "Total number of responses served from canned fallback text",
		}),
		CandidateFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "review_responder_candidate_failures",
			Help: "Total number of candidate reviews that could not be checked or stored",
		}),
		PlatformFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "review_responder_platform_failures",
			Help: "Total number of platform fetches that failed",
		}),
		SweepDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "review_responder_sweep_duration_seconds",
			Help:    "Time spent on a full automation sweep",
			Buckets: prometheus.DefBuckets,
		}),
		AccountsInProgress: factory.NewGauge(prometheus.GaugeOpts{
			Name: "review_responder_accounts_in_progress",
			Help: "Number of account pipelines currently running",
		}),
	}
}
