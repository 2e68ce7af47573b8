package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tokenstd/revert-registry/internal/domain"
	"github.com/tokenstd/revert-registry/internal/grammar"
	"github.com/tokenstd/revert-registry/internal/queue"
)

// Metrics groups all Prometheus instruments used across the application.
// Registered once at startup via New(); passed by pointer wherever needed.
type Metrics struct {
	ChecksTotal        *prometheus.CounterVec
	ViolationsTotal    *prometheus.CounterVec
	RegistrationsTotal *prometheus.CounterVec
	LintJobsTotal      *prometheus.CounterVec
	LintJobSeconds     *prometheus.HistogramVec
	SelectorCacheHits  prometheus.Counter
	SelectorCacheMiss  prometheus.Counter
	Nonconformant      prometheus.Gauge
}

// New registers all instruments with the given Prometheus registerer and
// returns the populated Metrics struct.
// Using a custom registry (instead of prometheus.DefaultRegisterer) keeps
// tests isolated and avoids global state.
//
// Queue depths are exposed as GaugeFuncs reading the live channel lengths at
// scrape time, so no code path has to remember to update them.
func New(reg prometheus.Registerer, q *queue.PriorityQueue) *Metrics {
	m := &Metrics{
		ChecksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "revert_checks_total",
			Help: "Total number of declarations checked, by verdict (ok or violation).",
		}, []string{"verdict"}),

		ViolationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "revert_violations_total",
			Help: "Total number of violations reported, by rule.",
		}, []string{"rule"}),

		RegistrationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "revert_registrations_total",
			Help: "Total number of declarations registered, by domain.",
		}, []string{"domain"}),

		LintJobsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lint_jobs_total",
			Help: "Total number of lint jobs finished, by terminal status.",
		}, []string{"status"}),

		LintJobSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lint_job_processing_seconds",
			Help:    "Lint job latency from dequeue to completion.",
			Buckets: prometheus.DefBuckets,
		}, []string{"priority"}),

		SelectorCacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "selector_cache_hits_total",
			Help: "Selector lookups answered from the in-process LRU cache.",
		}),
		SelectorCacheMiss: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "selector_cache_misses_total",
			Help: "Selector lookups that had to hit the database.",
		}),

		Nonconformant: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "nonconformant_registrations",
			Help: "Registered declarations whose latest audit found violations.",
		}),
	}

	depthHigh := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "queue_depth_high",
		Help: "Current number of jobs waiting in the high-priority queue.",
	}, func() float64 { h, _, _ := q.Depths(); return float64(h) })
	depthNormal := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "queue_depth_normal",
		Help: "Current number of jobs waiting in the normal-priority queue.",
	}, func() float64 { _, n, _ := q.Depths(); return float64(n) })
	depthLow := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "queue_depth_low",
		Help: "Current number of jobs waiting in the low-priority queue.",
	}, func() float64 { _, _, l := q.Depths(); return float64(l) })

	reg.MustRegister(
		m.ChecksTotal,
		m.ViolationsTotal,
		m.RegistrationsTotal,
		m.LintJobsTotal,
		m.LintJobSeconds,
		m.SelectorCacheHits,
		m.SelectorCacheMiss,
		m.Nonconformant,
		depthHigh,
		depthNormal,
		depthLow,
	)

	return m
}

// ObserveCheck records the verdict for one checked declaration and counts its
// violations by rule. Used for both synchronous checks and lint-job findings.
func (m *Metrics) ObserveCheck(violations []grammar.Violation) {
	if len(violations) == 0 {
		m.ChecksTotal.WithLabelValues("ok").Inc()
		return
	}
	m.ChecksTotal.WithLabelValues("violation").Inc()
	for _, v := range violations {
		m.ViolationsTotal.WithLabelValues(string(v.Rule)).Inc()
	}
}

// WorkerHooks returns the metric callback function expected by worker.MetricHooks.
// Centralises the prometheus observation calls so worker.go stays import-free.
func (m *Metrics) WorkerHooks() (
	onFinished func(status domain.JobStatus, priority domain.JobPriority, latency time.Duration),
) {
	onFinished = func(status domain.JobStatus, priority domain.JobPriority, latency time.Duration) {
		m.LintJobsTotal.WithLabelValues(string(status)).Inc()
		m.LintJobSeconds.WithLabelValues(string(priority)).Observe(latency.Seconds())
	}
	return
}
