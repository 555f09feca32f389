package core

import (
	"context"
	"expvar"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsRecorder receives sync coordinator outcomes. Implementations must be
// safe for concurrent use.
type MetricsRecorder interface {
	// Observe records one completed mutation attempt cycle.
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
	// ObserveConflict records one version conflict encountered during the cycle.
	ObserveConflict(ctx context.Context, operation string)
}

// NopMetrics discards all observations.
type NopMetrics struct{}

// Observe implements MetricsRecorder.
func (NopMetrics) Observe(context.Context, string, bool, time.Duration) {}

// ObserveConflict implements MetricsRecorder.
func (NopMetrics) ObserveConflict(context.Context, string) {}

var expvarSeq uint64

// ExpvarMetricsRecorder publishes aggregate timing and result counters via
// expvar, for deployments that prefer process-local metrics without external
// dependencies. Totals are kept in milliseconds per operation alongside
// success/error and conflict counters.
type ExpvarMetricsRecorder struct {
	name      string
	mu        sync.Mutex
	durations map[string]float64
	results   map[string]map[string]int64
	conflicts map[string]int64
}

// ExpvarMetricsSnapshot captures a read-only view of the recorded metrics.
type ExpvarMetricsSnapshot struct {
	DurationsMS map[string]float64          `json:"durations_ms_total"`
	Results     map[string]map[string]int64 `json:"results_total"`
	Conflicts   map[string]int64            `json:"version_conflicts_total"`
	RecordedAt  time.Time                   `json:"recorded_at"`
}

// NewExpvarMetricsRecorder constructs an expvar-backed recorder and publishes
// it under the supplied name. When name is empty, a unique identifier is
// generated.
func NewExpvarMetricsRecorder(name string) *ExpvarMetricsRecorder {
	if name == "" {
		id := atomic.AddUint64(&expvarSeq, 1)
		name = fmt.Sprintf("relieftrack_sync_metrics_%d", id)
	}
	rec := &ExpvarMetricsRecorder{
		name:      name,
		durations: make(map[string]float64),
		results:   make(map[string]map[string]int64),
		conflicts: make(map[string]int64),
	}
	expvar.Publish(name, expvar.Func(func() any {
		return rec.Snapshot()
	}))
	return rec
}

// Name returns the expvar export name associated with the recorder.
func (r *ExpvarMetricsRecorder) Name() string { return r.name }

// Snapshot returns an immutable copy of the aggregated metrics.
func (r *ExpvarMetricsRecorder) Snapshot() ExpvarMetricsSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	durations := make(map[string]float64, len(r.durations))
	for op, total := range r.durations {
		durations[op] = total
	}
	results := make(map[string]map[string]int64, len(r.results))
	for op, statusCounts := range r.results {
		cpy := make(map[string]int64, len(statusCounts))
		for status, count := range statusCounts {
			cpy[status] = count
		}
		results[op] = cpy
	}
	conflicts := make(map[string]int64, len(r.conflicts))
	for op, count := range r.conflicts {
		conflicts[op] = count
	}
	return ExpvarMetricsSnapshot{
		DurationsMS: durations,
		Results:     results,
		Conflicts:   conflicts,
		RecordedAt:  time.Now().UTC(),
	}
}

// Observe records a mutation outcome.
func (r *ExpvarMetricsRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	ms := float64(duration) / float64(time.Millisecond)
	status := "error"
	if success {
		status = "success"
	}
	r.mu.Lock()
	r.durations[operation] += ms
	if _, ok := r.results[operation]; !ok {
		r.results[operation] = make(map[string]int64, 2)
	}
	r.results[operation][status]++
	r.mu.Unlock()
}

// ObserveConflict records a version conflict.
func (r *ExpvarMetricsRecorder) ObserveConflict(_ context.Context, operation string) {
	if operation == "" {
		return
	}
	r.mu.Lock()
	r.conflicts[operation]++
	r.mu.Unlock()
}

// PrometheusMetricsRecorder exports sync outcomes as Prometheus collectors.
type PrometheusMetricsRecorder struct {
	results   *prometheus.CounterVec
	conflicts *prometheus.CounterVec
	durations *prometheus.HistogramVec
}

// NewPrometheusMetricsRecorder registers the sync collectors on reg.
func NewPrometheusMetricsRecorder(reg prometheus.Registerer) (*PrometheusMetricsRecorder, error) {
	r := &PrometheusMetricsRecorder{
		results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "relieftrack",
			Subsystem: "sync",
			Name:      "mutations_total",
			Help:      "Completed mutation cycles by operation and outcome.",
		}, []string{"operation", "status"}),
		conflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "relieftrack",
			Subsystem: "sync",
			Name:      "version_conflicts_total",
			Help:      "Version conflicts encountered during optimistic retry.",
		}, []string{"operation"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "relieftrack",
			Subsystem: "sync",
			Name:      "mutation_duration_seconds",
			Help:      "Wall time of mutation cycles including retries.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	for _, c := range []prometheus.Collector{r.results, r.conflicts, r.durations} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register sync collector: %w", err)
		}
	}
	return r, nil
}

// Observe implements MetricsRecorder.
func (r *PrometheusMetricsRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	status := "error"
	if success {
		status = "success"
	}
	r.results.WithLabelValues(operation, status).Inc()
	r.durations.WithLabelValues(operation).Observe(duration.Seconds())
}

// ObserveConflict implements MetricsRecorder.
func (r *PrometheusMetricsRecorder) ObserveConflict(_ context.Context, operation string) {
	if operation == "" {
		return
	}
	r.conflicts.WithLabelValues(operation).Inc()
}
