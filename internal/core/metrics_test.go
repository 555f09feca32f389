package core

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"relieftrack/internal/infra/store/memory"
)

func TestExpvarMetricsRecorder(t *testing.T) {
	rec := NewExpvarMetricsRecorder("")
	ctx := context.Background()

	rec.Observe(ctx, "submit request", true, 20*time.Millisecond)
	rec.Observe(ctx, "submit request", false, 5*time.Millisecond)
	rec.ObserveConflict(ctx, "submit request")
	rec.Observe(ctx, "", true, time.Millisecond) // ignored

	snap := rec.Snapshot()
	if got := snap.Results["submit request"]["success"]; got != 1 {
		t.Fatalf("expected 1 success, got %d", got)
	}
	if got := snap.Results["submit request"]["error"]; got != 1 {
		t.Fatalf("expected 1 error, got %d", got)
	}
	if got := snap.Conflicts["submit request"]; got != 1 {
		t.Fatalf("expected 1 conflict, got %d", got)
	}
	if got := snap.DurationsMS["submit request"]; got != 25 {
		t.Fatalf("expected 25ms total, got %v", got)
	}
	if rec.Name() == "" {
		t.Fatalf("recorder must self-assign an export name")
	}
}

func TestPrometheusMetricsRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewPrometheusMetricsRecorder(reg)
	if err != nil {
		t.Fatalf("register collectors: %v", err)
	}
	ctx := context.Background()

	rec.Observe(ctx, "status update", true, 10*time.Millisecond)
	rec.Observe(ctx, "status update", true, 10*time.Millisecond)
	rec.Observe(ctx, "status update", false, 10*time.Millisecond)
	rec.ObserveConflict(ctx, "status update")

	if got := testutil.ToFloat64(rec.results.WithLabelValues("status update", "success")); got != 2 {
		t.Fatalf("expected 2 successes, got %v", got)
	}
	if got := testutil.ToFloat64(rec.results.WithLabelValues("status update", "error")); got != 1 {
		t.Fatalf("expected 1 error, got %v", got)
	}
	if got := testutil.ToFloat64(rec.conflicts.WithLabelValues("status update")); got != 1 {
		t.Fatalf("expected 1 conflict, got %v", got)
	}
}

func TestCoordinatorRecordsMetrics(t *testing.T) {
	store := &conflictingStore{Store: memory.NewStore(), remaining: 1}
	rec := NewExpvarMetricsRecorder("")
	coord := NewCoordinator(store, NewDefaultEngine(), WithMetrics(rec))

	if _, _, err := coord.Apply(context.Background(), AppendRequest{Record: pendingRecord("r9", "E1")}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	snap := rec.Snapshot()
	if snap.Results["submit request"]["success"] != 1 {
		t.Fatalf("missing success observation: %+v", snap.Results)
	}
	if snap.Conflicts["submit request"] != 1 {
		t.Fatalf("missing conflict observation: %+v", snap.Conflicts)
	}
}
