package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	coremetrics "github.com/freightplan/freightplan/core/metrics"
	"github.com/freightplan/freightplan/core/model"
)

func TestPromSinkRecordSolve(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}

	rec := coremetrics.SolveRecord{
		GroupID:   "GRP-001",
		Solver:    model.SolverMILP,
		SolveInfo: model.SolveInfoOptimal,
		Orders:    3,
		Trucks:    1,
		Duration:  250 * time.Millisecond,
	}
	if err := sink.RecordSolve(rec); err != nil {
		t.Fatalf("record: %v", err)
	}

	got := testutil.ToFloat64(sink.solves.WithLabelValues(model.SolverMILP, "optimal"))
	if got != 1 {
		t.Fatalf("expected 1 optimal solve, got %v", got)
	}
}

func TestPromSinkRecordTrucks(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}
	trucks := []model.Truck{{ID: "GRP-001-T1"}, {ID: "GRP-001-T2"}}
	if err := sink.RecordTrucks("plan", trucks); err != nil {
		t.Fatalf("record: %v", err)
	}
	if got := testutil.ToFloat64(sink.trucks); got != 2 {
		t.Fatalf("expected gauge 2 got %v", got)
	}
}

type failingSink struct{}

func (failingSink) RecordSolve(coremetrics.SolveRecord) error { return errors.New("boom") }
func (failingSink) RecordTrucks(string, []model.Truck) error  { return errors.New("boom") }

func TestMultiSinkCollectsErrors(t *testing.T) {
	reg := prometheus.NewRegistry()
	prom, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}
	multi := NewMultiSink(prom, failingSink{})
	if err := multi.RecordSolve(coremetrics.SolveRecord{Solver: model.SolverHeuristic}); err == nil {
		t.Fatalf("expected error from failing sink")
	}
	// The healthy sink still recorded.
	if got := testutil.ToFloat64(prom.solves.WithLabelValues(model.SolverHeuristic, "heuristic")); got != 1 {
		t.Fatalf("prom sink should have recorded, got %v", got)
	}
}
