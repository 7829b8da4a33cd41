package routing

import (
	"context"
	"sync"
	"testing"

	"github.com/freightplan/freightplan/core/events"
	"github.com/freightplan/freightplan/core/metrics"
	"github.com/freightplan/freightplan/core/milp"
	"github.com/freightplan/freightplan/core/model"
	"github.com/freightplan/freightplan/internal/eventbus"
)

type captureSink struct {
	mu     sync.Mutex
	solves []metrics.SolveRecord
	trucks []model.Truck
}

func (s *captureSink) RecordSolve(rec metrics.SolveRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.solves = append(s.solves, rec)
	return nil
}

func (s *captureSink) RecordTrucks(_ string, trucks []model.Truck) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trucks = append(s.trucks, trucks...)
	return nil
}

func TestPlannerFallsBackWhenEngineFails(t *testing.T) {
	eng := &stubEngine{available: true, err: milp.ErrNoSolution}
	bus := eventbus.New()
	defer bus.Close()
	ch, cancel := bus.Subscribe()
	defer cancel()

	sink := &captureSink{}
	p := NewPlanner(eng, nil, sink, bus, 1)
	plan := p.PlanGroups(context.Background(), []model.ConsolidationGroup{twoOrderGroup()})

	if len(plan.Skipped) != 0 {
		t.Fatalf("nothing should be skipped: %v", plan.Skipped)
	}
	if len(plan.Trucks) == 0 {
		t.Fatalf("fallback must still produce trucks")
	}
	for _, tr := range plan.Trucks {
		if tr.Solver != model.SolverHeuristic || tr.SolveInfo != model.SolveInfoHeuristic {
			t.Fatalf("fallback provenance wrong: %+v", tr)
		}
	}

	var names []string
	for i := 0; i < 3; i++ {
		e := <-ch
		names = append(names, e.Name())
		if f, ok := e.(events.ExactFailure); ok {
			if f.GroupID != "GRP-010" || f.Err == nil {
				t.Fatalf("failure event missing payload: %+v", f)
			}
		}
	}
	want := []string{"exact_attempt", "exact_failure", "heuristic_fallback"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("event %d: expected %s got %s", i, want[i], names[i])
		}
	}

	if len(sink.solves) != 1 || sink.solves[0].Outcome() != "heuristic" {
		t.Fatalf("unexpected solve records %+v", sink.solves)
	}
}

func TestPlannerExactSuccessProvenance(t *testing.T) {
	// One-order group: the variable layout is small enough to hand-craft the
	// engine's answer (x 0->1, return arc, y, z, then u for both nodes).
	g := testGroup("GRP-020", []float64{9000}, []model.Point{dallas})
	eng := &stubEngine{available: true, sol: &milp.Solution{
		X:       []float64{1, 1, 1, 1, 0, 0},
		Optimal: true,
	}}
	p := NewPlanner(eng, nil, nil, nil, 1)
	plan := p.PlanGroups(context.Background(), []model.ConsolidationGroup{g})

	if len(plan.Trucks) != 1 {
		t.Fatalf("expected 1 truck got %d", len(plan.Trucks))
	}
	tr := plan.Trucks[0]
	if tr.Solver != model.SolverMILP || tr.SolveInfo != model.SolveInfoOptimal {
		t.Fatalf("wrong provenance %+v", tr)
	}
	if tr.GroupID != g.ID || tr.Region != g.Region {
		t.Fatalf("missing group annotation %+v", tr)
	}
	if !tr.WindowStart.Equal(g.WindowStart) || !tr.WindowEnd.Equal(g.WindowEnd) {
		t.Fatalf("missing window annotation %+v", tr)
	}
}

func TestPlannerNilEngineGoesHeuristic(t *testing.T) {
	p := NewPlanner(nil, nil, nil, nil, 1)
	plan := p.PlanGroups(context.Background(), []model.ConsolidationGroup{twoOrderGroup()})
	if len(plan.Trucks) == 0 || plan.Trucks[0].Solver != model.SolverHeuristic {
		t.Fatalf("nil engine should route heuristically")
	}
}

func TestPlannerConservation(t *testing.T) {
	groups := []model.ConsolidationGroup{
		testGroup("GRP-030", []float64{5000, 6000, 4000}, []model.Point{dallas, houston, sanAntonio}),
		testGroup("GRP-031", []float64{20000, 20000, 20000}, []model.Point{dallas, houston, sanAntonio}),
	}
	p := NewPlanner(nil, nil, nil, nil, 4)
	plan := p.PlanGroups(context.Background(), groups)

	seen := make(map[string]map[string]int)
	for _, tr := range plan.Trucks {
		if seen[tr.GroupID] == nil {
			seen[tr.GroupID] = make(map[string]int)
		}
		for _, o := range tr.Stops {
			seen[tr.GroupID][o.ID]++
		}
	}
	for _, g := range groups {
		for _, o := range g.Orders {
			if seen[g.ID][o.ID] != 1 {
				t.Fatalf("order %s in group %s appears %d times", o.ID, g.ID, seen[g.ID][o.ID])
			}
		}
		if len(seen[g.ID]) != len(g.Orders) {
			t.Fatalf("group %s has extra stops", g.ID)
		}
	}
}

func TestPlannerOutputSortedByGroup(t *testing.T) {
	groups := []model.ConsolidationGroup{
		testGroup("GRP-042", []float64{1000}, []model.Point{dallas}),
		testGroup("GRP-040", []float64{1000}, []model.Point{houston}),
		testGroup("GRP-041", []float64{1000}, []model.Point{sanAntonio}),
	}
	p := NewPlanner(nil, nil, nil, nil, 3)
	for i := 0; i < 5; i++ {
		plan := p.PlanGroups(context.Background(), groups)
		if len(plan.Trucks) != 3 {
			t.Fatalf("expected 3 trucks got %d", len(plan.Trucks))
		}
		for j := 1; j < len(plan.Trucks); j++ {
			if plan.Trucks[j-1].GroupID > plan.Trucks[j].GroupID {
				t.Fatalf("output not sorted: %s before %s", plan.Trucks[j-1].GroupID, plan.Trucks[j].GroupID)
			}
		}
	}
}

func TestPlannerSkipsEmptyGroup(t *testing.T) {
	bus := eventbus.New()
	defer bus.Close()
	ch, cancel := bus.Subscribe()
	defer cancel()

	sink := &captureSink{}
	p := NewPlanner(nil, nil, sink, bus, 1)
	plan := p.PlanGroups(context.Background(), []model.ConsolidationGroup{{ID: "GRP-050"}})
	if len(plan.Trucks) != 0 {
		t.Fatalf("empty group should produce no trucks")
	}
	if len(plan.Skipped) != 1 || plan.Skipped[0] != "GRP-050" {
		t.Fatalf("expected GRP-050 skipped, got %v", plan.Skipped)
	}
	if len(sink.solves) != 1 || sink.solves[0].Outcome() != "skipped" {
		t.Fatalf("expected skipped record, got %+v", sink.solves)
	}

	skip, ok := (<-ch).(events.GroupSkipped)
	if !ok {
		t.Fatalf("expected a GroupSkipped event")
	}
	if skip.GroupID != "GRP-050" || skip.Err == nil {
		t.Fatalf("skip event missing payload: %+v", skip)
	}
}
