package routing

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/freightplan/freightplan/core/events"
	"github.com/freightplan/freightplan/core/logger"
	"github.com/freightplan/freightplan/core/metrics"
	"github.com/freightplan/freightplan/core/milp"
	"github.com/freightplan/freightplan/core/model"
	"github.com/freightplan/freightplan/internal/eventbus"
)

// Planner routes consolidation groups: it tries the exact engine per group
// and falls back to the heuristic when the engine is absent or finds nothing
// within budget. A group is either fully assigned or skipped with a warning,
// never partially routed.
type Planner struct {
	exact     ExactSolver
	heuristic HeuristicSolver
	log       logger.Logger
	sink      metrics.Sink
	bus       *eventbus.Bus
	workers   int
}

// NewPlanner wires a planner. engine, sink and bus may be nil; workers <= 1
// means sequential planning.
func NewPlanner(engine milp.Engine, log logger.Logger, sink metrics.Sink, bus *eventbus.Bus, workers int) *Planner {
	if log == nil {
		log = logger.Nop{}
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	if workers < 1 {
		workers = 1
	}
	return &Planner{
		exact:   ExactSolver{Engine: engine},
		log:     log,
		sink:    sink,
		bus:     bus,
		workers: workers,
	}
}

// Plan is the result of routing one batch of consolidation groups.
type Plan struct {
	ID      string        `json:"plan_id"`
	Trucks  []model.Truck `json:"trucks"`
	Skipped []string      `json:"skipped_groups,omitempty"`
}

// PlanGroups routes every group. Groups are independent, so they may be
// planned concurrently; the output is sorted by group id regardless of
// completion order.
func (p *Planner) PlanGroups(ctx context.Context, groups []model.ConsolidationGroup) Plan {
	plan := Plan{ID: uuid.NewString()}

	exactAvailable := p.exact.Engine != nil && p.exact.Engine.Available()
	if !exactAvailable {
		// Once per run, not per group.
		p.log.Warnf("exact engine unavailable, routing all groups heuristically")
	}

	type outcome struct {
		trucks  []model.Truck
		skipped string
	}
	results := make([]outcome, len(groups))

	var wg sync.WaitGroup
	sem := make(chan struct{}, p.workers)
	for i := range groups {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			trucks, ok := p.planOne(ctx, plan.ID, groups[i], exactAvailable)
			if !ok {
				results[i] = outcome{skipped: groups[i].ID}
				return
			}
			results[i] = outcome{trucks: trucks}
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		if r.skipped != "" {
			plan.Skipped = append(plan.Skipped, r.skipped)
			continue
		}
		plan.Trucks = append(plan.Trucks, r.trucks...)
	}
	sort.SliceStable(plan.Trucks, func(a, b int) bool {
		if plan.Trucks[a].GroupID != plan.Trucks[b].GroupID {
			return plan.Trucks[a].GroupID < plan.Trucks[b].GroupID
		}
		return plan.Trucks[a].ID < plan.Trucks[b].ID
	})
	sort.Strings(plan.Skipped)

	if err := p.sink.RecordTrucks(plan.ID, plan.Trucks); err != nil {
		p.log.Errorf("record trucks: %v", err)
	}
	return plan
}

// Skip reasons carried on GroupSkipped events.
var (
	errNoOrders     = errors.New("group has no orders")
	errNoAssignment = errors.New("no solver produced an assignment")
)

// planOne routes a single group through the exact-then-heuristic policy.
func (p *Planner) planOne(ctx context.Context, planID string, group model.ConsolidationGroup, exactAvailable bool) ([]model.Truck, bool) {
	if len(group.Orders) == 0 {
		p.publish(events.GroupSkipped{GroupID: group.ID, Err: errNoOrders})
		p.log.Warnf("group %s skipped: %v", group.ID, errNoOrders)
		p.record(metrics.SolveRecord{PlanID: planID, GroupID: group.ID, Region: group.Region, Skipped: true})
		return nil, false
	}

	start := time.Now()
	if exactAvailable {
		p.publish(events.ExactAttempt{GroupID: group.ID, Orders: len(group.Orders)})
		trucks, err := p.exact.Solve(ctx, group)
		if err == nil {
			p.annotate(trucks, group)
			p.log.Debugw("exact solve succeeded", map[string]any{
				"group": group.ID, "trucks": len(trucks), "info": solveInfo(trucks),
			})
			p.record(solveRecord(planID, group, trucks, time.Since(start)))
			return trucks, true
		}
		p.publish(events.ExactFailure{GroupID: group.ID, Err: err})
		p.log.Warnf("exact solve for %s fell back: %v", group.ID, err)
	}

	p.publish(events.HeuristicFallback{GroupID: group.ID})
	trucks := p.heuristic.Solve(group)
	if len(trucks) == 0 {
		p.publish(events.GroupSkipped{GroupID: group.ID, Err: errNoAssignment})
		p.log.Warnf("group %s skipped: %v", group.ID, errNoAssignment)
		p.record(metrics.SolveRecord{PlanID: planID, GroupID: group.ID, Region: group.Region, Skipped: true})
		return nil, false
	}
	p.annotate(trucks, group)
	p.record(solveRecord(planID, group, trucks, time.Since(start)))
	return trucks, true
}

// annotate stamps group traceability fields onto every truck.
func (p *Planner) annotate(trucks []model.Truck, group model.ConsolidationGroup) {
	for i := range trucks {
		trucks[i].GroupID = group.ID
		trucks[i].Region = group.Region
		trucks[i].WindowStart = group.WindowStart
		trucks[i].WindowEnd = group.WindowEnd
	}
}

func (p *Planner) publish(e events.Event) {
	if p.bus != nil {
		p.bus.Publish(e)
	}
}

func (p *Planner) record(rec metrics.SolveRecord) {
	if err := p.sink.RecordSolve(rec); err != nil {
		p.log.Errorf("record solve for %s: %v", rec.GroupID, err)
	}
}

func solveRecord(planID string, group model.ConsolidationGroup, trucks []model.Truck, d time.Duration) metrics.SolveRecord {
	rec := metrics.SolveRecord{
		PlanID:   planID,
		GroupID:  group.ID,
		Region:   group.Region,
		Orders:   len(group.Orders),
		Trucks:   len(trucks),
		Duration: d,
	}
	if len(trucks) > 0 {
		rec.Solver = trucks[0].Solver
		rec.SolveInfo = trucks[0].SolveInfo
	}
	return rec
}

func solveInfo(trucks []model.Truck) string {
	if len(trucks) == 0 {
		return ""
	}
	return trucks[0].SolveInfo
}
