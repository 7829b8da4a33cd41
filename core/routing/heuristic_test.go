package routing

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/freightplan/freightplan/core/model"
)

var (
	depot      = model.Point{Lat: 39.0997, Lng: -94.5786} // Kansas City
	dallas     = model.Point{Lat: 32.7767, Lng: -96.7970}
	houston    = model.Point{Lat: 29.7604, Lng: -95.3698}
	sanAntonio = model.Point{Lat: 29.4241, Lng: -98.4936}
)

func testGroup(id string, weights []float64, drops []model.Point) model.ConsolidationGroup {
	g := model.ConsolidationGroup{
		ID:          id,
		WindowStart: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		WindowEnd:   time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC),
	}
	for i, w := range weights {
		g.Orders = append(g.Orders, model.Order{
			ID:        string(rune('A' + i)),
			Pickup:    depot,
			Drop:      drops[i%len(drops)],
			WeightLbs: w,
			Delivery:  g.WindowStart,
		})
		g.WeightLbs += w
	}
	g.Type = model.ClassifyGroup(g.WeightLbs, len(g.Orders))
	return g
}

func TestHeuristicSingleTruckLTL(t *testing.T) {
	g := testGroup("GRP-001", []float64{5000, 6000, 4000}, []model.Point{dallas, houston, sanAntonio})
	trucks := HeuristicSolver{}.Solve(g)
	if len(trucks) != 1 {
		t.Fatalf("expected 1 truck got %d", len(trucks))
	}
	tr := trucks[0]
	if tr.ID != "GRP-001-T1" {
		t.Fatalf("unexpected truck id %s", tr.ID)
	}
	if tr.Type != model.ShipmentLTL {
		t.Fatalf("expected LTL got %s", tr.Type)
	}
	if tr.StopCount() != 3 || tr.WeightLbs != 15000 {
		t.Fatalf("wrong totals: %d stops %v lbs", tr.StopCount(), tr.WeightLbs)
	}
	// Nearest neighbor from Kansas City reaches Dallas first, then Houston,
	// then San Antonio.
	if tr.Stops[0].Drop != dallas || tr.Stops[1].Drop != houston || tr.Stops[2].Drop != sanAntonio {
		t.Fatalf("unexpected stop sequence %+v", tr.Stops)
	}
	if tr.Distance <= 0 {
		t.Fatalf("distance must be positive")
	}
}

func TestHeuristicSplitsOnCaps(t *testing.T) {
	// 10 orders x 5000 lb: both the stop cap and the weight cap force a split
	// into at least max(ceil(10/4), ceil(50000/45000)) = 3 trucks.
	weights := make([]float64, 10)
	for i := range weights {
		weights[i] = 5000
	}
	g := testGroup("GRP-002", weights, []model.Point{dallas, houston, sanAntonio})
	trucks := HeuristicSolver{}.Solve(g)
	if len(trucks) < 3 {
		t.Fatalf("expected at least 3 trucks got %d", len(trucks))
	}
	var stops int
	for _, tr := range trucks {
		if tr.StopCount() > model.MaxStops {
			t.Fatalf("truck %s exceeds stop cap", tr.ID)
		}
		if tr.WeightLbs > model.TLMaxLbs {
			t.Fatalf("truck %s exceeds weight cap", tr.ID)
		}
		if tr.Type == model.ShipmentSplitTL {
			t.Fatalf("truck-level Split-TL must never appear")
		}
		stops += tr.StopCount()
	}
	if stops != 10 {
		t.Fatalf("expected all 10 orders covered, got %d stops", stops)
	}
}

func TestHeuristicOverweightOrderLoadsAlone(t *testing.T) {
	g := testGroup("GRP-003", []float64{50000, 1000}, []model.Point{dallas, houston})
	trucks := HeuristicSolver{}.Solve(g)
	if len(trucks) != 2 {
		t.Fatalf("expected 2 trucks got %d", len(trucks))
	}
	if trucks[0].StopCount() != 1 || trucks[0].WeightLbs != 50000 {
		t.Fatalf("over-cap order should ride alone")
	}
	if trucks[0].Type != model.ShipmentIndividual {
		t.Fatalf("single stop should classify Individual, got %s", trucks[0].Type)
	}
}

func TestHeuristicDeterministic(t *testing.T) {
	g := testGroup("GRP-004", []float64{4000, 4000, 4000, 4000, 4000, 4000}, []model.Point{dallas, houston, sanAntonio})
	first, err := json.Marshal(HeuristicSolver{}.Solve(g))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := json.Marshal(HeuristicSolver{}.Solve(g))
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if !bytes.Equal(first, again) {
			t.Fatalf("run %d produced different output", i)
		}
	}
}

func TestHeuristicProvenance(t *testing.T) {
	g := testGroup("GRP-005", []float64{8000}, []model.Point{dallas})
	trucks := HeuristicSolver{}.Solve(g)
	if trucks[0].Solver != model.SolverHeuristic {
		t.Fatalf("wrong solver tag %s", trucks[0].Solver)
	}
	if trucks[0].SolveInfo != model.SolveInfoHeuristic {
		t.Fatalf("wrong solve info %s", trucks[0].SolveInfo)
	}
}
