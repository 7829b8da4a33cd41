package model

import "time"

// Solver provenance recorded on every truck.
const (
	SolverMILP      = "milp"
	SolverHeuristic = "heuristic"

	// SolveInfoHeuristic is the fixed quality tag for heuristic assignments.
	SolveInfoHeuristic = "nearest-neighbor + first-fit"
	// SolveInfoOptimal tags exact solutions proved optimal within the gap.
	SolveInfoOptimal = "optimal"
)

// Truck is one produced route: an ordered stop sequence drawn from a single
// consolidation group, plus totals, classification and solver provenance.
type Truck struct {
	ID        string       `json:"truck_id"`
	GroupID   string       `json:"group_id"`
	Region    int          `json:"region"`
	Type      ShipmentType `json:"shipment_type"`
	Stops     []Order      `json:"stops"`
	WeightLbs float64      `json:"total_weight_lbs"`
	Distance  float64      `json:"total_distance_miles"`
	Solver    string       `json:"solver"`
	SolveInfo string       `json:"solve_info"`

	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`
}

// StopCount returns the number of delivery stops on the route.
func (t Truck) StopCount() int { return len(t.Stops) }
