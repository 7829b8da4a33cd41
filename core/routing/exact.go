package routing

import (
	"context"
	"fmt"
	"sort"

	"github.com/freightplan/freightplan/core/geo"
	"github.com/freightplan/freightplan/core/milp"
	"github.com/freightplan/freightplan/core/model"
)

// truckPenalty is the per-truck activation cost in the objective. It exceeds
// any achievable route distance, so the solve minimizes truck count first and
// distance second.
const truckPenalty = 100000.0

// ExactSolver formulates a consolidation group as a multi-vehicle path MIP
// with MTZ subtour elimination and delegates the search to an Engine.
type ExactSolver struct {
	Engine milp.Engine
}

// Solve routes the group exactly. It returns milp.ErrUnavailable when no
// engine is present and milp.ErrNoSolution when the engine found no feasible
// assignment within its budget; both are fallback triggers, not faults.
func (s ExactSolver) Solve(ctx context.Context, group model.ConsolidationGroup) ([]model.Truck, error) {
	if s.Engine == nil || !s.Engine.Available() {
		return nil, milp.ErrUnavailable
	}
	if len(group.Orders) == 0 {
		return nil, nil
	}

	f := newFormulation(group)
	sol, err := s.Engine.Solve(ctx, f.model)
	if err != nil {
		return nil, err
	}
	return f.extractTrucks(sol), nil
}

// formulation holds the model plus the variable index structures needed to
// read a solution back out.
//
// Nodes are 0..n with 0 the depot; trucks are 0..n-1 (worst case one order
// per truck). Variables follow the classic three-index vehicle flow model:
// arc usage x[i,j,k], stop assignment y[i,k], activation z[k] and the
// continuous MTZ position u[i,k].
type formulation struct {
	group model.ConsolidationGroup
	n     int // delivery stops; node 0 is the depot
	k     int // candidate trucks
	dist  [][]float64

	model *milp.Model
	x     arcVars
	y     gridVars // stop x truck
	z     []int
	u     gridVars // node x truck
}

func newFormulation(group model.ConsolidationGroup) *formulation {
	n := len(group.Orders)
	f := &formulation{group: group, n: n, k: n, model: &milp.Model{}}

	points := make([]model.Point, n+1)
	points[0] = group.Depot()
	for i, o := range group.Orders {
		points[i+1] = o.Drop
	}
	dm := geo.DistanceMatrix(points)
	f.dist = make([][]float64, n+1)
	for i := range f.dist {
		f.dist[i] = make([]float64, n+1)
		for j := range f.dist[i] {
			f.dist[i][j] = dm.At(i, j)
		}
	}

	f.addVariables()
	f.addConstraints()
	return f
}

func (f *formulation) addVariables() {
	m := f.model
	f.x = newArcVars(f.n+1, f.k)
	for k := 0; k < f.k; k++ {
		for i := 0; i <= f.n; i++ {
			for j := 0; j <= f.n; j++ {
				if i == j {
					continue
				}
				v := m.AddBinary()
				f.x.set(i, j, k, v)
				// Return arcs into the depot cost nothing: only the forward
				// leg is charged.
				if j != 0 {
					m.SetObjective(v, f.dist[i][j])
				}
			}
		}
	}

	f.y = newGridVars(f.n, f.k)
	for i := 0; i < f.n; i++ {
		for k := 0; k < f.k; k++ {
			f.y.set(i, k, m.AddBinary())
		}
	}

	f.z = make([]int, f.k)
	for k := 0; k < f.k; k++ {
		f.z[k] = m.AddBinary()
		m.SetObjective(f.z[k], truckPenalty)
	}

	f.u = newGridVars(f.n+1, f.k)
	for i := 0; i <= f.n; i++ {
		for k := 0; k < f.k; k++ {
			f.u.set(i, k, m.AddContinuous(float64(f.n)))
		}
	}
}

func (f *formulation) addConstraints() {
	m := f.model
	n, K := f.n, f.k

	// Each stop is served by exactly one truck.
	for i := 0; i < n; i++ {
		terms := make([]milp.Term, K)
		for k := 0; k < K; k++ {
			terms[k] = milp.Term{Var: f.y.at(i, k), Coef: 1}
		}
		m.AddEq(1, terms...)
	}

	// Symmetry breaking: the first stop rides the first truck.
	m.AddEq(1, milp.Term{Var: f.y.at(0, 0), Coef: 1})

	for k := 0; k < K; k++ {
		// Depot departure and return counts equal the activation.
		dep := make([]milp.Term, 0, n)
		ret := make([]milp.Term, 0, n)
		for i := 0; i < n; i++ {
			dep = append(dep, milp.Term{Var: f.x.at(0, i+1, k), Coef: 1})
			ret = append(ret, milp.Term{Var: f.x.at(i+1, 0, k), Coef: 1})
		}
		m.AddEq(0, append(dep, milp.Term{Var: f.z[k], Coef: -1})...)
		m.AddEq(0, append(ret, milp.Term{Var: f.z[k], Coef: -1})...)

		// Stop-count and weight caps.
		stops := make([]milp.Term, n)
		weight := make([]milp.Term, n)
		for i := 0; i < n; i++ {
			stops[i] = milp.Term{Var: f.y.at(i, k), Coef: 1}
			weight[i] = milp.Term{Var: f.y.at(i, k), Coef: f.group.Orders[i].WeightLbs}
		}
		m.AddLessEq(model.MaxStops, stops...)
		m.AddLessEq(model.TLMaxLbs, weight...)

		// Stops only ride active trucks.
		for i := 0; i < n; i++ {
			m.AddLessEq(0, milp.Term{Var: f.y.at(i, k), Coef: 1}, milp.Term{Var: f.z[k], Coef: -1})
		}

		// Depot anchors the MTZ positions.
		m.AddEq(0, milp.Term{Var: f.u.at(0, k), Coef: 1})
	}

	// Flow conservation: arcs in and out of a stop match its assignment.
	for i := 1; i <= n; i++ {
		for k := 0; k < K; k++ {
			var in, out []milp.Term
			for j := 0; j <= n; j++ {
				if j == i {
					continue
				}
				in = append(in, milp.Term{Var: f.x.at(j, i, k), Coef: 1})
				out = append(out, milp.Term{Var: f.x.at(i, j, k), Coef: 1})
			}
			m.AddEq(0, append(in, milp.Term{Var: f.y.at(i-1, k), Coef: -1})...)
			m.AddEq(0, append(out, milp.Term{Var: f.y.at(i-1, k), Coef: -1})...)
		}
	}

	// MTZ subtour elimination over stops only:
	// u[i,k] - u[j,k] + n*x[i,j,k] <= n-1.
	for i := 1; i <= n; i++ {
		for j := 1; j <= n; j++ {
			if i == j {
				continue
			}
			for k := 0; k < K; k++ {
				m.AddLessEq(float64(n-1),
					milp.Term{Var: f.u.at(i, k), Coef: 1},
					milp.Term{Var: f.u.at(j, k), Coef: -1},
					milp.Term{Var: f.x.at(i, j, k), Coef: float64(n)},
				)
			}
		}
	}

	// Trucks activate in index order.
	for k := 0; k+1 < K; k++ {
		m.AddLessEq(0, milp.Term{Var: f.z[k+1], Coef: 1}, milp.Term{Var: f.z[k], Coef: -1})
	}
}

// extractTrucks reads the solution back into routed trucks.
func (f *formulation) extractTrucks(sol *milp.Solution) []model.Truck {
	info := model.SolveInfoOptimal
	if !sol.Optimal {
		info = fmt.Sprintf("feasible (gap=%.2f%%)", sol.Gap*100)
	}

	var trucks []model.Truck
	num := 1
	for k := 0; k < f.k; k++ {
		if sol.X[f.z[k]] < 0.5 {
			continue
		}
		var assigned []int // node ids 1..n
		for i := 0; i < f.n; i++ {
			if sol.X[f.y.at(i, k)] > 0.5 {
				assigned = append(assigned, i+1)
			}
		}
		if len(assigned) == 0 {
			continue
		}

		seq := f.sequence(sol, k, assigned)
		stops := make([]model.Order, len(seq))
		var weight float64
		for i, node := range seq {
			stops[i] = f.group.Orders[node-1]
			weight += stops[i].WeightLbs
		}

		var dist float64
		prev := 0
		for _, node := range seq {
			dist += f.dist[prev][node]
			prev = node
		}

		trucks = append(trucks, model.Truck{
			ID:        fmt.Sprintf("%s-T%d", f.group.ID, num),
			GroupID:   f.group.ID,
			Type:      model.ClassifyTruck(weight, len(stops)),
			Stops:     stops,
			WeightLbs: weight,
			Distance:  dist,
			Solver:    model.SolverMILP,
			SolveInfo: info,
		})
		num++
	}
	return trucks
}

// sequence derives the delivery order for truck k. Positions from the MTZ
// variables come first; the result is validated against the realized arcs and
// arc tracing takes over when the positions are degenerate.
func (f *formulation) sequence(sol *milp.Solution, k int, assigned []int) []int {
	byPos := append([]int(nil), assigned...)
	sort.SliceStable(byPos, func(a, b int) bool {
		return sol.X[f.u.at(byPos[a], k)] < sol.X[f.u.at(byPos[b], k)]
	})
	if f.arcsConsistent(sol, k, byPos) {
		return byPos
	}

	traced := f.traceArcs(sol, k)
	ordered := traced[:0]
	inAssigned := make(map[int]bool, len(assigned))
	for _, node := range assigned {
		inAssigned[node] = true
	}
	for _, node := range traced {
		if inAssigned[node] {
			ordered = append(ordered, node)
		}
	}
	if len(ordered) != len(assigned) {
		return assigned
	}
	return ordered
}

// arcsConsistent reports whether the candidate sequence walks only along
// realized arcs starting from the depot.
func (f *formulation) arcsConsistent(sol *milp.Solution, k int, seq []int) bool {
	prev := 0
	for _, node := range seq {
		if sol.X[f.x.at(prev, node, k)] < 0.5 {
			return false
		}
		prev = node
	}
	return true
}

// traceArcs follows realized arcs from the depot until it returns there or
// revisits a node.
func (f *formulation) traceArcs(sol *milp.Solution, k int) []int {
	next := make(map[int]int)
	for i := 0; i <= f.n; i++ {
		for j := 0; j <= f.n; j++ {
			if i == j {
				continue
			}
			if sol.X[f.x.at(i, j, k)] > 0.5 {
				next[i] = j
				break
			}
		}
	}

	var route []int
	cur := 0
	visited := map[int]bool{0: true}
	for {
		nxt, ok := next[cur]
		if !ok || nxt == 0 || visited[nxt] {
			return route
		}
		route = append(route, nxt)
		visited[nxt] = true
		cur = nxt
	}
}
