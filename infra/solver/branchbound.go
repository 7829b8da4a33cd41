// Package solver provides the combinatorial engine behind milp.Engine: a
// branch-and-bound search over LP relaxations solved with gonum's simplex.
package solver

import (
	"container/heap"
	"context"
	"errors"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/freightplan/freightplan/core/milp"
)

const (
	simplexTol     = 1e-7
	integralityTol = 1e-6
	pivotTol       = 1e-9
)

// errInconsistent reports an equality system with no solution at all, e.g.
// branch fixes contradicting a model row.
var errInconsistent = errors.New("solver: inconsistent equality rows")

// BranchAndBound implements milp.Engine. It explores fixings of the model's
// binary variables best-first, bounding each subproblem with the simplex
// solution of its LP relaxation.
type BranchAndBound struct {
	// TimeLimit bounds the wall-clock search time. Zero means no engine-side
	// limit; the context deadline still applies.
	TimeLimit time.Duration
	// GapTol is the relative optimality gap at which the search stops and the
	// incumbent is reported as optimal.
	GapTol float64
	// MaxNodes caps the number of explored subproblems.
	MaxNodes int
}

// New returns an engine with the given budget and gap tolerance.
func New(timeLimit time.Duration, gapTol float64) *BranchAndBound {
	return &BranchAndBound{TimeLimit: timeLimit, GapTol: gapTol, MaxNodes: 500000}
}

// Available implements milp.Engine.
func (s *BranchAndBound) Available() bool { return s != nil }

type fix struct {
	v   int
	val float64
}

type node struct {
	fixes []fix
	bound float64
	x     []float64
	seq   int
}

type nodeQueue []*node

func (q nodeQueue) Len() int { return len(q) }
func (q nodeQueue) Less(i, j int) bool {
	if q[i].bound != q[j].bound {
		return q[i].bound < q[j].bound
	}
	return q[i].seq < q[j].seq
}
func (q nodeQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *nodeQueue) Push(x any)   { *q = append(*q, x.(*node)) }
func (q *nodeQueue) Pop() any {
	old := *q
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return it
}

// Solve implements milp.Engine.
func (s *BranchAndBound) Solve(ctx context.Context, m *milp.Model) (*milp.Solution, error) {
	if !s.Available() {
		return nil, milp.ErrUnavailable
	}
	if s.TimeLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.TimeLimit)
		defer cancel()
	}
	if m.NumVars() == 0 {
		return &milp.Solution{Optimal: true}, nil
	}

	rel := newRelaxation(m)

	root, err := rel.solve(nil)
	if err != nil {
		return nil, milp.ErrNoSolution
	}

	var (
		queue     nodeQueue
		seq       int
		incumbent []float64
		incObj    = math.Inf(1)
		explored  int
	)
	heap.Push(&queue, root)

	for queue.Len() > 0 {
		if ctx.Err() != nil || (s.MaxNodes > 0 && explored >= s.MaxNodes) {
			break
		}
		nd := heap.Pop(&queue).(*node)
		explored++

		if nd.bound >= incObj-simplexTol {
			continue
		}
		if !math.IsInf(incObj, 1) && relativeGap(incObj, nd.bound) <= s.GapTol {
			// Remaining nodes cannot improve the incumbent beyond the gap.
			return &milp.Solution{X: incumbent, Objective: incObj, Gap: relativeGap(incObj, nd.bound), Optimal: true}, nil
		}

		branch := mostFractional(m, nd.x)
		if branch < 0 {
			// Objective of the rounded assignment, not the LP bound: the
			// reported value must match the reported solution.
			cand := roundBinaries(m, nd.x)
			if obj := m.Eval(cand); obj < incObj {
				incObj = obj
				incumbent = cand
			}
			continue
		}

		for _, val := range []float64{0, 1} {
			child := &node{fixes: append(append([]fix(nil), nd.fixes...), fix{v: branch, val: val})}
			solved, err := rel.solve(child.fixes)
			if err != nil {
				continue // infeasible or degenerate subproblem
			}
			child.bound = solved.bound
			child.x = solved.x
			if child.bound >= incObj-simplexTol {
				continue
			}
			seq++
			child.seq = seq
			heap.Push(&queue, child)
		}
	}

	if incumbent == nil {
		return nil, milp.ErrNoSolution
	}
	bound := incObj
	if queue.Len() > 0 {
		bound = queue[0].bound
	}
	gap := relativeGap(incObj, bound)
	return &milp.Solution{X: incumbent, Objective: incObj, Gap: gap, Optimal: queue.Len() == 0 || gap <= s.GapTol}, nil
}

func relativeGap(incumbent, bound float64) float64 {
	if incumbent == 0 {
		return math.Abs(incumbent - bound)
	}
	g := (incumbent - bound) / math.Abs(incumbent)
	if g < 0 {
		return 0
	}
	return g
}

// mostFractional returns the binary variable whose relaxed value is farthest
// from integral, or -1 when all binaries are integral. Ties keep the lowest
// index so branching order is deterministic.
func mostFractional(m *milp.Model, x []float64) int {
	best, bestFrac := -1, integralityTol
	for v := 0; v < m.NumVars(); v++ {
		if !m.IsBinary(v) {
			continue
		}
		frac := math.Abs(x[v] - math.Round(x[v]))
		if frac > bestFrac {
			best, bestFrac = v, frac
		}
	}
	return best
}

func roundBinaries(m *milp.Model, x []float64) []float64 {
	out := make([]float64, len(x))
	copy(out, x)
	for v := range out {
		if m.IsBinary(v) {
			out[v] = math.Round(out[v])
		}
		if out[v] < 0 && out[v] > -simplexTol {
			out[v] = 0
		}
	}
	return out
}

// relaxation holds the static parts of the LP relaxation so each node only
// appends its fixing rows.
type relaxation struct {
	m    *milp.Model
	nv   int
	ineq []milp.Constraint // model rows plus upper-bound rows
	eq   []milp.Constraint
	obj  []float64
}

func newRelaxation(m *milp.Model) *relaxation {
	r := &relaxation{m: m, nv: m.NumVars()}
	r.ineq = append(r.ineq, m.LessEq()...)
	for v := 0; v < r.nv; v++ {
		if ub := m.Upper(v); !math.IsInf(ub, 1) {
			r.ineq = append(r.ineq, milp.Constraint{Terms: []milp.Term{{Var: v, Coef: 1}}, RHS: ub})
		}
	}
	r.eq = append(r.eq, m.Equal()...)
	r.obj = m.Objective()
	return r
}

// solve builds the standard-form LP for the node and runs simplex. Fixed
// binaries join the equality block, which is row-reduced first: the rows a
// routing model emits (serve-once, flow conservation, depot in/out) are not
// linearly independent, and simplex rejects rank-deficient systems.
func (r *relaxation) solve(fixes []fix) (*node, error) {
	aug := make([][]float64, 0, len(r.eq)+len(fixes))
	for _, con := range r.eq {
		row := make([]float64, r.nv+1)
		for _, t := range con.Terms {
			row[t.Var] += t.Coef
		}
		row[r.nv] = con.RHS
		aug = append(aug, row)
	}
	for _, f := range fixes {
		row := make([]float64, r.nv+1)
		row[f.v] = 1
		row[r.nv] = f.val
		aug = append(aug, row)
	}
	eqRows, err := reduceRows(aug, r.nv)
	if err != nil {
		return nil, err
	}

	nIneq := len(r.ineq)
	rows := nIneq + len(eqRows)
	cols := r.nv + nIneq // one slack per inequality; rank(eq) <= nv keeps rows <= cols

	a := mat.NewDense(rows, cols, nil)
	b := make([]float64, rows)
	c := make([]float64, cols)
	copy(c, r.obj)

	for i, con := range r.ineq {
		for _, t := range con.Terms {
			a.Set(i, t.Var, a.At(i, t.Var)+t.Coef)
		}
		a.Set(i, r.nv+i, 1)
		b[i] = con.RHS
	}
	for i, row := range eqRows {
		for v, coef := range row[:r.nv] {
			if coef != 0 {
				a.Set(nIneq+i, v, coef)
			}
		}
		b[nIneq+i] = row[r.nv]
	}

	// Simplex expects nonnegative right-hand sides.
	for i := 0; i < rows; i++ {
		if b[i] < 0 {
			b[i] = -b[i]
			for j := 0; j < cols; j++ {
				a.Set(i, j, -a.At(i, j))
			}
		}
	}

	obj, x, err := lp.Simplex(c, a, b, simplexTol, nil)
	if err != nil {
		return nil, err
	}
	return &node{bound: obj, x: x[:r.nv]}, nil
}

// reduceRows Gauss-eliminates the augmented system [A|b] in place and returns
// its linearly independent rows. A dependent row whose right-hand side does
// not cancel means the system has no solution.
func reduceRows(rows [][]float64, nv int) ([][]float64, error) {
	rank := 0
	for col := 0; col < nv && rank < len(rows); col++ {
		piv, max := -1, pivotTol
		for i := rank; i < len(rows); i++ {
			if v := math.Abs(rows[i][col]); v > max {
				piv, max = i, v
			}
		}
		if piv < 0 {
			continue
		}
		rows[rank], rows[piv] = rows[piv], rows[rank]
		p := rows[rank][col]
		for i := 0; i < len(rows); i++ {
			if i == rank || rows[i][col] == 0 {
				continue
			}
			f := rows[i][col] / p
			for j := col; j <= nv; j++ {
				rows[i][j] -= f * rows[rank][j]
			}
			rows[i][col] = 0
		}
		rank++
	}
	for _, row := range rows[rank:] {
		if math.Abs(row[nv]) > pivotTol {
			return nil, errInconsistent
		}
	}
	return rows[:rank], nil
}
