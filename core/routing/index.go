package routing

import "fmt"

// arcVars indexes the x[i,j,k] arc decisions as a flat slice. Diagonal pairs
// (i == j) have no variable; bounds are checked on every access so a bad
// index surfaces at model-build time rather than as a silently wrong model.
type arcVars struct {
	nodes, trucks int
	idx           []int
}

func newArcVars(nodes, trucks int) arcVars {
	a := arcVars{nodes: nodes, trucks: trucks, idx: make([]int, nodes*nodes*trucks)}
	for i := range a.idx {
		a.idx[i] = -1
	}
	return a
}

func (a arcVars) offset(i, j, k int) int {
	if i < 0 || i >= a.nodes || j < 0 || j >= a.nodes || k < 0 || k >= a.trucks || i == j {
		panic(fmt.Sprintf("routing: arc index (%d,%d,%d) out of range for %d nodes, %d trucks",
			i, j, k, a.nodes, a.trucks))
	}
	return (k*a.nodes+i)*a.nodes + j
}

func (a arcVars) set(i, j, k, v int) { a.idx[a.offset(i, j, k)] = v }

func (a arcVars) at(i, j, k int) int {
	v := a.idx[a.offset(i, j, k)]
	if v < 0 {
		panic(fmt.Sprintf("routing: arc variable (%d,%d,%d) was never added", i, j, k))
	}
	return v
}

// gridVars indexes a dense two-dimensional variable block, used for the
// stop-assignment y[i,k] and position u[i,k] decisions.
type gridVars struct {
	rows, cols int
	idx        []int
}

func newGridVars(rows, cols int) gridVars {
	g := gridVars{rows: rows, cols: cols, idx: make([]int, rows*cols)}
	for i := range g.idx {
		g.idx[i] = -1
	}
	return g
}

func (g gridVars) offset(r, c int) int {
	if r < 0 || r >= g.rows || c < 0 || c >= g.cols {
		panic(fmt.Sprintf("routing: grid index (%d,%d) out of range for %dx%d", r, c, g.rows, g.cols))
	}
	return r*g.cols + c
}

func (g gridVars) set(r, c, v int) { g.idx[g.offset(r, c)] = v }

func (g gridVars) at(r, c int) int {
	v := g.idx[g.offset(r, c)]
	if v < 0 {
		panic(fmt.Sprintf("routing: grid variable (%d,%d) was never added", r, c))
	}
	return v
}
