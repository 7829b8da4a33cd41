package milp

import "context"

// Solution is the best assignment an engine produced for a model.
type Solution struct {
	// X holds one value per model variable. Binary variables are integral up
	// to the engine's tolerance.
	X []float64
	// Objective is the model objective evaluated at X.
	Objective float64
	// Gap is the relative optimality gap of the incumbent; zero when Optimal.
	Gap float64
	// Optimal reports whether the solution was proved optimal within the
	// engine's gap tolerance.
	Optimal bool
}

// Engine is the combinatorial solve capability injected into the routing
// stage. Implementations must release every internal resource on all exit
// paths and honor the context deadline.
//
// Solve returns ErrNoSolution when the budget elapses without a feasible
// incumbent, and ErrUnavailable when the engine cannot run at all.
type Engine interface {
	Available() bool
	Solve(ctx context.Context, m *Model) (*Solution, error)
}
