// Package events defines the planning lifecycle events published on the bus.
package events

// Event is implemented by every planning event.
type Event interface {
	Name() string
}

// ExactAttempt is published before the exact engine is invoked for a group.
type ExactAttempt struct {
	GroupID string
	Orders  int
}

func (ExactAttempt) Name() string { return "exact_attempt" }

// ExactFailure is published when the exact engine returns no solution.
type ExactFailure struct {
	GroupID string
	Err     error
}

func (ExactFailure) Name() string { return "exact_failure" }

// HeuristicFallback is published when a group is routed by the heuristic.
type HeuristicFallback struct {
	GroupID string
}

func (HeuristicFallback) Name() string { return "heuristic_fallback" }

// GroupSkipped is published when neither solver produced a complete
// assignment and the group was dropped from the plan.
type GroupSkipped struct {
	GroupID string
	Err     error
}

func (GroupSkipped) Name() string { return "group_skipped" }
