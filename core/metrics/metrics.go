// Package metrics defines the observability sink consumed by the planner.
package metrics

import (
	"time"

	"github.com/freightplan/freightplan/core/model"
)

// SolveRecord captures one group-level solve outcome.
type SolveRecord struct {
	PlanID    string
	GroupID   string
	Region    int
	Orders    int
	Trucks    int
	Solver    string
	SolveInfo string
	Skipped   bool
	Duration  time.Duration
}

// Outcome maps the record onto a small label set for counters.
func (r SolveRecord) Outcome() string {
	switch {
	case r.Skipped:
		return "skipped"
	case r.SolveInfo == model.SolveInfoOptimal:
		return "optimal"
	case r.Solver == model.SolverMILP:
		return "feasible"
	default:
		return "heuristic"
	}
}

// Config holds sink settings shared by the concrete backends.
type Config struct {
	PrometheusEnabled bool   `json:"prometheus_enabled"`
	PrometheusPort    string `json:"prometheus_port"`
	InfluxEnabled     bool   `json:"influx_enabled"`
	InfluxURL         string `json:"influx_url"`
	InfluxToken       string `json:"influx_token"`
	InfluxOrg         string `json:"influx_org"`
	InfluxBucket      string `json:"influx_bucket"`
}

// Sink records planning outcomes. Implementations must be safe for use from
// concurrent group workers.
type Sink interface {
	RecordSolve(rec SolveRecord) error
	RecordTrucks(planID string, trucks []model.Truck) error
}

// NopSink discards all records.
type NopSink struct{}

func (NopSink) RecordSolve(SolveRecord) error            { return nil }
func (NopSink) RecordTrucks(string, []model.Truck) error { return nil }
