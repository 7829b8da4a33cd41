package config

import "fmt"

// SolverConfig controls the exact routing stage and the planner workers.
type SolverConfig struct {
	// Enabled toggles the exact stage. When false every group is routed by
	// the heuristic.
	Enabled bool `json:"enabled"`
	// TimeLimitSeconds bounds the search per group.
	TimeLimitSeconds int `json:"time_limit_seconds"`
	// GapPercent stops the search once the relative optimality gap falls
	// below this value, expressed in percent.
	GapPercent float64 `json:"gap_percent"`
	// Workers is the number of groups solved concurrently.
	Workers int `json:"workers"`
}

// SetDefaults applies sane defaults.
func (c *SolverConfig) SetDefaults() {
	if c.TimeLimitSeconds <= 0 {
		c.TimeLimitSeconds = 120
	}
	if c.GapPercent <= 0 {
		c.GapPercent = 0.5
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
}

// Validate checks mandatory fields.
func (c SolverConfig) Validate() error {
	if c.GapPercent < 0 || c.GapPercent >= 100 {
		return fmt.Errorf("gap_percent out of range: %v", c.GapPercent)
	}
	return nil
}

// ConsolidationConfig controls the delivery window grouping.
type ConsolidationConfig struct {
	// WindowDays is the inclusive span of delivery dates a group may cover.
	WindowDays int `json:"window_days"`
}

// SetDefaults applies sane defaults.
func (c *ConsolidationConfig) SetDefaults() {
	if c.WindowDays <= 0 {
		c.WindowDays = 7
	}
}

// Validate checks mandatory fields.
func (c ConsolidationConfig) Validate() error {
	if c.WindowDays < 0 {
		return fmt.Errorf("window_days must be positive")
	}
	return nil
}

// ClusterConfig selects the region assignment strategy.
type ClusterConfig struct {
	// Mode is "passthrough" (keep input regions) or "kmeans".
	Mode string `json:"mode"`
	// K is the cluster count for kmeans mode.
	K int `json:"k"`
}

// Validate checks mandatory fields.
func (c ClusterConfig) Validate() error {
	switch c.Mode {
	case "", "passthrough":
		return nil
	case "kmeans":
		if c.K <= 0 {
			return fmt.Errorf("cluster k must be positive for kmeans mode")
		}
		return nil
	default:
		return fmt.Errorf("unknown cluster mode %s", c.Mode)
	}
}

// GeocodeConfig maps city names to coordinates for CSV ingestion.
type GeocodeConfig struct {
	Cities map[string]CityCoord `json:"cities"`
}

// CityCoord is a geocoded city location.
type CityCoord struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
