package model

import "time"

// ConsolidationGroup is a region- and time-window-bounded batch of orders that
// the routing stage considers together. Groups are built once per run and are
// read-only afterwards; truck-level classification may supersede the group's.
type ConsolidationGroup struct {
	ID          string       `json:"group_id"`
	Region      int          `json:"region"`
	WindowStart time.Time    `json:"window_start"`
	WindowEnd   time.Time    `json:"window_end"`
	Orders      []Order      `json:"orders"`
	WeightLbs   float64      `json:"total_weight_lbs"`
	Type        ShipmentType `json:"shipment_type"`
}

// Depot returns the shared pickup origin for the group. All orders in a group
// share a pickup location; the first order is authoritative.
func (g ConsolidationGroup) Depot() Point {
	if len(g.Orders) == 0 {
		return Point{}
	}
	return g.Orders[0].Pickup
}
