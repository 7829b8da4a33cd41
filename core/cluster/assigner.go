// Package cluster assigns orders to geographic regions. The routing core
// treats the assigner as an opaque partitioning oracle.
package cluster

import "github.com/freightplan/freightplan/core/model"

// Assigner returns a region id per order, keyed by drop location.
type Assigner interface {
	Assign(orders []model.Order) []int
}

// PassThrough keeps the region ids already present on the orders, for inputs
// clustered upstream.
type PassThrough struct{}

// Assign implements Assigner.
func (PassThrough) Assign(orders []model.Order) []int {
	regions := make([]int, len(orders))
	for i, o := range orders {
		regions[i] = o.Region
	}
	return regions
}
