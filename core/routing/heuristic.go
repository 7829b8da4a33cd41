// Package routing assigns consolidation groups to trucks and delivery
// sequences, through an exact MIP formulation with a deterministic heuristic
// fallback.
package routing

import (
	"fmt"

	"github.com/freightplan/freightplan/core/geo"
	"github.com/freightplan/freightplan/core/model"
)

// HeuristicSolver is the always-available fallback: first-fit capacity packing
// followed by nearest-neighbor sequencing. It is deterministic and always
// terminates with a complete assignment; it makes no optimality claims.
type HeuristicSolver struct{}

// Solve routes all orders of a group, splitting across trucks as needed.
func (HeuristicSolver) Solve(group model.ConsolidationGroup) []model.Truck {
	depot := group.Depot()
	var trucks []model.Truck
	for i, load := range packFirstFit(group.Orders) {
		stops, dist := nearestNeighbor(depot, load)
		var weight float64
		for _, o := range stops {
			weight += o.WeightLbs
		}
		trucks = append(trucks, model.Truck{
			ID:        fmt.Sprintf("%s-T%d", group.ID, i+1),
			GroupID:   group.ID,
			Type:      model.ClassifyTruck(weight, len(stops)),
			Stops:     stops,
			WeightLbs: weight,
			Distance:  dist,
			Solver:    model.SolverHeuristic,
			SolveInfo: model.SolveInfoHeuristic,
		})
	}
	return trucks
}

// packFirstFit partitions orders into truck loads in a single forward pass.
// An order joins the current truck while both caps hold; otherwise the truck
// closes and the order opens a new one. An over-cap order still loads alone
// rather than becoming unroutable.
func packFirstFit(orders []model.Order) [][]model.Order {
	var loads [][]model.Order
	var current []model.Order
	var weight float64
	for _, o := range orders {
		fits := len(current) < model.MaxStops && weight+o.WeightLbs <= model.TLMaxLbs
		if len(current) == 0 || fits {
			current = append(current, o)
			weight += o.WeightLbs
			continue
		}
		loads = append(loads, current)
		current = []model.Order{o}
		weight = o.WeightLbs
	}
	if len(current) > 0 {
		loads = append(loads, current)
	}
	return loads
}

// nearestNeighbor sequences stops greedily from the depot, returning the
// ordered stops and the one-way distance along the realized route. Distance
// ties keep the earliest remaining order.
func nearestNeighbor(depot model.Point, orders []model.Order) ([]model.Order, float64) {
	if len(orders) == 0 {
		return nil, 0
	}
	unvisited := append([]model.Order(nil), orders...)
	route := make([]model.Order, 0, len(orders))
	pos := depot
	var total float64
	for len(unvisited) > 0 {
		best, bestDist := 0, geo.Miles(pos, unvisited[0].Drop)
		for i := 1; i < len(unvisited); i++ {
			if d := geo.Miles(pos, unvisited[i].Drop); d < bestDist {
				best, bestDist = i, d
			}
		}
		next := unvisited[best]
		unvisited = append(unvisited[:best], unvisited[best+1:]...)
		route = append(route, next)
		total += bestDist
		pos = next.Drop
	}
	return route, total
}
