package cluster

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/freightplan/freightplan/core/geo"
	"github.com/freightplan/freightplan/core/model"
)

// KMeans clusters orders by drop coordinates. Initialization is a
// deterministic farthest-point sweep, so repeated runs on the same input
// produce identical regions.
type KMeans struct {
	K        int
	MaxIters int
}

// NewKMeans returns a clusterer with k regions.
func NewKMeans(k int) KMeans {
	return KMeans{K: k, MaxIters: 50}
}

// Assign implements Assigner.
func (c KMeans) Assign(orders []model.Order) []int {
	n := len(orders)
	if n == 0 {
		return nil
	}
	k := c.K
	if k < 1 {
		k = 1
	}
	if k > n {
		k = n
	}

	points := make([]model.Point, n)
	for i, o := range orders {
		points[i] = o.Drop
	}

	centers := initialCenters(points, k)
	labels := make([]int, n)
	iters := c.MaxIters
	if iters <= 0 {
		iters = 50
	}

	for iter := 0; iter < iters; iter++ {
		changed := false
		for i, p := range points {
			best, bestDist := 0, math.Inf(1)
			for j, ctr := range centers {
				if d := geo.Miles(p, ctr); d < bestDist {
					best, bestDist = j, d
				}
			}
			if labels[i] != best {
				labels[i] = best
				changed = true
			}
		}
		if !changed && iter > 0 {
			break
		}

		lats := make([]float64, k)
		lngs := make([]float64, k)
		counts := make([]float64, k)
		for i, p := range points {
			lats[labels[i]] += p.Lat
			lngs[labels[i]] += p.Lng
			counts[labels[i]]++
		}
		for j := range centers {
			if counts[j] == 0 {
				continue // empty cluster keeps its previous center
			}
			centers[j] = model.Point{Lat: lats[j] / counts[j], Lng: lngs[j] / counts[j]}
		}
	}
	return labels
}

// initialCenters picks the first point, then repeatedly the point farthest
// from all chosen centers.
func initialCenters(points []model.Point, k int) []model.Point {
	centers := []model.Point{points[0]}
	minDist := make([]float64, len(points))
	for i, p := range points {
		minDist[i] = geo.Miles(p, centers[0])
	}
	for len(centers) < k {
		next := floats.MaxIdx(minDist)
		centers = append(centers, points[next])
		for i, p := range points {
			if d := geo.Miles(p, points[next]); d < minDist[i] {
				minDist[i] = d
			}
		}
	}
	return centers
}
