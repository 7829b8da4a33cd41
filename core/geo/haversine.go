// Package geo provides great-circle distance math and place-name resolution.
package geo

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/freightplan/freightplan/core/model"
)

// EarthRadiusMiles is the mean Earth radius used for haversine distances.
const EarthRadiusMiles = 3958.8

// Miles returns the great-circle distance in miles between two points.
func Miles(a, b model.Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lng1 := a.Lng * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	lng2 := b.Lng * math.Pi / 180

	dLat := lat2 - lat1
	dLng := lng2 - lng1
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return EarthRadiusMiles * 2 * math.Asin(math.Sqrt(h))
}

// DistanceMatrix returns the dense pairwise distance matrix in miles for the
// given points. The diagonal is zero.
func DistanceMatrix(points []model.Point) *mat.Dense {
	n := len(points)
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := Miles(points[i], points[j])
			m.Set(i, j, d)
			m.Set(j, i, d)
		}
	}
	return m
}
