package cluster

import (
	"testing"

	"github.com/freightplan/freightplan/core/model"
)

func dropOrder(id string, lat, lng float64) model.Order {
	return model.Order{ID: id, Drop: model.Point{Lat: lat, Lng: lng}}
}

func TestKMeansSeparatesDistantGroups(t *testing.T) {
	// Two tight clusters: around Dallas and around Boston.
	orders := []model.Order{
		dropOrder("d1", 32.7767, -96.7970),
		dropOrder("d2", 29.7604, -95.3698),
		dropOrder("b1", 42.3601, -71.0589),
		dropOrder("b2", 40.7128, -74.0060),
	}
	labels := NewKMeans(2).Assign(orders)
	if len(labels) != 4 {
		t.Fatalf("expected 4 labels got %d", len(labels))
	}
	if labels[0] != labels[1] || labels[2] != labels[3] {
		t.Fatalf("cities in the same area should share a region: %v", labels)
	}
	if labels[0] == labels[2] {
		t.Fatalf("distant areas should not share a region: %v", labels)
	}
}

func TestKMeansDeterministic(t *testing.T) {
	orders := []model.Order{
		dropOrder("a", 35.0, -90.0),
		dropOrder("b", 36.0, -86.0),
		dropOrder("c", 41.0, -81.0),
		dropOrder("d", 29.0, -95.0),
		dropOrder("e", 39.0, -75.0),
	}
	first := NewKMeans(3).Assign(orders)
	for i := 0; i < 5; i++ {
		again := NewKMeans(3).Assign(orders)
		for j := range first {
			if first[j] != again[j] {
				t.Fatalf("run %d differs at %d: %v vs %v", i, j, first, again)
			}
		}
	}
}

func TestKMeansMoreClustersThanPoints(t *testing.T) {
	orders := []model.Order{dropOrder("a", 1, 1), dropOrder("b", 2, 2)}
	labels := NewKMeans(5).Assign(orders)
	if len(labels) != 2 {
		t.Fatalf("expected 2 labels got %d", len(labels))
	}
}

func TestPassThrough(t *testing.T) {
	orders := []model.Order{{ID: "a", Region: 3}, {ID: "b", Region: 1}}
	labels := PassThrough{}.Assign(orders)
	if labels[0] != 3 || labels[1] != 1 {
		t.Fatalf("pass-through should keep region ids: %v", labels)
	}
}
