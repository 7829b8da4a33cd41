// Package consolidate partitions normalized orders into per-region rolling
// time windows and classifies each window's aggregate shipment type.
package consolidate

import (
	"fmt"
	"sort"
	"time"

	"github.com/freightplan/freightplan/core/model"
)

// DefaultWindowDays is the rolling consolidation window length in calendar days.
const DefaultWindowDays = 7

// Grouper builds consolidation groups from normalized orders.
type Grouper struct {
	WindowDays int
}

// New returns a Grouper with the default 7-day window.
func New() Grouper { return Grouper{WindowDays: DefaultWindowDays} }

// Group partitions orders into consolidation groups, region by region.
//
// Within a region, orders are stably sorted by delivery date (ties keep input
// order) and consumed in a single forward pass: a window opens anchored at the
// date of the first unconsumed order and takes every following order within
// WindowDays calendar days of that anchor. The first order past the anchor
// closes the window and anchors the next one. Windows are never re-based on
// inclusion, so boundaries depend on the sort's tie-break order.
func (g Grouper) Group(orders []model.Order) []model.ConsolidationGroup {
	days := g.WindowDays
	if days <= 0 {
		days = DefaultWindowDays
	}

	byRegion := make(map[int][]model.Order)
	var regions []int
	for _, o := range orders {
		if _, ok := byRegion[o.Region]; !ok {
			regions = append(regions, o.Region)
		}
		byRegion[o.Region] = append(byRegion[o.Region], o)
	}
	sort.Ints(regions)

	var groups []model.ConsolidationGroup
	counter := 1
	for _, region := range regions {
		batch := append([]model.Order(nil), byRegion[region]...)
		sort.SliceStable(batch, func(i, j int) bool {
			return batch[i].Delivery.Before(batch[j].Delivery)
		})

		for _, window := range splitWindows(batch, days) {
			groups = append(groups, buildGroup(counter, region, window))
			counter++
		}
	}
	return groups
}

// splitWindows performs the single forward pass over date-sorted orders.
func splitWindows(sorted []model.Order, days int) [][]model.Order {
	if len(sorted) == 0 {
		return nil
	}
	var windows [][]model.Order
	anchor := sorted[0].Delivery
	current := []model.Order{sorted[0]}
	for _, o := range sorted[1:] {
		if calendarDays(anchor, o.Delivery) <= days {
			current = append(current, o)
			continue
		}
		windows = append(windows, current)
		anchor = o.Delivery
		current = []model.Order{o}
	}
	return append(windows, current)
}

// calendarDays counts whole calendar days from a to b, ignoring time of day.
func calendarDays(a, b time.Time) int {
	a = time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	b = time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

func buildGroup(counter, region int, window []model.Order) model.ConsolidationGroup {
	var total float64
	start, end := window[0].Delivery, window[0].Delivery
	for _, o := range window {
		total += o.WeightLbs
		if o.Delivery.Before(start) {
			start = o.Delivery
		}
		if o.Delivery.After(end) {
			end = o.Delivery
		}
	}
	return model.ConsolidationGroup{
		ID:          fmt.Sprintf("GRP-%03d", counter),
		Region:      region,
		WindowStart: start,
		WindowEnd:   end,
		Orders:      window,
		WeightLbs:   total,
		Type:        model.ClassifyGroup(total, len(window)),
	}
}
