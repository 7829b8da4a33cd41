package model

import (
	"fmt"
	"time"
)

// Point is a geographic coordinate in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Order is a single delivery order after weight normalization. Orders are
// treated as immutable facts once ingested: the routing stages only ever copy
// references around, they never mutate one.
type Order struct {
	ID        string    `json:"order_id"`
	Pickup    Point     `json:"pickup"`
	Drop      Point     `json:"drop"`
	WeightLbs float64   `json:"weight_lbs"`
	Delivery  time.Time `json:"requested_delivery_date"`
	Region    int       `json:"region"`

	// Reference fields carried through to the output untouched.
	DocumentID string `json:"document_id,omitempty"`
	PONumber   string `json:"po_number,omitempty"`
	Material   string `json:"material,omitempty"`
}

// Validate checks that the order carries the data the routing engine cannot
// work without. Reference fields may be empty.
func (o Order) Validate() error {
	if o.ID == "" {
		return fmt.Errorf("order missing id")
	}
	if o.Drop == (Point{}) {
		return fmt.Errorf("order %s: missing drop coordinates", o.ID)
	}
	if o.Pickup == (Point{}) {
		return fmt.Errorf("order %s: missing pickup coordinates", o.ID)
	}
	if o.WeightLbs <= 0 {
		return fmt.Errorf("order %s: weight must be positive, got %v", o.ID, o.WeightLbs)
	}
	if o.Delivery.IsZero() {
		return fmt.Errorf("order %s: missing requested delivery date", o.ID)
	}
	return nil
}
