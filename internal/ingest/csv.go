// Package ingest reads order records from CSV and validates them into the
// routing engine's input model. Validation fails fast: a malformed row aborts
// the whole load and is never silently skipped.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/freightplan/freightplan/core/geo"
	"github.com/freightplan/freightplan/core/model"
	"github.com/freightplan/freightplan/core/units"
)

// DateLayout is the expected delivery-date format.
const DateLayout = "2006-01-02"

// InputError reports a record that the engine cannot work with.
type InputError struct {
	Row   int
	Field string
	Cause error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("input row %d, field %q: %v", e.Row, e.Field, e.Cause)
}

func (e *InputError) Unwrap() error { return e.Cause }

// Columns required in the header; any order, extra columns ignored.
var required = []string{
	"order_id", "pickup_city", "drop_city", "quantity", "unit", "requested_delivery_date",
}

// Optional pass-through and pre-clustering columns.
const (
	colDocument = "document_id"
	colPO       = "po_number"
	colMaterial = "material"
	colRegion   = "region"
)

// ReadOrders parses CSV order records, resolving both city columns through
// the resolver and normalizing quantity+unit to pounds.
func ReadOrders(r io.Reader, resolver geo.Resolver) ([]model.Order, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("missing required column %q", name)
		}
	}

	var orders []model.Order
	for row := 2; ; row++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", row, err)
		}
		o, err := parseOrder(record, cols, row, resolver)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func parseOrder(record []string, cols map[string]int, row int, resolver geo.Resolver) (model.Order, error) {
	field := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	o := model.Order{
		ID:         field("order_id"),
		DocumentID: field(colDocument),
		PONumber:   field(colPO),
		Material:   field(colMaterial),
	}
	if o.ID == "" {
		return o, &InputError{Row: row, Field: "order_id", Cause: fmt.Errorf("empty")}
	}

	pickup, err := resolver.Resolve(field("pickup_city"))
	if err != nil {
		return o, &InputError{Row: row, Field: "pickup_city", Cause: err}
	}
	drop, err := resolver.Resolve(field("drop_city"))
	if err != nil {
		return o, &InputError{Row: row, Field: "drop_city", Cause: err}
	}
	o.Pickup, o.Drop = pickup, drop

	qty, err := strconv.ParseFloat(field("quantity"), 64)
	if err != nil {
		return o, &InputError{Row: row, Field: "quantity", Cause: err}
	}
	o.WeightLbs = units.ToPounds(qty, field("unit"))
	if o.WeightLbs <= 0 {
		return o, &InputError{Row: row, Field: "quantity", Cause: fmt.Errorf("weight must be positive, got %v", o.WeightLbs)}
	}

	o.Delivery, err = time.Parse(DateLayout, field("requested_delivery_date"))
	if err != nil {
		return o, &InputError{Row: row, Field: "requested_delivery_date", Cause: err}
	}

	if v := field(colRegion); v != "" {
		region, err := strconv.Atoi(v)
		if err != nil {
			return o, &InputError{Row: row, Field: colRegion, Cause: err}
		}
		o.Region = region
	}

	if err := o.Validate(); err != nil {
		return o, &InputError{Row: row, Field: "order", Cause: err}
	}
	return o, nil
}
