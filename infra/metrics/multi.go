package metrics

import (
	"errors"

	coremetrics "github.com/freightplan/freightplan/core/metrics"
	"github.com/freightplan/freightplan/core/model"
)

// MultiSink fans records out to several sinks, collecting all failures.
type MultiSink struct {
	sinks []coremetrics.Sink
}

// NewMultiSink combines sinks into one.
func NewMultiSink(sinks ...coremetrics.Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

// RecordSolve implements metrics.Sink.
func (m *MultiSink) RecordSolve(rec coremetrics.SolveRecord) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.RecordSolve(rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RecordTrucks implements metrics.Sink.
func (m *MultiSink) RecordTrucks(planID string, trucks []model.Truck) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.RecordTrucks(planID, trucks); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
