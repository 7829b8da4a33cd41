// Package metrics provides the Prometheus and InfluxDB sink implementations.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	coremetrics "github.com/freightplan/freightplan/core/metrics"
	"github.com/freightplan/freightplan/core/model"
)

// PromSink records planning outcomes as Prometheus metrics.
type PromSink struct {
	solves   *prometheus.CounterVec
	duration *prometheus.HistogramVec
	trucks   prometheus.Gauge
}

// NewPromSink registers the planning metrics on the default registerer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer. A nil
// registerer defaults to the global one.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	solves := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "routing_solves_total",
		Help: "Group solves by solver and outcome",
	}, []string{"solver", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "routing_solve_duration_seconds",
		Help:    "Wall-clock time spent routing one group",
		Buckets: prometheus.DefBuckets,
	}, []string{"solver"})
	trucks := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "routing_plan_trucks",
		Help: "Trucks dispatched by the latest plan",
	})

	for _, c := range []prometheus.Collector{solves, duration, trucks} {
		if err := reg.Register(c); err != nil {
			if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
				switch existing := are.ExistingCollector.(type) {
				case *prometheus.CounterVec:
					solves = existing
				case *prometheus.HistogramVec:
					duration = existing
				case prometheus.Gauge:
					trucks = existing
				}
				continue
			}
			return nil, err
		}
	}
	return &PromSink{solves: solves, duration: duration, trucks: trucks}, nil
}

// RecordSolve implements metrics.Sink.
func (s *PromSink) RecordSolve(rec coremetrics.SolveRecord) error {
	solver := rec.Solver
	if solver == "" {
		solver = "none"
	}
	s.solves.WithLabelValues(solver, rec.Outcome()).Inc()
	if !rec.Skipped {
		s.duration.WithLabelValues(solver).Observe(rec.Duration.Seconds())
	}
	return nil
}

// RecordTrucks implements metrics.Sink.
func (s *PromSink) RecordTrucks(_ string, trucks []model.Truck) error {
	s.trucks.Set(float64(len(trucks)))
	return nil
}

// StartPromServer exposes /metrics until the context is cancelled.
func StartPromServer(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: ":" + port, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
