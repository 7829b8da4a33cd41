// Package app wires configuration into a runnable planning service.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/freightplan/freightplan/config"
	"github.com/freightplan/freightplan/core/cluster"
	"github.com/freightplan/freightplan/core/consolidate"
	"github.com/freightplan/freightplan/core/geo"
	coremetrics "github.com/freightplan/freightplan/core/metrics"
	"github.com/freightplan/freightplan/core/milp"
	"github.com/freightplan/freightplan/core/model"
	"github.com/freightplan/freightplan/core/routing"
	"github.com/freightplan/freightplan/infra/logger"
	"github.com/freightplan/freightplan/infra/metrics"
	"github.com/freightplan/freightplan/infra/publish"
	"github.com/freightplan/freightplan/infra/solver"
	"github.com/freightplan/freightplan/internal/eventbus"
	"github.com/freightplan/freightplan/internal/ingest"
)

// Service runs the full pipeline: ingest, cluster, consolidate, route.
type Service struct {
	planner     *Pipeline
	bus         *eventbus.Bus
	log         logger.Logger
	publisher   *publish.Publisher
	promEnabled bool
	promPort    string
}

// Pipeline holds the planning stages assembled from configuration.
type Pipeline struct {
	Resolver geo.Resolver
	Assigner cluster.Assigner
	Grouper  consolidate.Grouper
	Planner  *routing.Planner
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	var sinks []coremetrics.Sink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink()
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(cfg.Metrics))
	}
	var sink coremetrics.Sink
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = metrics.NewMultiSink(sinks...)
	}

	var engine milp.Engine
	if cfg.Solver.Enabled {
		engine = solver.New(
			time.Duration(cfg.Solver.TimeLimitSeconds)*time.Second,
			cfg.Solver.GapPercent/100,
		)
	}

	bus := eventbus.New()
	planner := routing.NewPlanner(engine, logg, sink, bus, cfg.Solver.Workers)

	var assigner cluster.Assigner = cluster.PassThrough{}
	if cfg.Cluster.Mode == "kmeans" {
		assigner = cluster.NewKMeans(cfg.Cluster.K)
	}

	grouper := consolidate.New()
	grouper.WindowDays = cfg.Consolidation.WindowDays

	cities := make(geo.StaticResolver, len(cfg.Geocode.Cities))
	for name, c := range cfg.Geocode.Cities {
		cities[name] = model.Point{Lat: c.Lat, Lng: c.Lng}
	}

	svc := &Service{
		planner: &Pipeline{
			Resolver: cities,
			Assigner: assigner,
			Grouper:  grouper,
			Planner:  planner,
		},
		bus:         bus,
		log:         logg,
		promEnabled: cfg.Metrics.PrometheusEnabled,
		promPort:    cfg.Metrics.PrometheusPort,
	}
	if cfg.Publish.Enabled {
		pub, err := publish.New(cfg.Publish)
		if err != nil {
			return nil, fmt.Errorf("plan publisher: %w", err)
		}
		svc.publisher = pub
	}
	return svc, nil
}

// Run reads orders from in, plans them, and writes the plan as JSON to out.
func (s *Service) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	if s.promEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	orders, err := ingest.ReadOrders(in, s.planner.Resolver)
	if err != nil {
		return fmt.Errorf("read orders: %w", err)
	}
	s.log.Infof("loaded %d orders", len(orders))

	regions := s.planner.Assigner.Assign(orders)
	for i := range orders {
		orders[i].Region = regions[i]
	}

	groups := s.planner.Grouper.Group(orders)
	s.log.Infof("consolidated into %d groups", len(groups))

	plan := s.planner.Planner.PlanGroups(ctx, groups)
	s.log.Infof("plan %s: %d trucks, %d skipped groups", plan.ID, len(plan.Trucks), len(plan.Skipped))

	if s.publisher != nil {
		if err := s.publisher.PublishTrucks(plan.ID, plan.Trucks); err != nil {
			s.log.Errorf("publish plan: %v", err)
		}
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(plan)
}

// RunFiles is Run with file paths. An empty output path writes to stdout.
func (s *Service) RunFiles(ctx context.Context, inputPath, outputPath string) error {
	in, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer func() {
		if cerr := in.Close(); cerr != nil {
			s.log.Warnf("close input: %v", cerr)
		}
	}()

	var out io.Writer = os.Stdout
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil {
				s.log.Warnf("close output: %v", cerr)
			}
		}()
		out = f
	}
	return s.Run(ctx, in, out)
}

// Close releases resources held by the service.
func (s *Service) Close() {
	if s.publisher != nil {
		s.publisher.Close()
	}
	s.bus.Close()
}
