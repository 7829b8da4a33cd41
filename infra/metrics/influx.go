package metrics

import (
	"context"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	corelogger "github.com/freightplan/freightplan/core/logger"
	coremetrics "github.com/freightplan/freightplan/core/metrics"
	"github.com/freightplan/freightplan/core/model"
	"github.com/freightplan/freightplan/infra/logger"
)

// InfluxSink writes planning records to InfluxDB with the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      corelogger.Logger
}

// NewInfluxSink creates a sink for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback health-checks the endpoint and degrades to a nop
// sink when it is unreachable, so planning never blocks on observability.
func NewInfluxSinkWithFallback(cfg coremetrics.Config) coremetrics.Sink {
	sink := NewInfluxSink(cfg.InfluxURL, cfg.InfluxToken, cfg.InfluxOrg, cfg.InfluxBucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordSolve implements metrics.Sink.
func (s *InfluxSink) RecordSolve(rec coremetrics.SolveRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("routing_solve").
		AddTag("plan_id", rec.PlanID).
		AddTag("group_id", rec.GroupID).
		AddTag("solver", rec.Solver).
		AddTag("outcome", rec.Outcome()).
		AddField("orders", rec.Orders).
		AddField("trucks", rec.Trucks).
		AddField("duration_ms", rec.Duration.Milliseconds()).
		SetTime(time.Now())
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordTrucks implements metrics.Sink.
func (s *InfluxSink) RecordTrucks(planID string, trucks []model.Truck) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, t := range trucks {
		p := write.NewPointWithMeasurement("routing_truck").
			AddTag("plan_id", planID).
			AddTag("group_id", t.GroupID).
			AddTag("truck_id", t.ID).
			AddTag("shipment_type", string(t.Type)).
			AddTag("solver", t.Solver).
			AddField("stops", t.StopCount()).
			AddField("weight_lbs", t.WeightLbs).
			AddField("distance_miles", t.Distance).
			SetTime(time.Now())
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying client.
func (s *InfluxSink) Close() {
	s.client.Close()
}
