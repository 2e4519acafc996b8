package metrics

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kfadel/gridops/core/metrics"
	"github.com/kfadel/gridops/infra/logger"
)

// InfluxSink writes pipeline events to an InfluxDB instance using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
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

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a NopSink
// when the health check fails, so a missing database never blocks the
// pipeline.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.Sink {
	sink := NewInfluxSink(url, token, org, bucket)
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

// RecordForecast writes a forecast event point.
func (s *InfluxSink) RecordForecast(ev coremetrics.ForecastEvent) error {
	p := write.NewPointWithMeasurement("grid_forecast").
		AddTag("unit_id", ev.UnitID).
		AddField("peak_pct", round3(ev.PeakPct)).
		AddField("horizon_hours", ev.HorizonHours).
		SetTime(ev.Time)
	return s.write(p)
}

// RecordRisk writes a risk assessment point.
func (s *InfluxSink) RecordRisk(ev coremetrics.RiskEvent) error {
	p := write.NewPointWithMeasurement("grid_risk").
		AddTag("unit_id", ev.UnitID).
		AddTag("level", string(ev.Level)).
		AddField("score", round3(ev.Score)).
		SetTime(ev.Time)
	return s.write(p)
}

// RecordPlan writes a mitigation plan point.
func (s *InfluxSink) RecordPlan(ev coremetrics.PlanEvent) error {
	p := write.NewPointWithMeasurement("grid_plan").
		AddTag("unit_id", ev.UnitID).
		AddField("plans", ev.Plans).
		AddField("best_reduction", round3(ev.BestReduction)).
		SetTime(ev.Time)
	return s.write(p)
}

// RecordNarrative writes a plan enhancement point.
func (s *InfluxSink) RecordNarrative(ev coremetrics.NarrativeEvent) error {
	p := write.NewPointWithMeasurement("grid_narrative").
		AddTag("unit_id", ev.UnitID).
		AddTag("source", string(ev.Source)).
		AddField("latency_ms", ev.Latency.Milliseconds()).
		SetTime(ev.Time)
	return s.write(p)
}

// RecordFailure writes a batch failure point.
func (s *InfluxSink) RecordFailure(ev coremetrics.FailureEvent) error {
	p := write.NewPointWithMeasurement("grid_failure").
		AddTag("unit_id", ev.UnitID).
		AddTag("stage", ev.Stage).
		AddField("count", 1).
		SetTime(ev.Time)
	return s.write(p)
}

func (s *InfluxSink) write(p *write.Point) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying client.
func (s *InfluxSink) Close() {
	s.client.Close()
}

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
