// Package telemetry provides persistent backends for the telemetry read
// contract.
package telemetry

import (
	"context"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/kfadel/gridops/core/logger"
	"github.com/kfadel/gridops/core/model"
	zlog "github.com/kfadel/gridops/infra/logger"
)

// InfluxConfig holds connection settings for an InfluxDB 2.x backend.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// Validate returns an error when a required field is missing.
func (c InfluxConfig) Validate() error {
	if c.URL == "" || c.Org == "" || c.Bucket == "" {
		return fmt.Errorf("influx telemetry: url, org and bucket are required")
	}
	return nil
}

// InfluxStore reads load readings from an InfluxDB bucket. Points are written
// under the grid_reading measurement with a unit_id tag and load_kw, load_pct
// and temperature_c fields.
type InfluxStore struct {
	client   influxdb2.Client
	query    api.QueryAPI
	writeAPI api.WriteAPIBlocking
	bucket   string
	log      logger.Logger
}

// NewInfluxStore connects to InfluxDB and verifies the server is reachable.
func NewInfluxStore(ctx context.Context, cfg InfluxConfig) (*InfluxStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client := influxdb2.NewClient(cfg.URL, cfg.Token)
	ok, err := client.Ping(ctx)
	if err != nil || !ok {
		client.Close()
		return nil, fmt.Errorf("influx telemetry: ping %s failed: %w", cfg.URL, err)
	}
	return &InfluxStore{
		client:   client,
		query:    client.QueryAPI(cfg.Org),
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		bucket:   cfg.Bucket,
		log:      zlog.New("influx-telemetry"),
	}, nil
}

// Append writes a reading as a point.
func (s *InfluxStore) Append(ctx context.Context, r model.Reading) error {
	fields := map[string]interface{}{
		"load_kw":  r.LoadKW,
		"load_pct": r.LoadPct,
	}
	if r.TempC != nil {
		fields["temperature_c"] = *r.TempC
	}
	p := influxdb2.NewPoint("grid_reading",
		map[string]string{"unit_id": r.UnitID},
		fields,
		r.Timestamp,
	)
	if err := s.writeAPI.WritePoint(ctx, p); err != nil {
		return fmt.Errorf("influx telemetry: write point: %w", err)
	}
	return nil
}

// Readings returns readings for a unit in [from, to), ascending by time.
func (s *InfluxStore) Readings(ctx context.Context, unitID string, from, to time.Time) ([]model.Reading, error) {
	flux := fmt.Sprintf(`from(bucket: %q)
  |> range(start: %s, stop: %s)
  |> filter(fn: (r) => r._measurement == "grid_reading" and r.unit_id == %q)
  |> pivot(rowKey: ["_time"], columnKey: ["_field"], valueColumn: "_value")
  |> sort(columns: ["_time"])`,
		s.bucket, from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339), unitID)

	res, err := s.query.Query(ctx, flux)
	if err != nil {
		return nil, fmt.Errorf("influx telemetry: query readings: %w", err)
	}
	defer res.Close()

	var out []model.Reading
	for res.Next() {
		rec := res.Record()
		r := model.Reading{
			UnitID:    unitID,
			Timestamp: rec.Time(),
		}
		if v, ok := rec.ValueByKey("load_kw").(float64); ok {
			r.LoadKW = v
		}
		if v, ok := rec.ValueByKey("load_pct").(float64); ok {
			r.LoadPct = v
		}
		if v, ok := rec.ValueByKey("temperature_c").(float64); ok {
			t := v
			r.TempC = &t
		}
		out = append(out, r)
	}
	if res.Err() != nil {
		return nil, fmt.Errorf("influx telemetry: read result: %w", res.Err())
	}
	return out, nil
}

// LatestReading returns the most recent reading for a unit within the
// trailing day, or false when none exists.
func (s *InfluxStore) LatestReading(ctx context.Context, unitID string) (model.Reading, bool, error) {
	flux := fmt.Sprintf(`from(bucket: %q)
  |> range(start: -24h)
  |> filter(fn: (r) => r._measurement == "grid_reading" and r.unit_id == %q)
  |> pivot(rowKey: ["_time"], columnKey: ["_field"], valueColumn: "_value")
  |> sort(columns: ["_time"], desc: true)
  |> limit(n: 1)`, s.bucket, unitID)

	res, err := s.query.Query(ctx, flux)
	if err != nil {
		return model.Reading{}, false, fmt.Errorf("influx telemetry: query latest: %w", err)
	}
	defer res.Close()

	if !res.Next() {
		if res.Err() != nil {
			return model.Reading{}, false, fmt.Errorf("influx telemetry: read result: %w", res.Err())
		}
		return model.Reading{}, false, nil
	}
	rec := res.Record()
	r := model.Reading{UnitID: unitID, Timestamp: rec.Time()}
	if v, ok := rec.ValueByKey("load_kw").(float64); ok {
		r.LoadKW = v
	}
	if v, ok := rec.ValueByKey("load_pct").(float64); ok {
		r.LoadPct = v
	}
	if v, ok := rec.ValueByKey("temperature_c").(float64); ok {
		t := v
		r.TempC = &t
	}
	return r, true, nil
}

// LatestTemperature returns the most recent reading carrying an ambient
// temperature sample, or false when none exists.
func (s *InfluxStore) LatestTemperature(ctx context.Context, unitID string) (model.Reading, bool, error) {
	flux := fmt.Sprintf(`from(bucket: %q)
  |> range(start: -24h)
  |> filter(fn: (r) => r._measurement == "grid_reading" and r.unit_id == %q and r._field == "temperature_c")
  |> last()`, s.bucket, unitID)

	res, err := s.query.Query(ctx, flux)
	if err != nil {
		return model.Reading{}, false, fmt.Errorf("influx telemetry: query temperature: %w", err)
	}
	defer res.Close()

	if !res.Next() {
		if res.Err() != nil {
			return model.Reading{}, false, fmt.Errorf("influx telemetry: read result: %w", res.Err())
		}
		return model.Reading{}, false, nil
	}
	rec := res.Record()
	v, ok := rec.Value().(float64)
	if !ok {
		return model.Reading{}, false, nil
	}
	t := v
	return model.Reading{UnitID: unitID, Timestamp: rec.Time(), TempC: &t}, true, nil
}

// Close releases the underlying client.
func (s *InfluxStore) Close() {
	s.client.Close()
}
