package forecast

import (
	"context"
	"testing"
	"time"

	"github.com/kfadel/gridops/core/model"
	"github.com/kfadel/gridops/core/telemetry"
	"github.com/kfadel/gridops/infra/logger"
)

// monday is a fixed reference time so weekday/weekend offsets are stable.
var monday = time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

func testUnit() model.Transformer {
	return model.Transformer{
		ID:          "T-01",
		Name:        "T-01",
		RatedKVA:    500,
		MaxLoadPct:  90,
		Cooling:     model.CoolingONAN,
		InstallYear: 2017,
		Active:      true,
	}
}

// seedConstantLoad writes one reading per hour over the week before monday.
func seedConstantLoad(t *testing.T, store *telemetry.MemoryStore, unitID string, loadKW float64, tempC *float64) {
	t.Helper()
	start := monday.Add(-7 * 24 * time.Hour)
	for h := 0; h < 7*24; h++ {
		r := model.Reading{
			UnitID:    unitID,
			Timestamp: start.Add(time.Duration(h) * time.Hour),
			LoadKW:    loadKW,
			LoadPct:   loadKW / 450 * 100,
			TempC:     tempC,
		}
		if err := store.Append(context.Background(), r); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
}

func TestForecastInsufficientData(t *testing.T) {
	store := telemetry.NewMemoryStore()
	for h := 0; h < 10; h++ {
		_ = store.Append(context.Background(), model.Reading{
			UnitID:    "T-01",
			Timestamp: monday.Add(-time.Duration(h+1) * time.Hour),
			LoadKW:    100,
		})
	}
	engine := NewEngine(Config{}, store, logger.NopLogger{})

	_, err := engine.Forecast(context.Background(), testUnit(), monday)
	if err == nil {
		t.Fatal("expected error for sparse history")
	}
	if !IsInsufficientData(err) {
		t.Fatalf("expected insufficient data error, got %v", err)
	}
}

func TestForecastWeekendFactor(t *testing.T) {
	store := telemetry.NewMemoryStore()
	seedConstantLoad(t, store, "T-01", 100, nil)
	engine := NewEngine(Config{HorizonHours: 168}, store, logger.NopLogger{})

	fc, err := engine.Forecast(context.Background(), testUnit(), monday)
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}
	if len(fc.Predictions) != 168 {
		t.Fatalf("expected 168 predictions, got %d", len(fc.Predictions))
	}

	// Hour 10 has a neutral time-of-day temperature factor.
	weekday := fc.Predictions[10]   // Monday 10:00
	saturday := fc.Predictions[130] // Saturday 10:00
	if weekday.PredictedKW != 100 {
		t.Fatalf("expected 100 kW on weekday, got %v", weekday.PredictedKW)
	}
	if saturday.PredictedKW != 85 {
		t.Fatalf("expected 85 kW on Saturday, got %v", saturday.PredictedKW)
	}
}

func TestForecastTemperatureProjection(t *testing.T) {
	store := telemetry.NewMemoryStore()
	temp := 30.0
	seedConstantLoad(t, store, "T-01", 100, &temp)
	engine := NewEngine(Config{HorizonHours: 24}, store, logger.NopLogger{})

	fc, err := engine.Forecast(context.Background(), testUnit(), monday)
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}

	// Afternoon projects mean+3 degrees: 33C adds 8% load.
	if got := fc.Predictions[14].PredictedKW; got != 108 {
		t.Fatalf("expected 108 kW at 14:00, got %v", got)
	}
	// Early morning projects mean-3 degrees: 27C adds 2%.
	if got := fc.Predictions[2].PredictedKW; got != 102 {
		t.Fatalf("expected 102 kW at 02:00, got %v", got)
	}
}

func TestForecastPeakTracking(t *testing.T) {
	store := telemetry.NewMemoryStore()
	start := monday.Add(-7 * 24 * time.Hour)
	for h := 0; h < 7*24; h++ {
		ts := start.Add(time.Duration(h) * time.Hour)
		load := 100.0
		if ts.Hour() == 18 {
			load = 400
		}
		_ = store.Append(context.Background(), model.Reading{UnitID: "T-01", Timestamp: ts, LoadKW: load})
	}
	engine := NewEngine(Config{HorizonHours: 24}, store, logger.NopLogger{})

	fc, err := engine.Forecast(context.Background(), testUnit(), monday)
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}
	if fc.PeakTime.Hour() != 18 {
		t.Fatalf("expected peak at 18:00, got %v", fc.PeakTime)
	}
	if fc.PeakKW <= fc.Predictions[10].PredictedKW {
		t.Fatalf("peak %v not above off-peak %v", fc.PeakKW, fc.Predictions[10].PredictedKW)
	}
	if fc.PeakPct != round2(fc.PeakKW/450*100) {
		t.Fatalf("peak pct %v inconsistent with peak kw %v", fc.PeakPct, fc.PeakKW)
	}
}

func TestHourConfidenceBounds(t *testing.T) {
	cases := []struct {
		name  string
		loads []float64
		want  float64
	}{
		{"too few samples", []float64{100, 100}, 0.60},
		{"zero mean", []float64{0, 0, 0}, 0.70},
		{"stable full week", []float64{100, 100, 100, 100, 100, 100, 100}, 0.95},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := hourConfidence(tc.loads); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestHourConfidenceScalesWithSamples(t *testing.T) {
	// Three stable samples cap out at 0.95 but scale by 3/7.
	got := hourConfidence([]float64{100, 100, 100})
	want := 0.95 * 3 / 7
	if diff := got - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestForecastMetadata(t *testing.T) {
	store := telemetry.NewMemoryStore()
	seedConstantLoad(t, store, "T-01", 100, nil)
	engine := NewEngine(Config{}, store, logger.NopLogger{})

	fc, err := engine.Forecast(context.Background(), testUnit(), monday)
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}
	if fc.Method != "baseline" {
		t.Fatalf("unexpected method %q", fc.Method)
	}
	if fc.Metadata.LookbackDays != 7 {
		t.Fatalf("unexpected lookback %d", fc.Metadata.LookbackDays)
	}
	if fc.Metadata.HistoricalRecords != 7*24 {
		t.Fatalf("unexpected record count %d", fc.Metadata.HistoricalRecords)
	}
	if fc.ID == "" || fc.UnitID != "T-01" {
		t.Fatalf("missing identity fields: %+v", fc)
	}
}
