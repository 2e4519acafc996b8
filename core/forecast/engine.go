package forecast

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	"github.com/kfadel/gridops/core/logger"
	"github.com/kfadel/gridops/core/model"
	"github.com/kfadel/gridops/core/telemetry"
)

const (
	// minReadings is the minimum number of qualifying readings in the
	// lookback window.
	minReadings = 24
	// minHourSamples is the minimum per-hour sample count below which a fixed
	// low confidence is used.
	minHourSamples = 3

	weekendFactor = 0.85
	methodName    = "baseline"
)

// Config defines forecasting parameters.
type Config struct {
	LookbackDays int `json:"lookback_days"`
	HorizonHours int `json:"horizon_hours"`
}

// SetDefaults applies the standard 7-day lookback and 72-hour horizon.
func (c *Config) SetDefaults() {
	if c.LookbackDays <= 0 {
		c.LookbackDays = 7
	}
	if c.HorizonHours <= 0 {
		c.HorizonHours = 72
	}
}

// Engine generates load forecasts from a telemetry store. Aside from the
// caller-supplied reference time it is a pure function of its inputs.
type Engine struct {
	cfg   Config
	store telemetry.Store
	log   logger.Logger
}

// NewEngine creates a forecasting engine.
func NewEngine(cfg Config, store telemetry.Store, log logger.Logger) *Engine {
	cfg.SetDefaults()
	return &Engine{cfg: cfg, store: store, log: log}
}

// Forecast produces an hourly forecast for the unit starting at now. It
// returns an InsufficientDataError when fewer than 24 qualifying readings
// exist in the lookback window.
func (e *Engine) Forecast(ctx context.Context, unit model.Transformer, now time.Time) (model.Forecast, error) {
	from := now.Add(-time.Duration(e.cfg.LookbackDays) * 24 * time.Hour)
	readings, err := e.store.Readings(ctx, unit.ID, from, now)
	if err != nil {
		return model.Forecast{}, err
	}
	if len(readings) < minReadings {
		return model.Forecast{}, &InsufficientDataError{Unit: unit.Name, Have: len(readings), Need: minReadings}
	}

	hourly := hourlyLoads(readings)
	means := hourlyMeans(hourly, readings)
	temps := temperatures(readings)

	ratedKW := unit.RatedKW()
	predictions := make([]model.Prediction, 0, e.cfg.HorizonHours)
	var peakKW, peakPct float64
	peakTime := now

	for offset := 0; offset < e.cfg.HorizonHours; offset++ {
		target := now.Add(time.Duration(offset) * time.Hour)
		hour := target.Hour()

		kw := means[hour]
		if wd := target.Weekday(); wd == time.Saturday || wd == time.Sunday {
			kw *= weekendFactor
		}
		kw *= temperatureFactor(hour, temps)

		pct := kw / ratedKW * 100
		if kw > peakKW {
			peakKW = kw
			peakPct = pct
			peakTime = target
		}

		predictions = append(predictions, model.Prediction{
			Timestamp:    target,
			PredictedKW:  round2(kw),
			PredictedPct: round2(pct),
			Confidence:   round3(hourConfidence(hourly[hour])),
		})
	}

	e.log.Debugw("forecast generated", map[string]any{
		"unit":      unit.Name,
		"horizon_h": e.cfg.HorizonHours,
		"peak_pct":  round2(peakPct),
		"records":   len(readings),
	})

	return model.Forecast{
		ID:           uuid.NewString(),
		UnitID:       unit.ID,
		GeneratedAt:  now,
		HorizonHours: e.cfg.HorizonHours,
		Predictions:  predictions,
		PeakKW:       round2(peakKW),
		PeakPct:      round2(peakPct),
		PeakTime:     peakTime,
		Method:       methodName,
		Metadata: model.ForecastMetadata{
			LookbackDays:      e.cfg.LookbackDays,
			HistoricalRecords: len(readings),
			Method:            "hourly_average_with_seasonality",
		},
	}, nil
}

// hourlyLoads buckets load values by hour of day.
func hourlyLoads(readings []model.Reading) [24][]float64 {
	var buckets [24][]float64
	for _, r := range readings {
		h := r.Timestamp.Hour()
		buckets[h] = append(buckets[h], r.LoadKW)
	}
	return buckets
}

// hourlyMeans computes the mean load per hour of day. Hours without samples
// fall back to the mean over the whole window, and to 0 when the window is
// empty.
func hourlyMeans(buckets [24][]float64, readings []model.Reading) [24]float64 {
	var global float64
	if len(readings) > 0 {
		all := make([]float64, len(readings))
		for i, r := range readings {
			all[i] = r.LoadKW
		}
		global = stat.Mean(all, nil)
	}
	var means [24]float64
	for h, loads := range buckets {
		if len(loads) > 0 {
			means[h] = stat.Mean(loads, nil)
		} else {
			means[h] = global
		}
	}
	return means
}

func temperatures(readings []model.Reading) []float64 {
	var temps []float64
	for _, r := range readings {
		if r.HasTemperature() {
			temps = append(temps, *r.TempC)
		}
	}
	return temps
}

// temperatureFactor estimates the temperature impact on load for the target
// hour. Without temperature history it falls back to a fixed time-of-day
// heuristic; with history it projects the historical mean temperature onto
// the hour and applies 1% extra load per degree above 25°C.
func temperatureFactor(hour int, temps []float64) float64 {
	if len(temps) == 0 {
		switch {
		case hour >= 12 && hour <= 18:
			return 1.10
		case (hour >= 6 && hour <= 11) || (hour >= 19 && hour <= 22):
			return 1.0
		default:
			return 0.95
		}
	}

	estimated := stat.Mean(temps, nil)
	switch {
	case hour >= 12 && hour <= 16:
		estimated += 3
	case hour >= 17 && hour <= 20:
		estimated += 1
	case hour <= 6:
		estimated -= 3
	}
	if estimated > 25 {
		return 1 + (estimated-25)*0.01
	}
	return 1.0
}

// hourConfidence maps the coefficient of variation of the hour's historical
// loads to a confidence score, scaled down for small sample counts.
func hourConfidence(loads []float64) float64 {
	if len(loads) < minHourSamples {
		return 0.60
	}
	mean := stat.Mean(loads, nil)
	if mean == 0 {
		return 0.70
	}
	cv := popStdDev(loads, mean) / mean
	confidence := math.Max(0.70, math.Min(0.95, 1-cv))
	confidence *= math.Min(1, float64(len(loads))/7)
	return confidence
}

// popStdDev is the population standard deviation (divisor n, not n-1), which
// matches how the coefficient of variation is defined here.
func popStdDev(xs []float64, mean float64) float64 {
	var ss float64
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)))
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
