package model

import "time"

// Prediction is a single hourly entry of a load forecast.
type Prediction struct {
	Timestamp    time.Time `json:"timestamp"`
	PredictedKW  float64   `json:"predicted_kw"`
	PredictedPct float64   `json:"predicted_pct"`
	Confidence   float64   `json:"confidence"` // [0,1]
}

// ForecastMetadata records how a forecast was produced.
type ForecastMetadata struct {
	LookbackDays      int    `json:"lookback_days"`
	HistoricalRecords int    `json:"historical_records"`
	Method            string `json:"method"`
}

// Forecast is an hourly load forecast for one transformer. A forecast is
// immutable once created; later runs supersede it rather than mutate it.
// Prediction timestamps are strictly increasing, one entry per horizon hour.
type Forecast struct {
	ID           string           `json:"id"`
	UnitID       string           `json:"unit_id"`
	GeneratedAt  time.Time        `json:"generated_at"`
	HorizonHours int              `json:"horizon_hours"`
	Predictions  []Prediction     `json:"predictions"`
	PeakKW       float64          `json:"peak_kw"`
	PeakPct      float64          `json:"peak_pct"`
	PeakTime     time.Time        `json:"peak_time"`
	Method       string           `json:"method"`
	Metadata     ForecastMetadata `json:"metadata"`
}

// Window returns the time span covered by the predictions.
func (f Forecast) Window() (start, end time.Time) {
	if len(f.Predictions) == 0 {
		return time.Time{}, time.Time{}
	}
	return f.Predictions[0].Timestamp, f.Predictions[len(f.Predictions)-1].Timestamp
}

// MeanConfidence averages the per-hour confidences, or 0.5 when the forecast
// carries no predictions.
func (f Forecast) MeanConfidence() float64 {
	if len(f.Predictions) == 0 {
		return 0.5
	}
	var sum float64
	for _, p := range f.Predictions {
		sum += p.Confidence
	}
	return sum / float64(len(f.Predictions))
}
