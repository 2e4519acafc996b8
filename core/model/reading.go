package model

import "time"

// Reading is a single telemetry sample for a transformer. Readings are
// append-only and ordered by timestamp per unit.
type Reading struct {
	UnitID    string    `json:"unit_id"`
	Timestamp time.Time `json:"timestamp"`
	LoadKW    float64   `json:"load_kw"`
	LoadPct   float64   `json:"load_pct"`
	TempC     *float64  `json:"temp_c,omitempty"`
}

// HasTemperature reports whether the sample carries an ambient temperature.
func (r Reading) HasTemperature() bool { return r.TempC != nil }
