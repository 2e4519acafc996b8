package model

import (
	"fmt"
	"time"
)

// CoolingType identifies the cooling system of a transformer.
type CoolingType string

const (
	CoolingONAN CoolingType = "ONAN" // oil natural, air natural
	CoolingONAF CoolingType = "ONAF" // oil natural, air forced
	CoolingOFAF CoolingType = "OFAF" // oil forced, air forced
)

// Transformer is a load-serving distribution transformer. Load readings are
// collected per transformer and overload risk is assessed against its rated
// capacity and safe operating percentage.
type Transformer struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	RatedKVA    float64     `json:"rated_kva"`
	MaxLoadPct  float64     `json:"max_load_pct"` // safe operating limit, percent of rated capacity
	Cooling     CoolingType `json:"cooling_type"`
	InstallYear int         `json:"install_year"`
	Active      bool        `json:"active"`
}

// RatedKW converts the kVA rating to kW assuming a 0.9 power factor.
func (t Transformer) RatedKW() float64 {
	return t.RatedKVA * 0.9
}

// SafeCapacityKW is the maximum load in kW within the safe operating limit.
func (t Transformer) SafeCapacityKW() float64 {
	return t.RatedKW() * t.MaxLoadPct / 100
}

// Age returns the transformer age in years at the given time.
func (t Transformer) Age(now time.Time) int {
	return now.Year() - t.InstallYear
}

// Validate checks that the transformer record is usable for scoring.
func (t Transformer) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("transformer id is required")
	}
	if t.RatedKVA <= 0 {
		return fmt.Errorf("transformer %s: rated capacity must be positive", t.Name)
	}
	if t.MaxLoadPct <= 0 || t.MaxLoadPct > 100 {
		return fmt.Errorf("transformer %s: max load pct out of range", t.Name)
	}
	return nil
}
