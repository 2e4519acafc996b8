// Package telemetry defines the read contract for transformer load history.
// The pipeline only ever reads readings; ingestion and persistence live behind
// this interface.
package telemetry

import (
	"context"
	"time"

	"github.com/kfadel/gridops/core/model"
)

// Store supplies time-ordered load/temperature readings per transformer.
type Store interface {
	// Readings returns the readings for the unit within [from, to], ordered
	// by timestamp ascending.
	Readings(ctx context.Context, unitID string, from, to time.Time) ([]model.Reading, error)

	// LatestReading returns the most recent reading for the unit. The bool is
	// false when the unit has no readings.
	LatestReading(ctx context.Context, unitID string) (model.Reading, bool, error)

	// LatestTemperature returns the most recent reading that carries a
	// temperature sample. The bool is false when none exists.
	LatestTemperature(ctx context.Context, unitID string) (model.Reading, bool, error)
}

// Appender accepts new readings. Implemented by stores that also ingest.
type Appender interface {
	Append(ctx context.Context, r model.Reading) error
}
