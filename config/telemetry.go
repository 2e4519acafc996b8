package config

import (
	"fmt"

	"github.com/kfadel/gridops/infra/telemetry"
)

// TelemetryConfig selects the reading store backend.
type TelemetryConfig struct {
	// Backend selects the store type: "memory" or "influx".
	Backend string                 `json:"backend"`
	Influx  telemetry.InfluxConfig `json:"influx"`
}

// SetDefaults applies sane defaults.
func (c *TelemetryConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "memory"
	}
}

// Validate checks mandatory fields.
func (c TelemetryConfig) Validate() error {
	switch c.Backend {
	case "memory":
		return nil
	case "influx":
		return c.Influx.Validate()
	default:
		return fmt.Errorf("unknown telemetry backend %s", c.Backend)
	}
}
