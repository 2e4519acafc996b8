package pipeline

import (
	"sync"

	"github.com/kfadel/gridops/core/model"
)

// ForecastCache holds the latest forecast per unit for one pipeline run. It
// implements mitigation.ForecastSource so the simulator can estimate neighbor
// load from forecasts.
type ForecastCache struct {
	mu   sync.RWMutex
	data map[string]model.Forecast
}

// NewForecastCache returns an empty cache.
func NewForecastCache() *ForecastCache {
	return &ForecastCache{data: map[string]model.Forecast{}}
}

// Put stores the forecast for its unit, superseding any previous one.
func (c *ForecastCache) Put(fc model.Forecast) {
	c.mu.Lock()
	c.data[fc.UnitID] = fc
	c.mu.Unlock()
}

// LatestForecast returns the stored forecast for the unit.
func (c *ForecastCache) LatestForecast(unitID string) (model.Forecast, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	fc, ok := c.data[unitID]
	return fc, ok
}
