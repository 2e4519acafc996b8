package config

// PrometheusConfig controls the metrics scrape endpoint.
type PrometheusConfig struct {
	Enabled bool   `json:"enabled"`
	Addr    string `json:"addr"`
}

// SetDefaults applies the standard scrape address.
func (c *PrometheusConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":9090"
	}
}
