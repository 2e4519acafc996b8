package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kfadel/gridops/core/forecast"
	"github.com/kfadel/gridops/core/metrics"
	"github.com/kfadel/gridops/core/mitigation"
	"github.com/kfadel/gridops/core/narrative"
	"github.com/kfadel/gridops/core/pipeline"
	"github.com/kfadel/gridops/infra/llm"
	"github.com/kfadel/gridops/infra/mqtt"
)

type Config struct {
	Forecast   forecast.Config   `json:"forecast"`
	Mitigation mitigation.Config `json:"mitigation"`
	Narrator   narrative.Config  `json:"narrator"`
	LLM        llm.Config        `json:"llm"`
	Pipeline   pipeline.Config   `json:"pipeline"`
	Metrics    metrics.Config    `json:"metrics"`
	Telemetry  TelemetryConfig   `json:"telemetry"`
	MQTT       mqtt.Config       `json:"mqtt"`
	Prometheus PrometheusConfig  `json:"prometheus"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("G_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "g_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Forecast.SetDefaults()
	cfg.Mitigation.SetDefaults()
	cfg.Narrator.SetDefaults()
	cfg.LLM.SetDefaults()
	cfg.Pipeline.SetDefaults()
	cfg.Telemetry.SetDefaults()
	cfg.MQTT.SetDefaults()
	cfg.Prometheus.SetDefaults()
	if err := cfg.Telemetry.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.MQTT.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
