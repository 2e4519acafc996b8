// Package app wires the configuration into a running analytics service.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/kfadel/gridops/config"
	"github.com/kfadel/gridops/core/forecast"
	"github.com/kfadel/gridops/core/logger"
	coremetrics "github.com/kfadel/gridops/core/metrics"
	"github.com/kfadel/gridops/core/mitigation"
	"github.com/kfadel/gridops/core/narrative"
	"github.com/kfadel/gridops/core/pipeline"
	"github.com/kfadel/gridops/core/risk"
	"github.com/kfadel/gridops/core/telemetry"
	"github.com/kfadel/gridops/core/topology"
	"github.com/kfadel/gridops/infra/llm"
	zlog "github.com/kfadel/gridops/infra/logger"
	"github.com/kfadel/gridops/infra/metrics"
	"github.com/kfadel/gridops/infra/mqtt"
	infratel "github.com/kfadel/gridops/infra/telemetry"
	"github.com/kfadel/gridops/internal/eventbus"
	"github.com/kfadel/gridops/simulator"
)

// runInterval is how often the full pipeline runs over the grid.
const runInterval = time.Hour

// Service orchestrates the analytics pipeline over a telemetry store and a
// topology graph.
type Service struct {
	Runner *pipeline.Runner
	Graph  topology.Graph
	Store  telemetry.Store

	bus      eventbus.EventBus
	ingestor *mqtt.Ingestor
	influx   *infratel.InfluxStore
	cfg      *config.Config
	log      logger.Logger
}

// New creates a Service from the configuration. With the memory telemetry
// backend the grid and a week of load history are synthesized so the service
// is useful out of the box.
func New(ctx context.Context, cfg *config.Config) (*Service, error) {
	logg := zlog.New("service")

	svc := &Service{cfg: cfg, log: logg}

	var store telemetry.Store
	var appender telemetry.Appender
	graph := simulator.BuildGrid()

	switch cfg.Telemetry.Backend {
	case "influx":
		is, err := infratel.NewInfluxStore(ctx, cfg.Telemetry.Influx)
		if err != nil {
			return nil, fmt.Errorf("telemetry store: %w", err)
		}
		svc.influx = is
		store, appender = is, is
	default:
		ms := telemetry.NewMemoryStore()
		store, appender = ms, ms
		units, err := graph.Units(ctx)
		if err != nil {
			return nil, err
		}
		n, err := simulator.GenerateHistory(ctx, ms, units, time.Now().UTC(), simulator.HistoryConfig{})
		if err != nil {
			return nil, fmt.Errorf("seed history: %w", err)
		}
		logg.Infof("seeded %d synthetic readings for %d units", n, len(units))
	}
	svc.Store = store
	svc.Graph = graph

	sink, err := buildSink(cfg.Metrics)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}

	var backend narrative.Backend
	if cfg.LLM.Enabled() {
		backend = llm.NewClient(cfg.LLM)
	} else {
		logg.Warnf("no LLM backend configured, narratives use the template fallback")
	}

	bus := eventbus.New()
	cache := pipeline.NewForecastCache()

	engine := forecast.NewEngine(cfg.Forecast, store, zlog.New("forecast"))
	scorer := risk.NewScorer(store, graph, zlog.New("risk"))
	sim := mitigation.NewSimulator(cfg.Mitigation, store, graph, cache, zlog.New("mitigation"))
	narrator := narrative.NewNarrator(cfg.Narrator, backend, zlog.New("narrative"))

	runner, err := pipeline.NewRunner(cfg.Pipeline, engine, scorer, sim, narrator, graph, cache, sink, bus, zlog.New("pipeline"))
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	svc.Runner = runner
	svc.bus = bus

	if cfg.MQTT.Enabled {
		ing, err := mqtt.NewIngestor(cfg.MQTT, appender)
		if err != nil {
			return nil, fmt.Errorf("mqtt ingestor: %w", err)
		}
		svc.ingestor = ing
	}

	return svc, nil
}

// buildSink assembles the configured metrics sinks into one.
func buildSink(cfg coremetrics.Config) (coremetrics.Sink, error) {
	var sinks []coremetrics.Sink
	for _, mc := range cfg.Sinks {
		s, err := coremetrics.NewSink(mc)
		if err != nil {
			return nil, fmt.Errorf("sink %q: %w", mc.Type, err)
		}
		sinks = append(sinks, s)
	}
	switch len(sinks) {
	case 0:
		return coremetrics.NopSink{}, nil
	case 1:
		return sinks[0], nil
	default:
		return metrics.NewMultiSink(sinks...), nil
	}
}

// Run executes the pipeline on an interval and blocks until the context is
// cancelled. The first run happens immediately.
func (s *Service) Run(ctx context.Context) error {
	if s.cfg.Prometheus.Enabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Prometheus.Addr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	ticker := time.NewTicker(runInterval)
	defer ticker.Stop()

	for {
		res, err := s.Runner.Run(ctx, time.Now().UTC())
		if err != nil {
			s.log.Errorf("pipeline run failed: %v", err)
		} else {
			s.log.Infof("pipeline run complete: %d plans (%d enhanced, %d fallback), %d failures",
				len(res.Plans), res.Enhanced, res.FallbackUsed, len(res.Failures))
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// RunOnce executes a single pipeline pass.
func (s *Service) RunOnce(ctx context.Context) (pipeline.Result, error) {
	return s.Runner.Run(ctx, time.Now().UTC())
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.ingestor != nil {
		s.ingestor.Disconnect()
	}
	if s.influx != nil {
		s.influx.Close()
	}
	if s.bus != nil {
		s.bus.Close()
	}
	return nil
}
