package metrics

import "github.com/kfadel/gridops/core/factory"

var sinkRegistry = factory.NewRegistry[Sink]()

// RegisterSink adds a sink factory under the given type name. Built-in sinks
// register themselves from infra/metrics.
func RegisterSink(name string, f factory.Factory[Sink]) error {
	return sinkRegistry.Register(name, f)
}

// NewSink instantiates a sink from its module configuration.
func NewSink(cfg factory.ModuleConfig) (Sink, error) {
	return sinkRegistry.Create(cfg)
}
