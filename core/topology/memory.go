package topology

import (
	"context"
	"sync"

	"github.com/kfadel/gridops/core/model"
)

// MemoryGraph is an in-memory Graph. Link order per unit is insertion order,
// which keeps candidate plan ordering deterministic.
type MemoryGraph struct {
	mu       sync.RWMutex
	units    map[string]model.Transformer
	order    []string
	links    map[string][]model.Link
	switches map[string]model.Switch
}

// NewMemoryGraph returns an empty MemoryGraph.
func NewMemoryGraph() *MemoryGraph {
	return &MemoryGraph{
		units:    map[string]model.Transformer{},
		links:    map[string][]model.Link{},
		switches: map[string]model.Switch{},
	}
}

// AddUnit registers a transformer.
func (g *MemoryGraph) AddUnit(t model.Transformer) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.units[t.ID]; !ok {
		g.order = append(g.order, t.ID)
	}
	g.units[t.ID] = t
}

// AddSwitch registers a switch for reference by links.
func (g *MemoryGraph) AddSwitch(sw model.Switch) {
	g.mu.Lock()
	g.switches[sw.Name] = sw
	g.mu.Unlock()
}

// AddLink registers a directed link. Call twice with reversed endpoints to
// model a bidirectional tie line.
func (g *MemoryGraph) AddLink(l model.Link) {
	g.mu.Lock()
	g.links[l.FromUnit] = append(g.links[l.FromUnit], l)
	g.mu.Unlock()
}

// Unit implements Graph.
func (g *MemoryGraph) Unit(_ context.Context, unitID string) (model.Transformer, bool, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	t, ok := g.units[unitID]
	return t, ok, nil
}

// Units implements Graph, returning active transformers in insertion order.
func (g *MemoryGraph) Units(_ context.Context) ([]model.Transformer, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]model.Transformer, 0, len(g.order))
	for _, id := range g.order {
		if t := g.units[id]; t.Active {
			out = append(out, t)
		}
	}
	return out, nil
}

// OutgoingLinks implements Graph, returning only active links.
func (g *MemoryGraph) OutgoingLinks(_ context.Context, unitID string) ([]model.Link, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var out []model.Link
	for _, l := range g.links[unitID] {
		if l.Active {
			out = append(out, l)
		}
	}
	return out, nil
}

// Switch returns a registered switch by name.
func (g *MemoryGraph) Switch(name string) (model.Switch, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	sw, ok := g.switches[name]
	return sw, ok
}
