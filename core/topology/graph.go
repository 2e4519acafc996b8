// Package topology defines the read contract for the distribution network
// graph: transformers addressed by stable identifiers and the directed tie
// links between them.
package topology

import (
	"context"

	"github.com/kfadel/gridops/core/model"
)

// Graph supplies transformers and the active transfer links between them.
type Graph interface {
	// Unit returns the transformer with the given ID. The bool is false when
	// the unit is unknown.
	Unit(ctx context.Context, unitID string) (model.Transformer, bool, error)

	// Units returns all active transformers.
	Units(ctx context.Context) ([]model.Transformer, error)

	// OutgoingLinks returns the active outgoing links of the unit, in a
	// stable order.
	OutgoingLinks(ctx context.Context, unitID string) ([]model.Link, error)
}
