package store

import (
	"context"
	"fmt"

	"github.com/1002527441/workflow-runtime/internal/workflow"
)

// Provider adapts a Store into a workflow.WorkflowProvider, materializing
// every stored definition on each call. It is the store-backed counterpart
// to the activities package's BuiltinProvider: the registry composes both
// so seeded templates and caller-published definitions are both part of
// the active set.
type Provider struct {
	store Store
}

// NewProvider wraps a Store as a WorkflowProvider.
func NewProvider(store Store) *Provider {
	return &Provider{store: store}
}

func (p *Provider) Blueprints(ctx context.Context) ([]*workflow.Blueprint, error) {
	defs, err := p.store.ListDefinitions(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: listing definitions: %w", err)
	}
	out := make([]*workflow.Blueprint, 0, len(defs))
	for i := range defs {
		bp, err := workflow.Materialize(&defs[i])
		if err != nil {
			return nil, fmt.Errorf("store: materializing %q v%d: %w", defs[i].ID, defs[i].Version, err)
		}
		out = append(out, bp)
	}
	return out, nil
}
