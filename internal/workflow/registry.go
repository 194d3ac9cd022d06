package workflow

import (
	"context"
	"time"
)

// DefaultRegistry composes one or more WorkflowProviders with the instance
// store's active-count query, grounded on the teacher's
// Service.ListWorkflows/GetWorkflow delegating straight to a Store — here
// generalized to several lazy providers instead of one store, so a
// registry can draw blueprints from, for example, a database-backed
// provider and a builtin-templates provider at once.
type DefaultRegistry struct {
	providers []WorkflowProvider
	store     WorkflowInstanceStore
	mediator  Mediator
}

type registryKey struct {
	definitionID string
	version      int
}

// NewDefaultRegistry builds a registry over the given providers. store may
// be nil, in which case unpublished-but-active checks always report zero
// active instances.
func NewDefaultRegistry(store WorkflowInstanceStore, providers ...WorkflowProvider) *DefaultRegistry {
	return &DefaultRegistry{providers: providers, store: store}
}

// SetMediator wires a Mediator for ListActive to publish
// WorkflowSettingsLoaded on, per spec §9: "WorkflowSettingsLoaded is used to
// toggle IsDisabled per workflow at listing time". Left unset, the nil
// Mediator simply skips publication, matching Runner's own "mediator may be
// nil" tolerance.
func (r *DefaultRegistry) SetMediator(mediator Mediator) {
	r.mediator = mediator
}

// refresh re-enumerates every provider into a fresh lookup map, called
// lazily by GetByInstance/ListActive rather than eagerly, matching the
// teacher's store-is-source-of-truth, no-local-cache style: each call
// reflects provider state as of that call, never a stale snapshot.
func (r *DefaultRegistry) refresh(ctx context.Context) (map[registryKey]*Blueprint, error) {
	out := map[registryKey]*Blueprint{}
	for _, p := range r.providers {
		blueprints, err := p.Blueprints(ctx)
		if err != nil {
			return nil, err
		}
		for _, bp := range blueprints {
			out[registryKey{definitionID: bp.DefinitionID, version: bp.Version}] = bp
		}
	}
	return out, nil
}

// GetByInstance returns the blueprint matching definitionId+version, or
// (nil, nil) if none is registered — the runner turns that into
// WorkflowDefinitionMissingError.
func (r *DefaultRegistry) GetByInstance(ctx context.Context, definitionID string, version int) (*Blueprint, error) {
	all, err := r.refresh(ctx)
	if err != nil {
		return nil, err
	}
	bp, ok := all[registryKey{definitionID: definitionID, version: version}]
	if !ok {
		return nil, nil
	}
	return bp, nil
}

// ListActive returns every enabled blueprint from every provider, treating
// an unpublished-but-still-running definition (non-zero active instance
// count) as active alongside every published+enabled one.
func (r *DefaultRegistry) ListActive(ctx context.Context) ([]*Blueprint, error) {
	all, err := r.refresh(ctx)
	if err != nil {
		return nil, err
	}
	active := make([]*Blueprint, 0, len(all))
	for _, bp := range all {
		r.publishSettingsLoaded(ctx, bp)
		if !bp.IsEnabled {
			continue
		}
		if bp.IsPublished {
			active = append(active, bp)
			continue
		}
		if r.store == nil {
			continue
		}
		count, err := r.store.CountActiveInstances(ctx, bp.DefinitionID, bp.Version)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			active = append(active, bp)
		}
	}
	return active, nil
}

// publishSettingsLoaded notifies subscribers that bp's settings were read
// for this listing pass, before the enabled/published/active filtering
// below is applied — subscribers that toggle IsEnabled out-of-band rely on
// seeing every blueprint, not just the ones that end up active.
func (r *DefaultRegistry) publishSettingsLoaded(ctx context.Context, bp *Blueprint) {
	if r.mediator == nil {
		return
	}
	execution := &WorkflowExecutionContext{Blueprint: bp}
	_ = r.mediator.Publish(ctx, Notification{Type: NotificationWorkflowSettingsLoaded, Execution: execution})
}

// DefaultFactory mints WorkflowInstance values, grounded on the teacher's
// newID (internal/workflow/ids.go) for entity ids and the
// engine/service.go uuid.NewString() idiom for correlation/context ids.
type DefaultFactory struct{}

// NewDefaultFactory builds a DefaultFactory. It holds no state: every
// Instantiate call is independent, matching the spec's "no global state"
// design note.
func NewDefaultFactory() *DefaultFactory {
	return &DefaultFactory{}
}

func (f *DefaultFactory) Instantiate(ctx context.Context, blueprint *Blueprint, correlationID, contextID string) (*WorkflowInstance, error) {
	now := time.Now().UTC()
	if correlationID == "" {
		correlationID = newCorrelationID()
	}
	return &WorkflowInstance{
		ID:                   newID("wfi"),
		WorkflowDefinitionID: blueprint.DefinitionID,
		Version:              blueprint.Version,
		CorrelationID:        correlationID,
		ContextID:            contextID,
		Status:               StatusIdle,
		Variables:            copyVariables(blueprint.Variables),
		CreatedAt:            now,
		UpdatedAt:            now,
	}, nil
}

func copyVariables(in map[string]any) map[string]any {
	if in == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
