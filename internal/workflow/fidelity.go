package workflow

import (
	"context"

	"go.uber.org/zap"
)

// fidelityManager wraps a WorkflowContextManager with the collaborator-
// failure policy from §7: a load failure is logged and the run continues
// with a null workflow context; a save failure is logged and the instance
// keeps its previous contextId. Fidelity itself (Burst vs Activity vs None)
// is decided by the runner, which checks shouldLoadBurst/shouldSaveBurst/
// shouldLoadActivity/shouldSaveActivity and calls load/save at the points
// §4.3's drain loop names.
type fidelityManager struct {
	manager         WorkflowContextManager
	log             *zap.Logger
	defaultFidelity Fidelity
}

// newFidelityManager builds a fidelityManager. defaultFidelity is the
// process-wide fallback (config's runtime.defaultFidelity) applied to a
// blueprint that declares no ContextOptions of its own; an empty
// defaultFidelity falls further back to FidelityBurst, matching
// ContextOptions.fidelity()'s own unset-field default.
func newFidelityManager(manager WorkflowContextManager, log *zap.Logger, defaultFidelity Fidelity) *fidelityManager {
	if log == nil {
		log = zap.NewNop()
	}
	if defaultFidelity == "" {
		defaultFidelity = FidelityBurst
	}
	return &fidelityManager{manager: manager, log: log, defaultFidelity: defaultFidelity}
}

// fidelityOf resolves the effective fidelity for a blueprint: its own
// ContextOptions when declared, otherwise the manager's process-wide
// default.
func (m *fidelityManager) fidelityOf(blueprint *Blueprint) Fidelity {
	if blueprint.ContextOptions != nil && blueprint.ContextOptions.Fidelity != "" {
		return blueprint.ContextOptions.Fidelity
	}
	return m.defaultFidelity
}

// load skips when the effective fidelity is None or the instance has no
// contextId, then delegates to the configured WorkflowContextManager,
// swallowing failures per §7. A blueprint without ContextOptions is not
// skipped: it uses the manager's default fidelity (see fidelityOf).
// Callers decide, via shouldLoadBurst/shouldLoadActivity, whether this
// particular call site should run at all for the blueprint's fidelity.
func (m *fidelityManager) load(ctx context.Context, blueprint *Blueprint, instance *WorkflowInstance) any {
	if m.manager == nil {
		return nil
	}
	fidelity := m.fidelityOf(blueprint)
	if fidelity == FidelityNone || instance.ContextID == "" {
		return nil
	}
	value, err := m.manager.LoadContext(ctx, blueprint, instance)
	if err != nil {
		m.log.Error("workflow context load failed, continuing with null context",
			zap.String("instanceId", instance.ID),
			zap.Error(err))
		return nil
	}
	return value
}

// save delegates to the configured WorkflowContextManager, retaining the
// instance's previous contextId on failure per §7. Callers decide, via
// shouldSaveBurst/shouldSaveActivity, whether this call site should run at
// all for the blueprint's fidelity.
func (m *fidelityManager) save(ctx context.Context, execution *WorkflowExecutionContext) {
	if m.manager == nil {
		return
	}
	fidelity := m.fidelityOf(execution.Blueprint)
	if fidelity == FidelityNone {
		return
	}
	contextID, err := m.manager.SaveContext(ctx, execution)
	if err != nil {
		m.log.Error("workflow context save failed, retaining previous contextId",
			zap.String("instanceId", execution.Instance.ID),
			zap.Error(err))
		return
	}
	execution.Instance.ContextID = contextID
}

func (m *fidelityManager) shouldLoadBurst(blueprint *Blueprint) bool {
	return m.fidelityOf(blueprint) == FidelityBurst
}

func (m *fidelityManager) shouldSaveBurst(blueprint *Blueprint) bool {
	return m.fidelityOf(blueprint) == FidelityBurst
}

func (m *fidelityManager) shouldLoadActivity(blueprint *Blueprint) bool {
	return m.fidelityOf(blueprint) == FidelityActivity
}

func (m *fidelityManager) shouldSaveActivity(blueprint *Blueprint) bool {
	return m.fidelityOf(blueprint) == FidelityActivity
}
