package workflow

import "context"

// WorkflowProvider is a lazy stream of blueprints, enumerated by a
// WorkflowRegistry. Concrete providers typically wrap a registry-store query
// (file system, database, in-memory catalog); the core treats them as opaque
// sources.
type WorkflowProvider interface {
	Blueprints(ctx context.Context) ([]*Blueprint, error)
}

// WorkflowRegistry resolves blueprints for running instances and lists the
// currently active set.
type WorkflowRegistry interface {
	// GetByInstance returns the blueprint matching definitionId+version, or
	// (nil, nil) if no such definition exists — the runner turns that into
	// WorkflowDefinitionMissingError, not the registry.
	GetByInstance(ctx context.Context, definitionID string, version int) (*Blueprint, error)
	ListActive(ctx context.Context) ([]*Blueprint, error)
}

// WorkflowFactory mints new WorkflowInstance values for a blueprint.
type WorkflowFactory interface {
	Instantiate(ctx context.Context, blueprint *Blueprint, correlationID, contextID string) (*WorkflowInstance, error)
}

// WorkflowInstanceStore is the external persistence collaborator. The core
// itself never calls it directly — the runner is handed whatever instance
// the caller loaded — but WorkflowRegistry implementations use it to decide
// whether an unpublished definition is still considered active.
type WorkflowInstanceStore interface {
	CountActiveInstances(ctx context.Context, definitionID string, version int) (int, error)
}

// WorkflowContextManager loads and saves the caller-defined workflow-context
// payload per §4.5. Load failures are logged by the runner and treated as a
// null context; save failures are logged and the previous contextId is
// retained.
type WorkflowContextManager interface {
	LoadContext(ctx context.Context, blueprint *Blueprint, instance *WorkflowInstance) (any, error)
	SaveContext(ctx context.Context, execution *WorkflowExecutionContext) (string, error)
}
