package workflow

import "github.com/1002527441/workflow-runtime/internal/activation"

// ActivityExecutionContext is per-dispatch ephemeral state: one is created
// immediately before an activity is invoked and discarded once its result
// has been applied.
type ActivityExecutionContext struct {
	Execution *WorkflowExecutionContext
	Blueprint *ActivityBlueprint
	Input     any
	Output    any
	Scope     *activation.Scope

	properties map[string]any
}

// NewActivityExecutionContext builds the per-dispatch context for one
// activity invocation.
func NewActivityExecutionContext(execution *WorkflowExecutionContext, bp *ActivityBlueprint, input any, scope *activation.Scope) *ActivityExecutionContext {
	return &ActivityExecutionContext{
		Execution:  execution,
		Blueprint:  bp,
		Input:      input,
		Scope:      scope,
		properties: map[string]any{},
	}
}

// SetProperty records a resolved property value, populated by the runner
// from the blueprint's PropertyProviders before dispatch.
func (c *ActivityExecutionContext) SetProperty(name string, value any) {
	c.properties[name] = value
}

// Property returns a previously resolved property value.
func (c *ActivityExecutionContext) Property(name string) (any, bool) {
	v, ok := c.properties[name]
	return v, ok
}

// Variables exposes the run's variable map for activities that read or
// write workflow-scoped state.
func (c *ActivityExecutionContext) Variables() map[string]any {
	if c.Execution.Instance.Variables == nil {
		c.Execution.Instance.Variables = map[string]any{}
	}
	return c.Execution.Instance.Variables
}
