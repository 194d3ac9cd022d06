package workflow

import "fmt"

// UnresolvedConnectionError is returned by Materialize when a connection
// names an activity id that does not exist in its scope.
type UnresolvedConnectionError struct {
	ScopeActivityID string
	SourceID        string
	TargetID        string
}

func (e *UnresolvedConnectionError) Error() string {
	return fmt.Sprintf("workflow: unresolved connection %s -> %s in scope %q", e.SourceID, e.TargetID, e.ScopeActivityID)
}

// DuplicateActivityIDError is returned by Materialize when two activities in
// the same composite scope share an id.
type DuplicateActivityIDError struct {
	ScopeActivityID string
	ActivityID      string
}

func (e *DuplicateActivityIDError) Error() string {
	return fmt.Sprintf("workflow: duplicate activity id %q in scope %q", e.ActivityID, e.ScopeActivityID)
}

// WorkflowDefinitionMissingError surfaces to the caller when the registry
// has no blueprint for the instance's definition id + version.
type WorkflowDefinitionMissingError struct {
	DefinitionID string
	Version      int
}

func (e *WorkflowDefinitionMissingError) Error() string {
	return fmt.Sprintf("workflow: definition %q version %d not found in registry", e.DefinitionID, e.Version)
}

// ActivityExecutionFailureError wraps an activity's execute/resume error
// before it is recorded as a Fault on the instance.
type ActivityExecutionFailureError struct {
	ActivityID string
	Err        error
}

func (e *ActivityExecutionFailureError) Error() string {
	return fmt.Sprintf("workflow: activity %q execution failed: %v", e.ActivityID, e.Err)
}

func (e *ActivityExecutionFailureError) Unwrap() error { return e.Err }

// ResumeTargetNotBlockingError is returned when Resume is called with an
// activity id that is not present in the instance's blocking set.
type ResumeTargetNotBlockingError struct {
	ActivityID string
}

func (e *ResumeTargetNotBlockingError) Error() string {
	return fmt.Sprintf("workflow: activity %q is not blocking, cannot resume", e.ActivityID)
}

// ErrNoScheduledActivity is returned by PopScheduledActivity on an empty
// primary queue.
var ErrNoScheduledActivity = fmt.Errorf("workflow: no scheduled activity")
