package workflow

import "context"

// Notification is the payload delivered to the Mediator for every lifecycle
// event the runner publishes. Subscribers may inspect but must not mutate
// Execution; the runner does not defend against mutation beyond this
// documented contract, matching the teacher's Notifier, which hands its
// listeners a read-through view of the run.
type Notification struct {
	Type      NotificationType
	Execution *WorkflowExecutionContext
	Activity  *ActivityExecutionContext
}

// NotificationType enumerates the runner's event contract per spec §6.
type NotificationType string

const (
	NotificationWorkflowSettingsLoaded NotificationType = "WorkflowSettingsLoaded"
	NotificationActivityExecuting      NotificationType = "ActivityExecuting"
	NotificationActivityExecuted       NotificationType = "ActivityExecuted"
	NotificationWorkflowExecuted       NotificationType = "WorkflowExecuted"
	NotificationWorkflowCancelled      NotificationType = "WorkflowCancelled"
	NotificationWorkflowCompleted      NotificationType = "WorkflowCompleted"
	NotificationWorkflowFaulted        NotificationType = "WorkflowFaulted"
	NotificationWorkflowSuspended      NotificationType = "WorkflowSuspended"
)

// Mediator fans lifecycle notifications out to subscribers. Implementations
// must deliver to subscribers in registration order and must not block the
// runner indefinitely; a failing subscriber is the mediator's problem to
// log, not the runner's, per §7's collaborator-failure policy.
type Mediator interface {
	Publish(ctx context.Context, n Notification) error
}
