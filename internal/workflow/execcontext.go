package workflow

import "github.com/1002527441/workflow-runtime/internal/activation"

// WorkflowExecutionContext is transient per-run state. It composes a
// WorkflowInstance with its Blueprint and owns the primary and
// post-scheduled queues for the duration of one Runner.Run call. It is
// exclusively owned by the runner goroutine driving that run and must never
// be shared across concurrent runs.
type WorkflowExecutionContext struct {
	Instance  *WorkflowInstance
	Blueprint *Blueprint

	// WorkflowContext is the caller-supplied, persisted payload loaded and
	// saved by the WorkflowContextManager per the blueprint's fidelity.
	WorkflowContext any

	Fault *FaultRecord
	Scope *activation.Scope

	primary []ScheduledActivity
	post    []ScheduledActivity
}

// NewExecutionContext builds the transient execution context for one run.
func NewExecutionContext(instance *WorkflowInstance, blueprint *Blueprint, scope *activation.Scope) *WorkflowExecutionContext {
	return &WorkflowExecutionContext{
		Instance:  instance,
		Blueprint: blueprint,
		Scope:     scope,
		primary:   append([]ScheduledActivity(nil), instance.ScheduledActivities...),
		post:      append([]ScheduledActivity(nil), instance.PostScheduled...),
	}
}

func (c *WorkflowExecutionContext) sync() {
	c.Instance.ScheduledActivities = c.primary
	c.Instance.PostScheduled = c.post
}

// HasScheduledActivities reports whether the primary queue is non-empty.
func (c *WorkflowExecutionContext) HasScheduledActivities() bool {
	return len(c.primary) > 0
}

// HasPostScheduledActivities reports whether the secondary queue is
// non-empty.
func (c *WorkflowExecutionContext) HasPostScheduledActivities() bool {
	return len(c.post) > 0
}

// ScheduleActivity appends to the primary queue. Re-entry is legal: an
// activity id may appear multiple times.
func (c *WorkflowExecutionContext) ScheduleActivity(activityID string, input any) {
	c.primary = append(c.primary, ScheduledActivity{ActivityID: activityID, Input: input})
	c.sync()
}

// SchedulePostActivity appends to the post-scheduled queue, deferred until
// the primary queue has drained at least once.
func (c *WorkflowExecutionContext) SchedulePostActivity(activityID string, input any) {
	c.post = append(c.post, ScheduledActivity{ActivityID: activityID, Input: input})
	c.sync()
}

// PopScheduledActivity removes and returns the head of the primary queue.
func (c *WorkflowExecutionContext) PopScheduledActivity() (ScheduledActivity, error) {
	if len(c.primary) == 0 {
		return ScheduledActivity{}, ErrNoScheduledActivity
	}
	next := c.primary[0]
	c.primary = c.primary[1:]
	c.sync()
	return next, nil
}

// SchedulePostActivities moves every item from the post-scheduled queue to
// the primary queue, in order, emptying the post-scheduled queue.
func (c *WorkflowExecutionContext) SchedulePostActivities() {
	if len(c.post) == 0 {
		return
	}
	c.primary = append(c.primary, c.post...)
	c.post = nil
	c.sync()
}

// CompletePass is a hook point for listeners; it mandates no state change
// of its own.
func (c *WorkflowExecutionContext) CompletePass() {}

// Begin transitions Idle -> Running.
func (c *WorkflowExecutionContext) Begin() {
	c.Instance.Status = StatusRunning
}

// Resume transitions Suspended -> Running.
func (c *WorkflowExecutionContext) Resume() {
	c.Instance.Status = StatusRunning
}

// Complete transitions Running -> Finished, valid only when both queues are
// empty.
func (c *WorkflowExecutionContext) Complete() {
	if c.Instance.Status == StatusRunning && !c.HasScheduledActivities() && !c.HasPostScheduledActivities() {
		c.Instance.Status = StatusFinished
	}
}

// Suspend transitions Running -> Suspended, valid only when the blocking set
// is non-empty.
func (c *WorkflowExecutionContext) Suspend() {
	if c.Instance.Status == StatusRunning && len(c.Instance.BlockingActivities) > 0 {
		c.Instance.Status = StatusSuspended
	}
}

// FaultWith records the fault and transitions to Faulted.
func (c *WorkflowExecutionContext) FaultWith(f FaultRecord) {
	c.Fault = &f
	c.Instance.Faults = append(c.Instance.Faults, f)
	c.Instance.Status = StatusFaulted
}

// Cancel transitions any non-terminal status to Cancelled.
func (c *WorkflowExecutionContext) Cancel() {
	switch c.Instance.Status {
	case StatusFinished, StatusCancelled, StatusFaulted:
		return
	default:
		c.Instance.Status = StatusCancelled
	}
}

// AddBlocking adds an activity to the blocking set.
func (c *WorkflowExecutionContext) AddBlocking(b BlockingActivity) {
	c.Instance.BlockingActivities = append(c.Instance.BlockingActivities, b)
}

// RemoveBlocking removes every blocking entry for the given activity id,
// as required before a resume schedules that activity afresh.
func (c *WorkflowExecutionContext) RemoveBlocking(activityID string) {
	kept := c.Instance.BlockingActivities[:0]
	for _, b := range c.Instance.BlockingActivities {
		if b.ActivityID != activityID {
			kept = append(kept, b)
		}
	}
	c.Instance.BlockingActivities = kept
}
