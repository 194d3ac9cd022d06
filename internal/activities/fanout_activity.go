package activities

import (
	"context"

	"github.com/1002527441/workflow-runtime/internal/workflow"
)

// FanOutActivity is a composite demonstration activity that drives the
// runner's two-tier scheduler directly instead of through outcome-routed
// connections, per spec.md §4.2's "the outer graph sees the composite as a
// single atomic node for scheduling; its internals are entered by the
// composite activity's own execute/resume logic": it schedules one named
// sibling onto the primary queue and another onto the post-scheduled queue
// from inside Execute, exercising WorkflowExecutionContext.ScheduleActivity
// and SchedulePostActivity the way spec §8 scenario S3 describes.
type FanOutActivity struct{}

func NewFanOutActivity() *FanOutActivity {
	return &FanOutActivity{}
}

func (a *FanOutActivity) CanExecute(ctx context.Context, actx *workflow.ActivityExecutionContext) (bool, error) {
	return true, nil
}

func (a *FanOutActivity) Execute(ctx context.Context, actx *workflow.ActivityExecutionContext) (workflow.ActivityResult, error) {
	primaryID, _ := actx.Property("primaryActivityId")
	postID, _ := actx.Property("postActivityId")

	if id, ok := primaryID.(string); ok && id != "" {
		actx.Execution.ScheduleActivity(id, actx.Input)
	}
	if id, ok := postID.(string); ok && id != "" {
		actx.Execution.SchedulePostActivity(id, actx.Input)
	}

	// The successors are already enqueued directly above, so there is
	// nothing left for outcome routing to schedule.
	return workflow.Outcomes{}, nil
}

func (a *FanOutActivity) Resume(ctx context.Context, actx *workflow.ActivityExecutionContext) (workflow.ActivityResult, error) {
	return a.Execute(ctx, actx)
}
