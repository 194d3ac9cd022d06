package activities

import (
	"context"

	"github.com/1002527441/workflow-runtime/internal/workflow"
)

// ApprovalActivity suspends the run until an external actor resumes it with
// a truthy "approved" input, grounded on the teacher's
// RequiresApproval/isApproved gate: there, a step consulted a separate
// approval service before the engine would advance past it; here the same
// gate is expressed as the runtime's own suspend/resume primitive instead of
// an out-of-band poll.
type ApprovalActivity struct{}

func NewApprovalActivity() *ApprovalActivity {
	return &ApprovalActivity{}
}

func (a *ApprovalActivity) CanExecute(ctx context.Context, actx *workflow.ActivityExecutionContext) (bool, error) {
	return true, nil
}

// Execute always suspends on first dispatch; the run only leaves the
// blocking set when something resumes this activity.
func (a *ApprovalActivity) Execute(ctx context.Context, actx *workflow.ActivityExecutionContext) (workflow.ActivityResult, error) {
	tag, _ := actx.Property("tag")
	tagStr, _ := tag.(string)
	if tagStr == "" {
		tagStr = "approval"
	}
	return workflow.Suspend{Tag: tagStr}, nil
}

// Resume inspects the input the resume call carried: a truthy "approved"
// field advances along "Approved", anything else along "Rejected".
func (a *ApprovalActivity) Resume(ctx context.Context, actx *workflow.ActivityExecutionContext) (workflow.ActivityResult, error) {
	approved := false
	if m, ok := actx.Input.(map[string]any); ok {
		if v, ok := isTruthyField(m, "approved"); ok {
			approved = v
		}
	}
	if approved {
		return workflow.Outcomes{Names: []string{"Approved"}}, nil
	}
	return workflow.Outcomes{Names: []string{"Rejected"}}, nil
}

func isTruthyField(m map[string]any, field string) (bool, bool) {
	v, ok := m[field]
	if !ok {
		return false, false
	}
	truthy, err := isTruthy(v)
	if err != nil {
		return false, false
	}
	return truthy, true
}
