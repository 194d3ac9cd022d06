package activities

import (
	"context"
	"fmt"

	"github.com/1002527441/workflow-runtime/internal/workflow"
)

// ConditionActivity evaluates a boolean property and schedules along the
// "True" or "False" outcome, grounded on the teacher's executeCondition
// (a step whose sole purpose is branching the run based on a resolved
// expression result).
type ConditionActivity struct{}

func NewConditionActivity() *ConditionActivity {
	return &ConditionActivity{}
}

func (a *ConditionActivity) CanExecute(ctx context.Context, actx *workflow.ActivityExecutionContext) (bool, error) {
	return true, nil
}

func (a *ConditionActivity) Execute(ctx context.Context, actx *workflow.ActivityExecutionContext) (workflow.ActivityResult, error) {
	value, _ := actx.Property("condition")

	truthy, err := isTruthy(value)
	if err != nil {
		return workflow.Fault{Err: err}, nil
	}

	actx.Output = truthy
	if truthy {
		return workflow.Outcomes{Names: []string{"True"}}, nil
	}
	return workflow.Outcomes{Names: []string{"False"}}, nil
}

func (a *ConditionActivity) Resume(ctx context.Context, actx *workflow.ActivityExecutionContext) (workflow.ActivityResult, error) {
	return a.Execute(ctx, actx)
}

func isTruthy(value any) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case nil:
		return false, nil
	case string:
		return v != "" && v != "false" && v != "0", nil
	case float64:
		return v != 0, nil
	case int:
		return v != 0, nil
	default:
		return false, fmt.Errorf("condition activity: unsupported condition value type %T", value)
	}
}
