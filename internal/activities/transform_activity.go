package activities

import (
	"context"
	"fmt"
	"strings"

	"github.com/1002527441/workflow-runtime/internal/workflow"
)

// TransformActivity applies one of a small set of named transforms to its
// input property, grounded on the teacher's executeTransform dispatch
// (uppercase/lowercase/trim/jsonPath-style passthrough), re-expressed as an
// Activity rather than a switch arm inside the engine.
type TransformActivity struct{}

func NewTransformActivity() *TransformActivity {
	return &TransformActivity{}
}

func (a *TransformActivity) CanExecute(ctx context.Context, actx *workflow.ActivityExecutionContext) (bool, error) {
	return true, nil
}

func (a *TransformActivity) Execute(ctx context.Context, actx *workflow.ActivityExecutionContext) (workflow.ActivityResult, error) {
	op, _ := actx.Property("operation")
	value, _ := actx.Property("value")

	opStr, _ := op.(string)
	valStr, ok := value.(string)
	if !ok {
		valStr = fmt.Sprintf("%v", value)
	}

	var result string
	switch strings.ToLower(opStr) {
	case "uppercase":
		result = strings.ToUpper(valStr)
	case "lowercase":
		result = strings.ToLower(valStr)
	case "trim":
		result = strings.TrimSpace(valStr)
	case "", "passthrough":
		result = valStr
	default:
		return workflow.Fault{Err: fmt.Errorf("transform activity: unknown operation %q", opStr)}, nil
	}

	actx.Output = result
	return workflow.Outcomes{Names: []string{"Done"}}, nil
}

func (a *TransformActivity) Resume(ctx context.Context, actx *workflow.ActivityExecutionContext) (workflow.ActivityResult, error) {
	return a.Execute(ctx, actx)
}
