package activities

import "github.com/1002527441/workflow-runtime/internal/activation"

// Type names this catalog registers, referenced by ActivityDefinition.Type
// in the builtin templates below and by any caller-supplied definition.
const (
	TypeHTTP      = "Http"
	TypeTransform = "Transform"
	TypeCondition = "Condition"
	TypeApproval  = "Approval"
	TypeFanOut    = "FanOut"
)

// RegisterAll registers the demonstration catalog's factories with the
// process-wide activation.Provider, analogous to the teacher's fx.Provide
// block in a module's Module() but keyed by runtime type name instead of
// static Go type, since activities are resolved by ActivityDefinition.Type.
func RegisterAll(provider *activation.Provider) {
	provider.Register(TypeHTTP, func() (any, error) {
		return NewHTTPActivity(), nil
	})
	provider.Register(TypeTransform, func() (any, error) {
		return NewTransformActivity(), nil
	})
	provider.Register(TypeCondition, func() (any, error) {
		return NewConditionActivity(), nil
	})
	provider.Register(TypeApproval, func() (any, error) {
		return NewApprovalActivity(), nil
	})
	provider.Register(TypeFanOut, func() (any, error) {
		return NewFanOutActivity(), nil
	})
}
