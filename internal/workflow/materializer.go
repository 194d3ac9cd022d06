package workflow

import (
	"context"
	"fmt"
)

// Materialize converts a serialized WorkflowDefinition into its immutable,
// executable Blueprint. It is grounded on the teacher's
// ValidateAgainstSchema + the general "parse, then build an index, then
// resolve references into that index" shape used throughout the teacher's
// store layer, generalized here to recursive composite activities.
func Materialize(def *WorkflowDefinition) (*Blueprint, error) {
	if def == nil {
		return nil, fmt.Errorf("workflow: cannot materialize a nil definition")
	}

	activities, order, connections, propertyProviders, err := materializeScope(def.ID, def.Activities, def.Connections)
	if err != nil {
		return nil, err
	}

	return &Blueprint{
		DefinitionID:             def.ID,
		Version:                  def.Version,
		Name:                     def.Name,
		Description:              def.Description,
		IsSingleton:              def.IsSingleton,
		IsEnabled:                def.IsEnabled,
		IsPublished:              def.IsPublished,
		PersistenceBehavior:      def.PersistenceBehavior,
		DeleteCompletedInstances: def.DeleteCompletedInstances,
		Variables:                def.Variables,
		ContextOptions:           def.ContextOptions,
		Activities:               activities,
		ActivityOrder:            order,
		Connections:              connections,
		PropertyProviders:        propertyProviders,
	}, nil
}

// materializeScope builds one composite scope's activity index, connection
// list and property providers. The returned order preserves declaration
// order for StartActivity's fallback rule.
func materializeScope(scopeID string, defs []ActivityDefinition, conns []ConnectionDefinition) (
	map[string]*ActivityBlueprint, []string, []*Connection, map[propertyKey]PropertyProvider, error,
) {
	activities := make(map[string]*ActivityBlueprint, len(defs))
	order := make([]string, 0, len(defs))
	providers := map[propertyKey]PropertyProvider{}

	for _, ad := range defs {
		if _, exists := activities[ad.ActivityID]; exists {
			return nil, nil, nil, nil, &DuplicateActivityIDError{ScopeActivityID: scopeID, ActivityID: ad.ActivityID}
		}

		bp := &ActivityBlueprint{
			ID:          ad.ActivityID,
			Type:        ad.Type,
			Name:        ad.Name,
			DisplayName: ad.DisplayName,
			Properties:  ad.Properties,
			Factory:     scopedFactory(ad.Type),
		}

		if len(ad.Activities) > 0 || len(ad.Connections) > 0 {
			nested, nestedOrder, nestedConns, nestedProviders, err := materializeScope(ad.ActivityID, ad.Activities, ad.Connections)
			if err != nil {
				return nil, nil, nil, nil, err
			}
			bp.NestedActivities = nested
			bp.NestedConnections = nestedConns
			for k, v := range nestedProviders {
				providers[k] = v
			}
			_ = nestedOrder // nested order is only needed by the composite's own internal dispatch, not the outer scope
		}

		for name, pd := range ad.Properties {
			providers[propertyKey{ActivityID: ad.ActivityID, PropertyName: name}] = propertyProvider(pd)
		}

		activities[ad.ActivityID] = bp
		order = append(order, ad.ActivityID)
	}

	targets := map[string]bool{}
	connections := make([]*Connection, 0, len(conns))
	for _, cd := range conns {
		source, ok := activities[cd.SourceActivityID]
		if !ok {
			return nil, nil, nil, nil, &UnresolvedConnectionError{ScopeActivityID: scopeID, SourceID: cd.SourceActivityID, TargetID: cd.TargetActivityID}
		}
		target, ok := activities[cd.TargetActivityID]
		if !ok {
			return nil, nil, nil, nil, &UnresolvedConnectionError{ScopeActivityID: scopeID, SourceID: cd.SourceActivityID, TargetID: cd.TargetActivityID}
		}
		connections = append(connections, &Connection{Source: source, Target: target, Outcome: cd.Outcome})
		targets[cd.TargetActivityID] = true
	}

	for id, bp := range activities {
		bp.isStartCandidate = !targets[id]
	}

	return activities, order, connections, providers, nil
}

// scopedFactory builds an ActivityFactory that resolves the named activity
// type through the current dispatch's scope, matching §4.4's "instantiate
// through the scoped service provider" contract.
func scopedFactory(typeName string) ActivityFactory {
	return func(ctx context.Context, actx *ActivityExecutionContext) (Activity, error) {
		inst, err := actx.Scope.Resolve(typeName)
		if err != nil {
			return nil, err
		}
		activity, ok := inst.(Activity)
		if !ok {
			return nil, fmt.Errorf("workflow: type %q does not implement Activity", typeName)
		}
		return activity, nil
	}
}

// propertyProvider builds a PropertyProvider closing over one property
// definition's expression, syntax and declared type. Expression evaluation
// itself is an external collaborator per spec §1 ("out of scope: the
// expression-evaluation engine"); this repository's evaluator is the
// minimal literal/variable-reference interpreter in expr.go.
func propertyProvider(pd PropertyDefinition) PropertyProvider {
	return func(ctx context.Context, actx *ActivityExecutionContext) (any, error) {
		return evaluateExpression(pd, actx)
	}
}
