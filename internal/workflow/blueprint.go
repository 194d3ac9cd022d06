package workflow

import "context"

// Activity is the behavior contract every materialized activity must
// satisfy. The blueprint's factory closure constructs one through the
// scoped service provider; the runner evaluates every registered property
// provider into the ActivityExecutionContext before calling the factory
// and dispatching into the activity.
type Activity interface {
	CanExecute(ctx context.Context, actx *ActivityExecutionContext) (bool, error)
	Execute(ctx context.Context, actx *ActivityExecutionContext) (ActivityResult, error)
	Resume(ctx context.Context, actx *ActivityExecutionContext) (ActivityResult, error)
}

// ActivityFactory instantiates an Activity for one dispatch, resolving it
// through the scope; property values are already on the context, set by
// the runner. It is a function
// value, not a virtual method: composite and leaf blueprints differ by
// data, not by type hierarchy.
type ActivityFactory func(ctx context.Context, actx *ActivityExecutionContext) (Activity, error)

// PropertyProvider evaluates one activity property's expression against the
// current ActivityExecutionContext. It closes over the declared expression,
// syntax and type from the originating PropertyDefinition.
type PropertyProvider func(ctx context.Context, actx *ActivityExecutionContext) (any, error)

// ActivityBlueprint is the materialized, executable form of an
// ActivityDefinition.
type ActivityBlueprint struct {
	ID          string
	Type        string
	Name        string
	DisplayName string
	Factory     ActivityFactory
	Properties  map[string]PropertyDefinition

	// Composite activities carry their own nested scope. A non-composite
	// blueprint has both fields nil.
	NestedActivities  map[string]*ActivityBlueprint
	NestedConnections []*Connection
	isStartCandidate  bool
}

// Connection is a materialized, outcome-labeled edge holding direct
// references to its endpoints rather than string ids.
type Connection struct {
	Source  *ActivityBlueprint
	Target  *ActivityBlueprint
	Outcome string
}

// Blueprint is the immutable executable form of a workflow, built once by
// Materialize and thereafter shared read-only across concurrent runs.
type Blueprint struct {
	DefinitionID             string
	Version                  int
	Name                     string
	Description              string
	IsSingleton              bool
	IsEnabled                bool
	IsPublished              bool
	PersistenceBehavior      string
	DeleteCompletedInstances bool
	Variables                map[string]any
	ContextOptions           *ContextOptions

	Activities    map[string]*ActivityBlueprint
	ActivityOrder []string
	Connections   []*Connection

	// PropertyProviders is keyed by (activityId, propertyName) so the
	// materializer's closures can be looked up without threading them
	// through ActivityBlueprint.Properties at dispatch time.
	PropertyProviders map[propertyKey]PropertyProvider
}

type propertyKey struct {
	ActivityID   string
	PropertyName string
}

// GetActivity looks up an activity blueprint by id in the outer scope.
func (b *Blueprint) GetActivity(activityID string) (*ActivityBlueprint, bool) {
	bp, ok := b.Activities[activityID]
	return bp, ok
}

// OutgoingConnections returns every connection whose source is the given
// activity, in declaration order.
func (b *Blueprint) OutgoingConnections(activityID string) []*Connection {
	var out []*Connection
	for _, c := range b.Connections {
		if c.Source != nil && c.Source.ID == activityID {
			out = append(out, c)
		}
	}
	return out
}

// StartActivity resolves the default starting point: the first declared
// activity that is never the target of any connection, falling back to the
// first declared activity in definition order.
func (b *Blueprint) StartActivity() (*ActivityBlueprint, bool) {
	for _, id := range b.ActivityOrder {
		bp, ok := b.Activities[id]
		if ok && bp.isStartCandidate {
			return bp, true
		}
	}
	for _, id := range b.ActivityOrder {
		if bp, ok := b.Activities[id]; ok {
			return bp, true
		}
	}
	return nil, false
}

func (b *Blueprint) propertyProvider(activityID, propertyName string) (PropertyProvider, bool) {
	p, ok := b.PropertyProviders[propertyKey{ActivityID: activityID, PropertyName: propertyName}]
	return p, ok
}
