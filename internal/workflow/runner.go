package workflow

import (
	"context"
	"fmt"

	"github.com/1002527441/workflow-runtime/internal/activation"
	"go.uber.org/zap"
)

// operation selects which activity entry point the drain loop invokes for
// the activity it is about to dispatch. Only the first iteration of a
// resumed burst uses opResume; every later iteration, and every Execute
// burst from the start, uses opExecute.
type operation int

const (
	opExecute operation = iota
	opResume
)

// Runner drives the execution loop described in spec §4.3. It is grounded
// on the teacher's Engine: a small struct holding its collaborators,
// constructed once and shared by every Run call, with no mutable state of
// its own (all mutable state lives on the WorkflowExecutionContext built
// per call).
type Runner struct {
	registry WorkflowRegistry
	factory  WorkflowFactory
	provider *activation.Provider
	mediator Mediator
	fidelity *fidelityManager
	log      *zap.Logger
}

// NewRunner builds a Runner. contextMgr and mediator may be nil, in which
// case fidelity load/save and event publication are silently skipped.
// defaultFidelity is the process-wide fallback (config's
// runtime.defaultFidelity) applied to any blueprint that declares no
// ContextOptions of its own; pass "" to fall back to FidelityBurst.
func NewRunner(registry WorkflowRegistry, factory WorkflowFactory, provider *activation.Provider, contextMgr WorkflowContextManager, mediator Mediator, log *zap.Logger, defaultFidelity Fidelity) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{
		registry: registry,
		factory:  factory,
		provider: provider,
		mediator: mediator,
		fidelity: newFidelityManager(contextMgr, log, defaultFidelity),
		log:      log,
	}
}

// RunRequest is the caller-facing API from spec §6, collapsed into one
// struct: the three overloads described there ("run(blueprint, ...)",
// "run(blueprint, instance, ...)", "run(instance, ...)") correspond to which
// of Blueprint/Instance the caller populates.
type RunRequest struct {
	Blueprint     *Blueprint
	Instance      *WorkflowInstance
	ActivityID    string
	Input         any
	CorrelationID string
	ContextID     string
}

// Run is the single entry point described by spec §4.3 step 1-7.
func (r *Runner) Run(ctx context.Context, req RunRequest) (*WorkflowInstance, error) {
	blueprint := req.Blueprint
	instance := req.Instance

	if blueprint == nil {
		if instance == nil {
			return nil, fmt.Errorf("workflow: run requires a blueprint or an instance")
		}
		var err error
		blueprint, err = r.registry.GetByInstance(ctx, instance.WorkflowDefinitionID, instance.Version)
		if err != nil {
			return nil, fmt.Errorf("workflow: registry lookup failed: %w", err)
		}
		if blueprint == nil {
			return nil, &WorkflowDefinitionMissingError{DefinitionID: instance.WorkflowDefinitionID, Version: instance.Version}
		}
	}

	if instance == nil {
		minted, err := r.factory.Instantiate(ctx, blueprint, req.CorrelationID, req.ContextID)
		if err != nil {
			return nil, fmt.Errorf("workflow: instantiate failed: %w", err)
		}
		instance = minted
	}

	if instance.Status == StatusSuspended {
		if req.ActivityID == "" || !instance.isBlocking(req.ActivityID) {
			return nil, &ResumeTargetNotBlockingError{ActivityID: req.ActivityID}
		}
	}

	burstScope := r.provider.NewScope()
	defer burstScope.Close()

	execution := NewExecutionContext(instance, blueprint, burstScope)
	if r.fidelity.shouldLoadBurst(blueprint) {
		execution.WorkflowContext = r.fidelity.load(ctx, blueprint, instance)
	}

	dispatched := false
	switch instance.Status {
	case StatusIdle:
		ran, err := r.begin(ctx, execution, req.ActivityID, req.Input)
		if err != nil {
			return nil, err
		}
		dispatched = ran
	case StatusRunning:
		if err := r.drainLoop(ctx, execution, opExecute); err != nil {
			return nil, err
		}
		dispatched = true
	case StatusSuspended:
		ran, err := r.resume(ctx, execution, req.ActivityID, req.Input)
		if err != nil {
			return nil, err
		}
		dispatched = ran
	default:
		// Finished, Cancelled, Faulted: idempotent no-op. Still publishes
		// WorkflowExecuted below, per spec §8's round-trip invariants, but
		// never a terminal event since nothing changed this call.
	}

	if r.fidelity.shouldSaveBurst(execution.Blueprint) {
		r.fidelity.save(ctx, execution)
	}
	r.publish(ctx, NotificationWorkflowExecuted, execution, nil)
	if dispatched {
		r.publishTerminal(ctx, execution)
	}

	return instance, nil
}

// begin resolves the start activity, checks canExecute, and — only if it
// returns true — transitions Idle->Running and enters the drain loop. The
// returned bool reports whether the drain loop actually ran, so Run can
// suppress the terminal event per spec §8 scenario S5.
func (r *Runner) begin(ctx context.Context, execution *WorkflowExecutionContext, activityID string, input any) (bool, error) {
	startBP, err := r.resolveStartActivity(execution.Blueprint, activityID)
	if err != nil {
		return false, err
	}

	checkScope := r.provider.NewScope()
	defer checkScope.Close()

	ok, err := r.canExecute(ctx, execution, startBP, input, checkScope)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	execution.Begin()
	execution.ScheduleActivity(startBP.ID, input)
	return true, r.drainLoop(ctx, execution, opExecute)
}

// resume validates the blocking-set membership already checked by Run,
// re-checks canExecute on the target, and on success clears the blocking
// entries, transitions Suspended->Running, and re-enters the drain loop
// with the first dispatch using Resume.
func (r *Runner) resume(ctx context.Context, execution *WorkflowExecutionContext, activityID string, input any) (bool, error) {
	targetBP, ok := execution.Blueprint.GetActivity(activityID)
	if !ok {
		return false, fmt.Errorf("workflow: resume target %q not present in blueprint", activityID)
	}

	checkScope := r.provider.NewScope()
	defer checkScope.Close()

	canRun, err := r.canExecute(ctx, execution, targetBP, input, checkScope)
	if err != nil {
		return false, err
	}
	if !canRun {
		return false, nil
	}

	execution.RemoveBlocking(activityID)
	execution.Resume()
	execution.ScheduleActivity(activityID, input)
	return true, r.drainLoop(ctx, execution, opResume)
}

func (r *Runner) resolveStartActivity(blueprint *Blueprint, activityID string) (*ActivityBlueprint, error) {
	if activityID != "" {
		bp, ok := blueprint.GetActivity(activityID)
		if !ok {
			return nil, fmt.Errorf("workflow: start activity %q not present in blueprint", activityID)
		}
		return bp, nil
	}
	bp, ok := blueprint.StartActivity()
	if !ok {
		return nil, fmt.Errorf("workflow: blueprint %q has no start activity", blueprint.DefinitionID)
	}
	return bp, nil
}

// canExecute builds a throwaway ActivityExecutionContext/activity instance
// in its own scope to evaluate CanExecute, per §5's "fresh scope per
// canExecute call".
func (r *Runner) canExecute(ctx context.Context, execution *WorkflowExecutionContext, actBP *ActivityBlueprint, input any, scope *activation.Scope) (bool, error) {
	actCtx := NewActivityExecutionContext(execution, actBP, input, scope)
	if err := r.applyProperties(ctx, execution.Blueprint, actBP, actCtx); err != nil {
		return false, err
	}
	activity, err := actBP.Factory(ctx, actCtx)
	if err != nil {
		return false, fmt.Errorf("workflow: activity %q factory failed: %w", actBP.ID, err)
	}
	return activity.CanExecute(ctx, actCtx)
}

// drainLoop is the core algorithm from spec §4.3.
func (r *Runner) drainLoop(ctx context.Context, execution *WorkflowExecutionContext, op operation) error {
	scope := execution.Scope

	for execution.HasScheduledActivities() {
		if r.fidelity.shouldLoadActivity(execution.Blueprint) {
			execution.WorkflowContext = r.fidelity.load(ctx, execution.Blueprint, execution.Instance)
		}

		scheduled, err := execution.PopScheduledActivity()
		if err != nil {
			return err
		}

		actBP, ok := execution.Blueprint.GetActivity(scheduled.ActivityID)
		if !ok {
			return fmt.Errorf("workflow: scheduled activity %q not present in blueprint", scheduled.ActivityID)
		}

		actCtx := NewActivityExecutionContext(execution, actBP, scheduled.Input, scope)
		if err := r.applyProperties(ctx, execution.Blueprint, actBP, actCtx); err != nil {
			Fault{Err: err}.Apply(actCtx)
			break
		}

		activity, err := actBP.Factory(ctx, actCtx)
		if err != nil {
			Fault{Err: fmt.Errorf("workflow: activity %q factory failed: %w", actBP.ID, err)}.Apply(actCtx)
			break
		}

		r.publish(ctx, NotificationActivityExecuting, execution, actCtx)

		var result ActivityResult
		if op == opResume {
			result, err = activity.Resume(ctx, actCtx)
		} else {
			result, err = activity.Execute(ctx, actCtx)
		}
		if err != nil {
			result = Fault{Err: &ActivityExecutionFailureError{ActivityID: actBP.ID, Err: err}}
		}
		if result == nil {
			result = Outcomes{}
		}
		result.Apply(actCtx)

		r.publish(ctx, NotificationActivityExecuted, execution, actCtx)

		if r.fidelity.shouldSaveActivity(execution.Blueprint) {
			r.fidelity.save(ctx, execution)
		}

		op = opExecute
		execution.CompletePass()

		if execution.Instance.Status == StatusFaulted || execution.Instance.Status == StatusCancelled {
			break
		}

		if !execution.HasScheduledActivities() && execution.HasPostScheduledActivities() {
			execution.SchedulePostActivities()
			if execution.Instance.Status != StatusRunning {
				break
			}
		}
	}

	if len(execution.Instance.BlockingActivities) > 0 {
		execution.Suspend()
	} else if execution.Instance.Status == StatusRunning {
		execution.Complete()
	}
	return nil
}

func (r *Runner) applyProperties(ctx context.Context, blueprint *Blueprint, actBP *ActivityBlueprint, actCtx *ActivityExecutionContext) error {
	for name := range actBP.Properties {
		provider, ok := blueprint.propertyProvider(actBP.ID, name)
		if !ok {
			continue
		}
		value, err := provider(ctx, actCtx)
		if err != nil {
			return fmt.Errorf("workflow: property %q on activity %q: %w", name, actBP.ID, err)
		}
		actCtx.SetProperty(name, value)
	}
	return nil
}

func (r *Runner) publish(ctx context.Context, t NotificationType, execution *WorkflowExecutionContext, activity *ActivityExecutionContext) {
	if r.mediator == nil {
		return
	}
	if err := r.mediator.Publish(ctx, Notification{Type: t, Execution: execution, Activity: activity}); err != nil {
		r.log.Error("event publish failed", zap.String("type", string(t)), zap.Error(err))
	}
}

// publishTerminal publishes exactly one of {Cancelled, Completed, Faulted,
// Suspended} based on final status; Idle and Running publish nothing here.
func (r *Runner) publishTerminal(ctx context.Context, execution *WorkflowExecutionContext) {
	var t NotificationType
	switch execution.Instance.Status {
	case StatusCancelled:
		t = NotificationWorkflowCancelled
	case StatusFinished:
		t = NotificationWorkflowCompleted
	case StatusFaulted:
		t = NotificationWorkflowFaulted
	case StatusSuspended:
		t = NotificationWorkflowSuspended
	default:
		return
	}
	r.publish(ctx, t, execution, nil)
}
