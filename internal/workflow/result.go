package workflow

import "time"

// ActivityResult is the polymorphic outcome of one activity dispatch. Each
// variant's Apply mutates the WorkflowExecutionContext; there is no base
// class, just an interface with one method, matching the teacher's
// preference for small interfaces over inheritance hierarchies.
type ActivityResult interface {
	Apply(actx *ActivityExecutionContext)
}

// Outcomes enqueues the successors of the completed activity along every
// connection whose outcome matches one of the named outcomes.
type Outcomes struct {
	Names []string
}

func (o Outcomes) Apply(actx *ActivityExecutionContext) {
	actx.Execution.Instance.CurrentActivity = actx.Blueprint.ID
	for _, conn := range actx.Execution.Blueprint.OutgoingConnections(actx.Blueprint.ID) {
		for _, name := range o.Names {
			if conn.Outcome == name {
				actx.Execution.ScheduleActivity(conn.Target.ID, actx.Output)
			}
		}
	}
}

// Suspend adds the current activity to the blocking set, leaving it absent
// from both queues until an external resume targets it.
type Suspend struct {
	Tag string
}

func (s Suspend) Apply(actx *ActivityExecutionContext) {
	actx.Execution.AddBlocking(BlockingActivity{ActivityID: actx.Blueprint.ID, Tag: s.Tag})
}

// Cancel sets the run's status to Cancelled.
type Cancel struct{}

func (Cancel) Apply(actx *ActivityExecutionContext) {
	actx.Execution.Cancel()
}

// Fault records a fault on the instance and sets status to Faulted.
type Fault struct {
	Err error
}

func (f Fault) Apply(actx *ActivityExecutionContext) {
	msg := "activity fault"
	if f.Err != nil {
		msg = f.Err.Error()
	}
	actx.Execution.FaultWith(FaultRecord{
		ActivityID: actx.Blueprint.ID,
		Message:    msg,
		OccurredAt: time.Now().UTC(),
	})
}

// Combined applies a sequence of results in order, matching the spec's
// requirement that an activity may report more than one effect from a
// single dispatch (e.g. a partial Outcomes schedule alongside a Suspend).
type Combined struct {
	Results []ActivityResult
}

func (c Combined) Apply(actx *ActivityExecutionContext) {
	for _, r := range c.Results {
		if r != nil {
			r.Apply(actx)
		}
	}
}
