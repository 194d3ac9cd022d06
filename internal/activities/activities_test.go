package activities

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/1002527441/workflow-runtime/internal/activation"
	"github.com/1002527441/workflow-runtime/internal/workflow"
)

func newActx(t *testing.T, bp *workflow.Blueprint, props map[string]any, input any) *workflow.ActivityExecutionContext {
	t.Helper()
	inst := &workflow.WorkflowInstance{Status: workflow.StatusRunning}
	execution := workflow.NewExecutionContext(inst, bp, activation.NewProvider().NewScope())
	actBP, _ := bp.GetActivity("a")
	actx := workflow.NewActivityExecutionContext(execution, actBP, input, execution.Scope)
	for k, v := range props {
		actx.SetProperty(k, v)
	}
	return actx
}

func singleActivityBlueprint(t *testing.T, typeName string) *workflow.Blueprint {
	t.Helper()
	def := &workflow.WorkflowDefinition{
		ID: "test", Version: 1,
		Activities: []workflow.ActivityDefinition{{ActivityID: "a", Type: typeName}},
	}
	bp, err := workflow.Materialize(def)
	if err != nil {
		t.Fatalf("materialize: %v", err)
	}
	return bp
}

func TestHTTPActivity_SuccessSchedulesSuccess(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))
	defer ts.Close()

	bp := singleActivityBlueprint(t, TypeHTTP)
	actx := newActx(t, bp, map[string]any{"method": "GET", "url": ts.URL}, nil)

	a := NewHTTPActivity()
	result, err := a.Execute(context.Background(), actx)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	outcomes, ok := result.(workflow.Outcomes)
	if !ok || len(outcomes.Names) != 1 || outcomes.Names[0] != "Success" {
		t.Fatalf("got %#v, want Outcomes{Success}", result)
	}
	if actx.Output != "ok" {
		t.Fatalf("output = %v, want %q", actx.Output, "ok")
	}
}

func TestHTTPActivity_MissingURLFaults(t *testing.T) {
	bp := singleActivityBlueprint(t, TypeHTTP)
	actx := newActx(t, bp, map[string]any{}, nil)

	a := NewHTTPActivity()
	result, err := a.Execute(context.Background(), actx)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if _, ok := result.(workflow.Fault); !ok {
		t.Fatalf("got %#v, want Fault", result)
	}
}

func TestHTTPActivity_NonOKStatusFaults(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	bp := singleActivityBlueprint(t, TypeHTTP)
	actx := newActx(t, bp, map[string]any{"method": "GET", "url": ts.URL}, nil)

	a := NewHTTPActivity()
	result, err := a.Execute(context.Background(), actx)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if _, ok := result.(workflow.Fault); !ok {
		t.Fatalf("got %#v, want Fault", result)
	}
}

func TestHTTPActivity_RetriesOnFailureThenSucceeds(t *testing.T) {
	var calls int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))
	defer ts.Close()

	bp := singleActivityBlueprint(t, TypeHTTP)
	actx := newActx(t, bp, map[string]any{
		"method":         "GET",
		"url":            ts.URL,
		"retryMax":       2,
		"retryBackoffMs": 1,
	}, nil)

	a := NewHTTPActivity()
	result, err := a.Execute(context.Background(), actx)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	outcomes, ok := result.(workflow.Outcomes)
	if !ok || len(outcomes.Names) != 1 || outcomes.Names[0] != "Success" {
		t.Fatalf("got %#v, want Outcomes{Success}", result)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3 (2 failures then a success within retryMax)", calls)
	}
}

func TestHTTPActivity_FaultsAfterExhaustingRetries(t *testing.T) {
	var calls int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	bp := singleActivityBlueprint(t, TypeHTTP)
	actx := newActx(t, bp, map[string]any{
		"method":         "GET",
		"url":            ts.URL,
		"retryMax":       2,
		"retryBackoffMs": 1,
	}, nil)

	a := NewHTTPActivity()
	result, err := a.Execute(context.Background(), actx)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if _, ok := result.(workflow.Fault); !ok {
		t.Fatalf("got %#v, want Fault", result)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3 (1 initial attempt + 2 retries)", calls)
	}
}

func TestTransformActivity_Operations(t *testing.T) {
	bp := singleActivityBlueprint(t, TypeTransform)

	cases := []struct {
		op, value, want string
	}{
		{"uppercase", "abc", "ABC"},
		{"lowercase", "ABC", "abc"},
		{"trim", "  abc  ", "abc"},
		{"", "abc", "abc"},
	}
	for _, c := range cases {
		actx := newActx(t, bp, map[string]any{"operation": c.op, "value": c.value}, nil)
		a := NewTransformActivity()
		result, err := a.Execute(context.Background(), actx)
		if err != nil {
			t.Fatalf("Execute(%q): %v", c.op, err)
		}
		outcomes, ok := result.(workflow.Outcomes)
		if !ok || len(outcomes.Names) != 1 || outcomes.Names[0] != "Done" {
			t.Fatalf("got %#v, want Outcomes{Done}", result)
		}
		if actx.Output != c.want {
			t.Fatalf("op %q: output = %v, want %q", c.op, actx.Output, c.want)
		}
	}
}

func TestTransformActivity_UnknownOperationFaults(t *testing.T) {
	bp := singleActivityBlueprint(t, TypeTransform)
	actx := newActx(t, bp, map[string]any{"operation": "reverse", "value": "abc"}, nil)
	a := NewTransformActivity()
	result, err := a.Execute(context.Background(), actx)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if _, ok := result.(workflow.Fault); !ok {
		t.Fatalf("got %#v, want Fault", result)
	}
}

func TestConditionActivity_BranchesOnTruthiness(t *testing.T) {
	bp := singleActivityBlueprint(t, TypeCondition)

	trueActx := newActx(t, bp, map[string]any{"condition": true}, nil)
	result, err := NewConditionActivity().Execute(context.Background(), trueActx)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if o, ok := result.(workflow.Outcomes); !ok || o.Names[0] != "True" {
		t.Fatalf("got %#v, want Outcomes{True}", result)
	}

	falseActx := newActx(t, bp, map[string]any{"condition": false}, nil)
	result, err = NewConditionActivity().Execute(context.Background(), falseActx)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if o, ok := result.(workflow.Outcomes); !ok || o.Names[0] != "False" {
		t.Fatalf("got %#v, want Outcomes{False}", result)
	}
}

func TestApprovalActivity_ExecuteSuspendsThenResumeBranches(t *testing.T) {
	bp := singleActivityBlueprint(t, TypeApproval)
	a := NewApprovalActivity()

	execActx := newActx(t, bp, map[string]any{"tag": "review"}, nil)
	result, err := a.Execute(context.Background(), execActx)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	suspend, ok := result.(workflow.Suspend)
	if !ok || suspend.Tag != "review" {
		t.Fatalf("got %#v, want Suspend{review}", result)
	}

	approvedActx := newActx(t, bp, nil, map[string]any{"approved": true})
	result, err = a.Resume(context.Background(), approvedActx)
	if err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if o, ok := result.(workflow.Outcomes); !ok || o.Names[0] != "Approved" {
		t.Fatalf("got %#v, want Outcomes{Approved}", result)
	}

	rejectedActx := newActx(t, bp, nil, map[string]any{"approved": false})
	result, err = a.Resume(context.Background(), rejectedActx)
	if err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if o, ok := result.(workflow.Outcomes); !ok || o.Names[0] != "Rejected" {
		t.Fatalf("got %#v, want Outcomes{Rejected}", result)
	}
}

func TestFanOutActivity_SchedulesPrimaryAndPostDirectly(t *testing.T) {
	bp := singleActivityBlueprint(t, TypeFanOut)
	actx := newActx(t, bp, map[string]any{"primaryActivityId": "d", "postActivityId": "e"}, "payload")

	a := NewFanOutActivity()
	result, err := a.Execute(context.Background(), actx)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if _, ok := result.(workflow.Outcomes); !ok {
		t.Fatalf("got %#v, want Outcomes{}", result)
	}
	if !actx.Execution.HasScheduledActivities() {
		t.Fatal("expected the primary queue to carry the scheduled sibling")
	}
	if !actx.Execution.HasPostScheduledActivities() {
		t.Fatal("expected the post-scheduled queue to carry the deferred sibling")
	}
}

func TestBuiltinProvider_MaterializesEveryTemplate(t *testing.T) {
	provider := NewBuiltinProvider()
	blueprints, err := provider.Blueprints(context.Background())
	if err != nil {
		t.Fatalf("Blueprints: %v", err)
	}
	if len(blueprints) != len(BuiltinTemplates) {
		t.Fatalf("got %d blueprints, want %d", len(blueprints), len(BuiltinTemplates))
	}
}

func TestRegisterAll_RegistersEveryType(t *testing.T) {
	provider := activation.NewProvider()
	RegisterAll(provider)
	scope := provider.NewScope()
	defer scope.Close()

	for _, typeName := range []string{TypeHTTP, TypeTransform, TypeCondition, TypeApproval, TypeFanOut} {
		if _, err := scope.Resolve(typeName); err != nil {
			t.Fatalf("Resolve(%q): %v", typeName, err)
		}
	}
}
