package workflow

import (
	"errors"
	"testing"
)

func TestMaterialize_DuplicateActivityID(t *testing.T) {
	def := &WorkflowDefinition{
		ID:      "dup",
		Version: 1,
		Activities: []ActivityDefinition{
			{ActivityID: "a", Type: "Echo"},
			{ActivityID: "a", Type: "Echo"},
		},
	}
	_, err := Materialize(def)
	if err == nil {
		t.Fatal("expected a DuplicateActivityIDError")
	}
	var dup *DuplicateActivityIDError
	if !errors.As(err, &dup) {
		t.Fatalf("got %v, want *DuplicateActivityIDError", err)
	}
}

func TestMaterialize_UnresolvedConnection(t *testing.T) {
	def := &WorkflowDefinition{
		ID:      "unresolved",
		Version: 1,
		Activities: []ActivityDefinition{
			{ActivityID: "a", Type: "Echo"},
		},
		Connections: []ConnectionDefinition{
			{SourceActivityID: "a", TargetActivityID: "missing", Outcome: "Done"},
		},
	}
	_, err := Materialize(def)
	if err == nil {
		t.Fatal("expected an UnresolvedConnectionError")
	}
	var unresolved *UnresolvedConnectionError
	if !errors.As(err, &unresolved) {
		t.Fatalf("got %v, want *UnresolvedConnectionError", err)
	}
}

func TestMaterialize_NestedComposite(t *testing.T) {
	def := &WorkflowDefinition{
		ID:      "nested",
		Version: 1,
		Activities: []ActivityDefinition{
			{
				ActivityID: "outer",
				Type:       "Composite",
				Activities: []ActivityDefinition{
					{ActivityID: "inner", Type: "Echo"},
				},
			},
		},
	}
	bp, err := Materialize(def)
	if err != nil {
		t.Fatalf("materialize: %v", err)
	}
	outer, ok := bp.GetActivity("outer")
	if !ok {
		t.Fatal("outer activity missing")
	}
	if outer.NestedActivities == nil || outer.NestedActivities["inner"] == nil {
		t.Fatalf("nested activity not materialized: %+v", outer.NestedActivities)
	}
}

func TestBlueprint_StartActivityPrefersNonTarget(t *testing.T) {
	def := &WorkflowDefinition{
		ID:      "start",
		Version: 1,
		Activities: []ActivityDefinition{
			{ActivityID: "b", Type: "Echo"},
			{ActivityID: "a", Type: "Echo"},
		},
		Connections: []ConnectionDefinition{
			{SourceActivityID: "a", TargetActivityID: "b", Outcome: "Done"},
		},
	}
	bp, err := Materialize(def)
	if err != nil {
		t.Fatalf("materialize: %v", err)
	}
	start, ok := bp.StartActivity()
	if !ok {
		t.Fatal("expected a start activity")
	}
	if start.ID != "a" {
		t.Fatalf("start activity = %q, want %q", start.ID, "a")
	}
}

func TestEvaluateExpression(t *testing.T) {
	actx := &ActivityExecutionContext{
		Execution: &WorkflowExecutionContext{
			Instance: &WorkflowInstance{Variables: map[string]any{
				"env":    "prod",
				"nested": map[string]any{"region": "eu-west-1"},
			}},
		},
		Input: "raw-input",
	}

	cases := []struct {
		name string
		pd   PropertyDefinition
		want any
	}{
		{"literal", PropertyDefinition{Expression: "fixed"}, "fixed"},
		{"variable", PropertyDefinition{Expression: "env", Syntax: "variable"}, "prod"},
		{"input", PropertyDefinition{Syntax: "input"}, "raw-input"},
		{"json-path", PropertyDefinition{Expression: "nested.region", Syntax: "json-path"}, "eu-west-1"},
		{"json-path missing", PropertyDefinition{Expression: "nested.missing", Syntax: "json-path"}, nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := evaluateExpression(c.pd, actx)
			if err != nil {
				t.Fatalf("evaluateExpression: %v", err)
			}
			if got != c.want {
				t.Fatalf("got %v, want %v", got, c.want)
			}
		})
	}
}
