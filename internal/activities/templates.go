package activities

import "github.com/1002527441/workflow-runtime/internal/workflow"

// BuiltinTemplates mirrors the teacher's BuiltinTemplates: a small set of
// ready-to-run definitions seeded at startup so the service is useful
// before any caller has published a definition of their own. Each template
// exercises a different corner of the graph model (an outbound call,
// suspension, branching, two-tier scheduling) using only this package's
// demonstration activities.
var BuiltinTemplates = []workflow.WorkflowDefinition{
	{
		ID:          "tpl-http-notify",
		Version:     1,
		Name:        "HTTP Notify",
		Description: "Posts the run's input to a webhook and stops.",
		IsEnabled:   true,
		IsPublished: true,
		Activities: []workflow.ActivityDefinition{
			{
				ActivityID: "notify",
				Type:       TypeHTTP,
				Name:       "Notify",
				Properties: map[string]workflow.PropertyDefinition{
					"method": {Expression: "POST"},
					"url":    {Expression: "", Syntax: "variable"},
					"body":   {Expression: "", Syntax: "input"},
				},
			},
		},
	},
	{
		ID:          "tpl-approval-gate",
		Version:     1,
		Name:        "Approval Gate",
		Description: "Suspends for an external decision, then branches on it.",
		IsEnabled:   true,
		IsPublished: true,
		Activities: []workflow.ActivityDefinition{
			{
				ActivityID: "gate",
				Type:       TypeApproval,
				Name:       "Await approval",
				Properties: map[string]workflow.PropertyDefinition{
					"tag": {Expression: "approval-gate"},
				},
			},
			{
				ActivityID: "onApproved",
				Type:       TypeTransform,
				Name:       "Mark approved",
				Properties: map[string]workflow.PropertyDefinition{
					"operation": {Expression: "uppercase"},
					"value":     {Expression: "approved"},
				},
			},
			{
				ActivityID: "onRejected",
				Type:       TypeTransform,
				Name:       "Mark rejected",
				Properties: map[string]workflow.PropertyDefinition{
					"operation": {Expression: "uppercase"},
					"value":     {Expression: "rejected"},
				},
			},
		},
		Connections: []workflow.ConnectionDefinition{
			{SourceActivityID: "gate", TargetActivityID: "onApproved", Outcome: "Approved"},
			{SourceActivityID: "gate", TargetActivityID: "onRejected", Outcome: "Rejected"},
		},
	},
	{
		ID:          "tpl-condition-branch",
		Version:     1,
		Name:        "Condition Branch",
		Description: "Evaluates a variable and transforms the input differently on each branch.",
		IsEnabled:   true,
		IsPublished: true,
		Activities: []workflow.ActivityDefinition{
			{
				ActivityID: "check",
				Type:       TypeCondition,
				Name:       "Check flag",
				Properties: map[string]workflow.PropertyDefinition{
					"condition": {Expression: "flag", Syntax: "variable"},
				},
			},
			{
				ActivityID: "whenTrue",
				Type:       TypeTransform,
				Name:       "Trim",
				Properties: map[string]workflow.PropertyDefinition{
					"operation": {Expression: "trim"},
					"value":     {Expression: "", Syntax: "input"},
				},
			},
			{
				ActivityID: "whenFalse",
				Type:       TypeTransform,
				Name:       "Lowercase",
				Properties: map[string]workflow.PropertyDefinition{
					"operation": {Expression: "lowercase"},
					"value":     {Expression: "", Syntax: "input"},
				},
			},
		},
		Connections: []workflow.ConnectionDefinition{
			{SourceActivityID: "check", TargetActivityID: "whenTrue", Outcome: "True"},
			{SourceActivityID: "check", TargetActivityID: "whenFalse", Outcome: "False"},
		},
	},
	{
		ID:          "tpl-fanout-two-tier",
		Version:     1,
		Name:        "Fan-out two-tier scheduling",
		Description: "A composite activity schedules one sibling onto the primary queue and another onto the post-scheduled queue, demonstrating that the post-scheduled queue only drains once the primary queue is empty.",
		IsEnabled:   true,
		IsPublished: true,
		Activities: []workflow.ActivityDefinition{
			{
				ActivityID: "fanOut",
				Type:       TypeFanOut,
				Name:       "Fan out",
				Properties: map[string]workflow.PropertyDefinition{
					"primaryActivityId": {Expression: "primary"},
					"postActivityId":    {Expression: "post"},
				},
			},
			{
				ActivityID: "primary",
				Type:       TypeTransform,
				Name:       "Primary-queue sibling",
				Properties: map[string]workflow.PropertyDefinition{
					"operation": {Expression: "uppercase"},
					"value":     {Expression: "primary"},
				},
			},
			{
				ActivityID: "post",
				Type:       TypeTransform,
				Name:       "Post-scheduled sibling",
				Properties: map[string]workflow.PropertyDefinition{
					"operation": {Expression: "uppercase"},
					"value":     {Expression: "post"},
				},
			},
		},
	},
}
