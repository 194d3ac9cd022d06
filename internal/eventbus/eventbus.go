// Package eventbus implements the core's Mediator port
// (internal/workflow/events.go), fanning lifecycle notifications out to
// zero or more external subscribers. It is grounded on the teacher's
// Notifier (internal/workflow/notifier.go): an HTTP POST per configured
// sink, fire-and-forget, plus a second, NATS-backed implementation grounded
// on ngnhng-diy-temporal's nats.Client and its own engine.go's
// publishEvent pattern of one subject per notification type.
package eventbus

import (
	"context"

	"go.uber.org/zap"

	"github.com/1002527441/workflow-runtime/internal/workflow"
)

// Bus is satisfied by workflow.Mediator; it is named separately here so
// concrete bus implementations can be composed (MultiBus) without the
// eventbus package importing workflow for anything but the Notification
// type it forwards.
type Bus = workflow.Mediator

// notificationPayload is the wire shape posted to HTTP sinks and published
// to NATS subjects, grounded on the teacher's Notifier payload maps
// (event/run_id/workflow_id/status/... flattened fields), generalized to
// the graph-activity domain.
type notificationPayload struct {
	Type           string `json:"type"`
	InstanceID     string `json:"instanceId"`
	DefinitionID   string `json:"workflowDefinitionId"`
	Status         string `json:"status"`
	CurrentActivity string `json:"currentActivity,omitempty"`
	ActivityID     string `json:"activityId,omitempty"`
	Timestamp      string `json:"ts"`
}

func toPayload(n workflow.Notification) notificationPayload {
	p := notificationPayload{
		Type:      string(n.Type),
		Timestamp: nowRFC3339(),
	}
	if n.Execution != nil && n.Execution.Instance != nil {
		p.InstanceID = n.Execution.Instance.ID
		p.DefinitionID = n.Execution.Instance.WorkflowDefinitionID
		p.Status = string(n.Execution.Instance.Status)
		p.CurrentActivity = n.Execution.Instance.CurrentActivity
	}
	if n.Activity != nil && n.Activity.Blueprint != nil {
		p.ActivityID = n.Activity.Blueprint.ID
	}
	return p
}

// MultiBus fans a single Publish out to every configured Bus, grounded on
// the teacher's Notifier.RunEvent calling postMemarch/postAudit/
// postEventBus unconditionally in sequence — here generalized to an
// arbitrary list so HTTP sinks and NATS can be combined.
type MultiBus struct {
	buses []Bus
	log   *zap.Logger
}

// NewMultiBus composes buses, skipping nil entries so callers can
// unconditionally pass an HTTPBus/NATSBus that may not be configured.
func NewMultiBus(log *zap.Logger, buses ...Bus) *MultiBus {
	if log == nil {
		log = zap.NewNop()
	}
	compact := make([]Bus, 0, len(buses))
	for _, b := range buses {
		if b != nil {
			compact = append(compact, b)
		}
	}
	return &MultiBus{buses: compact, log: log}
}

// Publish delivers to every bus in registration order, logging (not
// propagating) any individual bus's failure, matching §7's "failure in an
// event publisher is logged but does not alter workflow status".
func (m *MultiBus) Publish(ctx context.Context, n workflow.Notification) error {
	for _, b := range m.buses {
		if err := b.Publish(ctx, n); err != nil {
			m.log.Error("event bus publish failed", zap.Error(err))
		}
	}
	return nil
}
