package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/1002527441/workflow-runtime/internal/workflow"
)

type recordingBus struct {
	mu   sync.Mutex
	seen []workflow.NotificationType
	err  error
}

func (b *recordingBus) Publish(ctx context.Context, n workflow.Notification) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seen = append(b.seen, n.Type)
	return b.err
}

func (b *recordingBus) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.seen)
}

func TestMultiBus_FansOutToEveryBus(t *testing.T) {
	first := &recordingBus{}
	second := &recordingBus{}
	multi := NewMultiBus(zap.NewNop(), first, second)

	n := workflow.Notification{Type: workflow.NotificationWorkflowCompleted}
	if err := multi.Publish(context.Background(), n); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if first.count() != 1 || second.count() != 1 {
		t.Fatalf("got first=%d second=%d, want 1 each", first.count(), second.count())
	}
}

func TestMultiBus_SkipsNilBuses(t *testing.T) {
	recorded := &recordingBus{}
	multi := NewMultiBus(zap.NewNop(), nil, recorded, nil)

	if err := multi.Publish(context.Background(), workflow.Notification{}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if recorded.count() != 1 {
		t.Fatalf("got %d, want 1", recorded.count())
	}
}

func TestMultiBus_SwallowsPerBusFailure(t *testing.T) {
	failing := &recordingBus{err: errors.New("sink unreachable")}
	healthy := &recordingBus{}
	multi := NewMultiBus(zap.NewNop(), failing, healthy)

	if err := multi.Publish(context.Background(), workflow.Notification{}); err != nil {
		t.Fatalf("Publish: %v, want nil (bus failures are logged, not propagated)", err)
	}
	if healthy.count() != 1 {
		t.Fatalf("healthy bus should still have been called, got %d", healthy.count())
	}
}

func TestHTTPBus_NoSinksIsANoOp(t *testing.T) {
	bus := NewHTTPBus(nil)
	if err := bus.Publish(context.Background(), workflow.Notification{}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
}

func TestHTTPBus_PostsJSONPayloadToEverySink(t *testing.T) {
	var mu sync.Mutex
	var received []notificationPayload
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p notificationPayload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			t.Errorf("decode: %v", err)
		}
		mu.Lock()
		received = append(received, p)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	bus := NewHTTPBus([]string{ts.URL})
	inst := &workflow.WorkflowInstance{ID: "inst-1", WorkflowDefinitionID: "def-1", Status: workflow.StatusRunning}
	execution := &workflow.WorkflowExecutionContext{Instance: inst}
	n := workflow.Notification{Type: workflow.NotificationWorkflowCompleted, Execution: execution}

	if err := bus.Publish(context.Background(), n); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(received) != 1 {
		t.Fatalf("got %d requests, want 1", len(received))
	}
	if received[0].InstanceID != "inst-1" || received[0].Type != string(workflow.NotificationWorkflowCompleted) {
		t.Fatalf("got %+v", received[0])
	}
}

func TestHTTPBus_UnreachableSinkReturnsError(t *testing.T) {
	bus := NewHTTPBus([]string{"http://127.0.0.1:0"})
	err := bus.Publish(context.Background(), workflow.Notification{Type: workflow.NotificationWorkflowFaulted})
	if err == nil {
		t.Fatal("expected an error from an unreachable sink")
	}
}

func TestToPayload_ExtractsActivityAndExecutionFields(t *testing.T) {
	inst := &workflow.WorkflowInstance{ID: "inst-2", WorkflowDefinitionID: "def-2", Status: workflow.StatusSuspended, CurrentActivity: "a1"}
	execution := &workflow.WorkflowExecutionContext{Instance: inst}
	activityBP := &workflow.ActivityBlueprint{ID: "a1"}
	actx := &workflow.ActivityExecutionContext{Execution: execution, Blueprint: activityBP}

	n := workflow.Notification{Type: workflow.NotificationActivityExecuting, Execution: execution, Activity: actx}
	p := toPayload(n)

	if p.InstanceID != "inst-2" || p.DefinitionID != "def-2" || p.Status != string(workflow.StatusSuspended) {
		t.Fatalf("got %+v", p)
	}
	if p.ActivityID != "a1" {
		t.Fatalf("got activityId %q, want %q", p.ActivityID, "a1")
	}
}
