package eventbus

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/1002527441/workflow-runtime/internal/workflow"
)

// HTTPBus posts each notification as JSON to zero or more configured sink
// URLs, grounded directly on the teacher's Notifier.postJSON: fire, log
// nothing special on failure (the teacher's n.client.Do(req) error is
// already discarded; here MultiBus/the caller logs it), no retries.
type HTTPBus struct {
	sinks  []string
	client *http.Client
}

// NewHTTPBus builds an HTTPBus over the given sink base URLs. A nil/empty
// sinks slice is valid: Publish becomes a no-op, matching the teacher's
// "endpoint == nil -> skip" guard in postMemarch/postAudit/postEventBus.
func NewHTTPBus(sinks []string) *HTTPBus {
	return &HTTPBus{
		sinks:  sinks,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

func (b *HTTPBus) Publish(ctx context.Context, n workflow.Notification) error {
	if len(b.sinks) == 0 {
		return nil
	}
	payload := toPayload(n)
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	var firstErr error
	for _, sink := range b.sinks {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, sink+"/v1/events", bytes.NewReader(raw))
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := b.client.Do(req)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		resp.Body.Close()
	}
	return firstErr
}
