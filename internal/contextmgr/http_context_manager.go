// Package contextmgr provides a concrete WorkflowContextManager
// (internal/workflow/ports.go), grounded directly on the teacher's
// Notifier/endpoint pattern: a base URL plus a parsed timeout, JSON over
// HTTP, one client shared across calls.
package contextmgr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/1002527441/workflow-runtime/internal/workflow"
)

// HTTPContextManager loads the caller-defined workflow-context payload via
// GET /v1/contexts/{contextId} and saves it via POST /v1/contexts,
// returning the contextId the save produced.
type HTTPContextManager struct {
	baseURL string
	client  *http.Client
}

// NewHTTPContextManager mirrors the teacher's parseEndpoint: an empty
// baseURL or unparseable timeout falls back to a safe default rather than
// failing construction.
func NewHTTPContextManager(baseURL, timeout string) *HTTPContextManager {
	dur, err := time.ParseDuration(timeout)
	if err != nil || dur <= 0 {
		dur = 5 * time.Second
	}
	return &HTTPContextManager{baseURL: baseURL, client: &http.Client{Timeout: dur}}
}

func (m *HTTPContextManager) LoadContext(ctx context.Context, blueprint *workflow.Blueprint, instance *workflow.WorkflowInstance) (any, error) {
	if m.baseURL == "" || instance.ContextID == "" {
		return nil, nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+"/v1/contexts/"+instance.ContextID, nil)
	if err != nil {
		return nil, err
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("contextmgr: load status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var value any
	if err := json.Unmarshal(body, &value); err != nil {
		return nil, err
	}
	return value, nil
}

func (m *HTTPContextManager) SaveContext(ctx context.Context, execution *workflow.WorkflowExecutionContext) (string, error) {
	if m.baseURL == "" {
		return execution.Instance.ContextID, nil
	}
	payload := map[string]any{
		"instanceId": execution.Instance.ID,
		"contextId":  execution.Instance.ContextID,
		"value":      execution.WorkflowContext,
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return execution.Instance.ContextID, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/v1/contexts", bytes.NewReader(raw))
	if err != nil {
		return execution.Instance.ContextID, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := m.client.Do(req)
	if err != nil {
		return execution.Instance.ContextID, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return execution.Instance.ContextID, fmt.Errorf("contextmgr: save status %d", resp.StatusCode)
	}
	var body struct {
		ContextID string `json:"contextId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.ContextID == "" {
		return execution.Instance.ContextID, nil
	}
	return body.ContextID, nil
}
