// Package activities is the small demonstration activity catalog the
// runtime is exercised against. It is out of scope per spec §1 ("the
// catalog of concrete activity implementations" is an external
// collaborator) but a runnable repository needs at least one, so this
// package generalizes the teacher's single executeStep dispatch
// (engine.go's executeHTTP/executeTransform/executeCondition, gated by
// RequiresApproval/isApproved) into four of the runtime's pluggable
// Activity implementations.
package activities

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/1002527441/workflow-runtime/internal/workflow"
)

// HTTPActivity performs one outbound HTTP call, grounded directly on the
// teacher's executeHTTP: method defaults to POST, url is required, a
// Content-Type default is applied, and a 4xx/5xx response becomes a Fault
// result rather than a returned error. Retries are this activity's own
// concern via the retryMax/retryBackoffMs properties, generalizing the
// teacher's executeStepWithRetry (step.Retry.Max, step.Retry.BackoffMs,
// time.Sleep between attempts) from a step-level wrapper into a per-call
// property of the activity itself.
type HTTPActivity struct {
	Client *http.Client
}

// NewHTTPActivity builds an HTTPActivity with the teacher's 30s client
// timeout.
func NewHTTPActivity() *HTTPActivity {
	return &HTTPActivity{Client: &http.Client{Timeout: 30 * time.Second}}
}

func (a *HTTPActivity) CanExecute(ctx context.Context, actx *workflow.ActivityExecutionContext) (bool, error) {
	return true, nil
}

func (a *HTTPActivity) Execute(ctx context.Context, actx *workflow.ActivityExecutionContext) (workflow.ActivityResult, error) {
	urlProp, _ := actx.Property("url")
	urlStr, _ := urlProp.(string)
	if strings.TrimSpace(urlStr) == "" {
		return workflow.Fault{Err: fmt.Errorf("http activity: missing url")}, nil
	}
	if !strings.HasPrefix(strings.ToLower(urlStr), "http") {
		return workflow.Fault{Err: fmt.Errorf("http activity: url must be http or https")}, nil
	}

	retryMaxProp, _ := actx.Property("retryMax")
	retryMax := intProperty(retryMaxProp)
	if retryMax < 0 {
		retryMax = 0
	}
	backoffProp, _ := actx.Property("retryBackoffMs")
	backoff := time.Duration(intProperty(backoffProp)) * time.Millisecond
	if backoff <= 0 {
		backoff = 250 * time.Millisecond
	}

	attempts := 0
	for {
		result, err := a.call(ctx, actx, urlStr)
		if err == nil {
			return result, nil
		}
		if attempts >= retryMax {
			return workflow.Fault{Err: err}, nil
		}
		select {
		case <-ctx.Done():
			return workflow.Fault{Err: ctx.Err()}, nil
		case <-time.After(backoff):
		}
		attempts++
	}
}

// call performs a single attempt. It returns a plain error only for the
// cases worth retrying (transport failure, 4xx/5xx status); a malformed
// request body or URL is reported as a Fault result directly since retrying
// it would only fail the same way again.
func (a *HTTPActivity) call(ctx context.Context, actx *workflow.ActivityExecutionContext, urlStr string) (workflow.ActivityResult, error) {
	method, _ := actx.Property("method")
	headers, _ := actx.Property("headers")
	body, _ := actx.Property("body")

	methodStr, _ := method.(string)
	if strings.TrimSpace(methodStr) == "" {
		methodStr = http.MethodPost
	}

	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return workflow.Fault{Err: err}, nil
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, methodStr, urlStr, reqBody)
	if err != nil {
		return workflow.Fault{Err: err}, nil
	}
	if hm, ok := headers.(map[string]string); ok {
		for k, v := range hm {
			req.Header.Set(k, v)
		}
	}
	if req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("http activity: status %d: %s", resp.StatusCode, raw)
	}

	actx.Output = string(raw)
	return workflow.Outcomes{Names: []string{"Success"}}, nil
}

func (a *HTTPActivity) Resume(ctx context.Context, actx *workflow.ActivityExecutionContext) (workflow.ActivityResult, error) {
	return a.Execute(ctx, actx)
}

// intProperty coerces a property value decoded from JSON (float64) or set
// directly in Go test/template code (int) to an int, defaulting to zero for
// anything else.
func intProperty(value any) int {
	switch v := value.(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}
