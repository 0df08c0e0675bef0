// Package http_request provides a runner that performs a single HTTP
// request during startup, e.g. warming a cache or fetching remote config.
package http_request

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/vk/maestro/internal/ctxlog"
	"github.com/vk/maestro/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the http_request runner.
type Input struct {
	URL    string `hcl:"url"`
	Method string `hcl:"method,optional"`
	Body   string `hcl:"body,optional"`
	// ExpectStatus pins the exact status code that counts as success.
	// Zero means any status below 400 passes.
	ExpectStatus int `hcl:"expect_status,optional"`
}

// client is shared across executions of this runner to reuse connections.
var client = &http.Client{}

// OnRunHTTPRequest is the handler for the 'http_request' runner. The
// logical result reflects the response status; transport errors are hard
// failures.
func OnRunHTTPRequest(ctx context.Context, input any) (bool, error) {
	in := input.(*Input)
	method := in.Method
	if method == "" {
		method = http.MethodGet
	}
	logger := ctxlog.FromContext(ctx).With("method", method, "url", in.URL)

	var body io.Reader
	if in.Body != "" {
		body = strings.NewReader(in.Body)
	}
	req, err := http.NewRequestWithContext(ctx, method, in.URL, body)
	if err != nil {
		return false, fmt.Errorf("building request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return false, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()
	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)

	logger.Debug("Received HTTP response.", "status", resp.Status)

	if in.ExpectStatus != 0 {
		return resp.StatusCode == in.ExpectStatus, nil
	}
	return resp.StatusCode < 400, nil
}

// Register registers the handler with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterRunner("http_request", &registry.RegisteredRunner{
		NewInput: func() any { return new(Input) },
		Fn:       OnRunHTTPRequest,
	})
}
