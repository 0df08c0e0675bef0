package connectivity

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// defaultProbeTimeout bounds a single probe attempt so a black-holed route
// cannot stall the whole connectivity check.
const defaultProbeTimeout = 10 * time.Second

// HTTPProbe confirms connectivity by issuing a GET against a well-known
// endpoint (e.g. a generate_204 URL) and expecting a 2xx answer.
type HTTPProbe struct {
	name    string
	url     string
	client  *http.Client
	timeout time.Duration
}

// NewHTTPProbe builds an HTTP connectivity probe. A zero timeout falls back
// to the package default.
func NewHTTPProbe(name, url string, timeout time.Duration) *HTTPProbe {
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	return &HTTPProbe{
		name:    name,
		url:     url,
		client:  &http.Client{},
		timeout: timeout,
	}
}

// Name implements Probe.
func (p *HTTPProbe) Name() string { return p.name }

// Check implements Probe. Any 2xx status counts as connected.
func (p *HTTPProbe) Check(ctx context.Context) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return false, fmt.Errorf("building probe request for %q: %w", p.url, err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode < 300, nil
}
