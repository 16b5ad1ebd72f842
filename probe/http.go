package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"

	"github.com/drblury/dishweaver/jsonutil"
)

// maxHealthBody bounds how much of a health response is read.
const maxHealthBody = 64 << 10

// HTTPProbeOption configures NewHTTPProbe.
type HTTPProbeOption func(*httpCheck)

type httpCheck struct {
	client     HTTPDoer
	statuses   []int
	wantStatus string
	header     http.Header
}

// WithHTTPClient sends the probe through client instead of http.DefaultClient.
func WithHTTPClient(client HTTPDoer) HTTPProbeOption {
	return func(c *httpCheck) {
		if client != nil {
			c.client = client
		}
	}
}

// WithAcceptedStatuses limits success to the given status codes. Without it
// any 2xx passes.
func WithAcceptedStatuses(statuses ...int) HTTPProbeOption {
	return func(c *httpCheck) {
		c.statuses = append(c.statuses, statuses...)
	}
}

// WithHealthStatus requires a JSON body of the form {"status": want}, the
// shape served by the health, healthz and readyz endpoints.
func WithHealthStatus(want string) HTTPProbeOption {
	return func(c *httpCheck) {
		c.wantStatus = want
	}
}

// WithHeader sets a request header on every probe request.
func WithHeader(key, value string) HTTPProbeOption {
	return func(c *httpCheck) {
		c.header.Set(key, value)
	}
}

// NewHTTPProbe returns a Func that GETs target and checks the response.
func NewHTTPProbe(name, target string, opts ...HTTPProbeOption) Func {
	check := &httpCheck{
		client: http.DefaultClient,
		header: make(http.Header),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(check)
		}
	}
	target = strings.TrimSpace(target)

	return func(ctx context.Context) error {
		if target == "" {
			return fmt.Errorf("%s probe: target URL is required", name)
		}

		req, err := http.NewRequestWithContext(contextOrBackground(ctx), http.MethodGet, target, nil)
		if err != nil {
			return fmt.Errorf("%s probe: failed to build request: %w", name, err)
		}
		for key, values := range check.header {
			req.Header[key] = slices.Clone(values)
		}

		resp, err := check.client.Do(req)
		if err != nil {
			return fmt.Errorf("%s probe request failed: %w", name, err)
		}
		defer resp.Body.Close()

		if err := check.verify(resp); err != nil {
			return fmt.Errorf("%s probe: %w", name, err)
		}
		return nil
	}
}

func (c *httpCheck) accepts(status int) bool {
	if len(c.statuses) == 0 {
		return status >= 200 && status < 300
	}
	return slices.Contains(c.statuses, status)
}

func (c *httpCheck) verify(resp *http.Response) error {
	body := io.LimitReader(resp.Body, maxHealthBody)
	if !c.accepts(resp.StatusCode) {
		return fmt.Errorf("unexpected status %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	if c.wantStatus == "" {
		_, err := io.Copy(io.Discard, body)
		return err
	}

	var payload struct {
		Status string `json:"status"`
	}
	if err := jsonutil.Decode(body, &payload); err != nil {
		return fmt.Errorf("decode health response: %w", err)
	}
	if payload.Status != c.wantStatus {
		return fmt.Errorf("health status %q, want %q", payload.Status, c.wantStatus)
	}
	return nil
}
