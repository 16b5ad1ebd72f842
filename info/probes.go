package info

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// healthPayload is the body of every passing health endpoint.
type healthPayload struct {
	Status string `json:"status"`
}

func (ih *InfoHandler) respondHealthy(w http.ResponseWriter, r *http.Request, status string) {
	ih.RespondWithJSON(w, r, http.StatusOK, healthPayload{Status: status})
}

// probeFailures holds every failing check of one run, in registration order.
type probeFailures []error

func (f probeFailures) Error() string {
	msgs := make([]string, len(f))
	for i, err := range f {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

func (f probeFailures) Unwrap() []error {
	return f
}

// runChecks runs checks concurrently under the probe timeout so a slow
// component cannot hide the state of the others.
func (ih *InfoHandler) runChecks(ctx context.Context, checks []ProbeFunc) error {
	if len(checks) == 0 {
		return nil
	}

	timeout := ih.probeTimeout
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	results := make([]error, len(checks))
	var g errgroup.Group
	for i, check := range checks {
		g.Go(func() error {
			results[i] = describeFailure(check(ctx), timeout)
			return nil
		})
	}
	_ = g.Wait()

	var failures probeFailures
	for _, err := range results {
		if err != nil {
			failures = append(failures, err)
		}
	}
	if len(failures) == 0 {
		return nil
	}
	return failures
}

func describeFailure(err error, timeout time.Duration) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("timed out after %s: %w", timeout, err)
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("cancelled: %w", err)
	}
	return err
}

func compactChecks(checks []ProbeFunc) []ProbeFunc {
	return slices.DeleteFunc(slices.Clone(checks), func(check ProbeFunc) bool { return check == nil })
}
