package probe

import (
	"context"
	"fmt"
	"net/http"
)

// Func represents a health check that returns an error when the resource is unavailable.
type Func func(ctx context.Context) error

// PingFunc represents a health check that returns an error when the resource is unavailable.
type PingFunc func(ctx context.Context) error

// Pinger is implemented by components that can report their own health,
// such as the dish store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HTTPDoer represents the subset of *http.Client required by the HTTP probe helper.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// NewPingProbe wraps a PingFunc with standardised error handling suitable for InfoHandler probes.
func NewPingProbe(name string, fn PingFunc) Func {
	return func(ctx context.Context) error {
		if fn == nil {
			return nilComponentError(name, "ping function")
		}
		ctx = contextOrBackground(ctx)

		if err := fn(ctx); err != nil {
			return fmt.Errorf("%s probe failed: %w", name, err)
		}
		return nil
	}
}

// NewComponentProbe pings a Pinger. A nil component fails the probe.
func NewComponentProbe(name string, component Pinger) Func {
	return func(ctx context.Context) error {
		if component == nil {
			return nilComponentError(name, "component")
		}
		return NewPingProbe(name, component.Ping)(ctx)
	}
}

// NewFlagProbe fails while ready reports false. It backs readiness gates that
// flip during startup and shutdown.
func NewFlagProbe(name string, ready func() bool) Func {
	return func(context.Context) error {
		if ready == nil {
			return nilComponentError(name, "flag")
		}
		if !ready() {
			return fmt.Errorf("%s probe: not ready", name)
		}
		return nil
	}
}

func contextOrBackground(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func nilComponentError(name, component string) error {
	return fmt.Errorf("%s probe: %s is nil", name, component)
}
