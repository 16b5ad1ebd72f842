package server

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/drblury/dishweaver/dish"
	"github.com/drblury/dishweaver/router"
)

// Option customises a Server.
type Option func(*Server)

// WithLogger sets the logger shared by the router, the responder and the
// handlers. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStore serves dishes from store instead of a fresh empty one.
func WithStore(store *dish.Store) Option {
	return func(s *Server) {
		if store != nil {
			s.store = store
		}
	}
}

// WithRegistry registers metrics on reg instead of a private registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) {
		if reg != nil {
			s.registry = reg
		}
	}
}

// WithRouterOptions appends options to the API router, after the ones derived
// from settings.
func WithRouterOptions(opts ...router.Option) Option {
	return func(s *Server) {
		s.routerOpts = append(s.routerOpts, opts...)
	}
}
