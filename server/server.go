package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/drblury/dishweaver/config"
	"github.com/drblury/dishweaver/dish"
	"github.com/drblury/dishweaver/info"
	"github.com/drblury/dishweaver/probe"
	"github.com/drblury/dishweaver/responder"
	"github.com/drblury/dishweaver/router"
)

const readHeaderTimeout = 10 * time.Second

// Server owns the dish store and the HTTP server that exposes it.
type Server struct {
	settings   config.Settings
	logger     *slog.Logger
	store      *dish.Store
	registry   *prometheus.Registry
	routerOpts []router.Option
	handler    http.Handler
	httpServer *http.Server
	ready      atomic.Bool
}

// New builds a Server from settings. Nothing listens until Run or Serve.
func New(settings *config.Settings, opts ...Option) (*Server, error) {
	if settings == nil {
		return nil, errors.New("server: settings are required")
	}

	s := &Server{
		settings: *settings,
		logger:   slog.Default(),
		store:    dish.NewStore(),
		registry: prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	if err := s.settings.Validate(); err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}
	if err := registerCollectors(s.registry, s.store); err != nil {
		return nil, fmt.Errorf("server: register collectors: %w", err)
	}

	handler, err := s.routes()
	if err != nil {
		return nil, err
	}
	s.handler = handler
	s.httpServer = &http.Server{
		Addr:              s.settings.Address(),
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelError),
	}
	return s, nil
}

func (s *Server) routes() (http.Handler, error) {
	prefix := config.NormalizePrefix(s.settings.APIPrefix)

	doc, err := dish.OpenAPI(prefix)
	if err != nil {
		return nil, err
	}
	doc.Info.Title = s.settings.AppName
	doc.Info.Version = s.settings.AppVersion
	specJSON, err := doc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("server: render openapi document: %w", err)
	}

	resp := responder.NewResponder(
		responder.WithLogger(s.logger),
		responder.WithErrorClassifier(dish.ClassifyError),
		responder.WithTraceIDFunc(router.RequestID),
	)

	uiType, ok := info.ParseUIType(s.settings.DocsUI)
	if !ok {
		s.logger.Warn("unknown docs UI, falling back to stoplight", "docsUI", s.settings.DocsUI)
	}

	infoHandler := info.NewInfoHandler(
		info.WithInfoResponder(resp),
		info.WithInfoProvider(func() any {
			return map[string]string{
				"name":    s.settings.AppName,
				"version": s.settings.AppVersion,
				"mode":    s.settings.Mode(),
			}
		}),
		info.WithSwaggerProvider(func() ([]byte, error) { return specJSON, nil }),
		info.WithUIType(uiType),
		info.WithLivenessChecks(probe.NewComponentProbe("store", s.store)),
		info.WithReadinessChecks(
			probe.NewFlagProbe("server", s.ready.Load),
			probe.NewComponentProbe("store", s.store),
		),
	)

	apiMux := http.NewServeMux()
	apiMux.HandleFunc("GET "+prefix+"/{$}", infoHandler.GetWelcome)
	apiMux.HandleFunc("GET "+prefix+"/health", infoHandler.GetHealth)
	dish.NewHandler(s.store, dish.WithResponder(resp)).Register(apiMux, prefix)

	routerOpts := []router.Option{
		router.WithLogger(s.logger),
		router.WithSwagger(doc),
		// dish.Decode owns bodies so every field error is reported at once
		router.WithoutBodyValidation(),
		router.WithMetrics(s.registry),
		router.WithRouteLabeler(patternLabeler(apiMux)),
		router.WithProblemWriter(func(w http.ResponseWriter, r *http.Request, status int, err error) {
			resp.HandleAPIError(w, r, status, err)
		}),
		router.WithConfig(router.Config{
			Timeout:        s.settings.RequestTimeout,
			CORS:           corsConfig(s.settings.CORSOrigins),
			HideHeaders:    []string{"Authorization", "Cookie"},
			RateLimit:      rate.Limit(s.settings.RateLimit),
			RateLimitBurst: s.settings.RateLimitBurst,
		}),
	}
	mux := router.New(apiMux, append(routerOpts, s.routerOpts...)...)

	mux.HandleFunc("GET /healthz", infoHandler.GetHealthz)
	mux.HandleFunc("GET /readyz", infoHandler.GetReadyz)
	mux.HandleFunc("GET /version", infoHandler.GetVersion)
	mux.HandleFunc("GET /openapi.json", infoHandler.GetOpenAPIJSON)
	mux.HandleFunc("GET /docs", infoHandler.GetOpenAPIHTML)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{Registry: s.registry}))

	for _, path := range []string{prefix, prefix + "/dishes"} {
		if path != "" {
			mux.Handle(path, addTrailingSlash())
		}
	}

	return mux, nil
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Store returns the store backing the dish endpoints.
func (s *Server) Store() *dish.Store {
	return s.store
}

// SetReady toggles the readiness probe.
func (s *Server) SetReady(ready bool) {
	s.ready.Store(ready)
}

// Ready reports the readiness flag.
func (s *Server) Ready() bool {
	return s.ready.Load()
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.settings.Address())
	if err != nil {
		return fmt.Errorf("server: listen on %s: %w", s.settings.Address(), err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully within the configured shutdown timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.logger.Info(fmt.Sprintf("Application started in %s mode", s.settings.Mode()),
		"address", ln.Addr().String(),
		"apiPrefix", config.NormalizePrefix(s.settings.APIPrefix),
	)
	if slices.Contains(s.settings.CORSOrigins, "*") {
		s.logger.Warn("CORS allows every origin with credentials", "corsOrigins", s.settings.CORSOrigins)
	}

	s.SetReady(true)

	runCtx, stop := context.WithCancel(ctx)
	defer stop()

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		// an external Shutdown ends Serve without cancelling ctx
		defer stop()
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		return s.Shutdown(context.WithoutCancel(ctx))
	})

	if err := g.Wait(); err != nil {
		return err
	}
	s.logger.Info("server stopped gracefully")
	return nil
}

// Shutdown marks the server as not ready and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.SetReady(false)

	if s.settings.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.settings.ShutdownTimeout)
		defer cancel()
	}

	s.logger.Info("shutting down server", "timeout", s.settings.ShutdownTimeout.String())
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}

// addTrailingSlash sends collection paths given without their trailing
// slash to the canonical route, keeping the method and body.
func addTrailingSlash() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		target := r.URL.Path + "/"
		if r.URL.RawQuery != "" {
			target += "?" + r.URL.RawQuery
		}
		http.Redirect(w, r, target, http.StatusTemporaryRedirect)
	})
}

func corsConfig(origins []string) router.CORSConfig {
	if len(origins) == 0 {
		return router.CORSConfig{}
	}
	cfg := router.AllowAllCORS()
	cfg.Origins = slices.Clone(origins)
	return cfg
}

// patternLabeler labels metrics with the matched route pattern so path
// parameters do not explode label cardinality.
func patternLabeler(mux *http.ServeMux) router.RouteLabeler {
	return func(r *http.Request) string {
		if _, pattern := mux.Handler(r); pattern != "" {
			return pattern
		}
		return "unmatched"
	}
}
