package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/prometheus/client_golang/prometheus"
)

// Middleware wraps an http.Handler to produce a new http.Handler.
type Middleware func(http.Handler) http.Handler

// Option configures the router via the functional options pattern.
type Option func(*options)

// ProblemWriter renders errors raised by the middleware chain itself, such
// as validation failures, throttling and recovered panics. The request may
// be nil when the failing component does not expose it.
type ProblemWriter func(w http.ResponseWriter, r *http.Request, status int, err error)

// RouteLabeler maps a request to the route label used by metrics.
type RouteLabeler func(r *http.Request) string

type options struct {
	config          Config
	logger          *slog.Logger
	swagger         *openapi3.T
	registerer      prometheus.Registerer
	problemWriter   ProblemWriter
	routeLabeler    RouteLabeler
	prepend         []Middleware
	append          []Middleware
	override        []Middleware
	enableRequestID bool
	enableRecovery  bool
	enableRateLimit bool
	enableOpenAPI   bool
	validateBodies  bool
	enableCORS      bool
	enableTimeout   bool
	enableLogging   bool
}

func defaultOptions() *options {
	return &options{
		config: Config{
			Timeout: 30 * time.Second,
		},
		logger:          slog.Default(),
		problemWriter:   plainProblemWriter,
		routeLabeler:    pathLabel,
		enableRequestID: true,
		enableRecovery:  true,
		enableRateLimit: true,
		enableOpenAPI:   true,
		validateBodies:  true,
		enableCORS:      true,
		enableTimeout:   true,
		enableLogging:   true,
	}
}

func (o *options) middlewareChain() []Middleware {
	if len(o.override) > 0 {
		cloned := make([]Middleware, len(o.override))
		copy(cloned, o.override)
		return cloned
	}

	chain := make([]Middleware, 0, len(o.prepend)+len(o.append)+8)
	chain = append(chain, o.prepend...)
	chain = append(chain, o.defaultMiddlewares()...)
	chain = append(chain, o.append...)
	return chain
}

// defaultMiddlewares orders the built-in stages from outermost to innermost.
// Validation runs last so CORS preflights never reach it.
func (o *options) defaultMiddlewares() []Middleware {
	chain := make([]Middleware, 0, 8)

	var metrics *httpMetrics
	if o.registerer != nil {
		metrics = newHTTPMetrics(o.registerer)
	}

	if o.enableRequestID {
		chain = append(chain, requestIDMiddleware())
	}

	if o.enableRecovery {
		chain = append(chain, recoveryMiddleware(o.logger, o.problemWriter, metrics))
	}

	if metrics != nil {
		chain = append(chain, metrics.middleware(o.routeLabeler))
	}

	if o.enableRateLimit && o.config.RateLimit > 0 {
		chain = append(chain, rateLimitMiddleware(o.config.RateLimit, o.config.RateLimitBurst, o.problemWriter, metrics))
	}

	if o.enableCORS && shouldApplyCORS(o.config.CORS) {
		chain = append(chain, corsMiddleware(o.config.CORS))
	}

	if o.enableTimeout && o.config.Timeout > 0 {
		chain = append(chain, timeoutMiddleware(o.config.Timeout))
	}

	if o.enableLogging && o.logger != nil {
		chain = append(chain, loggingMiddleware(o.logger, o.config.QuietdownRoutes, o.config.HideHeaders))
	}

	if o.enableOpenAPI && o.swagger != nil {
		chain = append(chain, oapiMiddleware(o.swagger, o.validateBodies, o.problemWriter))
	}

	return chain
}

// WithConfig replaces the router configuration with the provided value.
func WithConfig(cfg Config) Option {
	configCopy := sanitizeConfig(cfg)
	return func(o *options) {
		o.config = configCopy
	}
}

// WithConfigMutator applies a mutation to the router configuration after defaults are set.
func WithConfigMutator(mutator func(*Config)) Option {
	return func(o *options) {
		if mutator != nil {
			mutator(&o.config)
		}
	}
}

// WithLogger provides the structured logger to be used by the logging middleware.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithSwagger wires the OpenAPI document for request validation.
func WithSwagger(swagger *openapi3.T) Option {
	return func(o *options) {
		o.swagger = swagger
	}
}

// WithMetrics registers HTTP metrics on reg and instruments every request.
// Metrics are off unless a registerer is supplied.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = reg
	}
}

// WithRouteLabeler controls the route label of HTTP metrics. The default uses
// the raw URL path.
func WithRouteLabeler(labeler RouteLabeler) Option {
	return func(o *options) {
		if labeler != nil {
			o.routeLabeler = labeler
		}
	}
}

// WithProblemWriter renders middleware errors, typically through a responder.
func WithProblemWriter(writer ProblemWriter) Option {
	return func(o *options) {
		if writer != nil {
			o.problemWriter = writer
		}
	}
}

// WithMiddlewares prepends custom middlewares ahead of the default chain.
func WithMiddlewares(middlewares ...Middleware) Option {
	return func(o *options) {
		o.prepend = append(o.prepend, middlewares...)
	}
}

// WithTrailingMiddlewares appends middlewares after the default chain.
func WithTrailingMiddlewares(middlewares ...Middleware) Option {
	return func(o *options) {
		o.append = append(o.append, middlewares...)
	}
}

// WithMiddlewareChain fully overrides the middleware chain with the provided sequence.
func WithMiddlewareChain(middlewares ...Middleware) Option {
	cloned := make([]Middleware, len(middlewares))
	copy(cloned, middlewares)
	return func(o *options) {
		o.override = cloned
	}
}

// WithoutRequestID disables request id propagation.
func WithoutRequestID() Option {
	return func(o *options) {
		o.enableRequestID = false
	}
}

// WithoutRecovery disables panic recovery.
func WithoutRecovery() Option {
	return func(o *options) {
		o.enableRecovery = false
	}
}

// WithoutRateLimit disables rate limiting regardless of configuration.
func WithoutRateLimit() Option {
	return func(o *options) {
		o.enableRateLimit = false
	}
}

// WithoutOpenAPIValidation disables the OpenAPI validation middleware.
func WithoutOpenAPIValidation() Option {
	return func(o *options) {
		o.enableOpenAPI = false
	}
}

// WithoutBodyValidation keeps route and parameter validation but leaves
// request bodies, including their content type, to the handlers.
func WithoutBodyValidation() Option {
	return func(o *options) {
		o.validateBodies = false
	}
}

// WithoutCORSMiddleware disables the CORS middleware regardless of configuration.
func WithoutCORSMiddleware() Option {
	return func(o *options) {
		o.enableCORS = false
	}
}

// WithoutTimeoutMiddleware disables the timeout middleware.
func WithoutTimeoutMiddleware() Option {
	return func(o *options) {
		o.enableTimeout = false
	}
}

// WithoutLoggingMiddleware disables the logging middleware.
func WithoutLoggingMiddleware() Option {
	return func(o *options) {
		o.enableLogging = false
	}
}

func sanitizeConfig(cfg Config) Config {
	cfg.QuietdownRoutes = cloneStrings(cfg.QuietdownRoutes)
	cfg.HideHeaders = cloneStrings(cfg.HideHeaders)
	cfg.CORS = sanitizeCORSConfig(cfg.CORS)
	return cfg
}

func sanitizeCORSConfig(cfg CORSConfig) CORSConfig {
	cfg.Headers = cloneStrings(cfg.Headers)
	cfg.Methods = cloneStrings(cfg.Methods)
	cfg.Origins = cloneStrings(cfg.Origins)
	return cfg
}

func cloneStrings(values []string) []string {
	if len(values) == 0 {
		return nil
	}

	cloned := make([]string, len(values))
	copy(cloned, values)
	return cloned
}

func shouldApplyCORS(cfg CORSConfig) bool {
	return len(cfg.Origins) > 0
}

func plainProblemWriter(w http.ResponseWriter, _ *http.Request, status int, err error) {
	http.Error(w, err.Error(), status)
}

func pathLabel(r *http.Request) string {
	return r.URL.Path
}
