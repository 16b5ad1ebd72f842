package router

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Config holds the tunables of the default middleware chain.
type Config struct {
	// Timeout bounds handler execution. Zero disables the timeout middleware.
	Timeout time.Duration

	CORS CORSConfig

	// QuietdownRoutes are paths the logging middleware skips.
	QuietdownRoutes []string
	// HideHeaders are redacted from request logs.
	HideHeaders []string

	// RateLimit is the sustained request rate. Zero disables rate limiting.
	RateLimit rate.Limit
	// RateLimitBurst defaults to the rate rounded up when unset.
	RateLimitBurst int
}

// CORSConfig controls the CORS middleware. The middleware is only installed
// when at least one origin is configured; "*" matches any origin.
type CORSConfig struct {
	Origins          []string
	Methods          []string
	Headers          []string
	AllowCredentials bool
	MaxAge           time.Duration
}

// AllowAllCORS mirrors a fully open policy: every origin, method and header
// is accepted and credentials are allowed. Browsers receive the caller's own
// origin rather than "*" because credentials are enabled.
func AllowAllCORS() CORSConfig {
	return CORSConfig{
		Origins:          []string{"*"},
		Methods:          []string{"*"},
		Headers:          []string{"*"},
		AllowCredentials: true,
		MaxAge:           10 * time.Minute,
	}
}

var allMethods = []string{
	http.MethodDelete,
	http.MethodGet,
	http.MethodHead,
	http.MethodOptions,
	http.MethodPatch,
	http.MethodPost,
	http.MethodPut,
}
