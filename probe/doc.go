// Package probe converts component pings, readiness flags and HTTP endpoints
// into health checks for the info handler and the healthcheck command. See
// ExampleNewFlagProbe and ExampleNewHTTPProbe for quick-start patterns.
package probe
