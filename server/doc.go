// Package server assembles the dish service: it wires the store, the
// OpenAPI-validated router, the info endpoints and Prometheus metrics into an
// http.Server and runs it until its context is cancelled.
//
// The dish API is mounted below the configured prefix and passes through the
// full router middleware chain. Operational endpoints (/healthz, /readyz,
// /version, /openapi.json, /docs and /metrics) are served from the root and
// bypass it.
package server
