// Package info serves the endpoints that surround the dish resource: the
// welcome banner, the plain health check, Kubernetes style liveness and
// readiness probes, build information and the OpenAPI document.
//
// Two documentation viewers are bundled, Stoplight Elements (default) and
// Scalar. Use WithUIType or ParseUIType to pick one.
//
// See ExampleInfoHandler_full for a runnable wiring of the handler and probes.
package info
