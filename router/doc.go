// Package router wraps http.ServeMux with a default middleware chain:
// request ids, panic recovery, Prometheus metrics, rate limiting, CORS,
// timeouts, request logging and OpenAPI validation. ExampleNew_customOptions
// demonstrates how to combine built-in and custom middlewares.
package router
