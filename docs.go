// Package dishweaver is a small HTTP service that keeps a menu of dishes in
// memory and exposes CRUD endpoints for it, together with the operational
// routes a deployed service needs.
//
// The root package holds no code. The binary lives in cmd/dishd and the
// building blocks are importable on their own.
//
// # Packages
//
//   - dish: the Dish schema and its coercion rules, the in-memory store, the
//     CRUD handlers and the embedded OpenAPI document.
//   - server: assembles settings, store, router and ops routes into an
//     http.Server with graceful shutdown.
//   - router: the middleware chain (request ids, recovery, metrics, rate
//     limiting, CORS, timeouts, logging and OpenAPI request validation).
//   - responder: JSON payloads and RFC 9457 problem responses.
//   - info: welcome, health, readiness, version and docs endpoints.
//   - probe: adapters that turn components and flags into readiness checks.
//   - config: settings resolved from the environment and an optional .env file.
//   - logging: the slog JSON logger shared by every package.
//   - jsonutil: thin sonic wrappers for encoding and decoding.
//
// # Quick Start
//
//	settings, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	logger := logging.SetDefault(os.Stderr, settings.AppName, settings.AppVersion, settings.Debug)
//
//	srv, err := server.New(settings, server.WithLogger(logger))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer stop()
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// With the defaults the dish routes are served below /api/v1 on port 8000:
//
//	curl -X POST localhost:8000/api/v1/dishes/ \
//	    -H 'Content-Type: application/json' \
//	    -d '{"id":1,"name":"Pizza Margherita","precio":12.99}'
package dishweaver
