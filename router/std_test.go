package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/drblury/dishweaver/dish"
	"github.com/drblury/dishweaver/responder"
)

// newDishChain builds the chain the way the server does: dish routes below
// /api/v1, responder problems keyed by request id, and rate limiting.
func newDishChain(t *testing.T, cfg Config, opts ...Option) http.Handler {
	t.Helper()

	doc, err := dish.OpenAPI("/api/v1")
	if err != nil {
		t.Fatalf("failed to load openapi document: %v", err)
	}
	resp := responder.NewResponder(
		responder.WithErrorClassifier(dish.ClassifyError),
		responder.WithTraceIDFunc(RequestID),
	)

	api := http.NewServeMux()
	dish.NewHandler(dish.NewStore(dish.Dish{ID: 1, Name: "Pan", Price: 1}), dish.WithResponder(resp)).Register(api, "/api/v1")

	base := []Option{
		WithoutLoggingMiddleware(),
		WithSwagger(doc),
		WithProblemWriter(func(w http.ResponseWriter, r *http.Request, status int, err error) {
			resp.HandleAPIError(w, r, status, err)
		}),
		WithConfig(cfg),
	}
	return New(api, append(base, opts...)...)
}

func serveChain(h http.Handler, method, path, body, contentType string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeChainProblem(t *testing.T, rr *httptest.ResponseRecorder) responder.ProblemDetails {
	t.Helper()

	if got := rr.Header().Get("Content-Type"); got != "application/problem+json" {
		t.Fatalf("expected problem content type, got %q (body: %s)", got, rr.Body.String())
	}
	var problem responder.ProblemDetails
	if err := json.Unmarshal(rr.Body.Bytes(), &problem); err != nil {
		t.Fatalf("failed to decode problem: %v (body: %s)", err, rr.Body.String())
	}
	return problem
}

func invalidParamNames(problem responder.ProblemDetails) []string {
	names := make([]string, 0, len(problem.InvalidParams))
	for _, p := range problem.InvalidParams {
		names = append(names, p.Name)
	}
	sort.Strings(names)
	return names
}

func TestChainRoutesErrorsThroughProblemWriter(t *testing.T) {
	h := newDishChain(t, Config{Timeout: time.Second}, WithoutBodyValidation())

	cases := []struct {
		name   string
		method string
		path   string
		status int
	}{
		{"invalid path parameter", http.MethodGet, "/api/v1/dishes/abc", http.StatusUnprocessableEntity},
		{"wrong method", http.MethodPatch, "/api/v1/dishes/1", http.StatusMethodNotAllowed},
		{"unknown route", http.MethodGet, "/api/v1/menus", http.StatusNotFound},
		{"missing dish", http.MethodGet, "/api/v1/dishes/2", http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := serveChain(h, tc.method, tc.path, "", "")
			if rr.Code != tc.status {
				t.Fatalf("expected status %d, got %d (body: %s)", tc.status, rr.Code, rr.Body.String())
			}
			problem := decodeChainProblem(t, rr)
			if problem.TraceID == "" || problem.TraceID != rr.Header().Get(RequestIDHeader) {
				t.Fatalf("expected trace id %q to match request id %q", problem.TraceID, rr.Header().Get(RequestIDHeader))
			}
		})
	}
}

func TestChainListsRejectedPathParameter(t *testing.T) {
	h := newDishChain(t, Config{}, WithoutBodyValidation())

	problem := decodeChainProblem(t, serveChain(h, http.MethodDelete, "/api/v1/dishes/1.5", "", ""))
	if got := invalidParamNames(problem); !reflect.DeepEqual(got, []string{"dish_id"}) {
		t.Fatalf("unexpected invalid params %v", problem.InvalidParams)
	}
}

func TestChainLeavesBodiesToHandlers(t *testing.T) {
	h := newDishChain(t, Config{}, WithoutBodyValidation())

	rr := serveChain(h, http.MethodPost, "/api/v1/dishes/", `{"id":2,"name":"Sopa","precio":"4.5"}`, "")
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected body without content type to be accepted, got %d (body: %s)", rr.Code, rr.Body.String())
	}

	rr = serveChain(h, http.MethodPost, "/api/v1/dishes/", `{"id":3}`, "application/json")
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d", rr.Code)
	}
	if got := invalidParamNames(decodeChainProblem(t, rr)); !reflect.DeepEqual(got, []string{"name", "precio"}) {
		t.Fatalf("expected handler to report both missing fields, got %v", got)
	}
}

func TestChainValidatesBodiesByDefault(t *testing.T) {
	h := newDishChain(t, Config{})

	rr := serveChain(h, http.MethodPost, "/api/v1/dishes/", `{"id":3}`, "application/json")
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d (body: %s)", rr.Code, rr.Body.String())
	}
	problem := decodeChainProblem(t, rr)
	if got := invalidParamNames(problem); !reflect.DeepEqual(got, []string{"name", "precio"}) {
		t.Fatalf("expected every missing property, got %v", problem.InvalidParams)
	}
	for _, p := range problem.InvalidParams {
		if p.Type != "missing" {
			t.Fatalf("expected missing type, got %+v", p)
		}
	}

	rr = serveChain(h, http.MethodPost, "/api/v1/dishes/", `{"id":3,"name":"x","precio":1}`, "")
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected content type to be enforced, got %d", rr.Code)
	}
}

func TestChainRateLimitUsesProblemWriter(t *testing.T) {
	h := newDishChain(t, Config{RateLimit: 1, RateLimitBurst: 1}, WithoutBodyValidation())

	if rr := serveChain(h, http.MethodGet, "/api/v1/dishes/", "", ""); rr.Code != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d", rr.Code)
	}

	rr := serveChain(h, http.MethodGet, "/api/v1/dishes/", "", "")
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status 429, got %d", rr.Code)
	}
	if problem := decodeChainProblem(t, rr); problem.Detail != errRateLimited.Error() {
		t.Fatalf("unexpected detail %q", problem.Detail)
	}
}

func TestChainTimeoutCanBeDisabled(t *testing.T) {
	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(10 * time.Millisecond)
		w.WriteHeader(http.StatusNoContent)
	})

	withTimeout := New(slow, WithConfig(Config{Timeout: time.Millisecond}))
	if rr := serveChain(withTimeout, http.MethodDelete, "/api/v1/dishes/1", "", ""); rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected timeout handler to fire, got %d", rr.Code)
	}

	withoutTimeout := New(slow, WithConfig(Config{Timeout: time.Millisecond}), WithoutTimeoutMiddleware())
	if rr := serveChain(withoutTimeout, http.MethodDelete, "/api/v1/dishes/1", "", ""); rr.Code != http.StatusNoContent {
		t.Fatalf("expected handler to complete when timeout disabled, got %d", rr.Code)
	}
}

func TestMiddlewareOrdering(t *testing.T) {
	var order []string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
		w.WriteHeader(http.StatusNoContent)
	})

	t.Run("prepend and append wrap the defaults", func(t *testing.T) {
		order = nil
		mux := New(handler,
			WithoutLoggingMiddleware(),
			WithMiddlewares(recordingMiddleware("outer", &order)),
			WithTrailingMiddlewares(recordingMiddleware("inner", &order)),
		)
		mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		expected := []string{"outer-before", "inner-before", "handler", "inner-after", "outer-after"}
		if !reflect.DeepEqual(order, expected) {
			t.Fatalf("unexpected middleware order: got %v want %v", order, expected)
		}
	})

	t.Run("override replaces the defaults", func(t *testing.T) {
		order = nil
		mux := New(handler, WithMiddlewareChain(recordingMiddleware("only", &order)))
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

		if rr.Header().Get(RequestIDHeader) != "" {
			t.Fatal("expected default middlewares to be skipped")
		}
		expected := []string{"only-before", "handler", "only-after"}
		if !reflect.DeepEqual(order, expected) {
			t.Fatalf("unexpected middleware order: got %v want %v", order, expected)
		}
	})
}

func TestNewPanicsWhenHandlerNil(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic when handler is nil")
		}
	}()

	New(nil)
}

func recordingMiddleware(label string, sink *[]string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*sink = append(*sink, label+"-before")
			next.ServeHTTP(w, r)
			*sink = append(*sink, label+"-after")
		})
	}
}
