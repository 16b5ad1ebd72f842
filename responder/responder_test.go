package responder

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

type paramsError struct{}

func (paramsError) Error() string { return "validation failed: id: field required" }

func (paramsError) InvalidParams() []InvalidParam {
	return []InvalidParam{{Name: "id", Reason: "field required", Type: "missing"}}
}

func decodeProblem(t *testing.T, rr *httptest.ResponseRecorder) ProblemDetails {
	t.Helper()

	var problem ProblemDetails
	if err := json.Unmarshal(rr.Body.Bytes(), &problem); err != nil {
		t.Fatalf("failed to decode problem details: %v (body: %s)", err, rr.Body.String())
	}
	return problem
}

func TestHandleNotFoundError(t *testing.T) {
	r := NewResponder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/dishes/3?x=1", nil)
	rr := httptest.NewRecorder()

	r.HandleNotFoundError(rr, req, errors.New("Dish not found"))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rr.Code)
	}
	if got := rr.Header().Get("Content-Type"); got != problemContentType {
		t.Fatalf("expected content type %q, got %q", problemContentType, got)
	}

	problem := decodeProblem(t, rr)
	if problem.Detail != "Dish not found" {
		t.Fatalf("expected detail %q, got %q", "Dish not found", problem.Detail)
	}
	if problem.Instance != "/api/v1/dishes/3?x=1" {
		t.Fatalf("unexpected instance %q", problem.Instance)
	}
	if problem.Type != fmt.Sprintf("%s/%d", statusDocBaseURL, http.StatusNotFound) {
		t.Fatalf("unexpected type %q", problem.Type)
	}
	if problem.TraceID == "" || problem.Timestamp == "" {
		t.Fatal("expected trace id and timestamp to be populated")
	}
}

func TestHandleUnprocessableEntityErrorIncludesInvalidParams(t *testing.T) {
	r := NewResponder()
	rr := httptest.NewRecorder()

	wrapped := fmt.Errorf("decode dish: %w", paramsError{})
	r.HandleUnprocessableEntityError(rr, httptest.NewRequest(http.MethodPost, "/dishes/", nil), wrapped)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status %d, got %d", http.StatusUnprocessableEntity, rr.Code)
	}

	problem := decodeProblem(t, rr)
	if len(problem.InvalidParams) != 1 {
		t.Fatalf("expected one invalid param, got %+v", problem.InvalidParams)
	}
	if got := problem.InvalidParams[0]; got.Name != "id" || got.Type != "missing" {
		t.Fatalf("unexpected invalid param %+v", got)
	}
}

func TestTraceIDFunc(t *testing.T) {
	t.Run("uses upstream id", func(t *testing.T) {
		r := NewResponder(WithTraceIDFunc(func(req *http.Request) string {
			return req.Header.Get("X-Request-Id")
		}))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-Id", "req-123")
		rr := httptest.NewRecorder()

		r.HandleInternalServerError(rr, req, errors.New("boom"))

		if got := decodeProblem(t, rr).TraceID; got != "req-123" {
			t.Fatalf("expected trace id req-123, got %q", got)
		}
	})

	t.Run("falls back to ulid", func(t *testing.T) {
		r := NewResponder(WithTraceIDFunc(func(*http.Request) string { return "" }))
		rr := httptest.NewRecorder()

		r.HandleInternalServerError(rr, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("boom"))

		if got := decodeProblem(t, rr).TraceID; len(got) != 26 {
			t.Fatalf("expected a 26 character ULID, got %q", got)
		}
	})
}

func TestHandleErrorsUsesClassifier(t *testing.T) {
	sentinel := errors.New("gone")
	r := NewResponder(WithErrorClassifier(func(err error) (int, bool) {
		if errors.Is(err, sentinel) {
			return http.StatusNotFound, true
		}
		return 0, false
	}))

	rr := httptest.NewRecorder()
	r.HandleErrors(rr, httptest.NewRequest(http.MethodGet, "/", nil), sentinel)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected classified status 404, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	r.HandleErrors(rr, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("other"))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected fallback status 500, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	r.HandleErrors(rr, httptest.NewRequest(http.MethodGet, "/", nil), nil)
	if rr.Body.Len() != 0 {
		t.Fatalf("expected nil error to write nothing, got %q", rr.Body.String())
	}
}

func TestRespondNoContent(t *testing.T) {
	rr := httptest.NewRecorder()
	NewResponder().RespondNoContent(rr)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, rr.Code)
	}
	if rr.Body.Len() != 0 {
		t.Fatalf("expected empty body, got %q", rr.Body.String())
	}
}

func TestHandleAPIErrorWithNilRequest(t *testing.T) {
	rr := httptest.NewRecorder()
	NewResponder().HandleAPIError(rr, nil, http.StatusUnprocessableEntity, errors.New("bad body"))

	problem := decodeProblem(t, rr)
	if problem.Instance != "" {
		t.Fatalf("expected empty instance, got %q", problem.Instance)
	}
	if problem.Status != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d", problem.Status)
	}
}

func TestStatusShortcuts(t *testing.T) {
	r := NewResponder()
	for _, tc := range []struct {
		status int
		call   func(http.ResponseWriter, *http.Request, error, ...string)
	}{
		{http.StatusBadRequest, r.HandleBadRequestError},
		{http.StatusTooManyRequests, r.HandleTooManyRequestsError},
		{http.StatusNotFound, r.HandleNotFoundError},
		{http.StatusUnprocessableEntity, r.HandleUnprocessableEntityError},
		{http.StatusInternalServerError, r.HandleInternalServerError},
	} {
		rr := httptest.NewRecorder()
		tc.call(rr, httptest.NewRequest(http.MethodGet, "/api/v1/dishes/", nil), errors.New("x"))

		if rr.Code != tc.status {
			t.Fatalf("expected status %d, got %d", tc.status, rr.Code)
		}
		if problem := decodeProblem(t, rr); problem.Title != http.StatusText(tc.status) {
			t.Fatalf("expected title %q, got %q", http.StatusText(tc.status), problem.Title)
		}
	}
}
