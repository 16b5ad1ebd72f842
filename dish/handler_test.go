package dish

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drblury/dishweaver/responder"
)

func newMux(t *testing.T, seed ...Dish) *http.ServeMux {
	t.Helper()

	mux := http.NewServeMux()
	NewHandler(NewStore(seed...), WithResponder(responder.NewResponder())).Register(mux, "/api/v1")
	return mux
}

func serve(mux http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func TestHandlerLifecycle(t *testing.T) {
	mux := newMux(t)

	rr := serve(mux, http.MethodPost, "/api/v1/dishes/", `{"id":"5","name":"Paella","precio":"15"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.JSONEq(t, `{"id":5,"name":"Paella","precio":15}`, rr.Body.String())

	rr = serve(mux, http.MethodGet, "/api/v1/dishes/", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[{"id":5,"name":"Paella","precio":15}]`, rr.Body.String())

	rr = serve(mux, http.MethodPut, "/api/v1/dishes/5", `{"id":6,"name":"Paella Valenciana","precio":17.5}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = serve(mux, http.MethodGet, "/api/v1/dishes/6", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"id":6,"name":"Paella Valenciana","precio":17.5}`, rr.Body.String())

	rr = serve(mux, http.MethodDelete, "/api/v1/dishes/6", "")
	require.Equal(t, http.StatusNoContent, rr.Code)
	assert.Zero(t, rr.Body.Len())

	rr = serve(mux, http.MethodGet, "/api/v1/dishes/", "")
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestHandlerProblems(t *testing.T) {
	mux := newMux(t, Dish{ID: 1, Name: "Pan", Price: 1})

	cases := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		detail string
	}{
		{"missing dish", http.MethodGet, "/api/v1/dishes/2", "", http.StatusNotFound, "Dish not found"},
		{"delete missing", http.MethodDelete, "/api/v1/dishes/2", "", http.StatusNotFound, "Dish not found"},
		{"update missing", http.MethodPut, "/api/v1/dishes/2", `{"id":2,"name":"x","precio":1}`, http.StatusNotFound, "Dish not found"},
		{"bad path id", http.MethodGet, "/api/v1/dishes/abc", "", http.StatusUnprocessableEntity, ""},
		{"bad body", http.MethodPost, "/api/v1/dishes/", `{"id":1}`, http.StatusUnprocessableEntity, ""},
		{"bad update body", http.MethodPut, "/api/v1/dishes/1", `nope`, http.StatusUnprocessableEntity, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := serve(mux, tc.method, tc.path, tc.body)
			require.Equal(t, tc.status, rr.Code, rr.Body.String())
			assert.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))

			var problem responder.ProblemDetails
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &problem))
			assert.Equal(t, tc.status, problem.Status)
			if tc.detail != "" {
				assert.Equal(t, tc.detail, problem.Detail)
			}
			if tc.status == http.StatusUnprocessableEntity {
				assert.NotEmpty(t, problem.InvalidParams)
			}
		})
	}

	// failed requests leave the store untouched
	rr := serve(mux, http.MethodGet, "/api/v1/dishes/", "")
	assert.JSONEq(t, `[{"id":1,"name":"Pan","precio":1}]`, rr.Body.String())
}

func TestHandlerRoutesWithoutPrefix(t *testing.T) {
	mux := http.NewServeMux()
	NewHandler(NewStore(Dish{ID: 1, Name: "Pan", Price: 1})).Register(mux, "")

	rr := serve(mux, http.MethodGet, "/dishes/1", "")
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = serve(mux, http.MethodGet, "/dishes", "")
	assert.NotEqual(t, http.StatusOK, rr.Code)
}

func TestNewHandlerPanicsOnNilRepository(t *testing.T) {
	assert.Panics(t, func() { NewHandler(nil) })
}
