// Package dish implements the dish resource: its schema and coercion rules,
// the in-memory store, the HTTP handlers and the OpenAPI document that
// describes them.
package dish

import (
	"errors"
	"net/http"
)

// ErrNotFound is returned when no dish matches the requested id. The message
// is rendered verbatim as the problem detail.
var ErrNotFound = errors.New("Dish not found")

var errNilStore = errors.New("dish store is nil")

// Dish is a priced, named menu item. IDs are chosen by the caller and are not
// required to be unique.
type Dish struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"precio"`
}

// ClassifyError maps dish errors to HTTP status codes. It matches the
// responder.ErrorClassifierFunc signature.
func ClassifyError(err error) (int, bool) {
	var verr *ValidationError
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, true
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity, true
	}
	return 0, false
}
