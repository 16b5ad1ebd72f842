package responder

import (
	mathrand "math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(mathrand.New(mathrand.NewSource(time.Now().UnixNano())), 0)
)

// TraceIDFunc extracts a correlation id from an incoming request. Returning
// an empty string falls back to a freshly generated ULID.
type TraceIDFunc func(req *http.Request) string

func (r *Responder) traceID(req *http.Request) string {
	if r.traceIDFunc != nil && req != nil {
		if id := r.traceIDFunc(req); id != "" {
			return id
		}
	}
	return newTraceID()
}

func newTraceID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()

	id := ulid.MustNew(ulid.Timestamp(time.Now()), entropy)
	return id.String()
}
