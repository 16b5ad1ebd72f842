package router

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

var errRateLimited = errors.New("rate limit exceeded")

// rateLimitMiddleware applies a single process-wide token bucket.
func rateLimitMiddleware(limit rate.Limit, burst int, writeProblem ProblemWriter, metrics *httpMetrics) Middleware {
	if burst <= 0 {
		burst = int(math.Ceil(float64(limit)))
	}
	limiter := rate.NewLimiter(limit, burst)
	limitHeader := strconv.FormatFloat(float64(limit), 'f', -1, 64)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				metrics.recordRateLimitReject()
				w.Header().Set("Retry-After", "1")
				writeProblem(w, r, http.StatusTooManyRequests, errRateLimited)
				return
			}

			w.Header().Set("X-RateLimit-Limit", limitHeader)
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(int(limiter.Tokens())))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(time.Second).Unix(), 10))

			next.ServeHTTP(w, r)
		})
	}
}
