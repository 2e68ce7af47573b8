package middleware

import (
	"net/http"

	"golang.org/x/time/rate"
)

// Throttle returns a middleware enforcing a global requests-per-second cap
// on the route group it is mounted on. Burst is set equal to the rate so no
// "saved up" burst capacity is allowed beyond the configured per-second
// maximum. Over-limit requests are rejected with 429 immediately rather than
// queued, giving bulk clients instant back-pressure they can retry on.
func Throttle(ratePerSec int) func(http.Handler) http.Handler {
	limiter := rate.NewLimiter(rate.Limit(ratePerSec), ratePerSec)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":"rate limit exceeded"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
