package route

import (
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitMiddleware answers 429 once the process-wide request budget is
// spent. The limiter is shared by every request going through next.
func RateLimitMiddleware(limiter *rate.Limiter, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte("Too many requests"))
			slog.Warn("rate limited", "path", r.URL.Path, "remote", r.RemoteAddr)
			return
		}
		next(w, r)
	}
}

func LogMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		startTimer := time.Now()
		next(w, r)
		slog.Debug("http request", "method", r.Method, "path", r.URL.Path, "action", r.URL.Query().Get("action"), "took", time.Since(startTimer))
	}
}
