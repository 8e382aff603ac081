package route

import (
	"log/slog"
	"math"
	"net/http"

	"showdownbot/src-server/utils"

	"golang.org/x/time/rate"
)

// Showdown serves the "/showdown?action=<name>" endpoint that plugins
// register HTTP actions on.
func Showdown(muxer *http.ServeMux, as *utils.AppState) {
	limit := as.Config.GetHttpRateLimit()
	limiter := rate.NewLimiter(rate.Limit(limit), int(math.Max(1, math.Ceil(limit))))

	handle := func(w http.ResponseWriter, r *http.Request) {
		body, err := as.Bot.ProcessHttpRequest(w, r)
		if err != nil {
			slog.Error("unable to handle http action", "action", r.URL.Query().Get("action"), "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Internal server error"))
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte(body))
	}
	muxer.HandleFunc("GET /showdown", LogMiddleware(RateLimitMiddleware(limiter, handle)))
	muxer.HandleFunc("POST /showdown", LogMiddleware(RateLimitMiddleware(limiter, handle)))
}

func Health(muxer *http.ServeMux, as *utils.AppState) {
	muxer.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := as.BunDB.PingContext(r.Context()); err != nil {
			slog.Error("health check failed", "error", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("database unavailable"))
			return
		}
		w.Write([]byte("ok"))
	})
}
