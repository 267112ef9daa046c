package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// quietPaths are polled often enough that logging them would drown the rest.
var quietPaths = map[string]bool{
	"/healthz": true,
	"/metrics": true,
}

// RequestLogger puts a child logger tagged with request_id into the request
// context, where handlers and the workflow pick it up via zerolog.Ctx, and
// writes one line per finished request. 5xx responses log at error, 4xx at warn.
func RequestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			began := time.Now()
			reqLogger := logger.With().Str("request_id", middleware.GetReqID(r.Context())).Logger()
			r = r.WithContext(reqLogger.WithContext(r.Context()))

			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)

			if quietPaths[r.URL.Path] && sw.status < http.StatusInternalServerError {
				return
			}
			var ev *zerolog.Event
			switch {
			case sw.status >= http.StatusInternalServerError:
				ev = reqLogger.Error()
			case sw.status >= http.StatusBadRequest:
				ev = reqLogger.Warn()
			default:
				ev = reqLogger.Info()
			}
			ev.Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("client_ip", r.RemoteAddr).
				Int("status", sw.status).
				Dur("duration", time.Since(began)).
				Msg("request completed")
		})
	}
}
