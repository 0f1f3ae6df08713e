package web

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/hlog"

	"github.com/justestif/go-moodify/internal/log"
)

func accessLog(r *http.Request, status, size int, duration time.Duration) {
	logger := hlog.FromRequest(r)
	event := logger.Info()
	if status >= http.StatusInternalServerError {
		event = logger.Warn()
	}
	event.
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("remote_addr", r.RemoteAddr).
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Msg("request")
}

// recoverer turns a handler panic into a 500 response and logs the stack.
func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			hlog.FromRequest(r).Error().Func(log.Panic(rec)).Msg("handler panicked")
			writeServerError(w, http.StatusInternalServerError, "Internal server error")
		}()
		next.ServeHTTP(w, r)
	})
}
