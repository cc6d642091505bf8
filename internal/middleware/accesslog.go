package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
)

// AccessLog writes one structured line per request. The development format
// is short; anything else gets the combined-log fields.
func AccessLog(logger *slog.Logger, development bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return handlers.CustomLoggingHandler(io.Discard, next, func(_ io.Writer, p handlers.LogFormatterParams) {
			elapsed := time.Since(p.TimeStamp)
			attrs := []any{
				"method", p.Request.Method,
				"path", p.URL.RequestURI(),
				"status", p.StatusCode,
				"size", p.Size,
				"duration", elapsed,
				"request_id", RequestIDFrom(p.Request.Context()),
			}
			if !development {
				attrs = append(attrs,
					"remote_addr", p.Request.RemoteAddr,
					"proto", p.Request.Proto,
					"referer", p.Request.Referer(),
					"user_agent", p.Request.UserAgent(),
				)
			}
			logger.Info("request", attrs...)
		})
	}
}
