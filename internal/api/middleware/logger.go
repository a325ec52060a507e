package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/felixge/httpsnoop"
	"github.com/rs/zerolog/log"

	"graficaos.service/pkg/logger"
)

// Logger injects a trace-aware logger into the request context and writes one
// access log line per request.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logger.EnrichContextWithLogger(r.Context())
		r = r.WithContext(ctx)

		m := httpsnoop.CaptureMetrics(next, w, r)

		event := log.Ctx(ctx).Info()
		if m.Code >= http.StatusInternalServerError {
			event = log.Ctx(ctx).Error()
		}
		event.Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", m.Code).
			Dur("duration", m.Duration).
			Int64("bytes", m.Written).
			Msg("HTTP request")
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}
