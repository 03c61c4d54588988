package middleware

import (
	"log/slog"
	"net/http"
	"time"
)

// responseMeta wraps http.ResponseWriter to record the status code and
// response size.
type responseMeta struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (m *responseMeta) WriteHeader(code int) {
	m.status = code
	m.ResponseWriter.WriteHeader(code)
}

func (m *responseMeta) Write(p []byte) (int, error) {
	n, err := m.ResponseWriter.Write(p)
	m.bytes += n
	return n, err
}

// Unwrap exposes the underlying writer to http.ResponseController so
// WebSocket upgrades can still hijack the connection.
func (m *responseMeta) Unwrap() http.ResponseWriter {
	return m.ResponseWriter
}

// RequestLogger returns middleware that logs each request at a level
// matching its status class. Health probes are logged at debug so they
// do not drown the kiosk's real traffic.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			meta := &responseMeta{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(meta, r)

			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", meta.status),
				slog.Int("bytes", meta.bytes),
				slog.Duration("duration", time.Since(start)),
				slog.String("remote", RealIP(r)),
			}

			level := slog.LevelInfo
			switch {
			case meta.status >= 500:
				level = slog.LevelError
			case meta.status >= 400:
				level = slog.LevelWarn
			case r.URL.Path == "/health":
				level = slog.LevelDebug
			}
			logger.LogAttrs(r.Context(), level, "request", attrs...)
		})
	}
}
