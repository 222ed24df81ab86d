package middleware

import (
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"time"
)

// statusRecorder remembers the status and body size sent by the handler
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int64
}

func newStatusRecorder(w http.ResponseWriter) *statusRecorder {
	return &statusRecorder{ResponseWriter: w, status: http.StatusOK}
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	n, err := s.ResponseWriter.Write(b)
	s.bytes += int64(n)
	return n, err
}

// Logging writes one line per request, skipping the listed paths.
// 4xx ответы пишутся как WARN, 5xx как ERROR
func Logging(logger *slog.Logger, skip ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if slices.Contains(skip, r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rec := newStatusRecorder(w)
			next.ServeHTTP(rec, r)

			logger.Log(r.Context(), levelFor(rec.status), "HTTP request",
				"method", r.Method,
				"route", routeLabel(r.URL.Path),
				"query", maskQuery(r.URL.Query()),
				"prefer", r.Header.Get("Prefer"),
				"status", rec.status,
				"bytes", rec.bytes,
				"duration_ms", time.Since(start).Milliseconds(),
				"remote_addr", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		})
	}
}

func levelFor(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// keyParams carry API keys and never reach the logs
var keyParams = []string{"apikey", "access_token"}

// maskQuery keeps filters readable and hides keys passed in the query string
func maskQuery(values url.Values) string {
	if len(values) == 0 {
		return ""
	}

	masked := url.Values{}
	for k, v := range values {
		if slices.Contains(keyParams, k) {
			v = []string{"***"}
		}
		masked[k] = v
	}
	return masked.Encode()
}
