package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/iudanet/vitrina/pkg/api"
)

// healthPingTimeout bounds the database check so health checks never hang
const healthPingTimeout = 2 * time.Second

// Pinger checks that a dependency is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health serves GET /health: 200 "ok" while the database answers, 503 "unavailable" otherwise.
// The client uses it for the status command.
func Health(logger *slog.Logger, db Pinger, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
		defer cancel()

		code, body := http.StatusOK, api.HealthResponse{Status: "ok", Version: version}
		if err := db.Ping(ctx); err != nil {
			logger.ErrorContext(ctx, "Health check failed", "error", err)
			code, body.Status = http.StatusServiceUnavailable, "unavailable"
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(body)
	}
}
