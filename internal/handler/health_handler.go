package handler

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"
)

// HealthHandler reports the state of the backing services.
type HealthHandler struct {
	checks map[string]Pinger
	logger zerolog.Logger
}

// Pinger is a backing service that can be health-checked.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewHealthHandler creates a health handler over the named checks.
func NewHealthHandler(checks map[string]Pinger, logger zerolog.Logger) *HealthHandler {
	return &HealthHandler{
		checks: checks,
		logger: logger.With().Str("handler", "health").Logger(),
	}
}

type healthResponse struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services,omitempty"`
}

// Health handles GET /health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "healthy", Services: make(map[string]string, len(h.checks))}
	status := http.StatusOK

	for name, check := range h.checks {
		if err := check.Ping(r.Context()); err != nil {
			h.logger.Warn().Err(err).Str("service", name).Msg("health check failed")
			resp.Services[name] = "unavailable"
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Services[name] = "ok"
	}

	writeJSON(w, status, resp)
}
