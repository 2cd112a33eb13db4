package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/majorcatalog/internal/response"
)

const healthTimeout = 2 * time.Second

// Pinger is a dependency the health check probes.
type Pinger func(ctx context.Context) error

// HealthHandler reports process uptime and the state of each dependency.
type HealthHandler struct {
	checks    map[string]Pinger
	startTime time.Time
	log       zerolog.Logger
}

func NewHealthHandler(checks map[string]Pinger, log zerolog.Logger) *HealthHandler {
	return &HealthHandler{
		checks:    checks,
		startTime: time.Now(),
		log:       log.With().Str("component", "health_handler").Logger(),
	}
}

type healthStatus struct {
	Status       string            `json:"status"`
	Uptime       string            `json:"uptime"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// Health godoc
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	out := healthStatus{
		Status: "ok",
		Uptime: time.Since(h.startTime).Truncate(time.Second).String(),
	}
	code := http.StatusOK

	if len(h.checks) > 0 {
		out.Dependencies = make(map[string]string, len(h.checks))
	}
	for name, ping := range h.checks {
		if err := ping(ctx); err != nil {
			h.log.Warn().Err(err).Str("dependency", name).Msg("health check failed")
			out.Dependencies[name] = "down"
			out.Status = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		out.Dependencies[name] = "up"
	}

	response.Success(c, code, out)
}
