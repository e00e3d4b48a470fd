package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mfgops/backend/internal/application/event"
	"github.com/mfgops/backend/internal/interfaces/http/dto"
)

const healthCheckTimeout = 2 * time.Second

// HealthCheck checks one dependency
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// HealthHandler reports liveness of the process and its dependencies
type HealthHandler struct {
	BaseHandler
	version       string
	checks        []HealthCheck
	outboxService *event.OutboxService
	started       time.Time
}

// NewHealthHandler creates the handler. outboxService may be nil.
func NewHealthHandler(version string, outboxService *event.OutboxService, checks ...HealthCheck) *HealthHandler {
	return &HealthHandler{
		version:       version,
		checks:        checks,
		outboxService: outboxService,
		started:       time.Now(),
	}
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status       string                `json:"status"`
	Version      string                `json:"version"`
	Uptime       string                `json:"uptime"`
	Dependencies map[string]string     `json:"dependencies"`
	Outbox       *event.OutboxStatsDTO `json:"outbox,omitempty"`
}

// Health handles GET /health. It answers 503 when a dependency is down.
// @Summary      Report service health
// @Tags         system
// @Accept       json
// @Produce      json
// @Success      200 {object} dto.Response{data=HealthResponse}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	resp := HealthResponse{
		Status:       "ok",
		Version:      h.version,
		Uptime:       time.Since(h.started).Round(time.Second).String(),
		Dependencies: make(map[string]string, len(h.checks)),
	}
	for _, check := range h.checks {
		if err := check.Check(ctx); err != nil {
			resp.Dependencies[check.Name] = "down: " + err.Error()
			resp.Status = "degraded"
			continue
		}
		resp.Dependencies[check.Name] = "up"
	}
	if h.outboxService != nil {
		if stats, err := h.outboxService.GetStats(ctx); err == nil {
			resp.Outbox = stats
		}
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, dto.NewSuccessResponse(resp))
}
