package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthCheck pings one storage dependency.
type HealthCheck struct {
	Name string
	Ping func(ctx context.Context) error
}

type healthResponse struct {
	Status      string            `json:"status"`
	Storage     string            `json:"storage"`
	Checks      map[string]string `json:"checks"`
	Clients     int               `json:"clients"`
	Environment string            `json:"environment"`
}

func (h HandlerSet) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	resp := healthResponse{
		Status:      "ok",
		Storage:     h.cfg.Storage.Driver,
		Checks:      make(map[string]string, len(h.checks)),
		Clients:     h.registry.Len(),
		Environment: h.cfg.Environment,
	}

	status := http.StatusOK
	for _, check := range h.checks {
		resp.Checks[check.Name] = "ok"
		if err := check.Ping(ctx); err != nil {
			resp.Checks[check.Name] = "error"
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
			h.log.Error().Err(err).Str("check", check.Name).Msg("health check failed")
		}
	}

	c.JSON(status, resp)
}
