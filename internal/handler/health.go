package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const probeTimeout = 2 * time.Second

type healthResponse struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components,omitempty"`
}

// Health godoc
// @Summary      Health check
// @Description  Reports service status and the reachability of Postgres and Redis
// @Tags         health
// @Produce      json
// @Success      200  {object}  healthResponse
// @Failure      503  {object}  healthResponse
// @Router       /health [get]
func (h *Handler) Health(c *gin.Context) {
	resp := healthResponse{Status: "healthy"}
	if len(h.probes) > 0 {
		resp.Components = make(map[string]string, len(h.probes))
	}

	for _, p := range h.probes {
		ctx, cancel := context.WithTimeout(c.Request.Context(), probeTimeout)
		err := p.check(ctx)
		cancel()
		if err != nil {
			h.logger.Warn("health probe failed", zap.String("component", p.name), zap.Error(err))
			resp.Components[p.name] = "down"
			resp.Status = "degraded"
			continue
		}
		resp.Components[p.name] = "up"
	}

	code := http.StatusOK
	if resp.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, resp)
}
