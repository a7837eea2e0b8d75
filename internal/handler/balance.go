package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"tron-balance-bot/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// NetWorth godoc
// @Summary      Latest net assets
// @Description  Sum of the latest recorded valuation of every wallet
// @Tags         balance
// @Produce      json
// @Success      200  {object}  domain.NetAssets
// @Failure      503  {object}  map[string]string
// @Router       /api/networth [get]
func (h *Handler) NetWorth(c *gin.Context) {
	if h.checker == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "balance service unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.net-worth")
	defer span.End()

	assets, err := h.checker.NetAssets(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, assets)
}

// TriggerCheck godoc
// @Summary      Run a full balance check now
// @Description  Values every stored wallet, records history and returns the run summary
// @Tags         balance
// @Produce      json
// @Success      200  {object}  domain.RunSummary
// @Failure      409  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Security     ApiKeyAuth
// @Router       /api/check [post]
func (h *Handler) TriggerCheck(c *gin.Context) {
	if h.checker == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "balance service unavailable"})
		return
	}

	// Detached from the request: a client disconnect must not abandon the batch.
	ctx, span := h.tracer.Start(context.WithoutCancel(c.Request.Context()), "handler.trigger-check")
	defer span.End()

	summary, err := h.checker.RunFullCheck(ctx)
	if errors.Is(err, service.ErrRunInProgress) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		h.logger.Error("manual check failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Valuation godoc
// @Summary      Value one address
// @Description  Fetches balances and prices for an address without recording history
// @Tags         balance
// @Produce      json
// @Param        address  path  string  true  "TRON address"
// @Success      200  {object}  service.AddressCheck
// @Failure      422  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]string
// @Router       /api/valuation/{address} [get]
func (h *Handler) Valuation(c *gin.Context) {
	if h.checker == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "balance service unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.valuation")
	defer span.End()

	address := strings.TrimSpace(c.Param("address"))
	span.SetAttributes(attribute.String("address", address))

	check, err := h.checker.CheckAddress(ctx, address)
	if errors.Is(err, service.ErrFetchFailed) {
		body := gin.H{"error": err.Error(), "address": address}
		if check != nil {
			body["chain"] = check.Fetch.Chain
		}
		c.JSON(http.StatusUnprocessableEntity, body)
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, check)
}
