package handler

import (
	"errors"
	"net/http"
	"strconv"

	"tron-balance-bot/internal/domain"
	"tron-balance-bot/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type createWalletRequest struct {
	Project         string `json:"project"`
	UserID          int64  `json:"user_id"`
	Type            string `json:"type"`
	Alias           string `json:"alias"`
	Address         string `json:"wallet_destination"`
	LastTransaction string `json:"last_transaction"`
}

// ListWallets godoc
// @Summary      List wallets above the display threshold
// @Description  Newest-first wallets whose latest balance exceeds the minimum display balance, 10 per page
// @Tags         wallets
// @Produce      json
// @Param        page  query  int  false  "Zero-based page number"
// @Success      200  {object}  service.WalletPage
// @Failure      503  {object}  map[string]string
// @Router       /api/wallets [get]
func (h *Handler) ListWallets(c *gin.Context) {
	if h.wallets == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "database unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.list-wallets")
	defer span.End()

	page, err := strconv.Atoi(c.DefaultQuery("page", "0"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page must be a number"})
		return
	}
	span.SetAttributes(attribute.Int("page", page))

	result, err := h.wallets.WalletsPage(ctx, page)
	if err != nil {
		h.logger.Error("list wallets failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// CreateWallet godoc
// @Summary      Add a wallet
// @Tags         wallets
// @Accept       json
// @Produce      json
// @Param        wallet  body  createWalletRequest  true  "Wallet to track"
// @Success      201  {object}  domain.Wallet
// @Failure      400  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Security     ApiKeyAuth
// @Router       /api/wallets [post]
func (h *Handler) CreateWallet(c *gin.Context) {
	if h.wallets == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "database unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.create-wallet")
	defer span.End()

	var req createWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}

	wallet, err := h.wallets.AddWallet(ctx, domain.Wallet{
		Project:         req.Project,
		UserID:          req.UserID,
		Type:            req.Type,
		Alias:           req.Alias,
		Address:         req.Address,
		LastTransaction: req.LastTransaction,
	})
	switch {
	case errors.Is(err, service.ErrInvalidWalletInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, service.ErrDuplicateWallet):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case err != nil:
		h.logger.Error("create wallet failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, wallet)
}
