package handler

import (
	"context"

	"tron-balance-bot/internal/domain"
	"tron-balance-bot/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type WalletBook interface {
	AddWallet(ctx context.Context, wallet domain.Wallet) (*domain.Wallet, error)
	WalletsPage(ctx context.Context, page int) (*service.WalletPage, error)
}

type BalanceChecker interface {
	RunFullCheck(ctx context.Context) (*domain.RunSummary, error)
	CheckAddress(ctx context.Context, address string) (*service.AddressCheck, error)
	NetAssets(ctx context.Context) (*domain.NetAssets, error)
}

// Probe reports whether a backing dependency is reachable.
type Probe func(ctx context.Context) error

type Handler struct {
	tracer  trace.Tracer
	logger  *zap.Logger
	wallets WalletBook
	checker BalanceChecker
	probes  []namedProbe
}

type namedProbe struct {
	name  string
	check Probe
}

// New builds the HTTP handlers. wallets and checker may be nil when the
// database is not configured; their routes then answer 503.
func New(tracer trace.Tracer, logger *zap.Logger, wallets WalletBook, checker BalanceChecker) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		tracer:  tracer,
		logger:  logger.Named("http"),
		wallets: wallets,
		checker: checker,
	}
}

// AddProbe registers a dependency checked by /health.
func (h *Handler) AddProbe(name string, check Probe) {
	h.probes = append(h.probes, namedProbe{name: name, check: check})
}

func (h *Handler) RegisterRoutes(r *gin.Engine, apiKey string) {
	r.GET("/health", h.Health)

	api := r.Group("/api")
	api.GET("/wallets", h.ListWallets)
	api.GET("/networth", h.NetWorth)
	api.GET("/valuation/:address", h.Valuation)

	protected := api.Group("", APIKeyAuth(apiKey))
	protected.POST("/wallets", h.CreateWallet)
	protected.POST("/check", h.TriggerCheck)
}
