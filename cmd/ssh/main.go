package main

import (
	"context"
	"fmt"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"tron-balance-bot/internal/config"
	"tron-balance-bot/internal/db"
	"tron-balance-bot/internal/logging"
	"tron-balance-bot/internal/provider"
	"tron-balance-bot/internal/repository"
	"tron-balance-bot/internal/service"
	"tron-balance-bot/internal/tui"
	"tron-balance-bot/pkg/tracing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"
	wishlogging "github.com/charmbracelet/wish/logging"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	gossh "golang.org/x/crypto/ssh"
)

var (
	loadEnvFunc       = godotenv.Load
	loadConfigFunc    = config.Load
	newLoggerFunc     = logging.MustNew
	initPostgresFunc  = db.InitPostgres
	initTracerFunc    = tracing.InitTracer
	newWishServerFunc = wish.NewServer
	setupSignalNotify = ossignal.Notify
	waitForSignalFunc = func(quit <-chan os.Signal) { <-quit }
)

// keyring holds the SHA256 fingerprints allowed to open the dashboard.
type keyring map[string]struct{}

func newKeyring(fingerprints []string) keyring {
	k := make(keyring, len(fingerprints))
	for _, fp := range fingerprints {
		k[fp] = struct{}{}
	}
	return k
}

func (k keyring) allows(key gossh.PublicKey) (string, bool) {
	fp := gossh.FingerprintSHA256(key)
	_, ok := k[fp]
	return fp, ok
}

func publicKeyAuth(logger *zap.Logger, keys keyring) ssh.PublicKeyHandler {
	return func(ctx ssh.Context, key ssh.PublicKey) bool {
		fp, ok := keys.allows(key)
		if !ok {
			logger.Warn("ssh auth denied", zap.String("user", ctx.User()), zap.String("fingerprint", fp))
			return false
		}
		logger.Info("ssh auth accepted", zap.String("user", ctx.User()), zap.String("fingerprint", fp))
		return true
	}
}

func main() {
	_ = loadEnvFunc()
	cfg := loadConfigFunc()

	logger := newLoggerFunc(cfg.LogLevel, cfg.LogFormat)
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	os.Setenv("DATABASE_URL", cfg.DatabaseURL)
	if err := initPostgresFunc(ctx); err != nil {
		logger.Error("postgres unavailable, wallet list disabled", zap.Error(err))
	}
	defer db.Close()

	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		logger.Fatal("failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logger.Warn("error shutting down tracer provider", zap.Error(err))
		}
	}()

	grid := provider.NewTronGridProvider(tracer, cfg.TronGridBaseURL, cfg.TronGridAPIKey, cfg.HTTPTimeout())
	scan := provider.NewTronScanProvider(tracer, cfg.TronScanBaseURL, cfg.HTTPTimeout())
	gecko := provider.NewCoinGeckoProvider(tracer, cfg.CoinGeckoBaseURL, provider.NewRateLimiter(provider.DefaultCoinGeckoInterval), cfg.HTTPTimeout())

	assets := service.NewAssetListCache(tracer, logger, scan, nil)
	prices := service.NewPriceResolver(tracer, logger, assets, gecko,
		service.NewPriceCache(service.CoinPriceTTL, nil, nil, logger),
		service.PriceResolverOptions{FallbackEnabled: cfg.PriceFallbackEnabled})
	fetcher := service.NewBalanceFetcher(tracer, logger, grid, scan)
	aggregator := service.NewBalanceAggregator(tracer, prices)

	var svc tui.Services
	if db.Pool != nil {
		walletRepo := repository.NewWalletRepository(db.Pool, tracer)
		historyRepo := repository.NewHistoryRepository(db.Pool, tracer)
		svc.Wallets = service.NewWalletService(tracer, logger, walletRepo, historyRepo, cfg.MinDisplayBalance)
		svc.Balances = service.NewBalanceCheckService(tracer, logger, fetcher, aggregator, walletRepo, historyRepo,
			service.BalanceCheckOptions{Pacing: cfg.WalletPacing()})
	} else {
		svc.Balances = service.NewBalanceCheckService(tracer, logger, fetcher, aggregator, nil, nil,
			service.BalanceCheckOptions{})
	}

	if len(cfg.SSHAuthorizedKeys) == 0 {
		logger.Warn("SSH_AUTHORIZED_KEYS is empty, every login will be rejected")
	}

	addr := fmt.Sprintf("0.0.0.0:%d", cfg.SSHPort)
	srv, err := newWishServerFunc(
		wish.WithAddress(addr),
		wish.WithHostKeyPath(cfg.SSHHostKeyPath),
		wish.WithPublicKeyAuth(publicKeyAuth(logger, newKeyring(cfg.SSHAuthorizedKeys))),
		wish.WithMiddleware(
			bubbletea.Middleware(func(s ssh.Session) (tea.Model, []tea.ProgramOption) {
				session := svc
				session.Username = s.User()

				model := tui.NewAppModel(session)
				pty, _, _ := s.Pty()
				model.SetSize(pty.Window.Width, pty.Window.Height)

				return model, []tea.ProgramOption{tea.WithAltScreen()}
			}),
			wishlogging.Middleware(),
		),
	)
	if err != nil {
		logger.Fatal("failed to create SSH server", zap.Error(err))
	}

	if srv != nil {
		go func() {
			logger.Info("ssh server listening", zap.String("addr", addr))
			if err := srv.ListenAndServe(); err != nil {
				logger.Info("ssh server stopped", zap.Error(err))
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	logger.Info("shutting down ssh server")

	cancel()

	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("ssh server shutdown error", zap.Error(err))
		}
	}

	logger.Info("ssh server exited")
}
