package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tron-balance-bot/internal/bot"
	"tron-balance-bot/internal/cache"
	"tron-balance-bot/internal/config"
	"tron-balance-bot/internal/db"
	"tron-balance-bot/internal/handler"
	"tron-balance-bot/internal/job"
	"tron-balance-bot/internal/logging"
	"tron-balance-bot/internal/provider"
	"tron-balance-bot/internal/repository"
	"tron-balance-bot/internal/service"
	"tron-balance-bot/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	_ "tron-balance-bot/docs"
)

const (
	quoteKeyPrefix = "tron-balance-bot:quote:"
	runLockKey     = "tron-balance-bot:run-lock"
	runLockTTL     = 2 * time.Hour
)

var (
	loadEnvFunc            = godotenv.Load
	loadConfigFunc         = config.Load
	newLoggerFunc          = logging.MustNew
	initPostgresFunc       = db.InitPostgres
	initRedisFunc          = cache.InitRedis
	initTracerFunc         = tracing.InitTracer
	startTelegramBotFunc   = bot.StartTelegramBot
	startSchedulerFunc     = func(s *job.BalanceScheduler, ctx context.Context) { go s.Start(ctx) }
	startWarmerFunc        = func(w *job.AssetWarmer, ctx context.Context) { go w.Start(ctx) }
	newRouterFunc          = gin.Default
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           TRON Balance Bot API
// @version         1.0
// @description     Wallet tracking and net asset valuation for TRON addresses.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey  ApiKeyAuth
// @in                          header
// @name                        X-API-Key
func main() {
	_ = loadEnvFunc()

	cfg := loadConfigFunc()

	logger := newLoggerFunc(cfg.LogLevel, cfg.LogFormat)
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Postgres and Redis are optional; without them the bot answers
	// price queries only and runs use the in-process lock.
	os.Setenv("DATABASE_URL", cfg.DatabaseURL)
	os.Setenv("REDIS_URL", cfg.RedisURL)
	if err := initPostgresFunc(ctx); err != nil {
		logger.Error("postgres unavailable, persistence disabled", zap.Error(err))
	}
	defer db.Close()
	if err := initRedisFunc(ctx); err != nil {
		logger.Warn("redis unavailable, using in-process caches only", zap.Error(err))
	}
	defer cache.Close()

	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		logger.Fatal("failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logger.Warn("error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Providers
	grid := provider.NewTronGridProvider(tracer, cfg.TronGridBaseURL, cfg.TronGridAPIKey, cfg.HTTPTimeout())
	scan := provider.NewTronScanProvider(tracer, cfg.TronScanBaseURL, cfg.HTTPTimeout())
	gecko := provider.NewCoinGeckoProvider(tracer, cfg.CoinGeckoBaseURL, provider.NewRateLimiter(provider.DefaultCoinGeckoInterval), cfg.HTTPTimeout())

	var (
		mirror service.QuoteMirror
		lock   service.RunLocker
	)
	if cache.Client != nil {
		mirror = cache.NewQuoteStore(cache.Client, quoteKeyPrefix)
		lock = cache.NewRunLock(cache.Client, runLockKey, runLockTTL)
	}

	// Pricing and valuation
	assets := service.NewAssetListCache(tracer, logger, scan, nil)
	prices := service.NewPriceResolver(tracer, logger, assets, gecko,
		service.NewPriceCache(service.CoinPriceTTL, nil, mirror, logger),
		service.PriceResolverOptions{FallbackEnabled: cfg.PriceFallbackEnabled})
	fetcher := service.NewBalanceFetcher(tracer, logger, grid, scan)
	aggregator := service.NewBalanceAggregator(tracer, prices)

	startWarmerFunc(job.NewAssetWarmer(tracer, logger, assets, job.DefaultWarmInterval), ctx)

	loc, err := time.LoadLocation(cfg.CheckTimezone)
	if err != nil {
		loc = time.UTC
	}
	notifier := bot.NewChatNotifier(logger, cfg.ReportChatIDs)
	deps := bot.HandlerDeps{
		Prices:   prices,
		Sessions: bot.NewSessionStore(cfg.SessionTimeout()),
		Location: loc,
	}
	var (
		walletBook handler.WalletBook
		checker    handler.BalanceChecker
	)

	if db.Pool != nil {
		walletRepo := repository.NewWalletRepository(db.Pool, tracer)
		historyRepo := repository.NewHistoryRepository(db.Pool, tracer)

		checks := service.NewBalanceCheckService(tracer, logger, fetcher, aggregator, walletRepo, historyRepo,
			service.BalanceCheckOptions{Pacing: cfg.WalletPacing(), Lock: lock})
		checks.AddNotifier(notifier)
		wallets := service.NewWalletService(tracer, logger, walletRepo, historyRepo, cfg.MinDisplayBalance)

		scheduler, err := job.NewBalanceScheduler(tracer, logger, checks, cfg.CheckSchedule, cfg.CheckTimezone)
		if err != nil {
			logger.Fatal("invalid check schedule", zap.Strings("specs", cfg.CheckSchedule), zap.Error(err))
		}
		startSchedulerFunc(scheduler, ctx)

		deps.Wallets, deps.Runner, deps.Schedule = wallets, checks, scheduler
		walletBook, checker = wallets, checks
	} else {
		logger.Warn("scheduled balance checks disabled without a database")
	}

	// Telegram bot
	handlers := bot.NewHandlers(ctx, logger, deps)
	startTelegramBotFunc(ctx, logger, bot.Config{Token: cfg.TelegramBotToken, MaxReconnects: cfg.BotMaxReconnects}, handlers, notifier)

	// HTTP API
	h := handler.New(tracer, logger, walletBook, checker)
	if db.Pool != nil {
		h.AddProbe("postgres", db.Pool.Ping)
	}
	if cache.Client != nil {
		h.AddProbe("redis", cache.Ping)
	}

	r := newRouterFunc()
	r.Use(otelgin.Middleware("tron-balance-bot"))

	h.RegisterRoutes(r, cfg.APIKey)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", zap.String("addr", cfg.HTTPAddr), zap.Error(err))
		}
	}()
	logger.Info("server started", zap.String("addr", cfg.HTTPAddr))

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	logger.Info("shutting down server")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exiting")
}
