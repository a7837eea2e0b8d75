package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tron-balance-bot/internal/db"
	"tron-balance-bot/internal/domain"
	"tron-balance-bot/internal/logging"
	"tron-balance-bot/internal/provider"
	"tron-balance-bot/internal/repository"
	"tron-balance-bot/internal/service"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

// settings mirrors the server's environment names; flags override env.
type settings struct {
	DatabaseURL          string `mapstructure:"database_url"`
	TronGridBaseURL      string `mapstructure:"trongrid_base_url"`
	TronGridAPIKey       string `mapstructure:"trongrid_api_key"`
	TronScanBaseURL      string `mapstructure:"tronscan_base_url"`
	CoinGeckoBaseURL     string `mapstructure:"coingecko_base_url"`
	HTTPTimeoutSecs      int    `mapstructure:"http_timeout_secs"`
	PriceFallbackEnabled bool   `mapstructure:"price_fallback_enabled"`
	WalletPacingMillis   int    `mapstructure:"wallet_pacing_ms"`
	LogLevel             string `mapstructure:"log_level"`
}

type balanceChecks interface {
	CheckAddress(ctx context.Context, address string) (*service.AddressCheck, error)
	RunFullCheck(ctx context.Context) (*domain.RunSummary, error)
}

type walletLister interface {
	ListNewestFirst(ctx context.Context) ([]domain.Wallet, error)
}

type latestReader interface {
	LatestPerWallet(ctx context.Context) (map[int64]domain.BalanceHistory, error)
}

// toolkit is what the subcommands work with. wallets and history are nil
// when no database is configured.
type toolkit struct {
	checks  balanceChecks
	wallets walletLister
	history latestReader
	close   func()
}

var newToolkit = buildToolkit

func newRootCmd() *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:           "walletctl",
		Short:         "Operator tool for the TRON balance bot",
		Long:          "walletctl values single addresses, runs a full balance check and lists stored wallets using the same configuration as the server.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.String("database-url", "", "Postgres DSN (env: DATABASE_URL)")
	flags.String("trongrid-base-url", "https://api.trongrid.io", "TronGrid API base URL (env: TRONGRID_BASE_URL)")
	flags.String("trongrid-api-key", "", "TronGrid API key (env: TRONGRID_API_KEY)")
	flags.String("tronscan-base-url", "https://apilist.tronscan.org", "TronScan API base URL (env: TRONSCAN_BASE_URL)")
	flags.String("coingecko-base-url", "https://api.coingecko.com/api/v3", "CoinGecko API base URL (env: COINGECKO_BASE_URL)")
	flags.Int("http-timeout-secs", 12, "per-request timeout in seconds (env: HTTP_TIMEOUT_SECS)")
	flags.Bool("price-fallback-enabled", false, "let token prices fall through to CoinGecko (env: PRICE_FALLBACK_ENABLED)")
	flags.Int("wallet-pacing-ms", 1000, "pause between wallets in a run (env: WALLET_PACING_MS)")
	flags.String("log-level", "warn", "log level (env: LOG_LEVEL)")
	bindFlags(v, flags)
	v.AutomaticEnv()

	root.AddCommand(newCheckCmd(v), newRunCmd(v), newWalletsCmd(v))
	return root
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f)
	})
}

func loadSettings(v *viper.Viper) (settings, error) {
	var s settings
	if err := v.Unmarshal(&s); err != nil {
		return settings{}, fmt.Errorf("read settings: %w", err)
	}
	if s.HTTPTimeoutSecs <= 0 {
		s.HTTPTimeoutSecs = 12
	}
	if s.WalletPacingMillis < 0 {
		s.WalletPacingMillis = 1000
	}
	return s, nil
}

// openToolkit loads settings and builds the pipeline for one command.
func openToolkit(cmd *cobra.Command, v *viper.Viper) (*toolkit, error) {
	cfg, err := loadSettings(v)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.LogLevel, "console")
	if err != nil {
		return nil, err
	}
	return newToolkit(cmd.Context(), cfg, logger)
}

func buildToolkit(ctx context.Context, cfg settings, logger *zap.Logger) (*toolkit, error) {
	tracer := otel.Tracer("walletctl")
	timeout := time.Duration(cfg.HTTPTimeoutSecs) * time.Second

	grid := provider.NewTronGridProvider(tracer, cfg.TronGridBaseURL, cfg.TronGridAPIKey, timeout)
	scan := provider.NewTronScanProvider(tracer, cfg.TronScanBaseURL, timeout)
	gecko := provider.NewCoinGeckoProvider(tracer, cfg.CoinGeckoBaseURL, provider.NewRateLimiter(provider.DefaultCoinGeckoInterval), timeout)

	prices := service.NewPriceResolver(tracer, logger,
		service.NewAssetListCache(tracer, logger, scan, nil), gecko,
		service.NewPriceCache(service.CoinPriceTTL, nil, nil, logger),
		service.PriceResolverOptions{FallbackEnabled: cfg.PriceFallbackEnabled})
	fetcher := service.NewBalanceFetcher(tracer, logger, grid, scan)
	aggregator := service.NewBalanceAggregator(tracer, prices)
	opts := service.BalanceCheckOptions{Pacing: time.Duration(cfg.WalletPacingMillis) * time.Millisecond}

	tk := &toolkit{close: func() {}}
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		tk.checks = service.NewBalanceCheckService(tracer, logger, fetcher, aggregator, nil, nil, opts)
		return tk, nil
	}

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	wallets := repository.NewWalletRepository(pool, tracer)
	history := repository.NewHistoryRepository(pool, tracer)
	tk.checks = service.NewBalanceCheckService(tracer, logger, fetcher, aggregator, wallets, history, opts)
	tk.wallets, tk.history = wallets, history
	tk.close = pool.Close
	return tk, nil
}
