package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	TelegramBotToken string
	DatabaseURL      string
	RedisURL         string
	HTTPAddr         string
	APIKey           string

	TronGridBaseURL  string
	TronGridAPIKey   string
	TronScanBaseURL  string
	CoinGeckoBaseURL string
	HTTPTimeoutSecs  int

	PriceFallbackEnabled bool
	WalletPacingMillis   int
	CheckSchedule        []string
	CheckTimezone        string

	ReportChatIDs      []int64
	MinDisplayBalance  float64
	SessionTimeoutSecs int
	BotMaxReconnects   int

	SSHPort           int
	SSHHostKeyPath    string
	SSHAuthorizedKeys []string

	LogLevel  string
	LogFormat string
}

func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSecs) * time.Second
}

func (c *Config) WalletPacing() time.Duration {
	return time.Duration(c.WalletPacingMillis) * time.Millisecond
}

func (c *Config) SessionTimeout() time.Duration {
	return time.Duration(c.SessionTimeoutSecs) * time.Second
}

func Load() *Config {
	cfg := &Config{
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
		APIKey:           strings.TrimSpace(os.Getenv("API_KEY")),
		TronGridAPIKey:   strings.TrimSpace(os.Getenv("TRONGRID_API_KEY")),
	}

	if cfg.TelegramBotToken == "" {
		log.Println("Warning: TELEGRAM_BOT_TOKEN not set")
	}
	if cfg.DatabaseURL == "" {
		log.Println("Warning: DATABASE_URL not set, wallets and history will not be persisted")
	}
	if cfg.RedisURL == "" {
		log.Println("Warning: REDIS_URL not set, defaulting to localhost:6379")
		cfg.RedisURL = "localhost:6379"
	}

	cfg.HTTPAddr = stringOr("HTTP_ADDR", ":8080")
	cfg.TronGridBaseURL = stringOr("TRONGRID_BASE_URL", "https://api.trongrid.io")
	cfg.TronScanBaseURL = stringOr("TRONSCAN_BASE_URL", "https://apilist.tronscan.org")
	cfg.CoinGeckoBaseURL = stringOr("COINGECKO_BASE_URL", "https://api.coingecko.com/api/v3")

	cfg.HTTPTimeoutSecs = 12
	if v := strings.TrimSpace(os.Getenv("HTTP_TIMEOUT_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HTTPTimeoutSecs = n
		}
	}

	cfg.PriceFallbackEnabled = strings.EqualFold(strings.TrimSpace(os.Getenv("PRICE_FALLBACK_ENABLED")), "true")

	cfg.WalletPacingMillis = 1000
	if v := strings.TrimSpace(os.Getenv("WALLET_PACING_MS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.WalletPacingMillis = n
		}
	}

	cfg.CheckSchedule = []string{"0 6 * * *", "0 15 * * *"}
	if v := strings.TrimSpace(os.Getenv("CHECK_SCHEDULE")); v != "" {
		var specs []string
		for _, s := range strings.Split(v, ";") {
			if s = strings.TrimSpace(s); s != "" {
				specs = append(specs, s)
			}
		}
		if len(specs) > 0 {
			cfg.CheckSchedule = specs
		}
	}

	cfg.CheckTimezone = stringOr("CHECK_TIMEZONE", "Europe/Moscow")
	if _, err := time.LoadLocation(cfg.CheckTimezone); err != nil {
		log.Printf("Warning: unknown CHECK_TIMEZONE=%q, defaulting to Europe/Moscow", cfg.CheckTimezone)
		cfg.CheckTimezone = "Europe/Moscow"
	}

	if v := strings.TrimSpace(os.Getenv("REPORT_CHAT_IDS")); v != "" {
		for _, part := range strings.Split(v, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
			if err != nil {
				log.Printf("Warning: ignoring invalid chat id %q in REPORT_CHAT_IDS", part)
				continue
			}
			cfg.ReportChatIDs = append(cfg.ReportChatIDs, id)
		}
	}

	cfg.MinDisplayBalance = 100
	if v := strings.TrimSpace(os.Getenv("MIN_DISPLAY_BALANCE")); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil && n >= 0 {
			cfg.MinDisplayBalance = n
		}
	}

	cfg.SessionTimeoutSecs = 300
	if v := strings.TrimSpace(os.Getenv("SESSION_TIMEOUT_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SessionTimeoutSecs = n
		}
	}

	cfg.BotMaxReconnects = 5
	if v := strings.TrimSpace(os.Getenv("BOT_MAX_RECONNECTS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.BotMaxReconnects = n
		}
	}

	cfg.SSHPort = 2222
	if v := strings.TrimSpace(os.Getenv("SSH_PORT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n < 65536 {
			cfg.SSHPort = n
		}
	}
	cfg.SSHHostKeyPath = stringOr("SSH_HOST_KEY_PATH", ".ssh/id_ed25519")
	if v := strings.TrimSpace(os.Getenv("SSH_AUTHORIZED_KEYS")); v != "" {
		for _, part := range strings.Split(v, ",") {
			if fp := strings.TrimSpace(part); fp != "" {
				cfg.SSHAuthorizedKeys = append(cfg.SSHAuthorizedKeys, fp)
			}
		}
	}

	cfg.LogLevel = strings.ToLower(stringOr("LOG_LEVEL", "info"))
	cfg.LogFormat = strings.ToLower(stringOr("LOG_FORMAT", "json"))

	return cfg
}

func stringOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
