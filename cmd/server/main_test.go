package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"tron-balance-bot/internal/bot"
	"tron-balance-bot/internal/config"
	"tron-balance-bot/internal/job"

	"github.com/gin-gonic/gin"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

func TestMainBootstrap(t *testing.T) {
	gin.SetMode(gin.TestMode)
	restore, probe := stubServerDeps()
	defer restore()

	done := make(chan struct{})
	go func() {
		main()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("main did not exit")
	}

	if !probe.botStarted {
		t.Fatal("expected telegram bot startup to be attempted")
	}
	if probe.schedulerStarted {
		t.Fatal("scheduler must not start without a database")
	}
	if probe.srv == nil || probe.srv.Addr != ":18080" {
		t.Fatalf("expected server on configured address, got %+v", probe.srv)
	}

	for path, want := range map[string]int{
		"/health":             http.StatusOK,
		"/metrics":            http.StatusOK,
		"/api/wallets":        http.StatusServiceUnavailable,
		"/swagger/index.html": http.StatusOK,
	} {
		w := httptest.NewRecorder()
		probe.srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != want {
			t.Fatalf("%s: expected %d, got %d", path, want, w.Code)
		}
	}
}

type bootProbe struct {
	botStarted       bool
	schedulerStarted bool
	srv              *http.Server
}

func stubServerDeps() (func(), *bootProbe) {
	probe := &bootProbe{}

	origLoadEnv := loadEnvFunc
	origLoadConfig := loadConfigFunc
	origNewLogger := newLoggerFunc
	origInitPostgres := initPostgresFunc
	origInitRedis := initRedisFunc
	origInitTracer := initTracerFunc
	origStartTelegram := startTelegramBotFunc
	origStartScheduler := startSchedulerFunc
	origStartWarmer := startWarmerFunc
	origNewRouter := newRouterFunc
	origSetupSignal := setupSignalNotify
	origWait := waitForSignalFunc
	origStartHTTP := startHTTPServerFunc
	origShutdownHTTP := shutdownHTTPServerFunc

	loadEnvFunc = func(...string) error { return errors.New("no .env") }
	loadConfigFunc = func() *config.Config {
		return &config.Config{
			HTTPAddr:           ":18080",
			HTTPTimeoutSecs:    1,
			CheckSchedule:      []string{"0 6 * * *"},
			CheckTimezone:      "Europe/Moscow",
			SessionTimeoutSecs: 60,
			BotMaxReconnects:   1,
			LogLevel:           "info",
			LogFormat:          "json",
		}
	}
	newLoggerFunc = func(level, format string) *zap.Logger { return zap.NewNop() }
	initPostgresFunc = func(context.Context) error { return nil }
	initRedisFunc = func(context.Context) error { return errors.New("connection refused") }
	initTracerFunc = func(ctx context.Context) (*sdktrace.TracerProvider, trace.Tracer, error) {
		tp := sdktrace.NewTracerProvider()
		return tp, tp.Tracer("test"), nil
	}
	startTelegramBotFunc = func(context.Context, *zap.Logger, bot.Config, *bot.Handlers, *bot.ChatNotifier) {
		probe.botStarted = true
	}
	startSchedulerFunc = func(*job.BalanceScheduler, context.Context) { probe.schedulerStarted = true }
	startWarmerFunc = func(*job.AssetWarmer, context.Context) {}
	newRouterFunc = func(...gin.OptionFunc) *gin.Engine { return gin.New() }
	setupSignalNotify = func(c chan<- os.Signal, sig ...os.Signal) {}
	waitForSignalFunc = func(<-chan os.Signal) {}
	startHTTPServerFunc = func(srv *http.Server) error { return http.ErrServerClosed }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error {
		probe.srv = srv
		return nil
	}

	return func() {
		loadEnvFunc = origLoadEnv
		loadConfigFunc = origLoadConfig
		newLoggerFunc = origNewLogger
		initPostgresFunc = origInitPostgres
		initRedisFunc = origInitRedis
		initTracerFunc = origInitTracer
		startTelegramBotFunc = origStartTelegram
		startSchedulerFunc = origStartScheduler
		startWarmerFunc = origStartWarmer
		newRouterFunc = origNewRouter
		setupSignalNotify = origSetupSignal
		waitForSignalFunc = origWait
		startHTTPServerFunc = origStartHTTP
		shutdownHTTPServerFunc = origShutdownHTTP
	}, probe
}
