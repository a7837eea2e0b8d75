package bot

import (
	"context"
	"time"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const pollTimeout = 10 * time.Second

var newBot = tele.NewBot

type Config struct {
	Token         string
	MaxReconnects int
}

// StartTelegramBot connects the bot and keeps it polling until ctx is
// cancelled. It returns immediately without a token. Connection failures
// never stop the caller; they are logged by the supervisor.
func StartTelegramBot(ctx context.Context, logger *zap.Logger, cfg Config, handlers *Handlers, notifier *ChatNotifier) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("telegram")
	if cfg.Token == "" {
		logger.Info("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return
	}

	connect := func(trip func(error)) (BotSession, error) {
		poller := newWatchdogPoller(pollTimeout, trip)
		b, err := newBot(tele.Settings{
			Token:  cfg.Token,
			Poller: poller,
			OnError: func(err error, c tele.Context) {
				fields := []zap.Field{zap.Error(err)}
				if c != nil && c.Chat() != nil {
					fields = append(fields, zap.Int64("chat_id", c.Chat().ID))
				}
				logger.Warn("telegram handler error", fields...)
			},
		})
		if err != nil {
			return nil, err
		}
		if handlers != nil {
			handlers.Register(b)
		}
		if notifier != nil {
			notifier.Attach(b)
		}
		logger.Info("telegram bot connected", zap.String("username", b.Me.Username))
		return teleSession{Bot: b, poller: poller}, nil
	}

	sup := NewSupervisor(logger, connect, SupervisorOptions{MaxTries: uint(max(cfg.MaxReconnects, 1))})
	go func() {
		_ = sup.Run(ctx)
	}()
}
