package bot

import (
	"context"
	"testing"

	tele "gopkg.in/telebot.v3"
)

func TestStartTelegramBotSkipsWithoutToken(t *testing.T) {
	orig := newBot
	t.Cleanup(func() { newBot = orig })
	newBot = func(pref tele.Settings) (*tele.Bot, error) {
		t.Fatal("bot should not be created without a token")
		return nil, nil
	}

	StartTelegramBot(context.Background(), nil, Config{}, nil, nil)
}

func TestRegisterHandlersOffline(t *testing.T) {
	b, err := tele.NewBot(tele.Settings{Offline: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h := NewHandlers(context.Background(), nil, HandlerDeps{})
	h.Register(b)
}
