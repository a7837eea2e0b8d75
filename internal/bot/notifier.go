package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"tron-balance-bot/internal/domain"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

type Sender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// ChatNotifier posts run summaries to the configured report chats. The
// sender is attached once the bot connects and replaced on reconnect.
type ChatNotifier struct {
	logger  *zap.Logger
	chatIDs []int64

	mu     sync.RWMutex
	sender Sender
}

func NewChatNotifier(logger *zap.Logger, chatIDs []int64) *ChatNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatNotifier{logger: logger.Named("notifier"), chatIDs: chatIDs}
}

func (n *ChatNotifier) Attach(sender Sender) {
	n.mu.Lock()
	n.sender = sender
	n.mu.Unlock()
}

func (n *ChatNotifier) NotifyRunSummary(ctx context.Context, summary *domain.RunSummary) error {
	if len(n.chatIDs) == 0 {
		return nil
	}
	n.mu.RLock()
	sender := n.sender
	n.mu.RUnlock()
	if sender == nil {
		n.logger.Warn("run summary not delivered, telegram not connected")
		return nil
	}

	text := renderRunSummary("🔄 Balance check finished", summary)
	var errs []error
	for _, id := range n.chatIDs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := sender.Send(tele.ChatID(id), text); err != nil {
			errs = append(errs, fmt.Errorf("chat %d: %w", id, err))
		}
	}
	return errors.Join(errs...)
}
