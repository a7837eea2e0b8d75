package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"tron-balance-bot/internal/domain"
	"tron-balance-bot/internal/service"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const walletsPagePrefix = "wallets_page_"

const addWalletPrompt = "📝 Add a new wallet\n\n" +
	"Send the details one value per line:\n\n" +
	"project\nuser_id\ntype\nalias\nwallet_destination\nlast_transaction\n\n" +
	"Example:\n" +
	"Auf\n81\nwithdraw\nFinassets USDT_TRC\nTBCKdBWiWG41oSSq4K4q5zcp56ya1V8xSy\n9/18/2025\n\n" +
	"Send /cancel to abort."

type WalletBook interface {
	AddWallet(ctx context.Context, wallet domain.Wallet) (*domain.Wallet, error)
	WalletsPage(ctx context.Context, page int) (*service.WalletPage, error)
	Count(ctx context.Context) (int, error)
}

type BalanceRunner interface {
	RunFullCheck(ctx context.Context) (*domain.RunSummary, error)
}

type Quoter interface {
	QuoteBySymbol(ctx context.Context, symbol string) float64
}

type NextRunner interface {
	NextRun(now time.Time) time.Time
}

type HandlerDeps struct {
	Wallets  WalletBook
	Runner   BalanceRunner
	Prices   Quoter
	Schedule NextRunner
	Sessions *SessionStore
	Location *time.Location
	Now      func() time.Time
}

// Handlers holds the chat command surface. base bounds every request and
// is cancelled on shutdown.
type Handlers struct {
	base     context.Context
	logger   *zap.Logger
	wallets  WalletBook
	runner   BalanceRunner
	prices   Quoter
	schedule NextRunner
	sessions *SessionStore
	loc      *time.Location
	now      func() time.Time
}

func NewHandlers(base context.Context, logger *zap.Logger, deps HandlerDeps) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Sessions == nil {
		deps.Sessions = NewSessionStore(5 * time.Minute)
	}
	if deps.Location == nil {
		deps.Location = time.UTC
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Handlers{
		base:     base,
		logger:   logger.Named("handlers"),
		wallets:  deps.Wallets,
		runner:   deps.Runner,
		prices:   deps.Prices,
		schedule: deps.Schedule,
		sessions: deps.Sessions,
		loc:      deps.Location,
		now:      deps.Now,
	}
}

func (h *Handlers) Register(b *tele.Bot) {
	b.Handle("/start", h.Start)
	b.Handle("/addwallet", h.AddWallet)
	b.Handle("/cancel", h.Cancel)
	b.Handle("/wallets", h.Wallets)
	b.Handle("/checkbalance", h.CheckBalance)
	b.Handle("/price", h.Price)
	b.Handle(tele.OnText, h.Text)
	b.Handle(tele.OnCallback, h.Callback)
}

func (h *Handlers) Start(c tele.Context) error {
	return c.Send("📋 Available commands:\n\n" +
		"/addwallet - Add a wallet\n" +
		"/wallets - List wallets\n" +
		"/checkbalance - Check all balances now\n" +
		"/price <symbol> - Current USD price\n" +
		"/cancel - Cancel wallet entry")
}

func (h *Handlers) AddWallet(c tele.Context) error {
	if h.wallets == nil {
		return c.Send("⚠️ Database unavailable. Wallets cannot be added right now.")
	}
	h.sessions.AwaitWalletData(c.Chat().ID)
	return c.Send(addWalletPrompt)
}

func (h *Handlers) Cancel(c tele.Context) error {
	if h.sessions.Take(c.Chat().ID) == StateIdle {
		return c.Send("Nothing to cancel.")
	}
	return c.Send("❎ Wallet entry cancelled.")
}

// Text consumes the reply to /addwallet. Unknown commands never count as
// wallet data and leave the pending state untouched.
func (h *Handlers) Text(c tele.Context) error {
	text := c.Text()
	if strings.HasPrefix(text, "/") {
		return nil
	}
	if h.sessions.Take(c.Chat().ID) != StateAwaitingWalletData {
		return nil
	}

	wallet, err := service.ParseWalletInput(text)
	if err != nil {
		return c.Send("❌ " + inputProblem(err))
	}

	ctx, cancel := context.WithTimeout(h.base, 15*time.Second)
	defer cancel()

	added, err := h.wallets.AddWallet(ctx, wallet)
	switch {
	case errors.Is(err, service.ErrDuplicateWallet):
		return c.Send("❌ " + service.ErrDuplicateWallet.Error())
	case errors.Is(err, service.ErrInvalidWalletInput):
		return c.Send("❌ " + inputProblem(err))
	case err != nil:
		h.logger.Error("add wallet failed", zap.Int64("chat_id", c.Chat().ID), zap.Error(err))
		return c.Send("❌ Could not save the wallet. Try again later.")
	}

	h.logger.Info("wallet added from chat", zap.Int64("chat_id", c.Chat().ID), zap.Int64("wallet_id", added.ID))
	return c.Send(fmt.Sprintf("✅ Wallet added!\n\n"+
		"📁 Project: %s\n👤 User ID: %d\n🏷️ Type: %s\n📝 Alias: %s\n💼 Address: %s\n🔗 Last transaction: %s",
		added.Project, added.UserID, added.Type, orNotSet(added.Alias), added.Address, orNotSet(added.LastTransaction)))
}

func inputProblem(err error) string {
	msg := err.Error()
	if _, rest, ok := strings.Cut(msg, service.ErrInvalidWalletInput.Error()+": "); ok {
		return rest
	}
	return msg
}

func (h *Handlers) Wallets(c tele.Context) error {
	text, markup, err := h.renderWalletsPage(0)
	if err != nil {
		h.logger.Error("render wallets page", zap.Error(err))
		return c.Send("❌ Something went wrong. Try again later.")
	}
	return c.Send(text, markup)
}

func (h *Handlers) Callback(c tele.Context) error {
	data := strings.TrimSpace(c.Callback().Data)
	raw, ok := strings.CutPrefix(data, walletsPagePrefix)
	if !ok {
		return c.Respond()
	}
	page, err := strconv.Atoi(raw)
	if err != nil {
		return c.Respond()
	}

	text, markup, err := h.renderWalletsPage(page)
	if err != nil {
		h.logger.Error("render wallets page", zap.Int("page", page), zap.Error(err))
		return c.Respond(&tele.CallbackResponse{Text: "❌ Something went wrong. Try again later."})
	}
	if err := c.Edit(text, markup); err != nil && !errors.Is(err, tele.ErrSameMessageContent) && !errors.Is(err, tele.ErrMessageNotModified) {
		return err
	}
	return c.Respond()
}

func (h *Handlers) renderWalletsPage(page int) (string, *tele.ReplyMarkup, error) {
	if h.wallets == nil {
		return "⚠️ Database unavailable.", nil, nil
	}

	ctx, cancel := context.WithTimeout(h.base, 15*time.Second)
	defer cancel()

	p, err := h.wallets.WalletsPage(ctx, page)
	if err != nil {
		return "", nil, err
	}
	if p.TotalWallets == 0 {
		return "📭 No wallets yet.\n\nUse /addwallet to add one.", nil, nil
	}
	if p.Matching == 0 {
		return fmt.Sprintf("📭 No wallets with balance above $%s.", formatNumberWithCommas(p.MinBalance)), nil, nil
	}
	return renderWalletPage(p, h.nextRun(), h.now(), h.loc), walletPageMarkup(p), nil
}

func (h *Handlers) nextRun() time.Time {
	if h.schedule == nil {
		return time.Time{}
	}
	return h.schedule.NextRun(h.now())
}

func renderWalletPage(p *service.WalletPage, next, now time.Time, loc *time.Location) string {
	var b strings.Builder
	fmt.Fprintf(&b, "💼 Wallets with balance > $%s (%d):\n", formatNumberWithCommas(p.MinBalance), p.Matching)
	fmt.Fprintf(&b, "📄 Page %d of %d\n\n", p.Page+1, p.TotalPages)

	for _, e := range p.Entries {
		w := e.Wallet
		fmt.Fprintf(&b, "%d. 📁 Project: %s\n", e.Index, w.Project)
		fmt.Fprintf(&b, "   👤 User ID: %d\n", w.UserID)
		fmt.Fprintf(&b, "   🏷️ Type: %s\n", orNotSet(w.Type))
		fmt.Fprintf(&b, "   📝 Alias: %s\n", orNotSet(w.Alias))
		fmt.Fprintf(&b, "   💼 Address: %s\n", w.Address)
		fmt.Fprintf(&b, "   🔗 Last transaction: %s\n", orNotSet(w.LastTransaction))
		fmt.Fprintf(&b, "   💰 Balance: $%s\n", formatNumberWithCommas(e.CurrentUSD))
		switch {
		case e.DeltaUSD != nil && e.DeltaPercent != nil:
			fmt.Fprintf(&b, "   📊 Change: %s\n", formatChange(*e.DeltaUSD, *e.DeltaPercent))
		case e.FirstCheck:
			b.WriteString("   📊 First balance check\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("━━━━━━━━━━━━━━━━━━━━\n")
	if p.LastCheckedAt != nil {
		fmt.Fprintf(&b, "🕐 Last check: %s\n", formatTimestamp(*p.LastCheckedAt, loc))
	}
	if !next.IsZero() {
		fmt.Fprintf(&b, "⏰ Next check: %s (%s)\n", formatShortTimestamp(next, loc), zoneName(next, loc))
		fmt.Fprintf(&b, "⏳ Time until next check: %s\n", formatUntil(next.Sub(now)))
	}
	return b.String()
}

func zoneName(t time.Time, loc *time.Location) string {
	if loc.String() == "Europe/Moscow" {
		return "MSK"
	}
	name, _ := t.In(loc).Zone()
	return name
}

func walletPageMarkup(p *service.WalletPage) *tele.ReplyMarkup {
	var row []tele.InlineButton
	if p.Page > 0 {
		row = append(row, tele.InlineButton{Text: "◀️ Back", Data: walletsPagePrefix + strconv.Itoa(p.Page-1)})
	}
	if p.Page < p.TotalPages-1 {
		row = append(row, tele.InlineButton{Text: "Next ▶️", Data: walletsPagePrefix + strconv.Itoa(p.Page+1)})
	}
	markup := &tele.ReplyMarkup{}
	if len(row) > 0 {
		markup.InlineKeyboard = [][]tele.InlineButton{row}
	}
	return markup
}

func (h *Handlers) CheckBalance(c tele.Context) error {
	if h.wallets == nil || h.runner == nil {
		return c.Send("⚠️ Database unavailable. The check cannot run.")
	}

	ctx := h.base
	count, err := h.wallets.Count(ctx)
	if err != nil {
		h.logger.Error("count wallets", zap.Error(err))
		return c.Send("❌ Balance check failed.")
	}
	if count == 0 {
		return c.Send("📭 No wallets to check. Add one with /addwallet")
	}

	if err := c.Send(fmt.Sprintf("🔄 Starting balance check...\n\n📊 Wallets stored: %d\n\nThis may take a while.", count)); err != nil {
		return err
	}

	summary, err := h.runner.RunFullCheck(ctx)
	switch {
	case errors.Is(err, service.ErrRunInProgress):
		return c.Send("⏳ A balance check is already running. Try again when it finishes.")
	case err != nil:
		h.logger.Error("manual balance check failed", zap.Int64("chat_id", c.Chat().ID), zap.Error(err))
		return c.Send("❌ Balance check failed.")
	}
	return c.Send(renderRunSummary("✅ Check complete!", summary))
}

func renderRunSummary(title string, s *domain.RunSummary) string {
	var b strings.Builder
	b.WriteString(title + "\n\n")
	fmt.Fprintf(&b, "📊 Wallets checked: %d\n", s.WalletsChecked)
	if s.ErrorCount > 0 {
		fmt.Fprintf(&b, "⚠️ Failed: %d\n", s.ErrorCount)
	}
	fmt.Fprintf(&b, "\n💰 Net Assets: $%s\n", formatNumberWithCommas(s.TotalUSD))
	if s.PreviousTotalUSD > 0 {
		delta := s.TotalUSD - s.PreviousTotalUSD
		fmt.Fprintf(&b, "📊 Net Assets change: %s\n", formatChange(delta, delta/s.PreviousTotalUSD*100))
		fmt.Fprintf(&b, "📉 Previous Net Assets: $%s\n", formatNumberWithCommas(s.PreviousTotalUSD))
	}
	return b.String()
}

func (h *Handlers) Price(c tele.Context) error {
	args := c.Args()
	if len(args) == 0 || h.prices == nil {
		return c.Send("Usage: /price TRX")
	}
	symbol := strings.ToUpper(strings.TrimSpace(args[0]))

	ctx, cancel := context.WithTimeout(h.base, 30*time.Second)
	defer cancel()

	price := h.prices.QuoteBySymbol(ctx, symbol)
	if price <= 0 {
		return c.Send(fmt.Sprintf("No price found for %s", symbol))
	}
	return c.Send(fmt.Sprintf("💵 %s: $%s", symbol, formatPrice(price)))
}
