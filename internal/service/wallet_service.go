package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"tron-balance-bot/internal/domain"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const WalletsPerPage = 10

// WalletInputFields is the line order expected by ParseWalletInput.
var WalletInputFields = []string{"project", "user_id", "type", "alias", "wallet_destination", "last_transaction"}

// ParseWalletInput reads one field per line in WalletInputFields order.
// Blank lines are ignored.
func ParseWalletInput(text string) (domain.Wallet, error) {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) < len(WalletInputFields) {
		return domain.Wallet{}, fmt.Errorf("%w: need %d lines: %s", ErrInvalidWalletInput, len(WalletInputFields), strings.Join(WalletInputFields, ", "))
	}

	userID, err := strconv.ParseInt(lines[1], 10, 64)
	if err != nil {
		return domain.Wallet{}, fmt.Errorf("%w: user_id must be a number", ErrInvalidWalletInput)
	}
	wallet := domain.Wallet{
		Project:         lines[0],
		UserID:          userID,
		Type:            lines[2],
		Alias:           lines[3],
		Address:         lines[4],
		LastTransaction: lines[5],
	}
	return wallet, validateWallet(wallet)
}

func validateWallet(w domain.Wallet) error {
	switch {
	case strings.TrimSpace(w.Project) == "":
		return fmt.Errorf("%w: project must not be empty", ErrInvalidWalletInput)
	case strings.TrimSpace(w.Type) == "":
		return fmt.Errorf("%w: type must not be empty", ErrInvalidWalletInput)
	case strings.TrimSpace(w.Address) == "":
		return fmt.Errorf("%w: wallet address must not be empty", ErrInvalidWalletInput)
	}
	return nil
}

// WalletEntry is one wallet as shown in listings.
type WalletEntry struct {
	Index         int                    `json:"index"`
	Wallet        domain.Wallet          `json:"wallet"`
	CurrentUSD    float64                `json:"current_usd"`
	Checked       bool                   `json:"checked"`
	FromHistory   bool                   `json:"from_history"`
	PreviousUSD   *float64               `json:"previous_usd,omitempty"`
	DeltaUSD      *float64               `json:"delta_usd,omitempty"`
	DeltaPercent  *float64               `json:"delta_percent,omitempty"`
	FirstCheck    bool                   `json:"first_check"`
	LastCheckedAt *time.Time             `json:"last_checked_at,omitempty"`
	Latest        *domain.BalanceHistory `json:"-"`
}

type WalletPage struct {
	Page          int           `json:"page"`
	TotalPages    int           `json:"total_pages"`
	TotalWallets  int           `json:"total_wallets"`
	Matching      int           `json:"matching"`
	MinBalance    float64       `json:"min_balance"`
	Entries       []WalletEntry `json:"entries"`
	LastCheckedAt *time.Time    `json:"last_checked_at,omitempty"`
}

type WalletService struct {
	tracer     trace.Tracer
	logger     *zap.Logger
	wallets    WalletStore
	history    HistoryStore
	minDisplay float64
}

func NewWalletService(tracer trace.Tracer, logger *zap.Logger, wallets WalletStore, history HistoryStore, minDisplay float64) *WalletService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WalletService{
		tracer:     tracer,
		logger:     logger.Named("wallets"),
		wallets:    wallets,
		history:    history,
		minDisplay: minDisplay,
	}
}

func (s *WalletService) AddWallet(ctx context.Context, wallet domain.Wallet) (*domain.Wallet, error) {
	ctx, span := s.tracer.Start(ctx, "wallet-service.add-wallet")
	defer span.End()

	wallet.Project = strings.TrimSpace(wallet.Project)
	wallet.Type = strings.TrimSpace(wallet.Type)
	wallet.Alias = strings.TrimSpace(wallet.Alias)
	wallet.Address = strings.TrimSpace(wallet.Address)
	wallet.LastTransaction = strings.TrimSpace(wallet.LastTransaction)
	if err := validateWallet(wallet); err != nil {
		return nil, err
	}

	if err := s.wallets.Create(ctx, &wallet); err != nil {
		if errors.Is(err, domain.ErrDuplicateWallet) {
			return nil, ErrDuplicateWallet
		}
		return nil, fmt.Errorf("create wallet: %w", err)
	}
	s.logger.Info("wallet added", zap.Int64("wallet_id", wallet.ID), zap.Int64("user_id", wallet.UserID), zap.String("project", wallet.Project))
	return &wallet, nil
}

func (s *WalletService) Count(ctx context.Context) (int, error) {
	return s.wallets.Count(ctx)
}

// WalletsPage lists wallets newest first whose current balance exceeds the
// display threshold. page is clamped to the available range.
func (s *WalletService) WalletsPage(ctx context.Context, page int) (*WalletPage, error) {
	ctx, span := s.tracer.Start(ctx, "wallet-service.wallets-page")
	defer span.End()

	wallets, err := s.wallets.ListNewestFirst(ctx)
	if err != nil {
		return nil, fmt.Errorf("list wallets: %w", err)
	}
	latest, err := s.history.LatestPerWallet(ctx)
	if err != nil {
		return nil, fmt.Errorf("load latest balances: %w", err)
	}

	out := &WalletPage{TotalWallets: len(wallets), MinBalance: s.minDisplay}

	var matching []WalletEntry
	for _, w := range wallets {
		entry := WalletEntry{Wallet: w}
		if h, ok := latest[w.ID]; ok && h.BalanceUSD > 0 {
			h := h
			entry.Latest = &h
			entry.CurrentUSD = h.BalanceUSD
			entry.Checked = true
			entry.FromHistory = true
		} else if w.LegacyBalance != nil {
			entry.CurrentUSD = *w.LegacyBalance
			entry.Checked = true
		}
		if entry.CurrentUSD > s.minDisplay {
			matching = append(matching, entry)
		}
	}
	out.Matching = len(matching)
	if len(matching) == 0 {
		return out, nil
	}

	out.TotalPages = (len(matching) + WalletsPerPage - 1) / WalletsPerPage
	out.Page = min(max(page, 0), out.TotalPages-1)
	start := out.Page * WalletsPerPage
	end := min(start+WalletsPerPage, len(matching))

	for i := start; i < end; i++ {
		entry := matching[i]
		entry.Index = i + 1
		if err := s.fillChange(ctx, &entry); err != nil {
			return nil, err
		}
		if entry.LastCheckedAt != nil && (out.LastCheckedAt == nil || entry.LastCheckedAt.After(*out.LastCheckedAt)) {
			out.LastCheckedAt = entry.LastCheckedAt
		}
		out.Entries = append(out.Entries, entry)
	}
	return out, nil
}

// fillChange sets the previous value from the stored previous balance, or
// from the second most recent record when none was stored.
func (s *WalletService) fillChange(ctx context.Context, entry *WalletEntry) error {
	if entry.Latest != nil {
		at := entry.Latest.CheckedAt
		entry.LastCheckedAt = &at
	} else if entry.Wallet.LastBalanceCheck != nil {
		at := *entry.Wallet.LastBalanceCheck
		entry.LastCheckedAt = &at
	}
	if !entry.FromHistory {
		return nil
	}

	previous := entry.Latest.PreviousBalanceUSD
	if previous == nil {
		recent, err := s.history.LatestTwo(ctx, entry.Wallet.ID)
		if err != nil {
			return fmt.Errorf("load history for wallet %d: %w", entry.Wallet.ID, err)
		}
		sort.Slice(recent, func(i, j int) bool { return recent[i].CheckedAt.After(recent[j].CheckedAt) })
		if len(recent) > 1 {
			v := recent[1].BalanceUSD
			previous = &v
		}
	}

	entry.PreviousUSD = previous
	switch {
	case previous != nil && *previous > 0:
		delta := entry.CurrentUSD - *previous
		pct := delta / *previous * 100
		entry.DeltaUSD = &delta
		entry.DeltaPercent = &pct
	case previous == nil || *previous == 0:
		entry.FirstCheck = true
	}
	return nil
}
