package service

import (
	"context"
	"errors"
	"time"

	"tron-balance-bot/internal/domain"
)

var (
	ErrRunInProgress      = errors.New("balance run already in progress")
	ErrInvalidWalletInput = errors.New("invalid wallet input")
	ErrNoStorage          = errors.New("wallet storage unavailable")
	ErrDuplicateWallet    = domain.ErrDuplicateWallet
)

type WalletStore interface {
	Create(ctx context.Context, wallet *domain.Wallet) error
	List(ctx context.Context) ([]domain.Wallet, error)
	ListNewestFirst(ctx context.Context) ([]domain.Wallet, error)
	Count(ctx context.Context) (int, error)
	TouchLastCheck(ctx context.Context, id int64, at time.Time) error
	GetByAddress(ctx context.Context, address string) (*domain.Wallet, error)
}

// HistoryStore is append-only. Latest returns domain.ErrNotFound for a wallet
// without records.
type HistoryStore interface {
	Record(ctx context.Context, entry *domain.BalanceHistory) error
	Latest(ctx context.Context, walletID int64) (*domain.BalanceHistory, error)
	LatestTwo(ctx context.Context, walletID int64) ([]domain.BalanceHistory, error)
	LatestPerWallet(ctx context.Context) (map[int64]domain.BalanceHistory, error)
}
