package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tron-balance-bot/internal/domain"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/trace"
)

const walletColumns = `id, project, user_id, type, alias, wallet_destination, last_transaction,
		balance, last_balance_check, created_at, updated_at`

type WalletRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewWalletRepository(pool PgxPool, tracer trace.Tracer) *WalletRepository {
	return &WalletRepository{pool: pool, tracer: tracer}
}

// Create inserts wallet and fills its generated fields. A second wallet with
// the same address returns domain.ErrDuplicateWallet.
func (r *WalletRepository) Create(ctx context.Context, wallet *domain.Wallet) error {
	ctx, span := r.tracer.Start(ctx, "wallet-repo.create")
	defer span.End()

	err := r.pool.QueryRow(ctx,
		`INSERT INTO wallets (project, user_id, type, alias, wallet_destination, last_transaction)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		wallet.Project, wallet.UserID, wallet.Type, wallet.Alias, wallet.Address, wallet.LastTransaction,
	).Scan(&wallet.ID, &wallet.CreatedAt, &wallet.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateWallet
		}
		span.RecordError(err)
		return fmt.Errorf("insert wallet: %w", err)
	}
	return nil
}

// List returns wallets in creation order, the order full runs process them in.
func (r *WalletRepository) List(ctx context.Context) ([]domain.Wallet, error) {
	ctx, span := r.tracer.Start(ctx, "wallet-repo.list")
	defer span.End()

	return r.query(ctx, `SELECT `+walletColumns+` FROM wallets ORDER BY created_at ASC, id ASC`)
}

func (r *WalletRepository) ListNewestFirst(ctx context.Context) ([]domain.Wallet, error) {
	ctx, span := r.tracer.Start(ctx, "wallet-repo.list-newest-first")
	defer span.End()

	return r.query(ctx, `SELECT `+walletColumns+` FROM wallets ORDER BY created_at DESC, id DESC`)
}

func (r *WalletRepository) Count(ctx context.Context) (int, error) {
	ctx, span := r.tracer.Start(ctx, "wallet-repo.count")
	defer span.End()

	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM wallets`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count wallets: %w", err)
	}
	return n, nil
}

func (r *WalletRepository) TouchLastCheck(ctx context.Context, id int64, at time.Time) error {
	ctx, span := r.tracer.Start(ctx, "wallet-repo.touch-last-check")
	defer span.End()

	tag, err := r.pool.Exec(ctx,
		`UPDATE wallets SET last_balance_check = $2, updated_at = NOW() WHERE id = $1`,
		id, at,
	)
	if err != nil {
		return fmt.Errorf("update last balance check: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *WalletRepository) GetByAddress(ctx context.Context, address string) (*domain.Wallet, error) {
	ctx, span := r.tracer.Start(ctx, "wallet-repo.get-by-address")
	defer span.End()

	w, err := scanWallet(r.pool.QueryRow(ctx,
		`SELECT `+walletColumns+` FROM wallets WHERE wallet_destination = $1`,
		address,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get wallet by address: %w", err)
	}
	return &w, nil
}

func (r *WalletRepository) query(ctx context.Context, sql string, args ...any) ([]domain.Wallet, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query wallets: %w", err)
	}
	defer rows.Close()

	var wallets []domain.Wallet
	for rows.Next() {
		w, err := scanWallet(rows)
		if err != nil {
			return nil, fmt.Errorf("scan wallet: %w", err)
		}
		wallets = append(wallets, w)
	}
	return wallets, rows.Err()
}

func scanWallet(row pgx.Row) (domain.Wallet, error) {
	var w domain.Wallet
	err := row.Scan(
		&w.ID, &w.Project, &w.UserID, &w.Type, &w.Alias, &w.Address, &w.LastTransaction,
		&w.LegacyBalance, &w.LastBalanceCheck, &w.CreatedAt, &w.UpdatedAt,
	)
	return w, err
}
