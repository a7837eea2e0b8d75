package repository

import (
	"context"
	"errors"
	"fmt"

	"tron-balance-bot/internal/domain"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/trace"
)

const historyColumns = `id, wallet_id, wallet_destination, balance, previous_balance, balance_trx, balance_usdt, checked_at`

// HistoryRepository is append-only; rows are never updated.
type HistoryRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewHistoryRepository(pool PgxPool, tracer trace.Tracer) *HistoryRepository {
	return &HistoryRepository{pool: pool, tracer: tracer}
}

func (r *HistoryRepository) Record(ctx context.Context, entry *domain.BalanceHistory) error {
	ctx, span := r.tracer.Start(ctx, "history-repo.record")
	defer span.End()

	err := r.pool.QueryRow(ctx,
		`INSERT INTO balance_history (wallet_id, wallet_destination, balance, previous_balance, balance_trx, balance_usdt, checked_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		entry.WalletID, entry.Address, entry.BalanceUSD, entry.PreviousBalanceUSD,
		entry.BalanceNative, entry.BalanceUSDT, entry.CheckedAt,
	).Scan(&entry.ID)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("insert balance history: %w", err)
	}
	return nil
}

func (r *HistoryRepository) Latest(ctx context.Context, walletID int64) (*domain.BalanceHistory, error) {
	ctx, span := r.tracer.Start(ctx, "history-repo.latest")
	defer span.End()

	h, err := scanHistory(r.pool.QueryRow(ctx,
		`SELECT `+historyColumns+`
		 FROM balance_history
		 WHERE wallet_id = $1
		 ORDER BY checked_at DESC, id DESC
		 LIMIT 1`,
		walletID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("latest balance history: %w", err)
	}
	return &h, nil
}

// LatestTwo returns up to two records, newest first.
func (r *HistoryRepository) LatestTwo(ctx context.Context, walletID int64) ([]domain.BalanceHistory, error) {
	ctx, span := r.tracer.Start(ctx, "history-repo.latest-two")
	defer span.End()

	rows, err := r.pool.Query(ctx,
		`SELECT `+historyColumns+`
		 FROM balance_history
		 WHERE wallet_id = $1
		 ORDER BY checked_at DESC, id DESC
		 LIMIT 2`,
		walletID,
	)
	if err != nil {
		return nil, fmt.Errorf("query balance history: %w", err)
	}
	return collectHistory(rows)
}

func (r *HistoryRepository) LatestPerWallet(ctx context.Context) (map[int64]domain.BalanceHistory, error) {
	ctx, span := r.tracer.Start(ctx, "history-repo.latest-per-wallet")
	defer span.End()

	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT ON (wallet_id) `+historyColumns+`
		 FROM balance_history
		 ORDER BY wallet_id, checked_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query latest balances: %w", err)
	}
	records, err := collectHistory(rows)
	if err != nil {
		return nil, err
	}

	out := make(map[int64]domain.BalanceHistory, len(records))
	for _, h := range records {
		out[h.WalletID] = h
	}
	return out, nil
}

func collectHistory(rows pgx.Rows) ([]domain.BalanceHistory, error) {
	defer rows.Close()

	var records []domain.BalanceHistory
	for rows.Next() {
		h, err := scanHistory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan balance history: %w", err)
		}
		records = append(records, h)
	}
	return records, rows.Err()
}

func scanHistory(row pgx.Row) (domain.BalanceHistory, error) {
	var h domain.BalanceHistory
	err := row.Scan(
		&h.ID, &h.WalletID, &h.Address, &h.BalanceUSD, &h.PreviousBalanceUSD,
		&h.BalanceNative, &h.BalanceUSDT, &h.CheckedAt,
	)
	return h, err
}
