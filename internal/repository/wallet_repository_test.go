package repository

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"tron-balance-bot/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
)

var created = time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)

func walletRow(id int64, address string, legacy any) []any {
	return []any{id, "Auf", int64(42), "hot", "treasury", address, "2025-01-31", legacy, nil, created, created}
}

func TestWalletCreate(t *testing.T) {
	pool := &fakePool{results: [][][]any{{{int64(7), created, created}}}}
	repo := NewWalletRepository(pool, testTracer)

	w := &domain.Wallet{Project: "Auf", UserID: 42, Type: "hot", Address: "TAddr"}
	if err := repo.Create(context.Background(), w); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.ID != 7 || !w.CreatedAt.Equal(created) {
		t.Fatalf("expected generated fields, got %+v", w)
	}
	if got := pool.calls[0].args[4]; got != "TAddr" {
		t.Fatalf("expected address as fifth argument, got %v", got)
	}
}

func TestWalletCreateDuplicate(t *testing.T) {
	pool := &fakePool{errs: []error{&pgconn.PgError{Code: "23505", ConstraintName: "wallets_wallet_destination_key"}}}
	repo := NewWalletRepository(pool, testTracer)

	err := repo.Create(context.Background(), &domain.Wallet{Address: "TAddr"})
	if !errors.Is(err, domain.ErrDuplicateWallet) {
		t.Fatalf("expected ErrDuplicateWallet, got %v", err)
	}
}

func TestWalletCreateOtherError(t *testing.T) {
	pool := &fakePool{errs: []error{errors.New("connection reset")}}
	repo := NewWalletRepository(pool, testTracer)

	err := repo.Create(context.Background(), &domain.Wallet{Address: "TAddr"})
	if err == nil || errors.Is(err, domain.ErrDuplicateWallet) {
		t.Fatalf("expected wrapped insert error, got %v", err)
	}
}

func TestWalletList(t *testing.T) {
	pool := &fakePool{results: [][][]any{{
		walletRow(1, "TOne", nil),
		walletRow(2, "TTwo", 150.5),
	}}}
	repo := NewWalletRepository(pool, testTracer)

	wallets, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(wallets) != 2 {
		t.Fatalf("expected 2 wallets, got %d", len(wallets))
	}
	if wallets[0].LegacyBalance != nil {
		t.Fatalf("expected nil legacy balance, got %v", *wallets[0].LegacyBalance)
	}
	if wallets[1].LegacyBalance == nil || *wallets[1].LegacyBalance != 150.5 {
		t.Fatalf("expected legacy balance 150.5, got %v", wallets[1].LegacyBalance)
	}
	if !strings.Contains(pool.calls[0].sql, "ORDER BY created_at ASC") {
		t.Fatalf("expected creation order, got %s", pool.calls[0].sql)
	}
}

func TestWalletListNewestFirst(t *testing.T) {
	pool := &fakePool{results: [][][]any{{walletRow(2, "TTwo", nil)}}}
	repo := NewWalletRepository(pool, testTracer)

	if _, err := repo.ListNewestFirst(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(pool.calls[0].sql, "ORDER BY created_at DESC") {
		t.Fatalf("expected newest first, got %s", pool.calls[0].sql)
	}
}

func TestWalletGetByAddressNotFound(t *testing.T) {
	repo := NewWalletRepository(&fakePool{}, testTracer)

	if _, err := repo.GetByAddress(context.Background(), "TMissing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestWalletGetByAddress(t *testing.T) {
	pool := &fakePool{results: [][][]any{{walletRow(3, "TThree", nil)}}}
	repo := NewWalletRepository(pool, testTracer)

	w, err := repo.GetByAddress(context.Background(), "TThree")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.ID != 3 || w.Address != "TThree" || w.UserID != 42 {
		t.Fatalf("unexpected wallet %+v", w)
	}
}

func TestWalletTouchLastCheck(t *testing.T) {
	pool := &fakePool{execTag: pgconn.NewCommandTag("UPDATE 1")}
	repo := NewWalletRepository(pool, testTracer)

	if err := repo.TouchLastCheck(context.Background(), 1, created); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pool.execTag = pgconn.NewCommandTag("UPDATE 0")
	if err := repo.TouchLastCheck(context.Background(), 99, created); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestWalletCount(t *testing.T) {
	pool := &fakePool{results: [][][]any{{{5}}}}
	repo := NewWalletRepository(pool, testTracer)

	n, err := repo.Count(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 5 {
		t.Fatalf("expected 5, got %d", n)
	}
}
