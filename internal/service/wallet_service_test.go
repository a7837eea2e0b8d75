package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"tron-balance-bot/internal/domain"
)

func TestParseWalletInput(t *testing.T) {
	text := "Auf\n42\nhot\n\n  treasury  \nTBCKdBWiWG41oSSq4K4q5zcp56ya1V8xSy\n2025-02-01\n"
	w, err := ParseWalletInput(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.Project != "Auf" || w.UserID != 42 || w.Type != "hot" || w.Alias != "treasury" {
		t.Fatalf("unexpected wallet %+v", w)
	}
	if w.Address != "TBCKdBWiWG41oSSq4K4q5zcp56ya1V8xSy" || w.LastTransaction != "2025-02-01" {
		t.Fatalf("unexpected wallet %+v", w)
	}
}

func TestParseWalletInputErrors(t *testing.T) {
	cases := map[string]string{
		"too few lines": "Auf\n42\nhot",
		"bad user id":   "Auf\nabc\nhot\nalias\nTaddr\nlast",
		"blank lines":   "Auf\n42\n \nalias\n\nlast\nmore",
	}
	for name, text := range cases {
		_, err := ParseWalletInput(text)
		if !errors.Is(err, ErrInvalidWalletInput) {
			t.Fatalf("%s: expected ErrInvalidWalletInput, got %v", name, err)
		}
	}
}

func TestAddWalletDuplicate(t *testing.T) {
	store := newMemWalletStore(domain.Wallet{Project: "Auf", Type: "hot", Address: "TExisting"})
	svc := NewWalletService(testTracer, nil, store, &memHistoryStore{}, 100)
	ctx := context.Background()

	if _, err := svc.AddWallet(ctx, domain.Wallet{Project: "Auf", Type: "hot", Address: " TExisting "}); !errors.Is(err, ErrDuplicateWallet) {
		t.Fatalf("expected ErrDuplicateWallet, got %v", err)
	}

	added, err := svc.AddWallet(ctx, domain.Wallet{Project: " Beta ", Type: "cold", Address: "TNew"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if added.ID == 0 || added.Project != "Beta" {
		t.Fatalf("unexpected wallet %+v", added)
	}
	if n, _ := svc.Count(ctx); n != 2 {
		t.Fatalf("expected 2 wallets, got %d", n)
	}
}

func TestAddWalletValidation(t *testing.T) {
	svc := NewWalletService(testTracer, nil, newMemWalletStore(), &memHistoryStore{}, 100)
	if _, err := svc.AddWallet(context.Background(), domain.Wallet{Project: "Auf", Type: "hot"}); !errors.Is(err, ErrInvalidWalletInput) {
		t.Fatalf("expected ErrInvalidWalletInput, got %v", err)
	}
}

func TestAddWalletStoreError(t *testing.T) {
	store := newMemWalletStore()
	store.createErr = errors.New("db down")
	svc := NewWalletService(testTracer, nil, store, &memHistoryStore{}, 100)

	_, err := svc.AddWallet(context.Background(), domain.Wallet{Project: "Auf", Type: "hot", Address: "TNew"})
	if err == nil || errors.Is(err, ErrDuplicateWallet) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}

func TestWalletsPageFiltersByThreshold(t *testing.T) {
	store := newMemWalletStore(
		domain.Wallet{Address: "TSmall"},
		domain.Wallet{Address: "TLegacy", LegacyBalance: floatPtr(250)},
		domain.Wallet{Address: "TRich"},
		domain.Wallet{Address: "TNever"},
	)
	history := &memHistoryStore{}
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC)
	_ = history.Record(ctx, &domain.BalanceHistory{WalletID: 1, BalanceUSD: 99, CheckedAt: base})
	_ = history.Record(ctx, &domain.BalanceHistory{WalletID: 3, BalanceUSD: 800, CheckedAt: base})
	_ = history.Record(ctx, &domain.BalanceHistory{WalletID: 3, BalanceUSD: 1000, CheckedAt: base.Add(time.Hour)})

	svc := NewWalletService(testTracer, nil, store, history, 100)
	page, err := svc.WalletsPage(ctx, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.TotalWallets != 4 || page.Matching != 2 || page.TotalPages != 1 {
		t.Fatalf("unexpected page %+v", page)
	}

	rich := page.Entries[0]
	if rich.Wallet.Address != "TRich" || rich.Index != 1 || !rich.FromHistory {
		t.Fatalf("expected newest wallet first, got %+v", rich)
	}
	if rich.PreviousUSD == nil || *rich.PreviousUSD != 800 || rich.DeltaUSD == nil || *rich.DeltaUSD != 200 || *rich.DeltaPercent != 25 {
		t.Fatalf("expected change against second latest record, got %+v", rich)
	}

	legacy := page.Entries[1]
	if legacy.Wallet.Address != "TLegacy" || legacy.FromHistory || legacy.CurrentUSD != 250 || legacy.DeltaUSD != nil {
		t.Fatalf("unexpected legacy entry %+v", legacy)
	}
	if page.LastCheckedAt == nil || !page.LastCheckedAt.Equal(base.Add(time.Hour)) {
		t.Fatalf("expected last check from history, got %v", page.LastCheckedAt)
	}
}

func TestWalletsPageStoredPreviousAndFirstCheck(t *testing.T) {
	store := newMemWalletStore(domain.Wallet{Address: "TOne"}, domain.Wallet{Address: "TTwo"})
	history := &memHistoryStore{}
	ctx := context.Background()
	_ = history.Record(ctx, &domain.BalanceHistory{WalletID: 1, BalanceUSD: 300, PreviousBalanceUSD: floatPtr(400)})
	_ = history.Record(ctx, &domain.BalanceHistory{WalletID: 2, BalanceUSD: 500})

	svc := NewWalletService(testTracer, nil, store, history, 100)
	page, err := svc.WalletsPage(ctx, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	byAddr := make(map[string]WalletEntry)
	for _, e := range page.Entries {
		byAddr[e.Wallet.Address] = e
	}

	one := byAddr["TOne"]
	if one.DeltaUSD == nil || *one.DeltaUSD != -100 || *one.DeltaPercent != -25 {
		t.Fatalf("expected -100 / -25%%, got %+v", one)
	}
	if !byAddr["TTwo"].FirstCheck {
		t.Fatalf("expected first check marker, got %+v", byAddr["TTwo"])
	}
}

func TestWalletsPagePagination(t *testing.T) {
	var wallets []domain.Wallet
	for i := 0; i < 23; i++ {
		wallets = append(wallets, domain.Wallet{Address: fmt.Sprintf("TWallet%02d", i), LegacyBalance: floatPtr(1000)})
	}
	svc := NewWalletService(testTracer, nil, newMemWalletStore(wallets...), &memHistoryStore{}, 100)
	ctx := context.Background()

	page, err := svc.WalletsPage(ctx, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.TotalPages != 3 || page.Page != 2 || len(page.Entries) != 3 {
		t.Fatalf("unexpected last page %+v", page)
	}
	if page.Entries[0].Index != 21 {
		t.Fatalf("expected running index 21, got %d", page.Entries[0].Index)
	}

	clamped, _ := svc.WalletsPage(ctx, 9)
	if clamped.Page != 2 {
		t.Fatalf("expected page clamped to 2, got %d", clamped.Page)
	}
	first, _ := svc.WalletsPage(ctx, -1)
	if first.Page != 0 || len(first.Entries) != WalletsPerPage {
		t.Fatalf("expected first full page, got %+v", first)
	}
}

func TestWalletsPageEmpty(t *testing.T) {
	svc := NewWalletService(testTracer, nil, newMemWalletStore(domain.Wallet{Address: "TZero"}), &memHistoryStore{}, 100)
	page, err := svc.WalletsPage(context.Background(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Matching != 0 || len(page.Entries) != 0 || page.TotalWallets != 1 {
		t.Fatalf("unexpected page %+v", page)
	}
}
