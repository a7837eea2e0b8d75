package domain

import "time"

type ChainType string

const (
	ChainTron     ChainType = "TRON"
	ChainEthereum ChainType = "ETHEREUM"
	ChainBitcoin  ChainType = "BITCOIN"
	ChainUnknown  ChainType = "UNKNOWN"
)

// USDTContract is the TRC20 Tether contract tracked separately in history records.
const USDTContract = "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t"

// Wallet is a tracked address and the bookkeeping fields entered with it.
type Wallet struct {
	ID               int64      `json:"id"`
	Project          string     `json:"project"`
	UserID           int64      `json:"user_id"`
	Type             string     `json:"type"`
	Alias            string     `json:"alias"`
	Address          string     `json:"wallet_destination"`
	LastTransaction  string     `json:"last_transaction"`
	LegacyBalance    *float64   `json:"balance,omitempty"`
	LastBalanceCheck *time.Time `json:"last_balance_check,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// BalanceHistory is one persisted valuation of a wallet.
type BalanceHistory struct {
	ID                 int64     `json:"id"`
	WalletID           int64     `json:"wallet_id"`
	Address            string    `json:"wallet_destination"`
	BalanceUSD         float64   `json:"balance"`
	PreviousBalanceUSD *float64  `json:"previous_balance,omitempty"`
	BalanceNative      float64   `json:"balance_trx"`
	BalanceUSDT        float64   `json:"balance_usdt"`
	CheckedAt          time.Time `json:"checked_at"`
}

// WalletResult is the per-wallet line of a run summary.
type WalletResult struct {
	WalletID         int64    `json:"wallet_id"`
	Address          string   `json:"address"`
	Project          string   `json:"project"`
	Success          bool     `json:"success"`
	Error            string   `json:"error,omitempty"`
	CurrentUSD       float64  `json:"current_usd"`
	PreviousUSD      *float64 `json:"previous_usd,omitempty"`
	DeltaUSD         *float64 `json:"delta_usd,omitempty"`
	DeltaPercent     *float64 `json:"delta_percent,omitempty"`
	IsFirstValuation bool     `json:"is_first_valuation"`
}

// RunSummary is what a full check hands to notifiers.
type RunSummary struct {
	WalletsChecked   int            `json:"wallets_checked"`
	SuccessCount     int            `json:"success_count"`
	ErrorCount       int            `json:"error_count"`
	TotalUSD         float64        `json:"total_usd"`
	PreviousTotalUSD float64        `json:"previous_total_usd"`
	StartedAt        time.Time      `json:"started_at"`
	FinishedAt       time.Time      `json:"finished_at"`
	Wallets          []WalletResult `json:"wallets"`
}

// NetAssets is the sum of the latest recorded balance of every wallet.
type NetAssets struct {
	TotalUSD      float64    `json:"total_usd"`
	WalletCount   int        `json:"wallet_count"`
	LastCheckedAt *time.Time `json:"last_checked_at,omitempty"`
}
