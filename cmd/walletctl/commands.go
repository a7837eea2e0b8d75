package main

import (
	"errors"
	"fmt"
	"io"

	"tron-balance-bot/internal/domain"
	"tron-balance-bot/internal/service"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var errNoDatabase = errors.New("this command needs a database, set --database-url or DATABASE_URL")

func newCheckCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "check <address>",
		Short: "Value one address without recording history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tk, err := openToolkit(cmd, v)
			if err != nil {
				return err
			}
			defer tk.close()

			check, err := tk.checks.CheckAddress(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printCheck(cmd.OutOrStdout(), check)
			return nil
		},
	}
}

func newRunCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run one full balance check over every stored wallet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tk, err := openToolkit(cmd, v)
			if err != nil {
				return err
			}
			defer tk.close()
			if tk.wallets == nil {
				return errNoDatabase
			}

			summary, err := tk.checks.RunFullCheck(cmd.Context())
			if summary != nil {
				printSummary(cmd.OutOrStdout(), summary)
			}
			return err
		},
	}
}

func newWalletsCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "wallets",
		Short: "List stored wallets with their latest valuation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tk, err := openToolkit(cmd, v)
			if err != nil {
				return err
			}
			defer tk.close()
			if tk.wallets == nil || tk.history == nil {
				return errNoDatabase
			}

			wallets, err := tk.wallets.ListNewestFirst(cmd.Context())
			if err != nil {
				return err
			}
			latest, err := tk.history.LatestPerWallet(cmd.Context())
			if err != nil {
				return err
			}
			printWallets(cmd.OutOrStdout(), wallets, latest)
			return nil
		},
	}
}

func printCheck(w io.Writer, check *service.AddressCheck) {
	fmt.Fprintf(w, "Address: %s\n", check.Address)
	fmt.Fprintf(w, "Chain:   %s\n", check.Fetch.Chain)
	val := check.Valuation
	if val == nil {
		return
	}
	fmt.Fprintf(w, "Native:  %.6f TRX @ $%.4f\n", val.NativeBalance, val.NativePrice)
	for _, tv := range val.PerToken {
		fmt.Fprintf(w, "  %-10s %18.6f x $%-12.6f = $%.2f\n", tv.Token.Symbol, tv.Token.Balance, tv.UnitPrice, tv.ValueUSD)
	}
	fmt.Fprintf(w, "Total:   $%.2f\n", val.TotalUSD)
	switch {
	case val.IsFirstValuation:
		fmt.Fprintln(w, "Change:  first valuation")
	case val.DeltaUSD != nil && val.DeltaPercent != nil:
		fmt.Fprintf(w, "Change:  %+.2f USD (%+.2f%%)\n", *val.DeltaUSD, *val.DeltaPercent)
	case val.DeltaUSD != nil:
		fmt.Fprintf(w, "Change:  %+.2f USD\n", *val.DeltaUSD)
	}
}

func printSummary(w io.Writer, s *domain.RunSummary) {
	fmt.Fprintf(w, "Wallets checked: %d (ok %d, failed %d)\n", s.WalletsChecked, s.SuccessCount, s.ErrorCount)
	fmt.Fprintf(w, "Net assets:      $%.2f\n", s.TotalUSD)
	fmt.Fprintf(w, "Previous:        $%.2f\n", s.PreviousTotalUSD)
	for _, r := range s.Wallets {
		if !r.Success {
			fmt.Fprintf(w, "  FAIL %s %s: %s\n", r.Project, r.Address, r.Error)
		}
	}
}

func printWallets(w io.Writer, wallets []domain.Wallet, latest map[int64]domain.BalanceHistory) {
	if len(wallets) == 0 {
		fmt.Fprintln(w, "No wallets stored.")
		return
	}
	for _, wallet := range wallets {
		balance := "never checked"
		if h, ok := latest[wallet.ID]; ok {
			balance = fmt.Sprintf("$%.2f at %s", h.BalanceUSD, h.CheckedAt.UTC().Format("2006-01-02 15:04"))
		}
		fmt.Fprintf(w, "%-6d %-12s %-36s %s\n", wallet.ID, wallet.Project, wallet.Address, balance)
	}
}
