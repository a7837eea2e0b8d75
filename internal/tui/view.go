package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	upStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	downStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func (m *AppModel) header() string {
	title := titleStyle.Render("TRON balance dashboard")
	user := mutedStyle.Render("user: " + m.svc.Username)
	net := mutedStyle.Render("net assets: n/a")
	if m.assets != nil {
		net = fmt.Sprintf("net assets: $%.2f across %d wallets", m.assets.TotalUSD, m.assets.WalletCount)
	}
	return lipgloss.JoinVertical(lipgloss.Left, title+"  "+user, net)
}

func (m *AppModel) walletsView() string {
	if m.loading && m.page == nil {
		return mutedStyle.Render("loading wallets...")
	}
	if m.pageErr != nil {
		return errStyle.Render("error: " + m.pageErr.Error())
	}
	p := m.page
	if p == nil || p.TotalWallets == 0 {
		return mutedStyle.Render("no wallets stored")
	}
	if p.Matching == 0 {
		return mutedStyle.Render(fmt.Sprintf("no wallets above $%.2f", p.MinBalance))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Wallets above $%.2f: %d  (page %d/%d)\n\n", p.MinBalance, p.Matching, p.Page+1, p.TotalPages)
	for _, e := range p.Entries {
		line := fmt.Sprintf("%3d. %-14s %-34s $%12.2f", e.Index, truncate(e.Wallet.Project, 14), e.Wallet.Address, e.CurrentUSD)
		switch {
		case e.DeltaUSD != nil && e.DeltaPercent != nil && *e.DeltaUSD >= 0:
			line += "  " + upStyle.Render(fmt.Sprintf("+%.2f (%+.2f%%)", *e.DeltaUSD, *e.DeltaPercent))
		case e.DeltaUSD != nil && e.DeltaPercent != nil:
			line += "  " + downStyle.Render(fmt.Sprintf("%.2f (%+.2f%%)", *e.DeltaUSD, *e.DeltaPercent))
		case e.FirstCheck:
			line += "  " + mutedStyle.Render("first check")
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (m *AppModel) checkView() string {
	var b strings.Builder
	b.WriteString("Value an address (enter to run, esc to go back)\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	switch {
	case m.checking:
		b.WriteString(mutedStyle.Render("checking..."))
	case m.checkErr != nil:
		b.WriteString(errStyle.Render("error: " + m.checkErr.Error()))
	case m.check != nil && m.check.Valuation != nil:
		v := m.check.Valuation
		var lines []string
		lines = append(lines, fmt.Sprintf("Chain:  %s", m.check.Fetch.Chain))
		lines = append(lines, fmt.Sprintf("Native: %.6f @ $%.4f", v.NativeBalance, v.NativePrice))
		for _, tv := range v.PerToken {
			lines = append(lines, fmt.Sprintf("  %-8s %16.4f  $%.2f", truncate(tv.Token.Symbol, 8), tv.Token.Balance, tv.ValueUSD))
		}
		lines = append(lines, titleStyle.Render(fmt.Sprintf("Total:  $%.2f", v.TotalUSD)))
		b.WriteString(boxStyle.Render(strings.Join(lines, "\n")))
	}
	return b.String()
}

func (m *AppModel) helpLine() string {
	if m.screen == screenCheck {
		return mutedStyle.Render("enter: check • esc: back • ctrl+c: quit")
	}
	return mutedStyle.Render("←/→: page • r: refresh • c: check address • q: quit")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
