// Package tui is the terminal dashboard served over SSH: net assets, the
// paginated wallet list and ad-hoc address valuation.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tron-balance-bot/internal/domain"
	"tron-balance-bot/internal/service"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const requestTimeout = 20 * time.Second

type WalletPager interface {
	WalletsPage(ctx context.Context, page int) (*service.WalletPage, error)
}

type BalanceReader interface {
	NetAssets(ctx context.Context) (*domain.NetAssets, error)
	CheckAddress(ctx context.Context, address string) (*service.AddressCheck, error)
}

type Services struct {
	Wallets  WalletPager
	Balances BalanceReader
	Username string
}

type screen int

const (
	screenWallets screen = iota
	screenCheck
)

type pageLoadedMsg struct {
	page *service.WalletPage
	err  error
}

type assetsLoadedMsg struct {
	assets *domain.NetAssets
	err    error
}

type checkDoneMsg struct {
	check *service.AddressCheck
	err   error
}

type AppModel struct {
	svc    Services
	screen screen
	width  int
	height int

	page     *service.WalletPage
	pageNum  int
	pageErr  error
	assets   *domain.NetAssets
	loading  bool
	input    textinput.Model
	check    *service.AddressCheck
	checkErr error
	checking bool
}

func NewAppModel(svc Services) *AppModel {
	ti := textinput.New()
	ti.Placeholder = "T... address"
	ti.CharLimit = 64
	ti.Width = 40
	return &AppModel{svc: svc, input: ti, width: 80, height: 24}
}

func (m *AppModel) SetSize(width, height int) {
	if width > 0 {
		m.width = width
		m.input.Width = min(40, max(width-10, 10))
	}
	if height > 0 {
		m.height = height
	}
}

func (m *AppModel) Init() tea.Cmd {
	m.loading = true
	return tea.Batch(m.loadPage(m.pageNum), m.loadAssets())
}

func (m *AppModel) loadPage(page int) tea.Cmd {
	wallets := m.svc.Wallets
	return func() tea.Msg {
		if wallets == nil {
			return pageLoadedMsg{err: fmt.Errorf("database unavailable")}
		}
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		p, err := wallets.WalletsPage(ctx, page)
		return pageLoadedMsg{page: p, err: err}
	}
}

func (m *AppModel) loadAssets() tea.Cmd {
	balances := m.svc.Balances
	return func() tea.Msg {
		if balances == nil {
			return assetsLoadedMsg{err: fmt.Errorf("database unavailable")}
		}
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		a, err := balances.NetAssets(ctx)
		return assetsLoadedMsg{assets: a, err: err}
	}
}

func (m *AppModel) runCheck(address string) tea.Cmd {
	balances := m.svc.Balances
	return func() tea.Msg {
		if balances == nil {
			return checkDoneMsg{err: fmt.Errorf("balance service unavailable")}
		}
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		c, err := balances.CheckAddress(ctx, address)
		return checkDoneMsg{check: c, err: err}
	}
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case pageLoadedMsg:
		m.loading = false
		m.pageErr = msg.err
		if msg.err == nil && msg.page != nil {
			m.page = msg.page
			m.pageNum = msg.page.Page
		}
		return m, nil

	case assetsLoadedMsg:
		if msg.err == nil {
			m.assets = msg.assets
		}
		return m, nil

	case checkDoneMsg:
		m.checking = false
		m.check, m.checkErr = msg.check, msg.err
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.screen == screenCheck {
			return m.updateCheck(msg)
		}
		return m.updateWallets(msg)
	}
	return m, nil
}

func (m *AppModel) updateWallets(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "right", "l", "n":
		if m.page != nil && m.pageNum < m.page.TotalPages-1 {
			m.loading = true
			return m, m.loadPage(m.pageNum + 1)
		}
	case "left", "h", "p":
		if m.pageNum > 0 {
			m.loading = true
			return m, m.loadPage(m.pageNum - 1)
		}
	case "r":
		m.loading = true
		return m, tea.Batch(m.loadPage(m.pageNum), m.loadAssets())
	case "c":
		m.screen = screenCheck
		m.input.Reset()
		m.check, m.checkErr = nil, nil
		return m, m.input.Focus()
	}
	return m, nil
}

func (m *AppModel) updateCheck(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.screen = screenWallets
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		address := strings.TrimSpace(m.input.Value())
		if address == "" || m.checking {
			return m, nil
		}
		m.checking = true
		m.check, m.checkErr = nil, nil
		return m, m.runCheck(address)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *AppModel) View() string {
	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n\n")
	if m.screen == screenCheck {
		b.WriteString(m.checkView())
	} else {
		b.WriteString(m.walletsView())
	}
	b.WriteString("\n")
	b.WriteString(m.helpLine())
	return b.String()
}
