// Package tui is the interactive ATM front end. It renders the account list,
// a masked PIN prompt and the transaction menu, and forwards every action to
// the terminal core. The UI holds no balances or limits of its own.
package tui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"secureatm/internal/bank"
	"secureatm/internal/hygiene"
	"secureatm/internal/session"
	"secureatm/internal/terminal"
)

// ATM is the subset of *terminal.Terminal the UI drives.
type ATM interface {
	Accounts() []terminal.AccountSummary
	Login(account, pin string) (session.Info, error)
	Logout()
	Alive() error
	Balance() (decimal.Decimal, error)
	History() ([]bank.Transaction, error)
	Withdraw(amount decimal.Decimal) (bank.Transaction, error)
	Transfer(target string, amount decimal.Decimal) (bank.Transaction, error)
}

type screen int

const (
	screenAccounts screen = iota
	screenPIN
	screenMenu
	screenTarget
	screenAmount
	screenHistory
)

type menuItem struct {
	key   string
	label string
}

var menuItems = []menuItem{
	{"1", "Balance"},
	{"2", "Withdraw"},
	{"3", "Transfer"},
	{"4", "History"},
	{"5", "Logout"},
}

// loginResultMsg carries the outcome of a PIN check. Hashing is slow enough
// that it runs as a command instead of inside Update.
type loginResultMsg struct {
	account string
	info    session.Info
	err     error
}

// App is the root Bubbletea model.
type App struct {
	atm      ATM
	screen   screen
	accounts []terminal.AccountSummary
	cursor   int

	account string
	pin     []byte
	pinLen  int
	busy    bool

	op      string // bank.TypeWithdrawal or bank.TypeTransfer
	target  string
	amount  string
	history []bank.Transaction

	status string
	err    error
	width  int
	height int
}

// NewApp creates the UI over atm.
func NewApp(atm ATM) App {
	return App{
		atm:      atm,
		accounts: atm.Accounts(),
		pin:      make([]byte, hygiene.PINLength),
	}
}

func (a App) Init() tea.Cmd {
	return nil
}

func (a App) loginCmd(account, pin string) tea.Cmd {
	atm := a.atm
	return func() tea.Msg {
		info, err := atm.Login(account, pin)
		return loginResultMsg{account: account, info: info, err: err}
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case loginResultMsg:
		a.busy = false
		if msg.err != nil {
			a.err = msg.err
			a.status = ""
			if errors.Is(msg.err, bank.ErrAccountLocked) {
				a.screen = screenAccounts
			}
			return a, nil
		}
		a.err = nil
		a.status = fmt.Sprintf("Welcome. Session started for %s.", msg.account)
		a.screen = screenMenu
		a.cursor = 0
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a.quit()
		}
		switch a.screen {
		case screenAccounts:
			return a.updateAccounts(msg)
		case screenPIN:
			return a.updatePIN(msg)
		case screenMenu:
			return a.updateMenu(msg)
		case screenTarget:
			return a.updateTarget(msg)
		case screenAmount:
			return a.updateAmount(msg)
		case screenHistory:
			return a.updateHistory(msg)
		}
	}
	return a, nil
}

func (a App) quit() (tea.Model, tea.Cmd) {
	hygiene.Wipe(a.pin)
	a.pinLen = 0
	return a, tea.Quit
}

func (a App) updateAccounts(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return a.quit()
	case "j", "down":
		if a.cursor < len(a.accounts)-1 {
			a.cursor++
		}
	case "k", "up":
		if a.cursor > 0 {
			a.cursor--
		}
	case "enter":
		if len(a.accounts) == 0 {
			return a, nil
		}
		a.account = a.accounts[a.cursor].Number
		a.resetPIN()
		a.err = nil
		a.status = ""
		a.screen = screenPIN
	}
	return a, nil
}

func (a App) updatePIN(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.busy {
		return a, nil
	}
	switch msg.String() {
	case "esc":
		a.resetPIN()
		a.err = nil
		a.screen = screenAccounts
		return a, nil
	case "enter":
		pin := string(a.pin[:a.pinLen])
		a.resetPIN()
		a.busy = true
		return a, a.loginCmd(a.account, pin)
	}
	a.pinLen = editPIN(a.pin, a.pinLen, msg.String())
	return a, nil
}

func (a *App) resetPIN() {
	hygiene.Wipe(a.pin)
	a.pinLen = 0
}

func (a App) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	choice := ""
	switch msg.String() {
	case "j", "down":
		if a.cursor < len(menuItems)-1 {
			a.cursor++
		}
		return a, nil
	case "k", "up":
		if a.cursor > 0 {
			a.cursor--
		}
		return a, nil
	case "enter":
		choice = menuItems[a.cursor].key
	case "1", "2", "3", "4", "5":
		choice = msg.String()
	case "esc":
		choice = "5"
	default:
		return a, nil
	}

	if choice == "5" {
		a.atm.Logout()
		return a.loggedOut("Logged out."), nil
	}
	if err := a.atm.Alive(); err != nil {
		return a.fail(err), nil
	}

	a.err = nil
	a.status = ""
	switch choice {
	case "1":
		bal, err := a.atm.Balance()
		if err != nil {
			return a.fail(err), nil
		}
		a.status = "Balance: " + amountStyle.Render(bal.StringFixed(2))
	case "2":
		a.op = bank.TypeWithdrawal
		a.amount = ""
		a.screen = screenAmount
	case "3":
		a.op = bank.TypeTransfer
		a.target = ""
		a.amount = ""
		a.screen = screenTarget
	case "4":
		h, err := a.atm.History()
		if err != nil {
			return a.fail(err), nil
		}
		a.history = h
		a.screen = screenHistory
	}
	return a, nil
}

func (a App) updateTarget(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.screen = screenMenu
	case "enter":
		if a.target == "" {
			return a, nil
		}
		a.screen = screenAmount
	default:
		a.target = editTarget(a.target, msg.String())
	}
	return a, nil
}

func (a App) updateAmount(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.screen = screenMenu
		return a, nil
	case "enter":
	default:
		a.amount = editAmount(a.amount, msg.String())
		return a, nil
	}

	amount, err := terminal.ParseAmount(a.amount)
	if err != nil {
		a.err = err
		return a, nil
	}
	var tx bank.Transaction
	if a.op == bank.TypeTransfer {
		tx, err = a.atm.Transfer(a.target, amount)
	} else {
		tx, err = a.atm.Withdraw(amount)
	}
	if err != nil {
		if errors.Is(err, bank.ErrSessionTimeout) || a.atm.Alive() != nil {
			return a.fail(err), nil
		}
		a.err = err
		a.screen = screenMenu
		return a, nil
	}
	a.err = nil
	a.status = tx.Details + " " + metaStyle.Render("("+tx.ID[:8]+")")
	a.screen = screenMenu
	return a, nil
}

func (a App) updateHistory(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter", "q":
		a.history = nil
		a.screen = screenMenu
	}
	return a, nil
}

// fail drops back to the account list and shows err. Callers use it once the
// session is known to be gone.
func (a App) fail(err error) App {
	a = a.loggedOut("")
	a.err = err
	return a
}

func (a App) loggedOut(status string) App {
	a.screen = screenAccounts
	a.cursor = 0
	a.account = ""
	a.target = ""
	a.amount = ""
	a.history = nil
	a.err = nil
	a.status = status
	return a
}

func (a App) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("S E C U R E   A T M"))
	b.WriteString("\n\n")

	var body, help string
	switch a.screen {
	case screenAccounts:
		body = a.viewAccounts()
		help = helpEntry("j/k", "select") + "  " + helpEntry("enter", "login") + "  " + helpEntry("q", "quit")
	case screenPIN:
		body = a.viewPIN()
		help = helpEntry("0-9", "digit") + "  " + helpEntry("enter", "submit") + "  " + helpEntry("esc", "back")
	case screenMenu:
		body = a.viewMenu()
		help = helpEntry("1-5", "choose") + "  " + helpEntry("j/k", "nav") + "  " + helpEntry("esc", "logout")
	case screenTarget:
		body = inputLine("Transfer to account", a.target, "ACC-1002")
		help = helpEntry("enter", "next") + "  " + helpEntry("esc", "cancel")
	case screenAmount:
		body = a.viewAmount()
		help = helpEntry("enter", "confirm") + "  " + helpEntry("esc", "cancel")
	case screenHistory:
		body = a.viewHistory()
		help = helpEntry("esc", "back")
	}

	b.WriteString(boxStyle.Render(body))
	b.WriteString("\n")
	if a.err != nil {
		b.WriteString(errorStyle.Render(bank.Kind(a.err)) + " " + dimStyle.Render(a.err.Error()) + "\n")
	} else if a.status != "" {
		b.WriteString(normalStyle.Render(a.status) + "\n")
	} else {
		b.WriteString("\n")
	}
	b.WriteString(help)
	return b.String()
}

func (a App) viewAccounts() string {
	if len(a.accounts) == 0 {
		return dimStyle.Render("no accounts configured")
	}
	lines := []string{dimStyle.Render("Select account")}
	for i, acct := range a.accounts {
		lines = append(lines, cursorRow(fmt.Sprintf("%-10s %s", acct.Number, acct.Name), i == a.cursor))
	}
	return strings.Join(lines, "\n")
}

func (a App) viewPIN() string {
	s := dimStyle.Render("Account ") + selectedStyle.Render(a.account) + "\n"
	s += inputPromptStyle.Render("PIN > ") + accentStyle.Render(maskPIN(a.pinLen))
	if a.busy {
		s += "\n" + metaStyle.Render("verifying...")
	}
	return s
}

func (a App) viewMenu() string {
	lines := []string{dimStyle.Render("Account ") + selectedStyle.Render(a.account)}
	for i, item := range menuItems {
		lines = append(lines, cursorRow(item.key+"  "+item.label, i == a.cursor))
	}
	return strings.Join(lines, "\n")
}

func (a App) viewAmount() string {
	label := "Withdraw amount"
	if a.op == bank.TypeTransfer {
		label = "Transfer amount to " + a.target
	}
	return inputLine(label, a.amount, "0.00")
}

func (a App) viewHistory() string {
	if len(a.history) == 0 {
		return dimStyle.Render("no transactions")
	}
	lines := make([]string, 0, len(a.history))
	for _, tx := range a.history {
		lines = append(lines, fmt.Sprintf("%s  %-10s %s  %s",
			metaStyle.Render(tx.Time.Format("15:04:05")),
			tx.Type,
			amountStyle.Render(fmt.Sprintf("%10s", tx.Amount.StringFixed(2))),
			dimStyle.Render(tx.Details)))
	}
	return strings.Join(lines, "\n")
}

func inputLine(label, value, placeholder string) string {
	s := dimStyle.Render(label) + "\n" + inputPromptStyle.Render("> ")
	if value == "" {
		return s + inputPlaceholderStyle.Render(placeholder)
	}
	return s + selectedStyle.Render(value)
}
