// internal/terminal/terminal.go

// Package terminal 將帳本、憑證庫、session 管理與稽核日誌組成單一終端機狀態，
// 並提供交易授權（提款、轉帳）。生命週期為 New → 操作 → Shutdown。
// 所有對外操作以一把互斥鎖序列化，單一操作的「檢查 → 套用 → 紀錄」不會被穿插。
package terminal

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"secureatm/internal/audit"
	"secureatm/internal/bank"
	"secureatm/internal/config"
	"secureatm/internal/credential"
	"secureatm/internal/hygiene"
	"secureatm/internal/session"
)

// ErrClosed 表示終端機已關閉。
var ErrClosed = errors.New("terminal closed")

// AccountSummary 為登入畫面顯示的帳戶資訊，不含餘額。
type AccountSummary struct {
	Name   string
	Number string
}

// Option 調整 Terminal 的可選行為。
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock 指定帳本與 session 的時間來源（測試用）。
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// Terminal 為終端機的完整狀態。
type Terminal struct {
	mu       sync.Mutex
	cfg      *config.Config
	ledger   *bank.Ledger
	creds    *credential.Store
	sessions *session.Manager
	journal  *audit.Journal
	logger   *zap.SugaredLogger
	closed   bool
}

// New 依設定開立帳戶並建立憑證；成功建立憑證後會清空 cfg.Accounts 內的明文 PIN。
func New(cfg *config.Config, logger *zap.SugaredLogger, opts ...Option) (*Terminal, error) {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	ledger := bank.NewLedger(bank.Limits{
		MaxAccounts:     cfg.Limits.MaxAccounts,
		MinBalance:      cfg.Limits.MinBalance,
		HistoryCapacity: cfg.Limits.MaxTransactionHistory,
	}, bank.WithClock(o.now))
	creds := credential.NewStore()

	for i, seed := range cfg.Accounts {
		balance, err := decimal.NewFromString(seed.Balance)
		if err != nil {
			creds.Wipe()
			return nil, fmt.Errorf("account %s: %w: malformed balance", seed.Number, bank.ErrInvalidInput)
		}
		if _, err := ledger.Open(seed.Name, seed.Number, balance); err != nil {
			creds.Wipe()
			return nil, fmt.Errorf("account %s: %w", seed.Number, err)
		}
		if err := creds.Provision(seed.Number, seed.PIN); err != nil {
			creds.Wipe()
			return nil, fmt.Errorf("account %s: %w", seed.Number, err)
		}
		// 只保留雜湊後的憑證
		cfg.Accounts[i].PIN = ""
	}

	t := &Terminal{
		cfg:      cfg,
		ledger:   ledger,
		creds:    creds,
		sessions: session.NewManager(ledger, creds, cfg.Limits, logger, session.WithClock(o.now)),
		journal:  audit.NewJournal(cfg.AuditCapacity, logger),
		logger:   logger,
	}
	logger.Infow("terminal initialized", "accounts", len(cfg.Accounts))
	return t, nil
}

// Accounts 列出可登入的帳戶。
func (t *Terminal) Accounts() []AccountSummary {
	accts := t.ledger.List()
	out := make([]AccountSummary, 0, len(accts))
	for _, a := range accts {
		out = append(out, AccountSummary{Name: a.Name, Number: a.Number})
	}
	return out
}

// Login 驗證 PIN 並開啟 session。
func (t *Terminal) Login(account, pin string) (session.Info, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return session.Info{}, ErrClosed
	}
	if !hygiene.ValidateFormat(account, hygiene.KindAccountNumber) {
		return session.Info{}, fmt.Errorf("%w: malformed account number", bank.ErrInvalidInput)
	}

	if err := t.sessions.Authenticate(account, pin); err != nil {
		switch {
		case errors.Is(err, bank.ErrNotFound):
			t.journal.Record(audit.EventLoginFailure, "", "unknown account")
		case errors.Is(err, bank.ErrAccountLocked):
			t.journal.Record(audit.EventAccountLocked, account, err.Error())
		default:
			t.journal.Record(audit.EventLoginFailure, account, err.Error())
		}
		return session.Info{}, err
	}
	t.journal.Record(audit.EventLoginSuccess, account, "pin verified")

	t.endSession("replaced")
	info, err := t.sessions.Start(account)
	if err != nil {
		return session.Info{}, err
	}
	t.journal.Record(audit.EventSessionStart, account, "session started")
	return info, nil
}

// Logout 結束目前 session。
func (t *Terminal) Logout() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.endSession("logout")
}

func (t *Terminal) endSession(reason string) {
	if info, ok := t.sessions.Current(); ok {
		t.journal.Record(audit.EventSessionEnd, info.Account, reason)
	}
	t.sessions.End()
}

// Session 回傳目前 session 的快照。
func (t *Terminal) Session() (session.Info, bool) {
	return t.sessions.Current()
}

// Alive 為不計入交易次數的存活檢查；session 無效時會被清除。
func (t *Terminal) Alive() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := t.check()
	return err
}

// Balance 回傳目前帳戶餘額；不計入交易次數。
func (t *Terminal) Balance() (decimal.Decimal, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	account, err := t.check()
	if err != nil {
		return decimal.Zero, err
	}
	a, err := t.ledger.Get(account)
	if err != nil {
		return decimal.Zero, err
	}
	return a.Balance, nil
}

// History 回傳目前帳戶的交易紀錄（最舊在前）；不計入交易次數。
func (t *Terminal) History() ([]bank.Transaction, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	account, err := t.check()
	if err != nil {
		return nil, err
	}
	return t.ledger.History(account)
}

// check 執行 session 存活檢查並記錄逾時事件。
// 帳戶在 session 期間被鎖定（例如他人連續輸錯 PIN）時，結束 session 並回傳 ErrAccountLocked。
func (t *Terminal) check() (string, error) {
	info, wasActive := t.sessions.Current()
	account, err := t.sessions.Check()
	if err != nil {
		if wasActive {
			t.journal.Record(audit.EventSessionTimeout, info.Account, err.Error())
		}
		return "", err
	}
	locked, err := t.ledger.IsLocked(account)
	if err != nil {
		return "", err
	}
	if locked {
		t.journal.Record(audit.EventAccountLocked, account, "session ended on locked account")
		t.endSession("account locked")
		return "", fmt.Errorf("%w: session ended", bank.ErrAccountLocked)
	}
	return account, nil
}

// Snapshot 匯出稽核快照。
func (t *Terminal) Snapshot() audit.Snapshot {
	return audit.Snapshot{
		Meta:       audit.Meta{Version: 1, Note: "export only; never restored"},
		Events:     t.journal.Events(),
		Statements: t.ledger.Statements(),
	}
}

// Shutdown 結束 session、清除憑證，並在設定 audit path 時寫出稽核快照。
func (t *Terminal) Shutdown() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	t.endSession("shutdown")
	t.creds.Wipe()

	if t.cfg.AuditPath == "" {
		return nil
	}
	if err := audit.SaveSnapshot(t.cfg.AuditPath, t.Snapshot()); err != nil {
		t.logger.Errorw("failed to save audit snapshot", "path", t.cfg.AuditPath, "err", err)
		return fmt.Errorf("save audit snapshot: %w", err)
	}
	t.logger.Infow("audit snapshot saved", "path", t.cfg.AuditPath)
	return nil
}
