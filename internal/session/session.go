// internal/session/session.go

// Package session 管理全程序唯一的 session：PIN 驗證與鎖定策略、
// 閒置逾時、每個 session 的交易次數上限，以及累計提款／轉帳額度。
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"secureatm/internal/bank"
	"secureatm/internal/config"
	"secureatm/internal/credential"
	"secureatm/internal/hygiene"
)

// Info 為 session 的唯讀快照。
type Info struct {
	ID               string
	Account          string
	Active           bool
	StartedAt        time.Time
	LastActivity     time.Time
	TransactionCount int
	DailyWithdrawal  decimal.Decimal
	DailyTransfer    decimal.Decimal
}

type record struct {
	id               *hygiene.Secret
	account          string
	active           bool
	startedAt        time.Time
	lastActivity     time.Time
	transactionCount int
	dailyWithdrawal  decimal.Decimal
	dailyTransfer    decimal.Decimal
}

func (r *record) info() Info {
	return Info{
		ID:               r.id.Reveal(),
		Account:          r.account,
		Active:           r.active,
		StartedAt:        r.startedAt,
		LastActivity:     r.lastActivity,
		TransactionCount: r.transactionCount,
		DailyWithdrawal:  r.dailyWithdrawal,
		DailyTransfer:    r.dailyTransfer,
	}
}

// wipe 清除 session id 並將所有欄位歸零。
func (r *record) wipe() {
	r.id.Wipe()
	*r = record{}
}

// Option 調整 Manager 的可選行為。
type Option func(*Manager)

// WithClock 指定時間來源（測試用）。
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// Manager 持有唯一的 session 紀錄。
type Manager struct {
	mu     sync.Mutex
	ledger *bank.Ledger
	creds  *credential.Store
	limits config.Limits
	logger *zap.SugaredLogger
	now    func() time.Time
	cur    record
}

// NewManager 建立 session 管理器。
func NewManager(ledger *bank.Ledger, creds *credential.Store, limits config.Limits, logger *zap.SugaredLogger, opts ...Option) *Manager {
	m := &Manager{ledger: ledger, creds: creds, limits: limits, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Authenticate 驗證 account 的 PIN 並套用鎖定策略：
//   - 鎖定中：直接回傳 ErrAccountLocked，不檢查 PIN。
//   - PIN 錯誤或格式錯誤：失敗次數加一；達上限即鎖定 LockoutDuration 並回傳 ErrAccountLocked。
//   - 成功：失敗次數歸零。
func (m *Manager) Authenticate(account, pin string) error {
	locked, err := m.ledger.IsLocked(account)
	if err != nil {
		return err
	}
	if locked {
		return bank.ErrAccountLocked
	}

	malformed := !hygiene.ValidateFormat(pin, hygiene.KindPIN)
	if malformed || !m.creds.Verify(account, pin) {
		attempts, err := m.ledger.RegisterFailedAttempt(account)
		if err != nil {
			return err
		}
		if attempts >= m.limits.MaxPINAttempts {
			if err := m.ledger.Lock(account, m.limits.LockoutDuration); err != nil {
				return err
			}
			m.logger.Warnw("account locked after failed pin attempts",
				"account", account, "attempts", attempts, "duration", m.limits.LockoutDuration)
			return fmt.Errorf("%w: too many failed pin attempts", bank.ErrAccountLocked)
		}
		remaining := m.limits.MaxPINAttempts - attempts
		if malformed {
			return fmt.Errorf("%w: pin must be exactly %d digits, %d attempts remaining",
				bank.ErrInvalidInput, hygiene.PINLength, remaining)
		}
		return fmt.Errorf("%w: %d attempts remaining", bank.ErrInvalidCredentials, remaining)
	}

	return m.ledger.ResetFailedAttempts(account)
}

// Start 為 account 開啟新 session；既有 session 會先被清除。
func (m *Manager) Start(account string) (Info, error) {
	locked, err := m.ledger.IsLocked(account)
	if err != nil {
		return Info{}, err
	}
	if locked {
		return Info{}, bank.ErrAccountLocked
	}
	raw := []byte(bank.NewID())
	defer hygiene.Wipe(raw)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cur.active {
		m.logger.Infow("replacing active session", "account", m.cur.account)
		m.cur.wipe()
	}
	now := m.now()
	m.cur = record{
		id:              hygiene.NewSecret(raw),
		account:         account,
		active:          true,
		startedAt:       now,
		lastActivity:    now,
		dailyWithdrawal: decimal.Zero,
		dailyTransfer:   decimal.Zero,
	}
	m.logger.Infow("session started", "account", account)
	return m.cur.info(), nil
}

// IsValid 回報 session 是否仍可使用：
// 進行中、閒置未超過 SessionTimeout、交易次數未達上限。
func (m *Manager) IsValid() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.invalidReasonLocked() == nil
}

func (m *Manager) invalidReasonLocked() error {
	switch {
	case !m.cur.active:
		return bank.ErrNoSession
	case m.now().Sub(m.cur.lastActivity) > m.limits.SessionTimeout:
		return fmt.Errorf("%w: idle for more than %s", bank.ErrSessionTimeout, m.limits.SessionTimeout)
	case m.cur.transactionCount >= m.limits.MaxTransactionsPerSession:
		return fmt.Errorf("%w: %d transactions per session reached",
			bank.ErrSessionTimeout, m.limits.MaxTransactionsPerSession)
	}
	return nil
}

// Check 為每次操作前的存活檢查：無效則清除 session 並回傳 ErrSessionTimeout，
// 有效則更新最後活動時間並回傳帳號。
func (m *Manager) Check() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.invalidReasonLocked(); err != nil {
		if m.cur.active {
			m.logger.Infow("session expired", "account", m.cur.account, "reason", err)
		}
		m.cur.wipe()
		return "", err
	}
	m.cur.lastActivity = m.now()
	return m.cur.account, nil
}

// Touch 更新最後活動時間。
func (m *Manager) Touch() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cur.active {
		m.cur.lastActivity = m.now()
	}
}

// End 結束並清除 session。
func (m *Manager) End() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cur.active {
		m.logger.Infow("session ended", "account", m.cur.account)
	}
	m.cur.wipe()
}

// Current 回傳目前 session 的快照。
func (m *Manager) Current() (Info, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cur.info(), m.cur.active
}

// CheckWithdrawal 檢查累計提款額度。
func (m *Manager) CheckWithdrawal(amount decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return checkLimit(m.cur.dailyWithdrawal, amount, m.limits.MaxDailyWithdrawal, "withdrawal")
}

// CheckTransfer 檢查累計轉帳額度。
func (m *Manager) CheckTransfer(amount decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return checkLimit(m.cur.dailyTransfer, amount, m.limits.MaxDailyTransfer, "transfer")
}

func checkLimit(total, amount, limit decimal.Decimal, what string) error {
	if total.Add(amount).GreaterThan(limit) {
		return fmt.Errorf("%w: %s total would reach %s of %s",
			bank.ErrDailyLimitExceeded, what, total.Add(amount).StringFixed(2), limit.StringFixed(2))
	}
	return nil
}

// CommitWithdrawal 記入一筆成功提款：累計額度、交易次數與活動時間。
func (m *Manager) CommitWithdrawal(amount decimal.Decimal) error {
	return m.commit(func(r *record) { r.dailyWithdrawal = r.dailyWithdrawal.Add(amount) })
}

// CommitTransfer 記入一筆成功轉帳。
func (m *Manager) CommitTransfer(amount decimal.Decimal) error {
	return m.commit(func(r *record) { r.dailyTransfer = r.dailyTransfer.Add(amount) })
}

var errNotActive = errors.New("commit on inactive session")

func (m *Manager) commit(apply func(*record)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.cur.active {
		return errNotActive
	}
	apply(&m.cur)
	m.cur.transactionCount++
	m.cur.lastActivity = m.now()
	return nil
}
