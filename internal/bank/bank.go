// internal/bank/bank.go

// Package bank 定義核心商業邏輯：帳戶開立、鎖定、提款、轉帳與交易紀錄。
// 採用單一互斥鎖 (sync.Mutex) 保障所有狀態變更「原子且序列化」，避免競爭條件。
// 金額以 decimal.Decimal 儲存，避免浮點誤差。
package bank

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"secureatm/internal/hygiene"
	"secureatm/internal/ring"
)

// Limits 為 Ledger 需要的上限設定。
type Limits struct {
	MaxAccounts     int
	MinBalance      decimal.Decimal
	HistoryCapacity int
}

// Option 調整 Ledger 的可選行為。
type Option func(*Ledger)

// WithClock 指定時間來源（測試用）。
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// Ledger 為聚合根 (Aggregate Root)：管理全系統帳戶。
// - mu：序列化所有讀寫，確保跨帳戶操作（轉帳）原子完成。
// - order：開戶順序，List 依此回傳。
// - accts：帳戶索引表（帳號 → *account），內部指標只在臨界區內修改。
type Ledger struct {
	mu     sync.Mutex
	limits Limits
	now    func() time.Time
	order  []string
	accts  map[string]*account
}

// NewLedger 建立空白帳本（僅就緒的 in-memory 狀態，無外部依賴）。
func NewLedger(limits Limits, opts ...Option) *Ledger {
	l := &Ledger{limits: limits, now: time.Now, accts: make(map[string]*account)}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Open 以戶名、帳號與初始餘額開立帳戶。
// 帳號開立後不可變更；初始餘額不得為負；帳戶總數不得超過 MaxAccounts。
func (l *Ledger) Open(name, number string, balance decimal.Decimal) (*Account, error) {
	if !hygiene.ValidateFormat(name, hygiene.KindName) {
		return nil, wrap(ErrInvalidInput, "malformed account name")
	}
	if !hygiene.ValidateFormat(number, hygiene.KindAccountNumber) {
		return nil, wrap(ErrInvalidInput, "malformed account number")
	}
	if balance.IsNegative() {
		return nil, wrap(ErrInvalidInput, "opening balance must not be negative")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.accts[number]; ok {
		return nil, ErrDuplicateAccount
	}
	if len(l.accts) >= l.limits.MaxAccounts {
		return nil, ErrTooManyAccounts
	}
	a := &account{
		name:    name,
		number:  number,
		balance: balance,
		history: ring.New[Transaction](l.limits.HistoryCapacity),
	}
	l.accts[number] = a
	l.order = append(l.order, number)
	return a.snapshot(), nil
}

// Get 依帳號取得帳戶的目前快照；若不存在回傳 ErrNotFound。
func (l *Ledger) Get(number string) (*Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	a, ok := l.accts[number]
	if !ok {
		return nil, ErrNotFound
	}
	return a.snapshot(), nil
}

// List 依開戶順序回傳所有帳戶快照。
func (l *Ledger) List() []*Account {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*Account, 0, len(l.order))
	for _, n := range l.order {
		out = append(out, l.accts[n].snapshot())
	}
	return out
}

// Lock 鎖定帳戶 d 的時間。
func (l *Ledger) Lock(number string, d time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	a, ok := l.accts[number]
	if !ok {
		return ErrNotFound
	}
	a.locked = true
	a.lockUntil = l.now().Add(d)
	return nil
}

// IsLocked 回報帳戶是否鎖定中。
// 鎖定到期時會順帶解鎖並歸零失敗次數。
func (l *Ledger) IsLocked(number string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	a, ok := l.accts[number]
	if !ok {
		return false, ErrNotFound
	}
	return l.lockedLocked(a), nil
}

func (l *Ledger) lockedLocked(a *account) bool {
	if !a.locked {
		return false
	}
	if !l.now().Before(a.lockUntil) {
		a.locked = false
		a.lockUntil = time.Time{}
		a.failedAttempts = 0
		return false
	}
	return true
}

// RegisterFailedAttempt 累加 PIN 失敗次數並回傳新值。
func (l *Ledger) RegisterFailedAttempt(number string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	a, ok := l.accts[number]
	if !ok {
		return 0, ErrNotFound
	}
	a.failedAttempts++
	return a.failedAttempts, nil
}

// ResetFailedAttempts 於 PIN 驗證成功後歸零失敗次數。
func (l *Ledger) ResetFailedAttempts(number string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	a, ok := l.accts[number]
	if !ok {
		return ErrNotFound
	}
	a.failedAttempts = 0
	return nil
}

// Withdraw 提款：提款後餘額不得低於 MinBalance，否則回傳 ErrInsufficientFunds。
// 金額合法性由上層檢查。
func (l *Ledger) Withdraw(number string, amount decimal.Decimal) (*Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	a, ok := l.accts[number]
	if !ok {
		return nil, ErrNotFound
	}
	if !l.covers(a, amount) {
		return nil, ErrInsufficientFunds
	}
	a.balance = a.balance.Sub(amount)
	return a.snapshot(), nil
}

// Move 轉帳為「單一臨界區內」的原子操作：
// 1) 檢核帳戶存在性 → 2) 檢查來源帳戶保留額 → 3) 同步扣款與入帳。
// 任一步驟失敗皆不會改變任何帳戶狀態。
func (l *Ledger) Move(from, to string, amount decimal.Decimal) error {
	if from == to {
		return ErrSameAccount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	src, ok1 := l.accts[from]
	dst, ok2 := l.accts[to]
	if !ok1 || !ok2 {
		return ErrNotFound
	}
	if !l.covers(src, amount) {
		return ErrInsufficientFunds
	}
	src.balance = src.balance.Sub(amount)
	dst.balance = dst.balance.Add(amount)
	return nil
}

// covers 回報 a 扣除 amount 後是否仍保有最低餘額。
func (l *Ledger) covers(a *account, amount decimal.Decimal) bool {
	return !amount.GreaterThan(a.balance.Sub(l.limits.MinBalance))
}

// RecordTransaction 追加一筆交易紀錄；環狀緩衝區寫滿後覆蓋最舊紀錄。
func (l *Ledger) RecordTransaction(number, typ string, amount decimal.Decimal, details string) (Transaction, error) {
	id := NewID()
	details = hygiene.Sanitize(details)
	if len(details) > MaxDetailsLength {
		details = details[:MaxDetailsLength]
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	a, ok := l.accts[number]
	if !ok {
		return Transaction{}, ErrNotFound
	}
	tx := Transaction{ID: id, Time: l.now(), Type: typ, Amount: amount, Details: details}
	a.history.Push(tx)
	return tx, nil
}

// History 回傳帳戶交易紀錄（最舊在前）的複本。
func (l *Ledger) History(number string) ([]Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	a, ok := l.accts[number]
	if !ok {
		return nil, ErrNotFound
	}
	return a.history.Items(), nil
}

// Statement 為單一帳戶的稽核匯出內容。
type Statement struct {
	Account      Account       `json:"account"`
	Transactions []Transaction `json:"transactions"`
}

// Statements 匯出所有帳戶與交易紀錄，供稽核快照使用。
func (l *Ledger) Statements() []Statement {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Statement, 0, len(l.order))
	for _, n := range l.order {
		a := l.accts[n]
		out = append(out, Statement{Account: *a.snapshot(), Transactions: a.history.Items()})
	}
	return out
}
