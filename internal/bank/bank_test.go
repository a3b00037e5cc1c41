// internal/bank/bank_test.go
//
// 本檔為 Ledger 模組的單元測試。
// 覆蓋：開戶限制、鎖定與自動解鎖、最低餘額、轉帳原子性、交易紀錄環狀緩衝區。
// 所有測試皆為 in-memory 執行，時間來源以假時鐘注入。

package bank

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

var testLimits = Limits{
	MaxAccounts:     3,
	MinBalance:      decimal.NewFromInt(500),
	HistoryCapacity: 100,
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLedger(t *testing.T) (*Ledger, *fakeClock) {
	t.Helper()
	clk := &fakeClock{t: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)}
	return NewLedger(testLimits, WithClock(clk.Now)), clk
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// get 為小工具：安全取出帳戶狀態。
func get(t *testing.T, l *Ledger, number string) *Account {
	t.Helper()
	a, err := l.Get(number)
	if err != nil {
		t.Fatalf("Get(%s) err=%v", number, err)
	}
	return a
}

// TestOpenAndList 驗證開戶、查詢與列出功能。
func TestOpenAndList(t *testing.T) {
	l, _ := newTestLedger(t)
	if _, err := l.Open("Alice", "ACC-1", dec("1000")); err != nil {
		t.Fatal(err)
	}
	if _, err := l.Open("Bob", "ACC-2", dec("500")); err != nil {
		t.Fatal(err)
	}
	all := l.List()
	if len(all) != 2 || all[0].Number != "ACC-1" || all[1].Number != "ACC-2" {
		t.Fatalf("List unexpected: %+v", all)
	}
	if g := get(t, l, "ACC-1"); g.Name != "Alice" || !g.Balance.Equal(dec("1000")) {
		t.Fatalf("got=%+v", g)
	}
	if _, err := l.Get("nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

// TestOpenValidation 驗證開戶參數與數量限制。
func TestOpenValidation(t *testing.T) {
	l, _ := newTestLedger(t)
	if _, err := l.Open("A", "ACC-1", dec("-1")); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("want ErrInvalidInput for negative balance, got %v", err)
	}
	if _, err := l.Open("A;", "ACC-1", dec("1")); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("want ErrInvalidInput for bad name, got %v", err)
	}
	if _, err := l.Open("A", "ACC 1", dec("1")); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("want ErrInvalidInput for bad number, got %v", err)
	}
	for i := 1; i <= 3; i++ {
		if _, err := l.Open("A", fmt.Sprintf("ACC-%d", i), dec("1")); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := l.Open("A", "ACC-1", dec("1")); !errors.Is(err, ErrDuplicateAccount) {
		t.Fatalf("want ErrDuplicateAccount, got %v", err)
	}
	if _, err := l.Open("A", "ACC-4", dec("1")); !errors.Is(err, ErrTooManyAccounts) {
		t.Fatalf("want ErrTooManyAccounts, got %v", err)
	}
}

// TestLockAutoUnlock 驗證鎖定期間為鎖定，到期後自動解鎖並歸零失敗次數。
func TestLockAutoUnlock(t *testing.T) {
	l, clk := newTestLedger(t)
	_, _ = l.Open("A", "ACC-1", dec("1000"))
	for i := 0; i < 3; i++ {
		_, _ = l.RegisterFailedAttempt("ACC-1")
	}
	if err := l.Lock("ACC-1", 15*time.Minute); err != nil {
		t.Fatal(err)
	}
	if locked, _ := l.IsLocked("ACC-1"); !locked {
		t.Fatal("want locked")
	}
	clk.Advance(15*time.Minute - time.Second)
	if locked, _ := l.IsLocked("ACC-1"); !locked {
		t.Fatal("want still locked just before expiry")
	}
	clk.Advance(time.Second)
	if locked, _ := l.IsLocked("ACC-1"); locked {
		t.Fatal("want auto-unlocked at lock_until")
	}
	a := get(t, l, "ACC-1")
	if a.Locked || a.FailedAttempts != 0 || !a.LockUntil.IsZero() {
		t.Fatalf("unlock should clear lock state: %+v", a)
	}
}

// TestFailedAttempts 驗證失敗次數累加與歸零。
func TestFailedAttempts(t *testing.T) {
	l, _ := newTestLedger(t)
	_, _ = l.Open("A", "ACC-1", dec("1000"))
	_, _ = l.RegisterFailedAttempt("ACC-1")
	n, _ := l.RegisterFailedAttempt("ACC-1")
	if n != 2 {
		t.Fatalf("attempts=%d want 2", n)
	}
	_ = l.ResetFailedAttempts("ACC-1")
	if a := get(t, l, "ACC-1"); a.FailedAttempts != 0 {
		t.Fatalf("attempts=%d want 0", a.FailedAttempts)
	}
	if _, err := l.RegisterFailedAttempt("nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

// TestWithdrawMinBalance 驗證提款後餘額不得低於最低保留額。
func TestWithdrawMinBalance(t *testing.T) {
	l, _ := newTestLedger(t)
	_, _ = l.Open("A", "ACC-1", dec("1000"))

	if _, err := l.Withdraw("ACC-1", dec("500.01")); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("want ErrInsufficientFunds, got %v", err)
	}
	a, err := l.Withdraw("ACC-1", dec("500"))
	if err != nil {
		t.Fatal(err)
	}
	if !a.Balance.Equal(dec("500")) {
		t.Fatalf("balance=%s want 500", a.Balance)
	}
	if _, err := l.Withdraw("ACC-1", dec("0.01")); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("want ErrInsufficientFunds at floor, got %v", err)
	}
}

// TestMove 驗證轉帳：正常、相同帳戶、餘額不足、帳戶不存在。
func TestMove(t *testing.T) {
	l, _ := newTestLedger(t)
	_, _ = l.Open("A", "ACC-1", dec("1000"))
	_, _ = l.Open("B", "ACC-2", dec("500"))

	if err := l.Move("ACC-1", "ACC-2", dec("300")); err != nil {
		t.Fatal(err)
	}
	if got := get(t, l, "ACC-1").Balance; !got.Equal(dec("700")) {
		t.Fatalf("a1=%s want=700", got)
	}
	if got := get(t, l, "ACC-2").Balance; !got.Equal(dec("800")) {
		t.Fatalf("a2=%s want=800", got)
	}
	if err := l.Move("ACC-1", "ACC-1", dec("1")); !errors.Is(err, ErrSameAccount) || !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("want ErrSameAccount, got %v", err)
	}
	if err := l.Move("ACC-1", "ACC-2", dec("200.01")); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("want ErrInsufficientFunds, got %v", err)
	}
	if err := l.Move("ACC-1", "ACC-9", dec("1")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if got := get(t, l, "ACC-1").Balance; !got.Equal(dec("700")) {
		t.Fatalf("failed moves must not change balance: %s", got)
	}
}

// TestConcurrentMovesAtomicity 驗證高併發下轉帳原子性：總額不變且皆不低於保留額。
func TestConcurrentMovesAtomicity(t *testing.T) {
	l, _ := newTestLedger(t)
	_, _ = l.Open("A", "ACC-1", dec("1000"))
	_, _ = l.Open("B", "ACC-2", dec("1000"))

	const n = 200
	var wg sync.WaitGroup
	wg.Add(2 * n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_ = l.Move("ACC-1", "ACC-2", dec("1"))
		}()
		go func() {
			defer wg.Done()
			_ = l.Move("ACC-2", "ACC-1", dec("1"))
		}()
	}
	wg.Wait()

	b1, b2 := get(t, l, "ACC-1").Balance, get(t, l, "ACC-2").Balance
	if b1.LessThan(dec("500")) || b2.LessThan(dec("500")) {
		t.Fatalf("floor breached: a1=%s a2=%s", b1, b2)
	}
	if total := b1.Add(b2); !total.Equal(dec("2000")) {
		t.Fatalf("total=%s want 2000", total)
	}
}

// TestRecordTransaction 驗證交易紀錄欄位與備註清理。
func TestRecordTransaction(t *testing.T) {
	l, _ := newTestLedger(t)
	_, _ = l.Open("A", "ACC-1", dec("1000"))

	tx, err := l.RecordTransaction("ACC-1", TypeWithdrawal, dec("10"), "Withdrawal of $10.00; rm -rf")
	if err != nil {
		t.Fatal(err)
	}
	if len(tx.ID) != 32 || tx.Time.IsZero() || tx.Type != TypeWithdrawal {
		t.Fatalf("unexpected tx: %+v", tx)
	}
	if tx.Details != "Withdrawal of 10.00 rm -rf" {
		t.Fatalf("details=%q", tx.Details)
	}
	if _, err := l.RecordTransaction("nope", TypeWithdrawal, dec("1"), ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

// TestHistoryRingOverwrite 驗證第 101 筆紀錄覆蓋第 1 筆。
func TestHistoryRingOverwrite(t *testing.T) {
	l, _ := newTestLedger(t)
	_, _ = l.Open("A", "ACC-1", dec("1000"))

	var first Transaction
	for i := 1; i <= 101; i++ {
		tx, err := l.RecordTransaction("ACC-1", TypeTransfer, decimal.NewFromInt(int64(i)), fmt.Sprintf("tx %d", i))
		if err != nil {
			t.Fatal(err)
		}
		if i == 1 {
			first = tx
		}
	}
	h, _ := l.History("ACC-1")
	if len(h) != 100 {
		t.Fatalf("history len=%d want 100", len(h))
	}
	for _, tx := range h {
		if tx.ID == first.ID {
			t.Fatal("first transaction should have been overwritten")
		}
	}
	if h[99].Details != "tx 101" || h[0].Details != "tx 2" {
		t.Fatalf("order unexpected: first=%q last=%q", h[0].Details, h[99].Details)
	}
	if a := get(t, l, "ACC-1"); a.TransactionCount != 101 {
		t.Fatalf("transaction count=%d want 101", a.TransactionCount)
	}
}

// TestStatements 驗證稽核匯出包含所有帳戶與紀錄。
func TestStatements(t *testing.T) {
	l, _ := newTestLedger(t)
	_, _ = l.Open("A", "ACC-1", dec("1000"))
	_, _ = l.Open("B", "ACC-2", dec("1000"))
	_, _ = l.RecordTransaction("ACC-1", TypeWithdrawal, dec("1"), "x")

	st := l.Statements()
	if len(st) != 2 || len(st[0].Transactions) != 1 || len(st[1].Transactions) != 0 {
		t.Fatalf("statements unexpected: %+v", st)
	}
}

func TestKind(t *testing.T) {
	cases := map[error]string{
		nil:                   "SUCCESS",
		ErrSameAccount:        "INVALID_INPUT",
		ErrNoSession:          "SESSION_TIMEOUT",
		ErrInsufficientFunds:  "INSUFFICIENT_FUNDS",
		ErrAccountLocked:      "ACCOUNT_LOCKED",
		ErrDailyLimitExceeded: "DAILY_LIMIT_EXCEEDED",
		ErrNotFound:           "NOT_FOUND",
		ErrInvalidCredentials: "INVALID_CREDENTIALS",
		errors.New("boom"):    "INTERNAL",
	}
	for err, want := range cases {
		if got := Kind(err); got != want {
			t.Errorf("Kind(%v)=%s want %s", err, got, want)
		}
	}
}
