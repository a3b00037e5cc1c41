// Package bank 定義核心領域模型與業務規則。
// 本檔定義 Account 與 Transaction 結構，不含任何終端機或儲存細節。

package bank

import (
	"time"

	"github.com/shopspring/decimal"

	"secureatm/internal/ring"
)

// Transaction types.
const (
	TypeWithdrawal = "WITHDRAWAL"
	TypeTransfer   = "TRANSFER"
)

// MaxDetailsLength 為交易備註的最大長度。
const MaxDetailsLength = 99

// Account represents a bank account snapshot.
type Account struct {
	Name             string          `json:"name"`
	Number           string          `json:"number"`
	Balance          decimal.Decimal `json:"balance"`
	Locked           bool            `json:"locked"`
	LockUntil        time.Time       `json:"lock_until"`
	FailedAttempts   int             `json:"failed_attempts"`
	TransactionCount uint64          `json:"transaction_count"`
}

// Transaction represents an immutable history record.
type Transaction struct {
	ID      string          `json:"id"`
	Time    time.Time       `json:"time"`
	Type    string          `json:"type"`
	Amount  decimal.Decimal `json:"amount"`
	Details string          `json:"details"`
}

// account 為 Ledger 內部可變狀態，只在 Ledger.mu 保護下讀寫。
type account struct {
	name           string
	number         string
	balance        decimal.Decimal
	locked         bool
	lockUntil      time.Time
	failedAttempts int
	history        *ring.Ring[Transaction]
}

func (a *account) snapshot() *Account {
	return &Account{
		Name:             a.name,
		Number:           a.number,
		Balance:          a.balance,
		Locked:           a.locked,
		LockUntil:        a.lockUntil,
		FailedAttempts:   a.failedAttempts,
		TransactionCount: a.history.Total(),
	}
}
