// internal/terminal/authorizer.go
//
// 交易授權：提款與轉帳。
// 每筆操作依序 檢查 session → 驗證金額 → 檢查累計額度 → 檢查保留額 → 套用 → 紀錄，
// 任一檢查失敗即回傳，不留下部分變更。

package terminal

import (
	"fmt"

	"github.com/shopspring/decimal"

	"secureatm/internal/audit"
	"secureatm/internal/bank"
	"secureatm/internal/hygiene"
)

// ParseAmount 將使用者輸入轉為金額；格式須為整數或最多兩位小數。
func ParseAmount(s string) (decimal.Decimal, error) {
	if !hygiene.ValidateFormat(s, hygiene.KindAmount) {
		return decimal.Zero, fmt.Errorf("%w: malformed amount", bank.ErrInvalidInput)
	}
	return decimal.NewFromString(s)
}

func (t *Terminal) validateAmount(amount decimal.Decimal) error {
	switch {
	case !amount.IsPositive():
		return fmt.Errorf("%w: amount must be positive", bank.ErrInvalidInput)
	case amount.GreaterThan(t.cfg.Limits.MaxTransactionAmount):
		return fmt.Errorf("%w: amount exceeds %s", bank.ErrInvalidInput, t.cfg.Limits.MaxTransactionAmount.StringFixed(2))
	case !amount.Equal(amount.Round(2)):
		return fmt.Errorf("%w: amount has more than 2 decimal places", bank.ErrInvalidInput)
	}
	return nil
}

// Withdraw 自目前帳戶提款。
func (t *Terminal) Withdraw(amount decimal.Decimal) (bank.Transaction, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	account, err := t.check()
	if err != nil {
		return bank.Transaction{}, err
	}
	if err := t.validateAmount(amount); err != nil {
		return bank.Transaction{}, t.reject(account, bank.TypeWithdrawal, err)
	}
	if err := t.sessions.CheckWithdrawal(amount); err != nil {
		return bank.Transaction{}, t.reject(account, bank.TypeWithdrawal, err)
	}
	if _, err := t.ledger.Withdraw(account, amount); err != nil {
		return bank.Transaction{}, t.reject(account, bank.TypeWithdrawal, err)
	}
	if err := t.sessions.CommitWithdrawal(amount); err != nil {
		t.logger.Errorw("withdrawal applied without session", "account", account, "err", err)
	}

	details := fmt.Sprintf("Withdrawal of %s", amount.StringFixed(2))
	tx, err := t.ledger.RecordTransaction(account, bank.TypeWithdrawal, amount, details)
	if err != nil {
		return bank.Transaction{}, err
	}
	t.journal.Record(audit.EventWithdrawal, account, tx.Details)
	t.logger.Infow("withdrawal", "account", account, "amount", amount.StringFixed(2), "tx", tx.ID)
	return tx, nil
}

// Transfer 自目前帳戶轉帳至 target。
// 目標帳戶必須存在、不同於來源且未鎖定；累計額度與保留額皆以來源帳戶計算。
func (t *Terminal) Transfer(target string, amount decimal.Decimal) (bank.Transaction, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	account, err := t.check()
	if err != nil {
		return bank.Transaction{}, err
	}
	if err := t.validateAmount(amount); err != nil {
		return bank.Transaction{}, t.reject(account, bank.TypeTransfer, err)
	}
	if err := t.validateTarget(account, target); err != nil {
		return bank.Transaction{}, t.reject(account, bank.TypeTransfer, err)
	}
	if err := t.sessions.CheckTransfer(amount); err != nil {
		return bank.Transaction{}, t.reject(account, bank.TypeTransfer, err)
	}
	if err := t.ledger.Move(account, target, amount); err != nil {
		return bank.Transaction{}, t.reject(account, bank.TypeTransfer, err)
	}
	if err := t.sessions.CommitTransfer(amount); err != nil {
		t.logger.Errorw("transfer applied without session", "account", account, "err", err)
	}

	details := fmt.Sprintf("Transfer of %s to account %s", amount.StringFixed(2), target)
	tx, err := t.ledger.RecordTransaction(account, bank.TypeTransfer, amount, details)
	if err != nil {
		return bank.Transaction{}, err
	}
	t.journal.Record(audit.EventTransfer, account, tx.Details)
	t.logger.Infow("transfer", "account", account, "target", target, "amount", amount.StringFixed(2), "tx", tx.ID)
	return tx, nil
}

func (t *Terminal) validateTarget(source, target string) error {
	if !hygiene.ValidateFormat(target, hygiene.KindAccountNumber) {
		return fmt.Errorf("%w: malformed target account number", bank.ErrInvalidInput)
	}
	if target == source {
		return bank.ErrSameAccount
	}
	locked, err := t.ledger.IsLocked(target)
	if err != nil {
		return err
	}
	if locked {
		return fmt.Errorf("%w: target account %s", bank.ErrAccountLocked, target)
	}
	return nil
}

// reject 記錄被拒絕的操作並原樣回傳錯誤。
func (t *Terminal) reject(account, op string, err error) error {
	t.journal.Record(audit.EventOperationRejected, account, fmt.Sprintf("%s rejected %s", op, err))
	t.logger.Infow("operation rejected", "account", account, "op", op, "kind", bank.Kind(err), "reason", err)
	return err
}
