// internal/bank/errors.go
//
// 本檔集中定義「領域錯誤（domain errors）」。
// 前五個為核心錯誤分類，其餘皆以 %w 包裝某個分類，
// 因此呼叫端一律以 errors.Is 判斷，並可用 Kind 取得分類名稱顯示或寫入稽核。

package bank

import "errors"

var (
	// ErrInvalidInput 代表格式錯誤的 PIN、非法金額或非法文字。
	ErrInvalidInput = errors.New("invalid input")

	// ErrInsufficientFunds 代表操作後餘額將低於最低保留額。
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrAccountLocked 代表帳戶因 PIN 錯誤次數過多而暫時鎖定。
	ErrAccountLocked = errors.New("account locked")

	// ErrSessionTimeout 代表 session 閒置過久、交易次數用盡或已結束。
	ErrSessionTimeout = errors.New("session timeout")

	// ErrDailyLimitExceeded 代表累計提款或轉帳金額將超過上限。
	ErrDailyLimitExceeded = errors.New("daily limit exceeded")
)

var (
	ErrNotFound           = errors.New("account not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateAccount   = errors.New("account number already exists")
	ErrTooManyAccounts    = errors.New("too many accounts")
	ErrSameAccount        = wrap(ErrInvalidInput, "transfer target is the source account")
	ErrNoSession          = wrap(ErrSessionTimeout, "no active session")
)

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.kind.Error() + ": " + e.msg }
func (e *kindError) Unwrap() error { return e.kind }

func wrap(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

// Kind 將錯誤對應到分類名稱；nil 為 "SUCCESS"。
func Kind(err error) string {
	switch {
	case err == nil:
		return "SUCCESS"
	case errors.Is(err, ErrInvalidInput):
		return "INVALID_INPUT"
	case errors.Is(err, ErrInsufficientFunds):
		return "INSUFFICIENT_FUNDS"
	case errors.Is(err, ErrAccountLocked):
		return "ACCOUNT_LOCKED"
	case errors.Is(err, ErrSessionTimeout):
		return "SESSION_TIMEOUT"
	case errors.Is(err, ErrDailyLimitExceeded):
		return "DAILY_LIMIT_EXCEEDED"
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrInvalidCredentials):
		return "INVALID_CREDENTIALS"
	default:
		return "INTERNAL"
	}
}
