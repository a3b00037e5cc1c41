// internal/audit/journal.go
//
// 安全事件日誌：每筆事件同時寫入 zap（warn 等級）與固定容量的環狀緩衝區，
// 供程序結束時匯出稽核快照。

package audit

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"secureatm/internal/hygiene"
	"secureatm/internal/ring"
)

// Security event names.
const (
	EventLoginSuccess      = "LOGIN_SUCCESS"
	EventLoginFailure      = "LOGIN_FAILURE"
	EventAccountLocked     = "ACCOUNT_LOCKED"
	EventSessionStart      = "SESSION_START"
	EventSessionEnd        = "SESSION_END"
	EventSessionTimeout    = "SESSION_TIMEOUT"
	EventWithdrawal        = "WITHDRAWAL"
	EventTransfer          = "TRANSFER"
	EventOperationRejected = "OPERATION_REJECTED"
)

// Event 為單筆安全事件。
type Event struct {
	Time    time.Time `json:"time"`
	Kind    string    `json:"kind"`
	Account string    `json:"account,omitempty"`
	Details string    `json:"details"`
}

// Journal 保存最近的安全事件。
type Journal struct {
	mu     sync.Mutex
	events *ring.Ring[Event]
	logger *zap.SugaredLogger
	now    func() time.Time
}

// NewJournal 建立容量為 capacity 的事件日誌。
func NewJournal(capacity int, logger *zap.SugaredLogger) *Journal {
	return &Journal{events: ring.New[Event](capacity), logger: logger, now: time.Now}
}

// Record 寫入一筆事件；details 先經過清理。
func (j *Journal) Record(kind, account, details string) Event {
	e := Event{Kind: kind, Account: account, Details: hygiene.Sanitize(details)}
	j.mu.Lock()
	e.Time = j.now()
	j.events.Push(e)
	j.mu.Unlock()

	j.logger.Warnw("security event", "event", e.Kind, "account", e.Account, "details", e.Details)
	return e
}

// Events 回傳事件（最舊在前）的複本。
func (j *Journal) Events() []Event {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.events.Items()
}
