// internal/audit/audit_test.go
//
// 驗證安全事件日誌與稽核快照的寫入、讀回。

package audit

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secureatm/internal/bank"
	"secureatm/internal/log"
)

func TestJournalRecord(t *testing.T) {
	j := NewJournal(2, log.Nop())
	j.Record(EventLoginFailure, "ACC-1", "bad pin <script>")
	j.Record(EventLoginSuccess, "ACC-1", "ok")
	j.Record(EventSessionStart, "ACC-1", "session started")

	events := j.Events()
	require.Len(t, events, 2)
	assert.Equal(t, EventLoginSuccess, events[0].Kind)
	assert.Equal(t, EventSessionStart, events[1].Kind)
	assert.False(t, events[1].Time.IsZero())
}

func TestJournalSanitizesDetails(t *testing.T) {
	j := NewJournal(4, log.Nop())
	e := j.Record(EventLoginFailure, "ACC-1", "bad pin <script>")
	assert.Equal(t, "bad pin script", e.Details)
}

// TestJSONSnapshotRoundTrip 驗證快照寫入後可完整讀回。
func TestJSONSnapshotRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "audit.json")

	orig := Snapshot{
		Meta:   Meta{Note: "test"},
		Events: []Event{{Time: time.Now(), Kind: EventSessionEnd, Account: "ACC-1", Details: "logout"}},
		Statements: []bank.Statement{{
			Account: bank.Account{Name: "A", Number: "ACC-1", Balance: decimal.NewFromInt(900)},
			Transactions: []bank.Transaction{{
				ID: "00112233445566778899aabbccddeeff", Type: bank.TypeWithdrawal,
				Amount: decimal.NewFromInt(100), Details: "Withdrawal of 100.00",
			}},
		}},
	}

	require.NoError(t, SaveSnapshot(path, orig))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))

	loaded, err := LoadSnapshot(path)
	require.NoError(t, err)
	assert.Equal(t, "json_audit", loaded.Meta.Storage)
	assert.Equal(t, 1, loaded.Meta.Version)
	require.Len(t, loaded.Events, 1)
	assert.Equal(t, EventSessionEnd, loaded.Events[0].Kind)
	require.Len(t, loaded.Statements, 1)
	assert.True(t, loaded.Statements[0].Account.Balance.Equal(decimal.NewFromInt(900)))
	assert.Equal(t, "Withdrawal of 100.00", loaded.Statements[0].Transactions[0].Details)
}

func TestLoadSnapshotMissing(t *testing.T) {
	_, err := LoadSnapshot(filepath.Join(t.TempDir(), "nope.json"))
	assert.True(t, os.IsNotExist(err))
}
