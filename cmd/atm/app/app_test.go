package app

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secureatm/internal/audit"
	"secureatm/internal/bank"
)

func testSnapshot() audit.Snapshot {
	at := time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)
	return audit.Snapshot{
		Meta: audit.Meta{Storage: "json_audit", Version: 1, Timestamp: at},
		Events: []audit.Event{
			{Time: at, Kind: audit.EventLoginSuccess, Account: "ACC-1001", Details: "pin verified"},
		},
		Statements: []bank.Statement{{
			Account: bank.Account{Name: "John Doe", Number: "ACC-1001", Balance: decimal.RequireFromString("9900")},
			Transactions: []bank.Transaction{
				{Time: at, Type: bank.TypeWithdrawal, Amount: decimal.RequireFromString("100"), Details: "Withdrawal of 100.00"},
			},
		}},
	}
}

func TestWriteSnapshot(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeSnapshot(&buf, testSnapshot(), false))
	out := buf.String()
	assert.Contains(t, out, audit.EventLoginSuccess)
	assert.Contains(t, out, "9900.00")
	assert.Contains(t, out, "Withdrawal of 100.00")
}

func TestWriteSnapshotEventsOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeSnapshot(&buf, testSnapshot(), true))
	assert.Contains(t, buf.String(), "pin verified")
	assert.NotContains(t, buf.String(), "9900.00")
}

func TestAuditShowCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.json")
	require.NoError(t, audit.SaveSnapshot(path, testSnapshot()))

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"audit", "show", path})
	require.NoError(t, rootCmd.Execute())
	assert.True(t, strings.Contains(buf.String(), "ACC-1001"))
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "atm.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_pin_attempts: 5\naudit:\n  path: /tmp/a.json\n"), 0o600))

	cfgFile = path
	defer func() { cfgFile = "" }()

	cfg, err := loadConfig(runCmd, map[string]string{"audit.path": "audit"})
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Limits.MaxPINAttempts)
	assert.Equal(t, "/tmp/a.json", cfg.AuditPath)
	assert.Len(t, cfg.Accounts, 3)
}
