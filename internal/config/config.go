// internal/config/config.go

// Package config 載入終端機設定。
// 所有預設值即為系統的固定常數；可由 YAML 設定檔或 ATM_ 前綴的環境變數覆寫。
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// 固定常數（與預設值相同）。
const (
	PINLength                 = 4
	SaltLength                = 16
	SessionTimeout            = 300 * time.Second
	MaxDailyWithdrawal        = "5000.00"
	MaxDailyTransfer          = "10000.00"
	MaxAccounts               = 3
	MinBalance                = "500.00"
	MaxTransactionAmount      = "50000.00"
	MaxTransactionsPerSession = 5
	MaxTransactionHistory     = 100
	MaxPINAttempts            = 3
	LockoutDuration           = 15 * time.Minute
	AuditCapacity             = 256
)

// Limits 為 session 與交易授權使用的上限。
type Limits struct {
	SessionTimeout            time.Duration
	MaxDailyWithdrawal        decimal.Decimal
	MaxDailyTransfer          decimal.Decimal
	MaxAccounts               int
	MinBalance                decimal.Decimal
	MaxTransactionAmount      decimal.Decimal
	MaxTransactionsPerSession int
	MaxTransactionHistory     int
	MaxPINAttempts            int
	LockoutDuration           time.Duration
}

// AccountSeed 為啟動時開立的帳戶。
type AccountSeed struct {
	Name    string `mapstructure:"name"`
	Number  string `mapstructure:"number"`
	Balance string `mapstructure:"balance"`
	PIN     string `mapstructure:"pin"`
}

// Config 為完整設定。
type Config struct {
	Limits   Limits
	Accounts []AccountSeed
	// 稽核快照輸出路徑；空字串表示不輸出
	AuditPath     string
	AuditCapacity int
	Debug         bool
	// 日誌檔路徑；空字串寫到 stderr
	LogPath string
}

// DefaultAccounts 為未設定 accounts 時使用的示範帳戶。
func DefaultAccounts() []AccountSeed {
	return []AccountSeed{
		{Name: "John Doe", Number: "ACC-1001", Balance: "10000.00", PIN: "1234"},
		{Name: "Jane Smith", Number: "ACC-1002", Balance: "25000.00", PIN: "5678"},
		{Name: "Bob Johnson", Number: "ACC-1003", Balance: "5000.00", PIN: "9012"},
	}
}

// Default 回傳不經 viper 的預設設定。
func Default() *Config {
	c, err := Load(viper.New())
	if err != nil {
		// 預設值本身必然合法
		panic(err)
	}
	return c
}

// SetDefaults 將所有預設值寫入 v。
func SetDefaults(v *viper.Viper) {
	v.SetDefault("pin_length", PINLength)
	v.SetDefault("salt_length", SaltLength)
	v.SetDefault("session_timeout", SessionTimeout)
	v.SetDefault("max_daily_withdrawal", MaxDailyWithdrawal)
	v.SetDefault("max_daily_transfer", MaxDailyTransfer)
	v.SetDefault("max_accounts", MaxAccounts)
	v.SetDefault("min_balance", MinBalance)
	v.SetDefault("max_transaction_amount", MaxTransactionAmount)
	v.SetDefault("max_transactions_per_session", MaxTransactionsPerSession)
	v.SetDefault("max_transaction_history", MaxTransactionHistory)
	v.SetDefault("max_pin_attempts", MaxPINAttempts)
	v.SetDefault("lockout_duration", LockoutDuration)
	v.SetDefault("audit.path", "")
	v.SetDefault("audit.capacity", AuditCapacity)
	v.SetDefault("log.debug", false)
	v.SetDefault("log.path", "")
}

// Load 由 v 建立設定：套用預設值、綁定環境變數並驗證。
// 設定檔由呼叫端以 v.SetConfigFile / v.ReadInConfig 讀入。
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix("ATM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if v.GetInt("pin_length") != PINLength {
		return nil, fmt.Errorf("pin_length is fixed at %d", PINLength)
	}
	if v.GetInt("salt_length") != SaltLength {
		return nil, fmt.Errorf("salt_length is fixed at %d", SaltLength)
	}

	var lim Limits
	var err error
	if lim.MaxDailyWithdrawal, err = positiveDecimal(v, "max_daily_withdrawal"); err != nil {
		return nil, err
	}
	if lim.MaxDailyTransfer, err = positiveDecimal(v, "max_daily_transfer"); err != nil {
		return nil, err
	}
	if lim.MaxTransactionAmount, err = positiveDecimal(v, "max_transaction_amount"); err != nil {
		return nil, err
	}
	if lim.MinBalance, err = decimal.NewFromString(v.GetString("min_balance")); err != nil {
		return nil, fmt.Errorf("parse min_balance: %w", err)
	}
	if lim.MinBalance.IsNegative() {
		return nil, errors.New("min_balance is negative")
	}

	if lim.SessionTimeout, err = seconds(v, "session_timeout"); err != nil {
		return nil, err
	}
	if lim.LockoutDuration, err = seconds(v, "lockout_duration"); err != nil {
		return nil, err
	}
	lim.MaxAccounts = v.GetInt("max_accounts")
	lim.MaxTransactionsPerSession = v.GetInt("max_transactions_per_session")
	lim.MaxTransactionHistory = v.GetInt("max_transaction_history")
	lim.MaxPINAttempts = v.GetInt("max_pin_attempts")

	switch {
	case lim.SessionTimeout < time.Second:
		return nil, errors.New("session timeout is shorter than one second")
	case lim.LockoutDuration < time.Second:
		return nil, errors.New("lockout duration is shorter than one second")
	case lim.MaxAccounts <= 0:
		return nil, errors.New("max accounts is zero")
	case lim.MaxTransactionsPerSession <= 0:
		return nil, errors.New("max transactions per session is zero")
	case lim.MaxTransactionHistory <= 0:
		return nil, errors.New("max transaction history is zero")
	case lim.MaxPINAttempts <= 0:
		return nil, errors.New("max pin attempts is zero")
	}

	var seeds []AccountSeed
	if v.IsSet("accounts") {
		if err := v.UnmarshalKey("accounts", &seeds); err != nil {
			return nil, fmt.Errorf("parse accounts: %w", err)
		}
	}
	if len(seeds) == 0 {
		seeds = DefaultAccounts()
	}
	if len(seeds) > lim.MaxAccounts {
		return nil, fmt.Errorf("%d accounts configured, at most %d allowed", len(seeds), lim.MaxAccounts)
	}

	return &Config{
		Limits:        lim,
		Accounts:      seeds,
		AuditPath:     v.GetString("audit.path"),
		AuditCapacity: v.GetInt("audit.capacity"),
		Debug:         v.GetBool("log.debug"),
		LogPath:       v.GetString("log.path"),
	}, nil
}

func positiveDecimal(v *viper.Viper, key string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(v.GetString(key))
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse %s: %w", key, err)
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("%s is not positive", key)
	}
	return d, nil
}

// seconds 讀取時間設定：純數字視為秒數（例如 300），其餘以 time.ParseDuration 解析（例如 "5m"）。
func seconds(v *viper.Viper, key string) (time.Duration, error) {
	switch raw := v.Get(key).(type) {
	case time.Duration:
		return raw, nil
	case int:
		return time.Duration(raw) * time.Second, nil
	case int64:
		return time.Duration(raw) * time.Second, nil
	case float64:
		return time.Duration(raw * float64(time.Second)), nil
	}
	str := strings.TrimSpace(v.GetString(key))
	if n, err := strconv.ParseInt(str, 10, 64); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(str)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}
