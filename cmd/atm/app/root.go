// cmd/atm/app/root.go

// Package app 定義 atm 指令列：run 啟動互動式終端機，audit show 讀取稽核快照。
package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"secureatm/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "atm",
	Short: "Secure single-terminal ATM simulator",
	Long: `atm simulates a single ATM terminal over an in-memory bank:
salted PIN authentication with lockout, idle and per-session transaction
limits, daily withdrawal and transfer caps, and a security event journal.`,
	SilenceUsage: true,
}

// Execute 執行根指令；錯誤時以非零狀態結束。
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (yaml, toml or json)")
}

// loadConfig 讀入設定檔（若有指定）並套用 flag 與 ATM_* 環境變數。
func loadConfig(cmd *cobra.Command, flags map[string]string) (*config.Config, error) {
	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	}
	for key, name := range flags {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
			return nil, err
		}
	}
	return config.Load(v)
}
