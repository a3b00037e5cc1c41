// cmd/atm/app/run.go

package app

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"secureatm/internal/log"
	"secureatm/internal/terminal"
	"secureatm/internal/tui"
)

// 互動模式下 stderr 被畫面佔用，未指定日誌檔時寫到這裡
const defaultLogPath = "atm.log"

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the interactive terminal",
	Long: `Start the interactive ATM terminal with the configured accounts.
On exit the active session is ended, credentials are wiped and, when
--audit is set, the security journal and account statements are written
to the audit file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, map[string]string{
			"audit.path": "audit",
			"log.debug":  "debug",
			"log.path":   "log",
		})
		if err != nil {
			return err
		}
		if cfg.LogPath == "" {
			cfg.LogPath = defaultLogPath
		}

		logger, err := log.New(log.Options{Debug: cfg.Debug, Path: cfg.LogPath})
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		defer logger.Sync() //nolint:errcheck

		term, err := terminal.New(cfg, logger)
		if err != nil {
			return fmt.Errorf("init terminal: %w", err)
		}

		p := tea.NewProgram(tui.NewApp(term), tea.WithAltScreen())
		_, runErr := p.Run()
		if err := term.Shutdown(); err != nil {
			return err
		}
		if runErr != nil {
			return fmt.Errorf("tui error: %w", runErr)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().String("audit", "", "write the audit snapshot to this file on exit")
	runCmd.Flags().String("log", "", "log file (default "+defaultLogPath+")")
	runCmd.Flags().Bool("debug", false, "enable debug logging")
	rootCmd.AddCommand(runCmd)
}
