// cmd/atm/app/audit.go

package app

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"secureatm/internal/audit"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect audit snapshots",
}

var auditShowCmd = &cobra.Command{
	Use:   "show <file>",
	Short: "Print the security events and statements of an audit snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := audit.LoadSnapshot(args[0])
		if err != nil {
			return fmt.Errorf("load audit snapshot: %w", err)
		}
		eventsOnly, _ := cmd.Flags().GetBool("events")
		return writeSnapshot(cmd.OutOrStdout(), snap, eventsOnly)
	},
}

func init() {
	auditShowCmd.Flags().Bool("events", false, "print security events only")
	auditCmd.AddCommand(auditShowCmd)
	rootCmd.AddCommand(auditCmd)
}

// writeSnapshot 以表格輸出快照內容。
func writeSnapshot(w io.Writer, snap audit.Snapshot, eventsOnly bool) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "snapshot\t%s v%d\t%s\n", snap.Meta.Storage, snap.Meta.Version,
		snap.Meta.Timestamp.Format("2006-01-02 15:04:05"))

	fmt.Fprintf(tw, "\nTIME\tEVENT\tACCOUNT\tDETAILS\n")
	for _, e := range snap.Events {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Time.Format("15:04:05"), e.Kind, e.Account, e.Details)
	}
	if eventsOnly {
		return tw.Flush()
	}

	for _, st := range snap.Statements {
		a := st.Account
		status := "active"
		if a.Locked {
			status = "locked until " + a.LockUntil.Format("15:04:05")
		}
		fmt.Fprintf(tw, "\n%s\t%s\t%s\t%s\n", a.Number, a.Name, a.Balance.StringFixed(2), status)
		for _, tx := range st.Transactions {
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", tx.Time.Format("15:04:05"), tx.Type, tx.Amount.StringFixed(2), tx.Details)
		}
	}
	return tw.Flush()
}
