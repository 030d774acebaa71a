package cmd

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/piscinadeentropia/mrquizzer/internal/session"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past quiz sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		entries, err := session.History(cmd.Context(), rt.store.EventRepo(), limit)
		if err != nil {
			return fmt.Errorf("query history: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(entries) == 0 {
			fmt.Fprintln(out, "No sessions yet.")
			return nil
		}

		fmt.Fprintf(out, "%-16s  %-8s  %-7s  %-5s  %-6s  %s\n",
			"When", "Session", "Score", "Pct", "Time", "Outcome")
		fmt.Fprintln(out, strings.Repeat("─", 64))
		for _, e := range entries {
			outcome := "in progress"
			switch {
			case e.Reset:
				outcome = "restarted"
			case e.Finished:
				outcome = "finished"
			}
			id := e.SessionID
			if len(id) > 8 {
				id = id[:8]
			}
			fmt.Fprintf(out, "%-16s  %-8s  %-7s  %4d%%  %-6s  %s\n",
				humanize.Time(e.UpdatedAt),
				id,
				fmt.Sprintf("%d/%d", e.Score, e.Total),
				e.Percent(),
				session.FormatElapsed(e.ElapsedSeconds),
				outcome,
			)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Maximum number of sessions to show")
}
