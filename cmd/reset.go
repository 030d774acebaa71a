package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restart the current quiz from the first question",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		if all, _ := cmd.Flags().GetBool("all"); all {
			q, err := rt.lib.Current(ctx)
			if err != nil {
				return err
			}
			if q != nil {
				if err := rt.progress.ClearProgress(ctx, q.Key()); err != nil {
					return fmt.Errorf("clear progress: %w", err)
				}
			}
			if err := rt.lib.Forget(ctx); err != nil {
				return fmt.Errorf("clear quizzes: %w", err)
			}
			if err := rt.store.SourceRepo().ClearSource(ctx); err != nil {
				return fmt.Errorf("clear source: %w", err)
			}
			fmt.Fprintln(out, "Quizzes, progress and source cleared.")
			return nil
		}

		sess, err := rt.currentSession(ctx)
		if err != nil {
			return err
		}
		if err := sess.Reset(ctx); err != nil {
			return err
		}
		fmt.Fprintf(out, "%q restarted.\n", sess.Quiz().Title())
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("all", false, "Also forget every loaded quiz and the prompt source")
}
