package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/piscinadeentropia/mrquizzer/internal/session"
)

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Show the score of the current quiz",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		sess, err := rt.viewSession(cmd.Context())
		if err != nil {
			return err
		}
		r := sess.Results()
		out := cmd.OutOrStdout()

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(r)
		}

		fmt.Fprintf(out, "%s\n", sess.Quiz().Title())
		fmt.Fprintf(out, "Score: %d / %d (%d%%)    Time: %s\n", r.Score, r.Total, r.Percent, r.Elapsed)
		if !sess.Finished() {
			fmt.Fprintf(out, "In progress: question %d of %d.\n", sess.Index()+1, sess.Total())
		} else if r.Perfect {
			fmt.Fprintln(out, "Perfect score!")
		}
		if review, _ := cmd.Flags().GetBool("review"); review {
			printReview(out, r.Review)
		}
		return nil
	},
}

func printReview(w io.Writer, rows []session.ReviewItem) {
	marks := map[session.ReviewStatus]string{
		session.StatusCorrect: "✓",
		session.StatusWrong:   "✗",
		session.StatusSkipped: "-",
	}
	for _, row := range rows {
		fmt.Fprintf(w, "\n%s %d. %s\n", marks[row.Status], row.Number, row.Question)
		fmt.Fprintf(w, "   Your answer: %s\n", row.UserAnswer)
		if row.Status != session.StatusCorrect {
			fmt.Fprintf(w, "   Correct: %s\n", row.CorrectAnswer)
		}
		if row.Explanation != "" {
			fmt.Fprintf(w, "   %s\n", row.Explanation)
		}
	}
}

func init() {
	resultsCmd.Flags().BoolP("review", "r", false, "List every question with your answer")
	resultsCmd.Flags().Bool("json", false, "Print the results as JSON")
}
