package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/piscinadeentropia/mrquizzer/internal/quiz"
)

var loadCmd = &cobra.Command{
	Use:   "load <file|->",
	Short: "Load a quiz document and make it current",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		link, _ := cmd.Flags().GetBool("link")
		return loadQuiz(cmd, args[0], link)
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate <file|->",
	Short: "Check a quiz document without loading it",
	Long: `Validate parses the quiz document and reports problems in it. Structural
errors fail the command. Content issues, such as an answer index outside
the options, are warnings unless --strict is given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		link, _ := cmd.Flags().GetBool("link")
		strict, _ := cmd.Flags().GetBool("strict")

		text, err := readInput(cmd, args[0], link)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		q, err := quiz.Parse(text)
		if err != nil {
			fmt.Fprintln(out, quiz.StatusMessage(err))
			var issues *quiz.IssuesError
			if errors.As(err, &issues) {
				printIssues(out, issues.Issues)
			}
			return errors.New("invalid quiz")
		}

		issues := quiz.Check(q)
		fmt.Fprintf(out, "%q: %s\n", q.Title(), plural(q.Len(), "question"))
		if len(issues) == 0 {
			fmt.Fprintln(out, "No issues found.")
			return nil
		}
		fmt.Fprintf(out, "%s:\n", plural(len(issues), "issue"))
		printIssues(out, issues)
		if strict {
			return errors.New("quiz has issues")
		}
		return nil
	},
}

func init() {
	loadCmd.Flags().Bool("link", false, "Treat the argument as a shared test link")
	validateCmd.Flags().Bool("link", false, "Treat the argument as a shared test link")
	validateCmd.Flags().Bool("strict", false, "Fail when content issues are found")
}
