package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/piscinadeentropia/mrquizzer/internal/app"
)

var playCmd = &cobra.Command{
	Use:   "play [file|-]",
	Short: "Play the current quiz, or load one first",
	Long: `Play opens the quiz screen in the terminal. With a file argument (or "-" for
stdin) the quiz is loaded first and starts from question one. Without one
the current quiz resumes where it was left.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			link, _ := cmd.Flags().GetBool("link")
			if err := loadQuiz(cmd, args[0], link); err != nil {
				return err
			}
		}
		return runTUI(cmd, app.Options{Start: app.StartPlay})
	},
}

// loadQuiz imports the quiz at arg and makes it current.
func loadQuiz(cmd *cobra.Command, arg string, link bool) error {
	text, err := readInput(cmd, arg, link)
	if err != nil {
		return err
	}
	rt, err := openRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	q, err := rt.lib.Import(cmd.Context(), text)
	if err != nil {
		return fmt.Errorf("load quiz: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Loaded %q (%s).\n", q.Title(), plural(q.Len(), "question"))
	return nil
}

func init() {
	playCmd.Flags().Bool("link", false, "Treat the argument as a shared test link")
}
