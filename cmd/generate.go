package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/piscinadeentropia/mrquizzer/internal/llm"
	"github.com/piscinadeentropia/mrquizzer/internal/quizgen"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a quiz from the current source with the configured LLM",
	Long: `Generate sends the prompt for the current source to the configured LLM
provider, validates the quiz it returns and loads it. Use --out to also
write the quiz document to a file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()
		ctx := cmd.Context()

		provider, err := rt.provider(ctx)
		if errors.Is(err, llm.ErrNotConfigured) {
			return errors.New("no LLM provider configured; set ANTHROPIC_API_KEY, OPENAI_API_KEY, GEMINI_API_KEY or OPENROUTER_API_KEY, or use `mrquizzer prompt` with a chat assistant")
		}
		if err != nil {
			return err
		}

		rec, err := rt.store.SourceRepo().LatestSource(ctx)
		if err != nil {
			return err
		}
		if rec == nil {
			return quizgen.ErrNoSource
		}
		settings := savedSettings(rec, rt.cfg.Prompt)
		if err := applySettingsFlags(cmd, &settings); err != nil {
			return err
		}

		fmt.Fprintln(cmd.ErrOrStderr(), "Generating quiz...")
		gen := quizgen.NewGenerator(provider, quizgen.DefaultConfig())
		q, err := gen.Generate(ctx, quizgen.GenerateInput{Source: rec.Text, Settings: settings})
		if err != nil {
			var invalid *quizgen.InvalidQuizError
			if errors.As(err, &invalid) {
				printIssues(cmd.ErrOrStderr(), invalid.Issues)
			}
			return err
		}

		if out, _ := cmd.Flags().GetString("out"); out != "" {
			if err := os.WriteFile(out, q.Raw, 0o644); err != nil {
				return fmt.Errorf("write quiz: %w", err)
			}
		}
		if _, err := rt.lib.Import(ctx, string(q.Raw)); err != nil {
			return fmt.Errorf("load quiz: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Loaded %q (%s). Run `mrquizzer play` to start.\n",
			q.Title(), plural(q.Len(), "question"))
		return nil
	},
}

func init() {
	addSettingsFlags(generateCmd)
	generateCmd.Flags().StringP("out", "o", "", "Also write the quiz document to this file")
}
