package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/piscinadeentropia/mrquizzer/internal/app"
	"github.com/piscinadeentropia/mrquizzer/internal/quiz"
	"github.com/piscinadeentropia/mrquizzer/internal/quizgen"
	"github.com/piscinadeentropia/mrquizzer/internal/screen"
	"github.com/piscinadeentropia/mrquizzer/internal/store"
)

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Print the quiz generation prompt for the current source",
	Long: `Prompt builds the text to paste into a chat assistant from the current
source and settings. Settings given as flags are saved with the source and
reused next time. --tui opens the prompt builder screen instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if interactive, _ := cmd.Flags().GetBool("tui"); interactive {
			return runTUI(cmd, app.Options{Start: app.StartPrompt})
		}

		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()
		ctx := cmd.Context()

		var text string
		if regen, _ := cmd.Flags().GetBool("regenerate"); regen {
			text, err = regeneratePrompt(ctx, rt)
		} else {
			text, err = buildPrompt(cmd, rt)
		}
		if err != nil {
			return err
		}

		return deliverPrompt(cmd, text)
	},
}

// buildPrompt reads the cached source, applies the settings flags and
// saves them back.
func buildPrompt(cmd *cobra.Command, rt *runtime) (string, error) {
	repo := rt.store.SourceRepo()
	rec, err := repo.LatestSource(cmd.Context())
	if err != nil {
		return "", err
	}
	if rec == nil {
		return "", errors.New("no source set; run `mrquizzer source text|file|pdf|url` first")
	}

	settings := savedSettings(rec, rt.cfg.Prompt)
	if err := applySettingsFlags(cmd, &settings); err != nil {
		return "", err
	}
	settings = settings.Normalize()
	if err := settings.Validate(); err != nil {
		return "", err
	}

	if data, err := json.Marshal(settings); err == nil && string(data) != string(rec.Settings) {
		rec.Settings = data
		if err := repo.SaveSource(cmd.Context(), rec); err != nil {
			warn(cmd, "could not save prompt settings: %v", err)
		}
	}
	return quizgen.BuildPrompt(rec.Text, settings)
}

// regeneratePrompt asks for new questions on the current quiz's source.
func regeneratePrompt(ctx context.Context, rt *runtime) (string, error) {
	q, err := rt.lib.Current(ctx)
	if err != nil {
		return "", err
	}
	if q == nil {
		return "", errNoQuiz
	}
	var text string
	if rec, err := rt.store.SourceRepo().LatestSource(ctx); err == nil && rec != nil {
		text = rec.Text
	}
	return quizgen.RegeneratePrompt(text, q.Questions), nil
}

// deliverPrompt prints, copies or links the prompt as the flags ask.
func deliverPrompt(cmd *cobra.Command, text string) error {
	copyIt, _ := cmd.Flags().GetBool("copy")
	open, _ := cmd.Flags().GetString("open")
	out := cmd.OutOrStdout()

	if open != "" {
		target, err := quizgen.ParseTarget(open)
		if err != nil {
			return err
		}
		link, err := quizgen.DeepLink(target, text)
		if err != nil {
			return err
		}
		if link.CopyPrompt {
			copyIt = true
			fmt.Fprintln(cmd.ErrOrStderr(), "The prompt is too long for a link; paste it once the page opens.")
		}
		fmt.Fprintln(out, link.URL)
	}

	if copyIt {
		if err := (screen.SystemClipboard{}).WriteAll(text); err != nil {
			return fmt.Errorf("copy prompt: %w", err)
		}
		fmt.Fprintln(cmd.ErrOrStderr(), "Prompt copied to clipboard.")
	}
	if open == "" && !copyIt {
		fmt.Fprint(out, text)
	}
	return nil
}

// savedSettings decodes the settings cached with the source over def.
func savedSettings(rec *store.SourceRecord, def quizgen.Settings) quizgen.Settings {
	settings := def
	if len(rec.Settings) > 0 {
		if err := json.Unmarshal(rec.Settings, &settings); err != nil {
			slog.Warn("ignoring cached prompt settings", "err", err)
			return def
		}
	}
	return settings
}

func applySettingsFlags(cmd *cobra.Command, s *quizgen.Settings) error {
	f := cmd.Flags()
	if f.Changed("language") {
		s.Language, _ = f.GetString("language")
	}
	if f.Changed("difficulty") {
		s.Difficulty, _ = f.GetString("difficulty")
	}
	if f.Changed("questions") {
		s.NumberOfQuestions, _ = f.GetInt("questions")
	}
	if f.Changed("mcq-options") {
		s.MCQOptions, _ = f.GetInt("mcq-options")
	}
	if f.Changed("types") {
		raw, _ := f.GetStringSlice("types")
		types := make([]quiz.Type, 0, len(raw))
		for _, r := range raw {
			t := quiz.Type(strings.TrimSpace(r))
			if !t.Valid() {
				return fmt.Errorf("unknown question type %q", r)
			}
			types = append(types, t)
		}
		s.QuestionTypes = types
	}

	bools := []struct {
		name  string
		field *bool
	}{
		{"explanations", &s.IncludeExplanations},
		{"tricky", &s.TrickyQuestions},
		{"attach-docs", &s.AttachAdditionalDocuments},
		{"own-content", &s.AllowAIOwnContent},
		{"multiple-correct", &s.AllowMultipleCorrect},
		{"restrict", &s.RestrictToText},
	}
	for _, b := range bools {
		if f.Changed(b.name) {
			*b.field, _ = f.GetBool(b.name)
		}
	}
	return nil
}

// addSettingsFlags registers the generation settings on cmd.
func addSettingsFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("language", "", "Quiz language code, e.g. en or es")
	f.String("difficulty", "", "easy, medium or hard")
	f.Int("questions", 0, "Number of questions")
	f.Int("mcq-options", 0, "Options per multiple choice question")
	f.StringSlice("types", nil, "Question types: mcq, true_false, short_answer, fill_blank")
	f.Bool("explanations", true, "Include explanations")
	f.Bool("tricky", false, "Ask for tricky questions")
	f.Bool("attach-docs", false, "Suggest additional documents")
	f.Bool("own-content", false, "Allow content beyond the source")
	f.Bool("multiple-correct", false, "Allow several correct options")
	f.Bool("restrict", true, "Keep questions to the source text")
}

func init() {
	addSettingsFlags(promptCmd)
	promptCmd.Flags().Bool("copy", false, "Copy the prompt to the clipboard instead of printing it")
	promptCmd.Flags().String("open", "", "Print a link that opens the prompt in chatgpt or perplexity")
	promptCmd.Flags().Bool("regenerate", false, "Ask for new questions on the current quiz's source")
	promptCmd.Flags().Bool("tui", false, "Open the prompt builder screen")
}
