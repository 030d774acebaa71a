package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/piscinadeentropia/mrquizzer/internal/source"
	"github.com/piscinadeentropia/mrquizzer/internal/store"
)

var sourceCmd = &cobra.Command{
	Use:   "source",
	Short: "Set the source material used to build prompts",
}

var sourceTextCmd = &cobra.Command{
	Use:   "text <text|->",
	Short: "Use the given text, or stdin for -",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := args[0]
		if text == "-" {
			var err error
			if text, err = readInput(cmd, "-", false); err != nil {
				return err
			}
		}
		return setSource(cmd, store.OriginText, text)
	},
}

var sourceFileCmd = &cobra.Command{
	Use:   "file <path>",
	Short: "Use the contents of a text file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		return setSource(cmd, store.OriginFile, string(data))
	},
}

var sourcePDFCmd = &cobra.Command{
	Use:   "pdf <path>",
	Short: "Use the text extracted from a PDF",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := source.FromPDFFile(args[0])
		if err != nil {
			return fmt.Errorf("read PDF: %w", err)
		}
		return setSource(cmd, store.OriginPDF, text)
	},
}

var sourceURLCmd = &cobra.Command{
	Use:   "url <url>",
	Short: "Use the readable text of a web page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		text, err := rt.fetcher().Fetch(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("fetch page: %w", err)
		}
		return saveSource(cmd, rt, store.OriginURL, text)
	},
}

var sourceShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current source material",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		rec, err := rt.store.SourceRepo().LatestSource(cmd.Context())
		if err != nil {
			return err
		}
		if rec == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "No source set.")
			return nil
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Source from %s, %s characters, updated %s.\n",
			rec.Origin, humanize.Comma(int64(len([]rune(rec.Text)))), humanize.Time(rec.UpdatedAt))
		fmt.Fprintln(cmd.OutOrStdout(), rec.Text)
		return nil
	},
}

var sourceClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget the current source material",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		if err := rt.store.SourceRepo().ClearSource(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Source cleared.")
		return nil
	},
}

func setSource(cmd *cobra.Command, origin, text string) error {
	rt, err := openRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()
	return saveSource(cmd, rt, origin, text)
}

// saveSource replaces the source text and keeps the saved prompt settings.
func saveSource(cmd *cobra.Command, rt *runtime, origin, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return errors.New("source is empty")
	}
	repo := rt.store.SourceRepo()
	rec := &store.SourceRecord{Origin: origin, Text: text}
	if prev, err := repo.LatestSource(cmd.Context()); err == nil && prev != nil {
		rec.Settings = prev.Settings
	}
	if err := repo.SaveSource(cmd.Context(), rec); err != nil {
		return fmt.Errorf("save source: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Source set from %s (%s characters).\n",
		origin, humanize.Comma(int64(len([]rune(text)))))
	return nil
}

func init() {
	sourceCmd.AddCommand(sourceTextCmd, sourceFileCmd, sourcePDFCmd, sourceURLCmd, sourceShowCmd, sourceClearCmd)
}
