package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var logFile *os.File

// setupLogging installs the default slog handler: text on stderr, or on
// --log-file when given.
func setupLogging(cmd *cobra.Command) error {
	level := slog.LevelInfo
	if v, _ := cmd.Flags().GetBool("verbose"); v {
		level = slog.LevelDebug
	}

	var w io.Writer = os.Stderr
	if path, _ := cmd.Flags().GetString("log-file"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		logFile = f
		w = f
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
	return nil
}

// quietLogging drops log output while the TUI owns the terminal, unless
// logs go to a file.
func quietLogging() {
	if logFile == nil {
		slog.SetDefault(slog.New(slog.DiscardHandler))
	}
}

func closeLogging() error {
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}
