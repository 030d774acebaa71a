package cmd

import (
	"github.com/spf13/cobra"

	"github.com/piscinadeentropia/mrquizzer/internal/app"
	"github.com/piscinadeentropia/mrquizzer/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "mrquizzer",
	Short: "Turn any text into a quiz and play it",
	Long: `MrQuizzer builds prompts that turn text, PDFs and web pages into quizzes,
loads the quiz JSON an assistant returns, and plays it in the terminal or
over HTTP.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging(cmd)
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeLogging()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd, app.Options{Splash: true})
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides MRQUIZZER_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to the YAML config file (overrides MRQUIZZER_CONFIG env var)")
	rootCmd.PersistentFlags().String("log-file", "", "Write logs to this file instead of stderr")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log debug messages")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(sourceCmd)
	rootCmd.AddCommand(promptCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(resultsCmd)
	rootCmd.AddCommand(shareCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(updateCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then MRQUIZZER_DB env var or the config file, then the default XDG path.
func resolveDBPath(cmd *cobra.Command, configured string) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if configured != "" {
		return configured, store.EnsureDir(configured)
	}
	return store.DefaultDBPath()
}
