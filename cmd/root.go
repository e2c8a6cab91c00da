package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/speedlearn/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "speedlearn",
	Short: "Adaptive lesson personalization and tutoring engine",
	Long: "speedlearn adapts K-12 lessons to a learner's pace, tracks learning sessions, " +
		"recommends speed changes and generates tutoring hints, questions and feedback.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a config file (default: ./speedlearn.yaml or $XDG_CONFIG_HOME/speedlearn/)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides store.db_path and SPEEDLEARN_DB)")
	rootCmd.PersistentFlags().String("user", "learner", "Learner id")
	rootCmd.PersistentFlags().Bool("plain", false, "Render without colours")

	rootCmd.AddCommand(lessonCmd)
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(tutorCmd)
	rootCmd.AddCommand(speedsCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(telemetryCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(janitorCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db (highest priority),
// then the configured store.db_path, then store.DefaultDBPath.
func resolveDBPath(cmd *cobra.Command, configured string) (string, error) {
	p, _ := cmd.Flags().GetString("db")
	if p == "" {
		p = configured
	}
	if p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}
