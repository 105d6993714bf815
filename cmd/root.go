package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/config"
	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "comprehend",
	Short: "Reading comprehension practice in the terminal",
	Long: "Comprehend shows a short passage, asks questions about it, grades the answers\n" +
		"and keeps track of your progress between sessions.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, runOptions{})
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (overrides COMPREHEND_CONFIG env var)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides COMPREHEND_DB env var)")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the file named by --config, or the default location.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	p, _ := cmd.Flags().GetString("config")
	return config.Load(p)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then store.path from the config, then COMPREHEND_DB and the default XDG path.
func resolveDBPath(cmd *cobra.Command, cfg *config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg != nil && cfg.Store.Path != "" {
		return cfg.Store.Path, store.EnsureDir(cfg.Store.Path)
	}
	return store.DefaultDBPath()
}
