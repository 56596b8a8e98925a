package main

import (
	"os"

	"github.com/distritask/dashboard/internal/config"
	"github.com/spf13/cobra"
)

var (
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   "dashboard",
		Short: "Live task board for the distributed task runner",
		Long: `dashboard follows the task-update stream of the runner, keeps a bounded
board of the most recent tasks grouped by worker node, and lets operators
submit new tasks to the intake endpoint.`,
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default config/config.yaml when present)")
	rootCmd.AddCommand(serveCmd, submitCmd)
}

// loadConfig resolves the config file the same way the server always has:
// explicit flag first, then config/config.yaml, then ../config/config.yaml.
func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		for _, candidate := range []string{"config/config.yaml", "../config/config.yaml"} {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}
	return config.Load(path)
}
