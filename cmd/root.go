package cmd

import (
	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath  string
	jsonOutput  bool
	verbose     bool
	metricsAddr string
)

var rootCmd = &cobra.Command{
	Use:   "depsentry",
	Short: "Dependency vulnerability correlation engine",
	Long: `Scan a repository's dependency manifests and correlate every exactly
pinned dependency against an OSV-style vulnerability registry.

Supports npm (package-lock.json, yarn.lock, pnpm-lock.yaml) and
PyPI (requirements.txt, poetry.lock, pyproject.toml) manifests.

Usage modes:
  depsentry scan <source>   Fetch a repository and run a full scan
  depsentry deps <source>   Parse manifests only, without network access
  depsentry formats         List the supported manifest formats`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if verbose {
			logger.SetLevel(logger.DebugLevel)
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"Path to config file (default: auto-detect)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false,
		"Emit machine-readable JSON instead of text")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "",
		"Expose Prometheus metrics on this address (overrides config)")
}
