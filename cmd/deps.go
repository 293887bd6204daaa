package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/depsentry/depsentry/application"
)

var depsCmd = &cobra.Command{
	Use:   "deps [source]",
	Short: "List the exactly pinned dependencies a scan would check",
	Long: `Parse a repository's dependency manifests and print the deduplicated,
capped dependency set without querying the vulnerability registry.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDeps,
}

func init() {
	depsCmd.Flags().IntVar(&maxDeps, "max-deps", 0,
		"Maximum dependencies to keep (default from config, clamped)")
	depsCmd.Flags().StringVar(&analysisID, "analysis", "",
		"Inspect an already-fetched analysis instead of a source")
	rootCmd.AddCommand(depsCmd)
}

func runDeps(cmd *cobra.Command, args []string) error {
	engine, err := buildApp()
	if err != nil {
		return err
	}
	defer engine.close()

	ctx := cmd.Context()
	id, err := resolveAnalysis(ctx, engine.intake, args)
	if err != nil {
		return err
	}

	summary, err := engine.scanner.Dependencies(ctx, scanOptions(engine, id))
	if err != nil {
		return renderScanError(err)
	}

	if jsonOutput {
		return printJSON(summary)
	}
	renderDependencySummary(summary)
	return nil
}

func renderDependencySummary(summary *application.DependencySummary) {
	fmt.Printf("📦 %d dependency(ies) from %d manifest(s)\n\n",
		len(summary.Dependencies), len(summary.ManifestsUsed))
	for _, dep := range summary.Dependencies {
		fmt.Printf("  %-6s %s@%s  (%s)\n",
			dep.Ecosystem, dep.Name, dep.Version, dep.Manifest)
	}
	for _, note := range summary.Notes {
		fmt.Println()
		fmt.Println(note)
	}
}
