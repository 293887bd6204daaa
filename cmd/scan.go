package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/depsentry/depsentry/domain"
	"github.com/depsentry/depsentry/infrastructure/archive"
)

var (
	maxDeps    int
	maxVulns   int
	analysisID string
)

var scanCmd = &cobra.Command{
	Use:   "scan [source]",
	Short: "Scan a repository for vulnerable dependencies",
	Long: `Fetch a repository (clone URL or local path), parse its dependency
manifests, and correlate every exactly pinned dependency against the
vulnerability registry.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().IntVar(&maxDeps, "max-deps", 0,
		"Maximum dependencies to scan (default from config, clamped)")
	scanCmd.Flags().IntVar(&maxVulns, "max-vulns", 0,
		"Maximum advisory detail lookups (default from config, clamped)")
	scanCmd.Flags().StringVar(&analysisID, "analysis", "",
		"Scan an already-fetched analysis instead of a source")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
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

	result, err := engine.scanner.Scan(ctx, scanOptions(engine, id))
	if err != nil {
		return renderScanError(err)
	}

	if jsonOutput {
		return printJSON(result)
	}
	renderScanResult(result)
	return nil
}

// resolveAnalysis turns the command input into an analysis ID, fetching the
// source when one is given.
func resolveAnalysis(ctx context.Context, intake *archive.Intake, args []string) (string, error) {
	if analysisID != "" {
		return analysisID, nil
	}
	if len(args) == 0 {
		return "", fmt.Errorf("a repository source or --analysis is required")
	}
	return intake.Fetch(ctx, args[0])
}

// scanOptions merges flag overrides with config defaults.
func scanOptions(engine *app, id string) domain.ScanOptions {
	opts := domain.ScanOptions{
		AnalysisID: id,
		MaxDeps:    engine.cfg.Limits.MaxDeps,
		MaxVulns:   engine.cfg.Limits.MaxVulns,
	}
	if maxDeps > 0 {
		opts.MaxDeps = maxDeps
	}
	if maxVulns > 0 {
		opts.MaxVulns = maxVulns
	}
	return opts
}

func renderScanResult(result *domain.ScanResult) {
	if len(result.Findings) == 0 {
		fmt.Println("✅ No known vulnerabilities found.")
		fmt.Println()
		fmt.Println(result.Note)
		return
	}

	fmt.Printf("🔍 %d finding(s):\n\n", len(result.Findings))
	for _, f := range result.Findings {
		fixed := "no fix known"
		if f.FixedVersion != "" {
			fixed = "fixed in " + f.FixedVersion
		}
		fmt.Printf("  [%s] %s@%s: %s (%s)\n",
			f.Severity, f.Name, f.Version, f.VulnID, fixed)
		if f.Summary != "" {
			fmt.Printf("      %s\n", f.Summary)
		}
	}
	fmt.Println()
	fmt.Println(result.Note)
}

func renderScanError(err error) error {
	if jsonOutput {
		payload := map[string]any{
			"code":      domain.CodeOf(err),
			"message":   err.Error(),
			"retryable": domain.IsRetryable(err),
		}
		if encodeErr := printJSON(payload); encodeErr != nil {
			return encodeErr
		}
		os.Exit(1)
	}
	return err
}

func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
