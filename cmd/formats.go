package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/depsentry/depsentry/infrastructure/manifest"
)

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List the supported manifest formats",
	RunE:  runFormats,
}

func init() {
	rootCmd.AddCommand(formatsCmd)
}

func runFormats(_ *cobra.Command, _ []string) error {
	registry := manifest.NewRegistry()
	names := registry.Names()

	if jsonOutput {
		return printJSON(map[string][]string{"formats": names})
	}

	fmt.Println("Supported manifest formats, in scan precedence order:")
	for i, name := range names {
		fmt.Printf("  %d. %s\n", i+1, name)
	}
	return nil
}
