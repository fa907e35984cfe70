package commands

import (
	"fmt"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/rutas/pkg/manifest"
)

var manifestCmd = &cobra.Command{
	Use:   "manifest",
	Short: "Export the compiled route table",
	Long: `Write every route in dispatch order, with its handler, fields and
response kinds, to a JSON, YAML or SQLite file for other tools.

The format defaults to the manifest section of rutas.yaml, or to the
output file's extension (.json, .yaml/.yml, .db/.sqlite).

Examples:
  rutas manifest
  rutas manifest --output routes.yaml
  rutas manifest --output routes.db --format sqlite`,
	Run: runManifest,
}

var (
	manifestOutput string
	manifestFormat string
)

func init() {
	manifestCmd.Flags().StringVarP(&manifestOutput, "output", "o", "", "Output file path (default from rutas.yaml)")
	manifestCmd.Flags().StringVarP(&manifestFormat, "format", "f", "", "Output format (json|yaml|sqlite)")

	rootCmd.AddCommand(manifestCmd)
}

func runManifest(cmd *cobra.Command, args []string) {
	green := color.New(color.FgGreen).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	header("Manifest")

	cfg, result := compileForExport(cmd)

	output, format := cfg.Manifest.Output, cfg.Manifest.Format
	if manifestOutput != "" {
		// A new path without --format picks the format from the extension.
		output, format = manifestOutput, ""
	}
	if manifestFormat != "" {
		format = manifestFormat
	}
	if format == "" {
		format = manifest.FormatFromPath(output)
	}
	if !filepath.IsAbs(output) {
		output = filepath.Join(result.ModuleRoot, output)
	}

	m := manifest.New(result.Tree, result.ModuleRoot)
	if err := m.WriteFile(output, format); err != nil {
		fail("failed to write manifest", err)
	}

	if jsonOutput {
		printSuccess(ExportOutput{Path: output, Format: format, Routes: len(m.Routes)})
		return
	}

	fmt.Printf("  %s Manifest written\n\n", green("✓"))
	fmt.Printf("  Output:  %s\n", green(relToModule(result.ModuleRoot, output)))
	fmt.Printf("  Format:  %s\n", format)
	fmt.Printf("  Routes:  %d\n", len(m.Routes))
	fmt.Printf("  Size:    %s\n\n", dim(fileSize(output)))
}
