package commands

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/rutas/pkg/session"
)

var generateCmd = &cobra.Command{
	Use:     "generate",
	Aliases: []string{"gen"},
	Short:   "Generate the dispatcher and handler wrappers",
	Long: `Scan the module for //route:http directives and generate code.

For every package holding routes, a zz_rutas_<package>.go file is written
next to the handlers with the path, query and form types. The dispatcher
is written to <output-dir>/dispatcher.go. Generated files left over from
routes that no longer exist are removed.

Examples:
  rutas generate                              Generate using rutas.yaml
  rutas generate --output-dir internal/http   Write the dispatcher elsewhere
  rutas generate --dry-run                    Show what would be written
  rutas generate --strict                     Fail on warnings
  rutas generate --json                       Output JSON for automation`,
	Run: runGenerate,
}

var generateDryRun bool

func init() {
	generateCmd.Flags().BoolVar(&generateDryRun, "dry-run", false, "Generate in memory without writing files")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) {
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	header("Generate")

	cfg, err := loadConfig(cmd)
	if err != nil {
		fail("failed to load config", err)
	}

	if !jsonOutput {
		fmt.Printf("  %s Scanning %s...\n", yellow("→"), cfg.SourceDir)
	}

	result, err := newSession(cfg, generateDryRun).Run(context.Background())
	if err != nil {
		var strict *session.StrictError
		if errors.As(err, &strict) && result != nil {
			if jsonOutput {
				printJSON(JSONResponse{Success: false, Data: newGenerateOutput(result, generateDryRun), Error: err.Error()})
			} else {
				fmt.Printf("  %s %v\n\n", red("❌"), err)
			}
			exit(1)
			return
		}
		fail("generation failed", err)
	}

	if jsonOutput {
		printSuccess(newGenerateOutput(result, generateDryRun))
		return
	}

	fmt.Printf("  %s Compiled %d routes\n", green("✓"), len(result.Routes))
	if generateDryRun {
		fmt.Printf("  %s Dry run: %d files would be generated\n", yellow("→"), len(result.Files))
		for _, f := range result.Files {
			fmt.Printf("    • %s\n", relToModule(result.ModuleRoot, f.Path))
		}
	} else {
		fmt.Printf("  %s Generated %d files (%d changed)\n", green("✓"), len(result.Files), len(result.Written))
		for _, p := range result.Written {
			fmt.Printf("    • %s\n", relToModule(result.ModuleRoot, p))
		}
		for _, p := range result.Removed {
			fmt.Printf("    %s %s\n", red("-"), relToModule(result.ModuleRoot, p))
		}
	}
	if n := len(result.Outdated); n > 0 && !generateDryRun {
		fmt.Printf("  %s Regenerated %d file(s) from an older generator schema\n", yellow("→"), n)
	}
	if n := result.Problems(); n > 0 {
		fmt.Printf("  %s %d problem(s), run 'rutas check' for details\n", yellow("⚠"), n)
	}
	fmt.Printf("\n  %s Done!\n\n", green("✓"))
}

// relToModule shortens p for display.
func relToModule(root, p string) string {
	if rel, err := filepath.Rel(root, p); err == nil {
		return filepath.ToSlash(rel)
	}
	return p
}
