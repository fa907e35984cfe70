package commands

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate route directives without writing files",
	Long: `Compile the module's route directives and report malformed directives,
signature mismatches, path conflicts and shadowed routes.

Malformed directives, shadowed routes and generated files written by an
older generator schema are warnings; they fail the command only with
--strict. Path conflicts always fail.

Examples:
  rutas check              Report problems
  rutas check --strict     Exit non-zero on any warning
  rutas check --json       Output JSON for automation`,
	Run: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) {
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	header("Check")

	cfg, err := loadConfig(cmd)
	if err != nil {
		fail("failed to load config", err)
	}
	result, err := newSession(cfg, true).Compile(context.Background())
	if err != nil {
		fail("check failed", err)
	}

	out := CheckOutput{RouteCount: len(result.Routes)}
	out.Warnings, out.Findings = problems(result)
	out.Outdated = outdated(result)
	count := result.Problems() + len(result.Outdated)
	out.Valid = count == 0 || !cfg.Strict

	if jsonOutput {
		if out.Valid {
			printSuccess(out)
		} else {
			printJSON(JSONResponse{Success: false, Data: out, Error: "strict mode: problems found"})
			exit(1)
		}
		return
	}

	// Warnings and findings were already logged by the session.
	switch {
	case count == 0:
		fmt.Printf("  %s %d routes, no problems\n\n", green("✓"), len(result.Routes))
	case out.Valid:
		fmt.Printf("  %s %d routes, %d problem(s)\n\n", yellow("⚠"), len(result.Routes), count)
	default:
		fmt.Printf("  %s %d routes, %d problem(s) in strict mode\n\n", red("❌"), len(result.Routes), count)
		exit(1)
	}
}
