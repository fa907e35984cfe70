package commands

import (
	"errors"
	"fmt"
	"go/token"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/rutas/internal/config"
	"github.com/abdul-hamid-achik/rutas/pkg/collector"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a rutas.yaml config",
	Long: `Write rutas.yaml at the root of the current Go module.

In a terminal you are asked for the main settings; with --yes, --json or
when stdin is not a terminal the defaults are written as they are.

Examples:
  rutas init
  rutas init --yes
  rutas init --force     Overwrite an existing rutas.yaml`,
	Run: runInit,
}

var (
	initYes   bool
	initForce bool
)

func init() {
	initCmd.Flags().BoolVarP(&initYes, "yes", "y", false, "Accept defaults without prompting")
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing rutas.yaml")

	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) {
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	header("Init")

	dir := workDir
	if root, _, err := collector.FindModule(workDir); err == nil {
		dir = root
	} else if !jsonOutput {
		fmt.Printf("  %s No go.mod found, writing to %s\n", yellow("⚠"), workDir)
	}
	path := filepath.Join(dir, config.FileName)

	cfg := config.Default()
	if !initYes && !jsonOutput && isatty.IsTerminal(os.Stdin.Fd()) {
		if err := askConfig(&cfg); err != nil {
			fmt.Printf("  %s Cancelled\n\n", yellow("!"))
			return
		}
	}

	if err := config.Write(path, cfg, initForce); err != nil {
		if !initForce && errors.Is(err, os.ErrExist) && !jsonOutput {
			fmt.Printf("  %s %s already exists, use --force to overwrite\n\n", yellow("!"), config.FileName)
			exit(1)
			return
		}
		fail("failed to write config", err)
	}

	next := []string{
		"Annotate handlers with //route:http directives",
		"Run 'rutas generate'",
		"Mount the dispatcher with rutas.Handler",
	}
	if jsonOutput {
		printSuccess(InitOutput{Path: path, NextSteps: next})
		return
	}

	fmt.Printf("  %s Created %s\n\n", green("✓"), path)
	fmt.Printf("  Next steps:\n")
	for i, s := range next {
		fmt.Printf("    %d. %s\n", i+1, s)
	}
	fmt.Println()
}

// askConfig prompts for the main settings, starting from cfg.
func askConfig(cfg *config.Config) error {
	strict := cfg.Strict
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Source directory").
				Description("Scanned for //route:http directives, relative to go.mod").
				Value(&cfg.SourceDir),
			huh.NewInput().
				Title("Output directory").
				Description("Receives dispatcher.go").
				Value(&cfg.OutputDir),
			huh.NewInput().
				Title("Output package").
				Value(&cfg.OutputPackage).
				Validate(func(s string) error {
					if !token.IsIdentifier(s) || s == "_" {
						return fmt.Errorf("%q is not a Go identifier", s)
					}
					return nil
				}),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Manifest format").
				Options(huh.NewOptions("json", "yaml", "sqlite")...).
				Value(&cfg.Manifest.Format),
			huh.NewConfirm().
				Title("Strict mode").
				Description("Fail generation on warnings and shadowed routes").
				Value(&strict),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}
	cfg.Strict = strict
	cfg.SourceDir = strings.TrimSpace(cfg.SourceDir)
	cfg.OutputDir = strings.TrimSpace(cfg.OutputDir)

	// Keep the manifest file extension in line with the chosen format.
	ext := map[string]string{"json": ".json", "yaml": ".yaml", "sqlite": ".db"}[cfg.Manifest.Format]
	cfg.Manifest.Output = strings.TrimSuffix(cfg.Manifest.Output, filepath.Ext(cfg.Manifest.Output)) + ext
	return nil
}
