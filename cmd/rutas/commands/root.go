// Package commands provides the CLI commands for rutas.
package commands

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/rutas/internal/config"
	"github.com/abdul-hamid-achik/rutas/internal/version"
	"github.com/abdul-hamid-achik/rutas/pkg/collector"
	"github.com/abdul-hamid-achik/rutas/pkg/session"
)

var rootCmd = &cobra.Command{
	Use:   "rutas",
	Short: "rutas - compile route directives into a Go dispatcher",
	Long: `rutas reads //route:http directives written on Go handler functions and
generates a dispatcher that matches request paths, parses typed captures,
query strings and post forms, and calls the handlers.

Quick Start:
  rutas init           Write a rutas.yaml config
  rutas generate       Generate the dispatcher and handler wrappers
  rutas routes         List all routes in dispatch order
  rutas check          Validate directives without writing files
  rutas watch          Regenerate on every change

Documentation: https://github.com/abdul-hamid-achik/rutas`,
	Version: version.GetVersion(),
}

// exit is replaced in tests.
var exit = os.Exit

// Global flags
var (
	workDir    string
	configFile string
	verbose    bool
)

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVar(&jsonOutput, "json", false, "Output in JSON format (for automation and LLM agents)")
	flags.StringVarP(&workDir, "dir", "C", ".", "Directory inside the Go module to operate on")
	flags.StringVar(&configFile, "config", "", "Config file (default: rutas.yaml in --dir)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Log every route and file")

	// Config overrides, bound to rutas.yaml keys.
	flags.String("source-dir", "", "Directory scanned for route directives")
	flags.String("output-dir", "", "Directory receiving dispatcher.go")
	flags.String("output-package", "", "Package name of dispatcher.go")
	flags.String("runtime-import", "", "Import path of the rutas runtime package")
	flags.Bool("strict", false, "Treat warnings and lint findings as errors")
}

// loadConfig resolves rutas.yaml, RUTAS_* variables and command-line flags.
// rutas.yaml is looked up at the module root when --dir is inside a module.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	dir := workDir
	if root, _, err := collector.FindModule(workDir); err == nil {
		dir = root
	}
	return config.Load(dir, configFile, cmd.Flags())
}

// newLogger writes diagnostics to stderr, or nowhere in JSON mode.
func newLogger() *log.Logger {
	if jsonOutput {
		return log.New(io.Discard, "", 0)
	}
	dim := color.New(color.Faint).SprintFunc()
	return log.New(os.Stderr, "  "+dim("rutas")+" ", 0)
}

func newSession(cfg *config.Config, dryRun bool) *session.Session {
	return session.New(session.Options{
		Dir:     workDir,
		Config:  *cfg,
		Logger:  newLogger(),
		Verbose: verbose,
		DryRun:  dryRun,
	})
}

// fail reports err in the current output mode and exits.
func fail(what string, err error) {
	if jsonOutput {
		printJSONError(fmt.Errorf("%s: %w", what, err))
	} else {
		fmt.Printf("  %s %s: %v\n\n", color.RedString("Error:"), what, err)
	}
	exit(1)
}

// header prints the command banner in human mode.
func header(title string) {
	if jsonOutput {
		return
	}
	cyan := color.New(color.FgCyan).SprintFunc()
	fmt.Printf("\n  %s %s\n\n", cyan("rutas"), title)
}
