package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/rutas/pkg/manifest"
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "List all routes in dispatch order",
	Long: `Compile the module's route directives and list the routes in the order
the dispatcher tries them.

Examples:
  rutas routes           List routes
  rutas routes --tree    Print the dispatch trie
  rutas routes --json    Output JSON for automation`,
	Run: runRoutes,
}

var routesTree bool

func init() {
	routesCmd.Flags().BoolVar(&routesTree, "tree", false, "Print the dispatch trie instead of a flat list")

	rootCmd.AddCommand(routesCmd)
}

func runRoutes(cmd *cobra.Command, args []string) {
	cyan := color.New(color.FgCyan).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	header("Routes")

	cfg, err := loadConfig(cmd)
	if err != nil {
		fail("failed to load config", err)
	}
	result, err := newSession(cfg, true).Compile(context.Background())
	if err != nil {
		fail("compile failed", err)
	}

	m := manifest.New(result.Tree, result.ModuleRoot)
	if jsonOutput {
		printSuccess(RoutesOutput{Routes: m.Routes, TotalRoutes: len(m.Routes)})
		return
	}

	if len(m.Routes) == 0 {
		fmt.Printf("  No routes found\n\n")
		return
	}

	if routesTree {
		if err := result.Tree.Print(os.Stdout); err != nil {
			fail("print failed", err)
		}
		fmt.Println()
		return
	}

	width := 0
	for _, e := range m.Routes {
		width = max(width, len(strings.Join(e.Methods, "|")))
	}
	fmt.Printf("  %s Routes (%d)\n", cyan("📍"), len(m.Routes))
	for _, e := range m.Routes {
		methods := strings.Join(e.Methods, "|")
		pad := strings.Repeat(" ", width-len(methods))
		fmt.Printf("    %s%s %s %s\n", green(methods), pad, e.Path, dim("→ "+e.Handler))
		line := "      " + dim(e.Source) + "  " + dim(strings.Join(e.Responses, "|"))
		if len(e.Capabilities) > 0 {
			line += "  " + dim("uses "+strings.Join(e.Capabilities, ", "))
		}
		fmt.Println(line)
	}
	fmt.Println()
}
