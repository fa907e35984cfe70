package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/rutas/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the rutas version",
	Run: func(cmd *cobra.Command, args []string) {
		if jsonOutput {
			printSuccess(VersionOutput{Version: version.GetVersion(), Schema: version.GetGeneratorSchemaVersion()})
			return
		}
		fmt.Printf("rutas %s (generated code schema %d)\n", version.GetVersion(), version.GetGeneratorSchemaVersion())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
