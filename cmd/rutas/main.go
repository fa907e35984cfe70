// Command rutas compiles route directives into a dispatcher.
package main

import "github.com/abdul-hamid-achik/rutas/cmd/rutas/commands"

func main() {
	commands.Execute()
}
