// Command orchard is the badge genome shell: it inspects, validates and
// regenerates the genome family kept in block storage.
package main

import (
	"os"

	"orchard/internal/cli"
)

var exitFunc = os.Exit

// main runs the CLI with the program arguments and exits with its status.
func main() {
	exitFunc(cli.Execute(os.Args[1:], os.Stdout, os.Stderr))
}
