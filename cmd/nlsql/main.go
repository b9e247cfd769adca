// Package main is the entry point for the nlsql CLI.
package main

import (
	"os"

	"github.com/satishbabariya/nlsql/cmd/nlsql/commands"
)

func main() {
	os.Exit(commands.Execute())
}
