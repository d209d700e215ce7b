// Package main is the entry point for the bazaar CLI.
package main

import (
	"os"

	"github.com/mesh-intelligence/bazaar/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
