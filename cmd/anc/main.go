// Package main is the entry point for the anc CLI tool.
package main

import (
	"os"

	"github.com/mjlindsay/anchor/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
