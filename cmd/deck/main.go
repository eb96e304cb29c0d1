package main

import (
	"fmt"
	"os"

	"github.com/melih/lighthouse-deck/internal/adapters/cli"
)

func main() {
	if err := cli.NewRootCommand(nil).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
