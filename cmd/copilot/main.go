// Command copilot is the operator CLI for the sales copilot.
package main

import (
	"fmt"
	"os"

	"loomsales.app/copilot/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
