package main

import (
	"fmt"
	"os"

	"clinic-funnel/cmd/clinic-funnel/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
