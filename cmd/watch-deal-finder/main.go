// Package main is the entry point for watch-deal-finder.
package main

import (
	"os"

	"watch-deal-finder/cmd/watch-deal-finder/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
