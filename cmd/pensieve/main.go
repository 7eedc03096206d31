// Package main provides the pensieve CLI, a template-validated journal of
// structured memory entries backed by a single SQLite file.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		category, code := classify(err)
		fmt.Fprintf(os.Stderr, "%s: %v\n", category, err)
		os.Exit(code)
	}
}
