// Package main provides the trackgraph CLI, a small operator tool for
// inspecting and repairing lineage databases.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
