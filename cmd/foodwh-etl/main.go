//-------------------------------------------------------------------------
//
// foodwh-etl
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package main is the entry point for foodwh-etl.
package main

import (
	"fmt"
	"os"

	"github.com/foodwh/foodwh-etl/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
