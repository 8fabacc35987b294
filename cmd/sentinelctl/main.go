// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command sentinelctl is the CLI companion to the sentinel server.
//
// Usage:
//
//	sentinelctl decide earthquake
//	sentinelctl decide flood --server http://localhost:8080
//	sentinelctl ingest earthquake
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// serverURL holds the --server flag value shared by remote commands.
var serverURL string

func main() {
	rootCmd := &cobra.Command{
		Use:   "sentinelctl",
		Short: "CLI for the Aleutian Sentinel incident decision pipeline",
		Long: `sentinelctl drives the Aleutian Sentinel pipeline from the command line.

decide sends a topic to a running sentinel server and prints the decision.
ingest runs news retrieval and incident extraction in-process, writing the
incident to the configured Weaviate graph.`,
	}

	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "Base URL of the sentinel server")

	rootCmd.AddCommand(newDecideCommand())
	rootCmd.AddCommand(newIngestCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
