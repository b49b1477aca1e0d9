// Package cmd contains the nolemma operator CLI: serve, drive, and demo.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// build is the git version of this program, set via build flags.
var build = "develop"

var rootCmd = &cobra.Command{
	Use:   "nolemma",
	Short: "Run and exercise a toy rollup sequencer",
}

// Execute runs the root command, exiting with status 1 on any error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
