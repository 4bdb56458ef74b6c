package cmd

import (
	"fmt"
	"os"

	"tracktide/server"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tracktide",
	Short: "TrackTide is a music streaming companion service.",
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
