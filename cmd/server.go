package cmd

import (
	"tracktide/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the TrackTide API server",
	Long:  `Start the HTTP server backing the TrackTide web app: auth, catalog search, favorites, play history, playlists and artist follows.`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
