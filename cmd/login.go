package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"tracktide/client"
	"tracktide/config"
	"tracktide/core/session"

	"github.com/spf13/cobra"
)

var (
	loginEmail    string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the session",
	Long:  `Authenticate against the TrackTide API and persist the session file used by the play command.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		sess := session.NewStore(cfg.SessionFile)
		api := client.New(cfg.APIBaseURL, sess)

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		user, err := api.Login(ctx, loginEmail, loginPassword)
		if err != nil {
			log.Fatalf("Login failed: %v", err)
		}
		fmt.Printf("Logged in as %s <%s>\n", user.Name, user.Email)
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and clear the stored session",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		sess := session.NewStore(cfg.SessionFile)
		api := client.New(cfg.APIBaseURL, sess)

		if err := api.Logout(); err != nil {
			log.Fatalf("Logout failed: %v", err)
		}
		fmt.Println("Logged out.")
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "account email")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "account password")
	loginCmd.MarkFlagRequired("email")
	loginCmd.MarkFlagRequired("password")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
}
