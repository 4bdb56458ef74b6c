package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"tracktide/client"
	"tracktide/config"
	"tracktide/core/player"
	"tracktide/core/session"
	"tracktide/model"

	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:   "play <query>",
	Short: "Search the catalog and play the results",
	Long: `Search the song catalog, queue the results and play their preview
clips. Each started track is recorded in play history. Stopping the session
(logging out, also from another terminal) stops playback.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		sess := session.NewStore(cfg.SessionFile)
		api := client.New(cfg.APIBaseURL, sess)

		if !sess.LoggedIn() {
			log.Fatal("Not logged in. Run `tracktide login` first.")
		}
		if err := sess.Watch(); err != nil {
			log.Printf("Session watch unavailable: %v", err)
		}
		defer sess.StopWatch()

		query := strings.Join(args, " ")
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		songs, err := api.Search(ctx, query)
		cancel()
		if err != nil {
			log.Fatalf("Search failed: %v", err)
		}
		if len(songs) == 0 {
			fmt.Println("No results.")
			return
		}

		history := client.NewHistoryStore(api)

		engine := player.NewEngine(player.NewBeepSource())
		engine.BindSession(sess)
		engine.SetOnPlay(func(s model.Song) {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if _, err := history.Record(ctx, s); err != nil {
				log.Printf("Could not record play: %v", err)
			}
			fmt.Printf("Playing: %s - %s\n", s.Artist, s.Title)
		})

		engine.SetCurrentQueue(songs, songs[0].ID)
		engine.Play(songs[0])

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				engine.Stop()
				fmt.Println("\nStopped.")
				return
			case <-ticker.C:
				if err := engine.PlaybackError(); err != nil {
					fmt.Printf("Playback error (%s): %v\n", err.Kind, err.Err)
					engine.ClearError()
				}
				if engine.State() == player.Stopped && engine.PlaybackError() == nil {
					if !sess.LoggedIn() {
						fmt.Println("Session ended, stopping.")
						return
					}
				}
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(playCmd)
}
