package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/spf13/cobra"

	beacon "github.com/minddeck/beacon-go"
	"github.com/minddeck/beacon-go/adapters"
)

var (
	simulateEndpoint string
	simulateEvents   int
	simulatePace     time.Duration
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Drive a client with synthetic activity",
	Long: `simulate starts a session against the configured endpoint, emits a
stream of synthetic page views, field edits and actions, then ends the
session and prints the client's counters. Point it at "beaconctl
collect" for a full local loop.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := beacon.LoadConfig(configPath)
		if err != nil {
			return err
		}
		if simulateEndpoint != "" {
			config.Endpoint = simulateEndpoint
		}
		if config.StorageAdapter == nil {
			config.StorageAdapter = adapters.NewMemoryStorageAdapter()
		}
		if config.LoggerAdapter == nil {
			config.LoggerAdapter = adapters.NewPrintLoggerAdapter(adapters.LogLevelInfo)
		}

		signals := adapters.NewChannelSignals()
		config.LifecycleAdapter = signals

		client, err := beacon.NewClient(config)
		if err != nil {
			return err
		}
		defer client.Close()

		ctx := cmd.Context()
		if err := client.Init(ctx); err != nil {
			return err
		}

		sessionID := client.StartSession(ctx)
		fmt.Printf("session started: %s\n", sessionID)

		client.SetCurrentUser("simulated-user")
		client.SetCurrentProject("demo-project")

		pages := []string{"/dashboard", "/projects/demo", "/settings", "/search"}
		for i := 0; i < simulateEvents; i++ {
			switch i % 4 {
			case 0:
				client.TrackPageView(pages[rand.Intn(len(pages))])
			case 1:
				client.TrackFieldEdit("demo-project", "title", "draft", fmt.Sprintf("draft-%d", i))
			case 2:
				client.TrackAction("save", map[string]any{"iteration": i})
			case 3:
				client.TrackSearch(fmt.Sprintf("query %d", i), rand.Intn(50))
			}
			signals.Emit(adapters.SignalActivity)
			time.Sleep(simulatePace)
		}

		client.FlushEvents(ctx)
		client.EndSession(ctx)

		stats := client.GetAnalyticsStats()
		fmt.Printf("tracked=%d sent=%d queued=%d dropped=%d pending=%d\n",
			stats.EventsTracked, stats.EventsSent, stats.EventsQueued, stats.EventsDropped, stats.PendingEvents)
		return nil
	},
}

func init() {
	simulateCmd.Flags().StringVar(&simulateEndpoint, "endpoint", "", "collector base URL (overrides config)")
	simulateCmd.Flags().IntVar(&simulateEvents, "events", 20, "number of synthetic events to emit")
	simulateCmd.Flags().DurationVar(&simulatePace, "pace", 50*time.Millisecond, "delay between events")
}
