package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "beaconctl",
	Short: "Development tooling for the beacon analytics client",
	Long: `beaconctl bundles the development workflow for the beacon client:
a local collector that implements the analytics endpoints, and a
simulator that drives a client against it with synthetic activity.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// A missing .env is fine; explicit environment wins either way.
		_ = godotenv.Load()
	},
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML client config")
	rootCmd.AddCommand(collectCmd)
	rootCmd.AddCommand(simulateCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
