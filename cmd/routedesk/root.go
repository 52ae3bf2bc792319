package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "routedesk",
	Short: "RouteDesk - self-service nginx change pipeline",
	Long: `RouteDesk lets product teams change their own reverse proxy routing
without direct access to the nginx repository.

Teams submit upstream and location fragments through the HTTP API.
Each submission is validated in three stages (syntax, policy, team
scope), queued as a change request, and turned into a pull request
against the configuration repository by a background worker.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
