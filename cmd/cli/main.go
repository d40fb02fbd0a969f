package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	host    string
	dbPath  string
	project string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "ledger-cli",
	Short: "A CLI to process command files and query the rating ledger",
	Long: `A command-line interface for running ledger command files against a
database and for making requests to the endpoints of the ledger server.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			log.SetLevel(log.DebugLevel)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&host, "host", "http://localhost:8080", "The host address of the server")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", envOr("DB_NAME", "ledger.db"), "The SQLite database file used by process and reset")
	rootCmd.PersistentFlags().StringVar(&project, "project", os.Getenv("GCP_PROJECT"), "GCP project to publish ledger events to (empty disables publishing)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Whoops. There was an error while executing your command '%s'\n", err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
