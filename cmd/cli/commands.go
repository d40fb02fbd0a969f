package main

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/rating-ledger/internal/database"
	"github.com/mauv0809/rating-ledger/internal/ledger"
	"github.com/mauv0809/rating-ledger/internal/metrics"
	"github.com/mauv0809/rating-ledger/internal/processor"
	"github.com/mauv0809/rating-ledger/internal/pubsub"
	"github.com/mauv0809/rating-ledger/internal/report"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(playerCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(rankingCmd)
	rootCmd.AddCommand(rangeCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(metricsCmd)
}

var processCmd = &cobra.Command{
	Use:   "process [file]",
	Short: "Run a command file against the ledger database",
	Long: `Process reads the command file line by line and writes the output of
every read command to stdout. Without a file argument the file name is read
from stdin.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := ""
		if len(args) == 1 {
			name = args[0]
		} else {
			var err error
			if name, err = promptFileName(cmd.InOrStdin(), cmd.ErrOrStderr()); err != nil {
				return err
			}
		}

		f, err := os.Open(name)
		if err != nil {
			return fmt.Errorf("failed to open command file: %w", err)
		}
		defer f.Close()

		return withDB(func(ctx context.Context, db *sql.DB) error {
			pubsubClient := pubsub.NewNop()
			if project != "" {
				pubsubClient = pubsub.New(project)
			}
			defer pubsubClient.Close()

			p := processor.New(
				ledger.New(db),
				report.New(db),
				func(ctx context.Context) error { return database.Reset(ctx, db) },
				metrics.NewService(),
				metrics.New(db),
				pubsubClient,
			)
			summary, err := p.ProcessFile(ctx, f, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			log.Info("Processed command file", "file", name, "lines", summary.Lines, "invalid", summary.Invalid)
			return nil
		})
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Drop and recreate every ledger table",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(ctx context.Context, db *sql.DB) error {
			if err := database.Reset(ctx, db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Ledger reset")
			return nil
		})
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/health", nil)
	},
}

var playerCmd = &cobra.Command{
	Use:   "player <id>",
	Short: "Show a player's summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/players/"+url.PathEscape(args[0]), textFormat())
	},
}

var historyCmd = &cobra.Command{
	Use:   "history <id>",
	Short: "Show a player's match history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/players/"+url.PathEscape(args[0])+"/history", textFormat())
	},
}

var rankingCmd = &cobra.Command{
	Use:   "ranking <id>...",
	Short: "Rank players by win percentage over their matches against each other",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		q := textFormat()
		q.Set("ids", strings.Join(args, ","))
		return performGetRequest("/reports/ranking", q)
	},
}

var rangeCmd = &cobra.Command{
	Use:   "range <from> <to>",
	Short: "List matches completed between two days (YYYYMMDD)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		q := textFormat()
		q.Set("from", args[0])
		q.Set("to", args[1])
		return performGetRequest("/reports/range", q)
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Get the persisted processing counters",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/stats", nil)
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/metrics", nil)
	},
}

func textFormat() url.Values {
	return url.Values{"format": []string{"text"}}
}

func promptFileName(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, "Command file: ")
	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("failed to read file name: %w", err)
		}
		return "", fmt.Errorf("no file name given")
	}
	name := strings.TrimSpace(scanner.Text())
	if name == "" {
		return "", fmt.Errorf("no file name given")
	}
	return name, nil
}

// withDB opens the configured database, runs fn and closes it again. An
// interrupt cancels the context passed to fn.
func withDB(fn func(ctx context.Context, db *sql.DB) error) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	db, teardown, err := database.InitDB(dbPath, os.Getenv("TURSO_PRIMARY_URL"), os.Getenv("TURSO_AUTH_TOKEN"))
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer teardown()
	return fn(ctx, db)
}

func performGetRequest(endpoint string, query url.Values) error {
	target := host + endpoint
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	if verbose {
		sep := "?"
		if len(query) > 0 {
			sep = "&"
		}
		target += sep + "verbose=true"
	}
	log.Debug("Making request", "url", target)

	resp, err := http.Get(target)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server answered %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	fmt.Print(string(body))
	return nil
}
