package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"
)

var (
	// Version information (set via ldflags during build)
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "garitrack",
		Usage: "Report new GARI users created inside a date range",
		Description: `Lists the most recent signatures touching the token mint, keeps the ones
whose block falls inside [start-date, end-date], and prints every transaction
that created and funded a brand new token account.

Only the most recent 1000 signatures are inspected.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "start-date",
				Aliases:  []string{"s"},
				Usage:    "First day of the range, inclusive (YYYY-MM-DD)",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "end-date",
				Aliases:  []string{"e"},
				Usage:    "Last day of the range, inclusive (YYYY-MM-DD)",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "Optional YAML config file",
			},
			&cli.StringFlag{
				Name:  "rpc-url",
				Usage: "Solana RPC URL, or a comma-separated list to pick from at random (env: GARITRACK_RPC_URL)",
			},
			&cli.StringFlag{
				Name:  "mint",
				Usage: "Token mint address to scan (env: GARITRACK_MINT)",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Number of recent signatures to inspect, 1 to 1000 (env: GARITRACK_LIMIT)",
			},
			&cli.StringFlag{
				Name:  "timezone",
				Usage: "IANA zone used to turn block times into days, or Local (env: GARITRACK_TIMEZONE)",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Transactions fetched concurrently; output order is unchanged (env: GARITRACK_WORKERS)",
			},
			&cli.Float64Flag{
				Name:  "rps",
				Usage: "Maximum RPC requests per second, 0 for no limit (env: GARITRACK_RPS)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print one JSON object per event instead of text blocks",
			},
			&cli.StringSliceFlag{
				Name:  "jq",
				Usage: "jq expression an event must satisfy to be reported (can be specified multiple times, all must match)",
			},
			&cli.StringFlag{
				Name:  "nats-url",
				Usage: "Publish each reported event to this NATS server (env: NATS_URL)",
			},
			&cli.StringFlag{
				Name:  "nats-subject",
				Usage: "Subject prefix for published events (env: GARITRACK_NATS_SUBJECT)",
			},
			&cli.StringFlag{
				Name:  "pushgateway-url",
				Usage: "Push run metrics to this Prometheus Pushgateway when done (env: PUSHGATEWAY_URL)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level: debug, info, warn, error (env: LOG_LEVEL)",
			},
		},
		Action: runScan,
	}
}

// setupLogger creates a structured logger with the given log level.
func setupLogger(levelStr string) *slog.Logger {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}
