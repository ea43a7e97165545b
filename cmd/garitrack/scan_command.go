package main

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brojonat/garitrack/service/config"
	"github.com/brojonat/garitrack/service/daterange"
	"github.com/brojonat/garitrack/service/metrics"
	natspkg "github.com/brojonat/garitrack/service/nats"
	"github.com/brojonat/garitrack/service/newuser"
	"github.com/brojonat/garitrack/service/report"
	"github.com/brojonat/garitrack/service/scan"
	"github.com/brojonat/garitrack/service/solana"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"
)

const metricsJob = "garitrack"

// connectPublisher opens the NATS publisher used when a NATS URL is set.
var connectPublisher = func(natsURL, prefix string, m *metrics.Metrics, logger *slog.Logger) (natspkg.Publisher, error) {
	return natspkg.NewPublisher(natsURL, prefix, m, logger)
}

func runScan(c *cli.Context) error {
	r, err := daterange.Parse(c.String("start-date"), c.String("end-date"))
	if err != nil {
		return err
	}

	cfg, err := config.Read(c.String("config"))
	if err != nil {
		return err
	}
	if err := applyFlags(c, cfg); err != nil {
		return err
	}

	logger := setupLogger(cfg.LogLevel)

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	m := metrics.NewMetrics(registry)

	endpoint, err := solana.SelectRandomEndpoint(cfg.RPCURLs)
	if err != nil {
		return err
	}
	client := solana.NewClient(solana.NewRPCClient(endpoint), endpointLabel(endpoint), m, logger).
		WithLimiter(solana.NewLimiter(cfg.RequestsPerSecond))

	rep, closeReporter, err := buildReporter(c.App.Writer, cfg, c.Bool("json"), c.StringSlice("jq"), m, logger)
	if err != nil {
		return err
	}

	scanner, err := scan.NewScanner(scan.Config{
		Gateway:    client,
		Classifier: newuser.NewClassifier(newuser.DefaultRule),
		Reporter:   rep,
		Metrics:    m,
		Logger:     logger,
		Mint:       cfg.MintAddress,
		Limit:      cfg.SignatureLimit,
		Location:   loc,
		Workers:    cfg.Workers,
	})
	if err != nil {
		if cerr := closeReporter(); cerr != nil {
			logger.Warn("failed to close reporter", "error", cerr)
		}
		return err
	}

	logger.InfoContext(ctx, "starting scan",
		"mint", cfg.MintAddress,
		"range", r.String(),
		"rpc", endpointLabel(endpoint),
		"timezone", loc.String(),
		"workers", cfg.Workers,
	)

	_, runErr := scanner.Run(ctx, r)

	if err := closeReporter(); err != nil {
		logger.Warn("failed to close reporter", "error", err)
	}

	if cfg.PushgatewayURL != "" {
		// The run context may already be cancelled.
		pushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := metrics.Push(pushCtx, cfg.PushgatewayURL, metricsJob, registry, map[string]string{"instance": instanceName()}); err != nil {
			logger.Warn("failed to push metrics", "error", err)
		}
	}

	return runErr
}

// applyFlags overrides cfg with the flags given on the command line and
// validates the result.
func applyFlags(c *cli.Context, cfg *config.Config) error {
	if c.IsSet("rpc-url") {
		cfg.RPCURLs = config.SplitList(c.String("rpc-url"))
	}
	if c.IsSet("mint") {
		cfg.MintAddress = c.String("mint")
	}
	if c.IsSet("limit") {
		cfg.SignatureLimit = c.Int("limit")
	}
	if c.IsSet("timezone") {
		cfg.Timezone = c.String("timezone")
	}
	if c.IsSet("workers") {
		cfg.Workers = c.Int("workers")
	}
	if c.IsSet("rps") {
		cfg.RequestsPerSecond = c.Float64("rps")
	}
	if c.IsSet("nats-url") {
		cfg.NATSURL = c.String("nats-url")
	}
	if c.IsSet("nats-subject") {
		cfg.NATSSubjectPrefix = c.String("nats-subject")
	}
	if c.IsSet("pushgateway-url") {
		cfg.PushgatewayURL = c.String("pushgateway-url")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	return cfg.Validate()
}

// buildReporter assembles the output chain: jq filters first, then the
// printer, then the optional NATS publisher. The returned func releases the
// publisher.
func buildReporter(
	w io.Writer,
	cfg *config.Config,
	asJSON bool,
	jqExprs []string,
	m *metrics.Metrics,
	logger *slog.Logger,
) (report.Reporter, func() error, error) {
	var printer report.Reporter = report.NewTextReporter(w)
	if asJSON {
		printer = report.NewJSONReporter(w)
	}

	sinks := []report.Reporter{printer}
	closer := func() error { return nil }

	if cfg.NATSURL != "" {
		publisher, err := connectPublisher(cfg.NATSURL, cfg.NATSSubjectPrefix, m, logger)
		if err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, publisherReporter(publisher))
		closer = publisher.Close
	}

	var chain report.Reporter = report.Multi(sinks...)
	if len(jqExprs) > 0 {
		filter, err := report.NewJQFilter(chain, jqExprs, logger)
		if err != nil {
			if cerr := closer(); cerr != nil {
				logger.Warn("failed to close reporter", "error", cerr)
			}
			return nil, nil, err
		}
		chain = filter
	}

	return chain, closer, nil
}

func publisherReporter(p natspkg.Publisher) report.Reporter {
	return report.ReporterFunc(func(ctx context.Context, ev *newuser.Event) error {
		return p.PublishNewUser(ctx, ev)
	})
}

// instanceName groups pushed metrics by the machine that ran the scan.
func instanceName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return metricsJob
	}
	return host
}

// endpointLabel reduces an RPC URL to its host so API keys in the path or
// query never reach logs or metric labels.
func endpointLabel(rpcURL string) string {
	u, err := url.Parse(rpcURL)
	if err != nil || u.Host == "" {
		return "unknown"
	}
	return u.Host
}
