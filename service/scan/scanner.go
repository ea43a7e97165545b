package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/brojonat/garitrack/service/daterange"
	"github.com/brojonat/garitrack/service/metrics"
	"github.com/brojonat/garitrack/service/newuser"
	"github.com/brojonat/garitrack/service/report"
	"github.com/brojonat/garitrack/service/solana"
	"golang.org/x/sync/errgroup"
)

// Gateway is the pair of ledger lookups a scan needs. *solana.Client
// satisfies it.
type Gateway interface {
	ListSignatures(ctx context.Context, params solana.ListSignaturesParams) ([]solana.SignatureRecord, error)
	FetchTransaction(ctx context.Context, signature string) (*solana.Transaction, error)
}

// Config holds the Scanner's dependencies.
type Config struct {
	Gateway    Gateway
	Classifier *newuser.Classifier
	Reporter   report.Reporter
	Metrics    *metrics.Metrics // optional
	Logger     *slog.Logger

	Mint     string
	Limit    int
	Location *time.Location // nil means time.Local
	Workers  int            // <= 1 fetches one transaction at a time
}

// Summary counts what a run saw.
type Summary struct {
	SignaturesFetched      int
	SignaturesInRange      int
	TransactionsClassified int
	EventsReported         int
}

// Scanner lists recent signatures for a mint, keeps those inside a date
// range, and reports every transaction that has the new-user shape.
type Scanner struct {
	cfg Config
}

// NewScanner validates cfg and returns a Scanner.
func NewScanner(cfg Config) (*Scanner, error) {
	if cfg.Gateway == nil {
		return nil, errors.New("gateway is required")
	}
	if cfg.Reporter == nil {
		return nil, errors.New("reporter is required")
	}
	if cfg.Mint == "" {
		return nil, errors.New("mint is required")
	}
	if cfg.Classifier == nil {
		cfg.Classifier = newuser.NewClassifier(newuser.DefaultRule)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Limit <= 0 {
		cfg.Limit = solana.MaxSignatureLimit
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Scanner{cfg: cfg}, nil
}

// Run performs one scan over r. It stops at the first failure; events
// reported before the failure stay reported.
func (s *Scanner) Run(ctx context.Context, r daterange.Range) (Summary, error) {
	start := time.Now()
	summary, err := s.run(ctx, r)

	status := "success"
	if err != nil {
		status = "error"
	}
	s.cfg.Metrics.RecordScanDuration(s.cfg.Mint, status, time.Since(start).Seconds())

	s.cfg.Logger.InfoContext(ctx, "scan finished",
		"mint", s.cfg.Mint,
		"range", r.String(),
		"status", status,
		"signatures_fetched", summary.SignaturesFetched,
		"signatures_in_range", summary.SignaturesInRange,
		"transactions_classified", summary.TransactionsClassified,
		"events_reported", summary.EventsReported,
		"duration", time.Since(start),
	)

	return summary, err
}

func (s *Scanner) run(ctx context.Context, r daterange.Range) (Summary, error) {
	var summary Summary

	records, err := s.cfg.Gateway.ListSignatures(ctx, solana.ListSignaturesParams{
		Address: s.cfg.Mint,
		Limit:   s.cfg.Limit,
	})
	if err != nil {
		return summary, fmt.Errorf("failed to list signatures: %w", err)
	}
	summary.SignaturesFetched = len(records)

	inRange, err := newuser.FilterByDate(records, r, s.cfg.Location)
	if err != nil {
		return summary, fmt.Errorf("failed to filter signatures: %w", err)
	}
	summary.SignaturesInRange = len(inRange)
	s.cfg.Metrics.RecordSignaturesFiltered(s.cfg.Mint, len(inRange), len(records)-len(inRange))

	s.cfg.Logger.DebugContext(ctx, "filtered signatures by date",
		"fetched", len(records),
		"in_range", len(inRange),
	)

	if s.cfg.Workers > 1 && len(inRange) > 1 {
		return s.runPool(ctx, inRange, summary)
	}
	return s.runSequential(ctx, inRange, summary)
}

func (s *Scanner) runSequential(ctx context.Context, records []solana.SignatureRecord, summary Summary) (Summary, error) {
	for _, rec := range records {
		ev, err := s.inspect(ctx, rec.Signature)
		if err != nil {
			return summary, err
		}
		summary.TransactionsClassified++
		if ev == nil {
			continue
		}
		if err := s.report(ctx, ev); err != nil {
			return summary, err
		}
		summary.EventsReported++
	}
	return summary, nil
}

// outcome is one pool slot. done is set only when inspect succeeded.
type outcome struct {
	event *newuser.Event
	done  bool
}

func (s *Scanner) runPool(ctx context.Context, records []solana.SignatureRecord, summary Summary) (Summary, error) {
	results := make([]outcome, len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)
	for i, rec := range records {
		i, rec := i, rec
		g.Go(func() error {
			ev, err := s.inspect(gctx, rec.Signature)
			if err != nil {
				return err
			}
			results[i] = outcome{event: ev, done: true}
			return nil
		})
	}
	waitErr := g.Wait()

	// Report in signature order up to the first slot that did not finish.
	for _, res := range results {
		if !res.done {
			break
		}
		summary.TransactionsClassified++
		if res.event == nil {
			continue
		}
		if err := s.report(ctx, res.event); err != nil {
			return summary, err
		}
		summary.EventsReported++
	}

	return summary, waitErr
}

// inspect fetches and classifies one transaction.
func (s *Scanner) inspect(ctx context.Context, signature string) (*newuser.Event, error) {
	tx, err := s.cfg.Gateway.FetchTransaction(ctx, signature)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transaction: %w", err)
	}

	ev, err := s.cfg.Classifier.Classify(tx)
	switch {
	case err != nil:
		s.cfg.Metrics.RecordTransactionClassified(s.cfg.Mint, "error")
		return nil, fmt.Errorf("failed to classify transaction %s: %w", signature, err)
	case ev == nil:
		s.cfg.Metrics.RecordTransactionClassified(s.cfg.Mint, "not_new_user")
	default:
		s.cfg.Metrics.RecordTransactionClassified(s.cfg.Mint, "new_user")
	}
	return ev, nil
}

func (s *Scanner) report(ctx context.Context, ev *newuser.Event) error {
	if err := s.cfg.Reporter.Report(ctx, ev); err != nil {
		return fmt.Errorf("failed to report new user %s: %w", ev.Owner, err)
	}
	s.cfg.Metrics.RecordEventReported(s.cfg.Mint)
	return nil
}
