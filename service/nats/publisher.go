package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/brojonat/garitrack/service/metrics"
	"github.com/brojonat/garitrack/service/newuser"
	"github.com/nats-io/nats.go"
)

// DefaultSubjectPrefix is used when no prefix is configured.
const DefaultSubjectPrefix = "newusers"

// Publisher defines the interface for publishing new-user events to NATS.
type Publisher interface {
	// PublishNewUser publishes a single event to "{prefix}.{mint}".
	PublishNewUser(ctx context.Context, ev *newuser.Event) error

	// Close flushes pending messages and closes the connection.
	Close() error
}

// conn is the subset of *nats.Conn the publisher uses.
type conn interface {
	Publish(subj string, data []byte) error
	Flush() error
	Close()
}

// CorePublisher publishes with plain core NATS. Nothing is stored
// server-side; subscribers that are not connected miss the event.
type CorePublisher struct {
	nc      conn
	prefix  string
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewPublisher connects to NATS.
func NewPublisher(natsURL, prefix string, m *metrics.Metrics, logger *slog.Logger) (*CorePublisher, error) {
	nc, err := nats.Connect(natsURL,
		nats.Name("garitrack-publisher"),
		nats.Timeout(10*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	logger.Info("NATS publisher initialized",
		"url", natsURL,
		"prefix", prefix,
	)

	return newPublisher(nc, prefix, m, logger), nil
}

func newPublisher(nc conn, prefix string, m *metrics.Metrics, logger *slog.Logger) *CorePublisher {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &CorePublisher{
		nc:      nc,
		prefix:  prefix,
		metrics: m,
		logger:  logger,
	}
}

// Subject returns the subject an event for mint is published on.
func (p *CorePublisher) Subject(mint string) string {
	return fmt.Sprintf("%s.%s", p.prefix, mint)
}

// PublishNewUser publishes a single event.
func (p *CorePublisher) PublishNewUser(ctx context.Context, ev *newuser.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	subject := p.Subject(ev.Mint)

	data, err := json.Marshal(FromEvent(ev))
	if err != nil {
		return fmt.Errorf("failed to marshal new user event: %w", err)
	}

	start := time.Now()
	err = p.nc.Publish(subject, data)
	duration := time.Since(start).Seconds()

	status := "success"
	if err != nil {
		status = "error"
	}
	p.metrics.RecordNATSPublish(subject, status, duration)

	if err != nil {
		return fmt.Errorf("failed to publish new user event: %w", err)
	}

	p.logger.DebugContext(ctx, "published new user event",
		"subject", subject,
		"owner", ev.Owner,
	)

	return nil
}

// Close flushes and closes the connection to NATS.
func (p *CorePublisher) Close() error {
	if p.nc == nil {
		return nil
	}
	err := p.nc.Flush()
	p.nc.Close()
	p.logger.Info("NATS publisher closed")
	if err != nil {
		return fmt.Errorf("failed to flush NATS connection: %w", err)
	}
	return nil
}
