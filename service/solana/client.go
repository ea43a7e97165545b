package solana

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/brojonat/garitrack/service/metrics"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"golang.org/x/time/rate"
)

// MaxSignatureLimit is the largest page getSignaturesForAddress will return.
const MaxSignatureLimit = 1000

var (
	// ErrInvalidAddress is returned when an address is not a base58 public key.
	ErrInvalidAddress = errors.New("unable to parse pubkey from string")

	// ErrInvalidSignature is returned when a signature is not valid base58.
	ErrInvalidSignature = errors.New("unable to parse signature from string")

	// ErrTransactionNotFound is returned when the node has no record of a signature.
	ErrTransactionNotFound = errors.New("transaction not found")
)

// RPCClient is an interface for the Solana RPC operations we need.
// This allows us to mock the RPC layer in tests without hitting real Solana nodes.
type RPCClient interface {
	GetSignaturesForAddress(
		ctx context.Context,
		address solana.PublicKey,
		opts *rpc.GetSignaturesForAddressOpts,
	) ([]*rpc.TransactionSignature, error)

	GetParsedTransaction(
		ctx context.Context,
		signature solana.Signature,
		opts *rpc.GetParsedTransactionOpts,
	) (*rpc.GetParsedTransactionResult, error)
}

// Client provides the two ledger lookups the scanner needs.
// It wraps the RPC client with domain-specific operations.
type Client struct {
	rpc        RPCClient
	logger     *slog.Logger
	metrics    *metrics.Metrics
	endpoint   string // RPC endpoint identifier for metrics (e.g., "mainnet", rpc host)
	commitment rpc.CommitmentType
	limiter    *rate.Limiter // nil means unthrottled
}

// NewClient creates a new Solana client.
// The endpoint parameter is used for metrics labeling (e.g., "mainnet", "devnet", or RPC hostname).
// If metrics is nil, no metrics will be recorded.
func NewClient(rpcClient RPCClient, endpoint string, m *metrics.Metrics, logger *slog.Logger) *Client {
	return &Client{
		rpc:        rpcClient,
		logger:     logger,
		metrics:    m,
		endpoint:   endpoint,
		commitment: rpc.CommitmentConfirmed,
	}
}

// WithLimiter spaces every RPC call through l. Calls block on the limiter,
// they are never retried.
func (c *Client) WithLimiter(l *rate.Limiter) *Client {
	c.limiter = l
	return c
}

// NewLimiter builds a limiter for rps requests per second. rps <= 0 disables
// throttling and returns nil.
func NewLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(rps), 1)
}

// ListSignaturesParams contains parameters for fetching signatures.
type ListSignaturesParams struct {
	Address string
	Limit   int
}

// ListSignatures returns the most recent signatures touching an address,
// newest first, in a single page of at most MaxSignatureLimit.
func (c *Client) ListSignatures(ctx context.Context, params ListSignaturesParams) ([]SignatureRecord, error) {
	address, err := solana.PublicKeyFromBase58(params.Address)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidAddress, params.Address, err)
	}

	limit := params.Limit
	if limit <= 0 || limit > MaxSignatureLimit {
		limit = MaxSignatureLimit
	}

	opts := &rpc.GetSignaturesForAddressOpts{
		Limit:      &limit,
		Commitment: c.commitment,
	}

	c.logger.DebugContext(ctx, "calling GetSignaturesForAddress",
		"address", address.String(),
		"limit", limit,
		"commitment", c.commitment,
	)

	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	signatures, err := c.rpc.GetSignaturesForAddress(ctx, address, opts)
	duration := time.Since(start).Seconds()

	status := "success"
	if err != nil {
		status = "error"
		c.logger.ErrorContext(ctx, "failed to get signatures",
			"address", address.String(),
			"error", err,
		)
	}
	c.metrics.RecordRPCCall("GetSignaturesForAddress", status, c.endpoint, duration)
	if err != nil {
		return nil, fmt.Errorf("failed to get signatures for %s: %w", address, err)
	}
	c.metrics.RecordRPCSignaturesPerCall(c.endpoint, float64(len(signatures)))

	c.logger.DebugContext(ctx, "fetched transaction signatures",
		"address", address.String(),
		"count", len(signatures),
	)

	return signaturesToDomain(signatures), nil
}

// FetchTransaction retrieves one transaction in jsonParsed encoding.
func (c *Client) FetchTransaction(ctx context.Context, signature string) (*Transaction, error) {
	sig, err := solana.SignatureFromBase58(signature)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidSignature, signature, err)
	}

	maxVersion := uint64(0)
	opts := &rpc.GetParsedTransactionOpts{
		Commitment:                     c.commitment,
		MaxSupportedTransactionVersion: &maxVersion,
	}

	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := c.rpc.GetParsedTransaction(ctx, sig, opts)
	duration := time.Since(start).Seconds()

	status := "success"
	if err != nil {
		status = "error"
	}
	c.metrics.RecordRPCCall("GetTransaction", status, c.endpoint, duration)

	if errors.Is(err, rpc.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrTransactionNotFound, signature)
	}
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to get transaction",
			"signature", signature,
			"error", err,
		)
		return nil, fmt.Errorf("failed to get transaction %s: %w", signature, err)
	}
	if result == nil {
		return nil, fmt.Errorf("%w: %s", ErrTransactionNotFound, signature)
	}

	c.logger.DebugContext(ctx, "fetched transaction",
		"signature", signature,
		"slot", result.Slot,
	)

	return parsedTransactionToDomain(sig, result), nil
}

func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	start := time.Now()
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	c.metrics.RecordThrottleWait(c.endpoint, time.Since(start).Seconds())
	return nil
}
