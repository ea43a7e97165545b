package solana

import (
	"time"

	"github.com/shopspring/decimal"
)

// SignatureRecord is one entry from getSignaturesForAddress.
// This is our domain model, independent of the RPC response format.
type SignatureRecord struct {
	Signature string
	Slot      uint64
	BlockTime *time.Time // nil when the node did not report a block time
	Err       *string    // nil if transaction succeeded, contains error message if failed
}

// Transaction is a fetched transaction reduced to what the scanner inspects.
type Transaction struct {
	Signature string
	Slot      uint64
	BlockTime *time.Time
	Body      *TransactionBody // nil when the encoding carried no decodable transaction
	Meta      *TransactionMeta // nil when the node returned no status meta
}

// TransactionBody holds the decoded transaction envelope.
type TransactionBody struct {
	Signatures []string
}

// TransactionMeta holds token balances before and after execution.
// A nil slice means the node did not report that list at all; an empty
// non-nil slice means it was reported and empty.
type TransactionMeta struct {
	PreTokenBalances  []TokenBalance
	PostTokenBalances []TokenBalance
}

// TokenBalance is one token account balance from the transaction meta.
type TokenBalance struct {
	AccountIndex uint16
	Owner        *string // owning wallet, nil if not reported
	Mint         string
	Amount       decimal.Decimal // UI amount, already scaled by decimals
	Decimals     uint8
}
