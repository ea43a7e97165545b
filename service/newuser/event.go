package newuser

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event is a first-time credit of the tracked token to a fresh account.
type Event struct {
	Signatures  []string        `json:"signatures"`
	Owner       string          `json:"owner"`
	PreBalance  decimal.Decimal `json:"pre_token_balance"`
	PostBalance decimal.Decimal `json:"post_token_balance"`

	// Informational, only surfaced in JSON output.
	Mint      string     `json:"mint,omitempty"`
	Slot      uint64     `json:"slot,omitempty"`
	BlockTime *time.Time `json:"block_time,omitempty"`
}
