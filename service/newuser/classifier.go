package newuser

import (
	"fmt"

	"github.com/brojonat/garitrack/service/solana"
	"github.com/shopspring/decimal"
)

// Rule describes the balance shape that marks a new user and the balances
// reported for it. New wallets created by the app get an associated token
// account and an airdrop of the token's smallest unit, so the transaction
// shows no token balance before and exactly one after.
type Rule struct {
	PreEntries  int
	PostEntries int

	// Reported as-is; the record's own amounts are not read.
	PreBalance  decimal.Decimal
	PostBalance decimal.Decimal
}

// DefaultRule matches the 1-lamport airdrop of a 9-decimal token.
var DefaultRule = Rule{
	PreEntries:  0,
	PostEntries: 1,
	PreBalance:  decimal.Zero,
	PostBalance: decimal.New(1, -9),
}

// Classifier decides whether a transaction is a new-user event.
type Classifier struct {
	rule Rule
}

func NewClassifier(rule Rule) *Classifier {
	return &Classifier{rule: rule}
}

// Classify returns the event for tx, or nil if tx does not have the new-user
// shape. Errors are only returned for records too incomplete to judge.
func (c *Classifier) Classify(tx *solana.Transaction) (*Event, error) {
	if tx == nil || tx.Meta == nil {
		return nil, ErrEmptyMeta
	}

	pre := tx.Meta.PreTokenBalances
	post := tx.Meta.PostTokenBalances
	if pre == nil || post == nil {
		return nil, ErrEmptyTokenBalance
	}

	if len(pre) != c.rule.PreEntries || len(post) != c.rule.PostEntries || len(post) == 0 {
		return nil, nil
	}

	// The credited account is the last post entry; with the default rule it
	// is the only one.
	credited := post[len(post)-1]
	if credited.Owner == nil {
		return nil, fmt.Errorf("%w: signature %s", ErrMissingTokenAccountOwner, tx.Signature)
	}

	if tx.Body == nil {
		return nil, fmt.Errorf("%w: signature %s", ErrUndecodableTransaction, tx.Signature)
	}

	signatures := make([]string, len(tx.Body.Signatures))
	copy(signatures, tx.Body.Signatures)

	return &Event{
		Signatures:  signatures,
		Owner:       *credited.Owner,
		PreBalance:  c.rule.PreBalance,
		PostBalance: c.rule.PostBalance,
		Mint:        credited.Mint,
		Slot:        tx.Slot,
		BlockTime:   tx.BlockTime,
	}, nil
}
