package newuser

import (
	"errors"
	"testing"

	"github.com/brojonat/garitrack/service/solana"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func balance(owner *string, amount string) solana.TokenBalance {
	return solana.TokenBalance{
		Owner:  owner,
		Mint:   "CKaKtYvz6dKPyMvYq9Rh3UBrnNqYZAyd7iF4hJtjUvks",
		Amount: decimal.RequireFromString(amount),
	}
}

func newUserTx(post ...solana.TokenBalance) *solana.Transaction {
	return &solana.Transaction{
		Signature: "sigA",
		Slot:      10,
		Body:      &solana.TransactionBody{Signatures: []string{"sigA", "sigB"}},
		Meta: &solana.TransactionMeta{
			PreTokenBalances:  []solana.TokenBalance{},
			PostTokenBalances: post,
		},
	}
}

func TestClassify_Trigger(t *testing.T) {
	c := NewClassifier(DefaultRule)

	for _, amount := range []string{"0.000000001", "0", "12345.678"} {
		t.Run(amount, func(t *testing.T) {
			ev, err := c.Classify(newUserTx(balance(strPtr("OwnerX"), amount)))
			require.NoError(t, err)
			require.NotNil(t, ev)

			assert.Equal(t, "OwnerX", ev.Owner)
			assert.Equal(t, []string{"sigA", "sigB"}, ev.Signatures)
			// Reported balances are fixed, whatever the record says.
			assert.Equal(t, "0", ev.PreBalance.String())
			assert.Equal(t, "0.000000001", ev.PostBalance.String())
			assert.Equal(t, uint64(10), ev.Slot)
		})
	}
}

func TestClassify_NotNewUser(t *testing.T) {
	c := NewClassifier(DefaultRule)
	owner := strPtr("OwnerX")

	tests := []struct {
		name string
		pre  []solana.TokenBalance
		post []solana.TokenBalance
	}{
		{"pre non-empty", []solana.TokenBalance{balance(owner, "1")}, []solana.TokenBalance{balance(owner, "2")}},
		{"post empty", []solana.TokenBalance{}, []solana.TokenBalance{}},
		{"post has two entries", []solana.TokenBalance{}, []solana.TokenBalance{balance(owner, "1"), balance(strPtr("OwnerY"), "1")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := &solana.Transaction{
				Body: &solana.TransactionBody{Signatures: []string{"s"}},
				Meta: &solana.TransactionMeta{PreTokenBalances: tt.pre, PostTokenBalances: tt.post},
			}
			ev, err := c.Classify(tx)
			require.NoError(t, err)
			assert.Nil(t, ev)
		})
	}
}

func TestClassify_Failures(t *testing.T) {
	c := NewClassifier(DefaultRule)

	tests := []struct {
		name string
		tx   *solana.Transaction
		want error
	}{
		{
			name: "nil transaction",
			tx:   nil,
			want: ErrEmptyMeta,
		},
		{
			name: "missing meta",
			tx:   &solana.Transaction{Body: &solana.TransactionBody{}},
			want: ErrEmptyMeta,
		},
		{
			name: "pre balances not reported",
			tx: &solana.Transaction{Meta: &solana.TransactionMeta{
				PostTokenBalances: []solana.TokenBalance{},
			}},
			want: ErrEmptyTokenBalance,
		},
		{
			name: "post balances not reported",
			tx: &solana.Transaction{Meta: &solana.TransactionMeta{
				PreTokenBalances: []solana.TokenBalance{},
			}},
			want: ErrEmptyTokenBalance,
		},
		{
			name: "owner missing on trigger",
			tx:   newUserTx(balance(nil, "0.000000001")),
			want: ErrMissingTokenAccountOwner,
		},
		{
			name: "undecodable transaction on trigger",
			tx: &solana.Transaction{Meta: &solana.TransactionMeta{
				PreTokenBalances:  []solana.TokenBalance{},
				PostTokenBalances: []solana.TokenBalance{balance(strPtr("OwnerX"), "1")},
			}},
			want: ErrUndecodableTransaction,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := c.Classify(tt.tx)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.Nil(t, ev)
		})
	}
}

func TestClassify_UndecodableOnlyMattersOnTrigger(t *testing.T) {
	c := NewClassifier(DefaultRule)

	tx := &solana.Transaction{Meta: &solana.TransactionMeta{
		PreTokenBalances:  []solana.TokenBalance{balance(strPtr("A"), "1")},
		PostTokenBalances: []solana.TokenBalance{balance(strPtr("A"), "2")},
	}}

	ev, err := c.Classify(tx)
	require.NoError(t, err)
	assert.Nil(t, ev)
}

func TestClassify_CustomRule(t *testing.T) {
	rule := Rule{
		PreEntries:  1,
		PostEntries: 2,
		PreBalance:  decimal.RequireFromString("5"),
		PostBalance: decimal.RequireFromString("6"),
	}
	c := NewClassifier(rule)

	tx := &solana.Transaction{
		Body: &solana.TransactionBody{Signatures: []string{"s"}},
		Meta: &solana.TransactionMeta{
			PreTokenBalances:  []solana.TokenBalance{balance(strPtr("Sender"), "10")},
			PostTokenBalances: []solana.TokenBalance{balance(strPtr("Sender"), "9"), balance(strPtr("Receiver"), "1")},
		},
	}

	ev, err := c.Classify(tx)
	require.NoError(t, err)
	require.NotNil(t, ev)
	assert.Equal(t, "Receiver", ev.Owner)
	assert.Equal(t, "5", ev.PreBalance.String())
	assert.Equal(t, "6", ev.PostBalance.String())
}

func TestClassify_SignaturesAreCopied(t *testing.T) {
	c := NewClassifier(DefaultRule)
	tx := newUserTx(balance(strPtr("OwnerX"), "1"))

	ev, err := c.Classify(tx)
	require.NoError(t, err)

	tx.Body.Signatures[0] = "mutated"
	assert.Equal(t, "sigA", ev.Signatures[0])
}
