package solana

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/shopspring/decimal"
)

// signatureToDomain converts an RPC TransactionSignature to our domain SignatureRecord.
func signatureToDomain(sig *rpc.TransactionSignature) SignatureRecord {
	rec := SignatureRecord{
		Signature: sig.Signature.String(),
		Slot:      sig.Slot,
	}

	// Block time is optional on the wire; keep the distinction.
	if sig.BlockTime != nil {
		bt := sig.BlockTime.Time()
		rec.BlockTime = &bt
	}

	if sig.Err != nil {
		errMsg := fmt.Sprintf("transaction failed: %v", sig.Err)
		rec.Err = &errMsg
	}

	return rec
}

// signaturesToDomain converts a page of RPC signatures, preserving order.
func signaturesToDomain(sigs []*rpc.TransactionSignature) []SignatureRecord {
	out := make([]SignatureRecord, 0, len(sigs))
	for _, sig := range sigs {
		if sig == nil {
			continue
		}
		out = append(out, signatureToDomain(sig))
	}
	return out
}

// parsedTransactionToDomain converts a jsonParsed getTransaction result.
func parsedTransactionToDomain(signature solana.Signature, result *rpc.GetParsedTransactionResult) *Transaction {
	txn := &Transaction{
		Signature: signature.String(),
	}
	if result == nil {
		return txn
	}

	txn.Slot = result.Slot
	if result.BlockTime != nil {
		bt := result.BlockTime.Time()
		txn.BlockTime = &bt
	}

	if result.Transaction != nil {
		body := &TransactionBody{
			Signatures: make([]string, 0, len(result.Transaction.Signatures)),
		}
		for _, s := range result.Transaction.Signatures {
			body.Signatures = append(body.Signatures, s.String())
		}
		txn.Body = body
	}

	if result.Meta != nil {
		txn.Meta = &TransactionMeta{
			PreTokenBalances:  tokenBalancesToDomain(result.Meta.PreTokenBalances),
			PostTokenBalances: tokenBalancesToDomain(result.Meta.PostTokenBalances),
		}
	}

	return txn
}

// tokenBalancesToDomain keeps nil as nil so callers can tell "not reported"
// from "reported but empty".
func tokenBalancesToDomain(in []rpc.TokenBalance) []TokenBalance {
	if in == nil {
		return nil
	}
	out := make([]TokenBalance, 0, len(in))
	for _, b := range in {
		tb := TokenBalance{
			AccountIndex: b.AccountIndex,
			Mint:         b.Mint.String(),
		}
		if b.Owner != nil {
			owner := b.Owner.String()
			tb.Owner = &owner
		}
		if b.UiTokenAmount != nil {
			tb.Decimals = b.UiTokenAmount.Decimals
			tb.Amount = uiAmount(b.UiTokenAmount)
		}
		out = append(out, tb)
	}
	return out
}

// uiAmount prefers the node's uiAmountString and falls back to scaling the
// raw integer amount by decimals.
func uiAmount(a *rpc.UiTokenAmount) decimal.Decimal {
	if a.UiAmountString != "" {
		if d, err := decimal.NewFromString(a.UiAmountString); err == nil {
			return d
		}
	}
	if a.Amount != "" {
		if raw, err := decimal.NewFromString(a.Amount); err == nil {
			return raw.Shift(-int32(a.Decimals))
		}
	}
	return decimal.Zero
}
