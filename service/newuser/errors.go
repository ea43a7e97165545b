package newuser

import "errors"

var (
	// ErrMissingTimestamp is returned when a signature record has no block time.
	ErrMissingTimestamp = errors.New("block time missing from transaction")

	// ErrEmptyMeta is returned when a transaction has no status meta.
	ErrEmptyMeta = errors.New("unable to get data out of meta")

	// ErrEmptyTokenBalance is returned when the pre or post token balance list
	// was not reported at all.
	ErrEmptyTokenBalance = errors.New("empty token balance")

	// ErrMissingTokenAccountOwner is returned when the credited token account
	// has no owner.
	ErrMissingTokenAccountOwner = errors.New("unable to get token account owner")

	// ErrUndecodableTransaction is returned when the signature list cannot be
	// read from the transaction encoding.
	ErrUndecodableTransaction = errors.New("unable to decode transaction signatures")
)
