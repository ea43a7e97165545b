package newuser

import (
	"fmt"
	"time"

	"github.com/brojonat/garitrack/service/daterange"
	"github.com/brojonat/garitrack/service/solana"
)

// FilterByDate keeps the records whose block time, read as a calendar day in
// loc, falls inside r. Order is preserved. A single record without a block
// time fails the whole call.
func FilterByDate(records []solana.SignatureRecord, r daterange.Range, loc *time.Location) ([]solana.SignatureRecord, error) {
	if loc == nil {
		loc = time.Local
	}

	kept := make([]solana.SignatureRecord, 0, len(records))
	for _, rec := range records {
		if rec.BlockTime == nil {
			return nil, fmt.Errorf("%w: signature %s", ErrMissingTimestamp, rec.Signature)
		}
		if r.ContainsTime(*rec.BlockTime, loc) {
			kept = append(kept, rec)
		}
	}
	return kept, nil
}
