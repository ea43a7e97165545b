package nats

import (
	"time"

	"github.com/brojonat/garitrack/service/newuser"
)

// NewUserEvent is the message published for each reported new user.
// It is published to the subject "{prefix}.{mint}".
type NewUserEvent struct {
	Owner      string   `json:"owner"`
	Mint       string   `json:"mint"`
	Signatures []string `json:"signatures"`

	PreTokenBalance  string `json:"pre_token_balance"`
	PostTokenBalance string `json:"post_token_balance"`

	Slot      uint64     `json:"slot,omitempty"`
	BlockTime *time.Time `json:"block_time,omitempty"`

	// Metadata
	PublishedAt time.Time `json:"published_at"`
}

// FromEvent converts a classified event to its wire form.
func FromEvent(ev *newuser.Event) *NewUserEvent {
	return &NewUserEvent{
		Owner:            ev.Owner,
		Mint:             ev.Mint,
		Signatures:       ev.Signatures,
		PreTokenBalance:  ev.PreBalance.String(),
		PostTokenBalance: ev.PostBalance.String(),
		Slot:             ev.Slot,
		BlockTime:        ev.BlockTime,
		PublishedAt:      time.Now().UTC(),
	}
}
