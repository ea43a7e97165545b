package report

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestJQFilter_Match(t *testing.T) {
	tests := []struct {
		name        string
		filters     []string
		expectMatch bool
	}{
		{"no filters", nil, true},
		{"owner match", []string{`.owner == "OwnerX"`}, true},
		{"owner mismatch", []string{`.owner == "OwnerY"`}, false},
		{"signature count", []string{`.signatures | length == 2`}, true},
		{"all must match", []string{`.owner == "OwnerX"`, `.signatures | length == 1`}, false},
		{"post balance string", []string{`.post_token_balance == "0.000000001"`}, true},
		{"null is falsy", []string{`.missing`}, false},
		{"non-boolean is truthy", []string{`.owner`}, true},
		{"empty output is no match", []string{`empty`}, false},
		{"runtime error is no match", []string{`.owner | tonumber`}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewJQFilter(&recordingReporter{}, tt.filters, discardLogger())
			require.NoError(t, err)

			ok, err := f.Match(sampleEvent())
			require.NoError(t, err)
			assert.Equal(t, tt.expectMatch, ok)
		})
	}
}

func TestJQFilter_InvalidExpression(t *testing.T) {
	_, err := NewJQFilter(&recordingReporter{}, []string{`.owner ==`}, discardLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse jq filter")
}

func TestJQFilter_ForwardsOnlyMatches(t *testing.T) {
	next := &recordingReporter{}
	f, err := NewJQFilter(next, []string{`.owner == "OwnerX"`}, discardLogger())
	require.NoError(t, err)

	ev := sampleEvent()
	require.NoError(t, f.Report(context.Background(), ev))

	other := sampleEvent()
	other.Owner = "Someone"
	require.NoError(t, f.Report(context.Background(), other))

	require.Len(t, next.events, 1)
	assert.Equal(t, "OwnerX", next.events[0].Owner)
}
