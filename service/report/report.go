package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/brojonat/garitrack/service/newuser"
)

// Reporter receives each classified new-user event.
type Reporter interface {
	Report(ctx context.Context, ev *newuser.Event) error
}

// ReporterFunc adapts a plain function to Reporter.
type ReporterFunc func(ctx context.Context, ev *newuser.Event) error

func (f ReporterFunc) Report(ctx context.Context, ev *newuser.Event) error {
	return f(ctx, ev)
}

// TextReporter prints events in the fixed human-readable block layout.
type TextReporter struct {
	mu sync.Mutex
	w  io.Writer
}

func NewTextReporter(w io.Writer) *TextReporter {
	return &TextReporter{w: w}
}

func (r *TextReporter) Report(_ context.Context, ev *newuser.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := io.WriteString(r.w, FormatText(ev))
	return err
}

// FormatText renders one event block, trailing separator line included.
func FormatText(ev *newuser.Event) string {
	var sb strings.Builder
	sb.WriteString("New User -\n")
	sb.WriteString(fmt.Sprintf("\tSignature(s) - %s\n", formatList(ev.Signatures)))
	sb.WriteString(fmt.Sprintf("\tOwner - %s\n", ev.Owner))
	sb.WriteString(fmt.Sprintf("\tPre Token Balance - %s\n", ev.PreBalance.String()))
	sb.WriteString(fmt.Sprintf("\tPost Token Balance - %s\n", ev.PostBalance.String()))
	sb.WriteString("-----------\n")
	return sb.String()
}

// formatList renders ["a", "b"].
func formatList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = strconv.Quote(s)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// JSONReporter writes one JSON object per line.
type JSONReporter struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func NewJSONReporter(w io.Writer) *JSONReporter {
	return &JSONReporter{enc: json.NewEncoder(w)}
}

func (r *JSONReporter) Report(_ context.Context, ev *newuser.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enc.Encode(ev); err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	return nil
}

// Multi fans an event out to every reporter in order and stops at the first
// error.
func Multi(reporters ...Reporter) Reporter {
	return ReporterFunc(func(ctx context.Context, ev *newuser.Event) error {
		for _, r := range reporters {
			if err := r.Report(ctx, ev); err != nil {
				return err
			}
		}
		return nil
	})
}
