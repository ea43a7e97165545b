package report

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/brojonat/garitrack/service/newuser"
	"github.com/itchyny/gojq"
)

// JQFilter forwards an event to next only when every jq expression evaluates
// to a truthy value against the event's JSON form.
type JQFilter struct {
	next    Reporter
	filters []*gojq.Code
	logger  *slog.Logger
}

// NewJQFilter compiles the expressions up front so a typo fails the run
// before any RPC call is made.
func NewJQFilter(next Reporter, expressions []string, logger *slog.Logger) (*JQFilter, error) {
	compiled := make([]*gojq.Code, len(expressions))
	for i, expr := range expressions {
		query, err := gojq.Parse(expr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse jq filter %q: %w", expr, err)
		}
		compiled[i], err = gojq.Compile(query)
		if err != nil {
			return nil, fmt.Errorf("failed to compile jq filter %q: %w", expr, err)
		}
	}
	return &JQFilter{next: next, filters: compiled, logger: logger}, nil
}

func (f *JQFilter) Report(ctx context.Context, ev *newuser.Event) error {
	ok, err := f.Match(ev)
	if err != nil {
		return err
	}
	if !ok {
		f.logger.DebugContext(ctx, "event dropped by jq filter", "owner", ev.Owner)
		return nil
	}
	return f.next.Report(ctx, ev)
}

// Match reports whether ev passes every filter.
func (f *JQFilter) Match(ev *newuser.Event) (bool, error) {
	if len(f.filters) == 0 {
		return true, nil
	}

	input, err := toJQInput(ev)
	if err != nil {
		return false, err
	}

	for _, code := range f.filters {
		iter := code.Run(input)
		v, ok := iter.Next()
		if !ok {
			// No result means filter failed
			return false, nil
		}
		if err, isErr := v.(error); isErr {
			f.logger.Debug("jq filter error", "error", err)
			return false, nil
		}
		if !isTruthy(v) {
			return false, nil
		}
	}
	return true, nil
}

// toJQInput turns the event into the plain map/slice values gojq expects.
func toJQInput(ev *newuser.Event) (interface{}, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	var out interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	return out, nil
}

// isTruthy checks if a jq result value is truthy.
// In jq, false and null are falsy, everything else is truthy.
func isTruthy(v interface{}) bool {
	if v == nil {
		return false
	}
	if b, ok := v.(bool); ok {
		return b
	}
	return true
}
