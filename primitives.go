package qskema

import (
	"context"
	"fmt"
	"math"
	"strconv"
)

// ParseNumber converts a raw string into a float64. It succeeds iff the whole
// string parses as a finite decimal number; empty, non-numeric and non-finite
// inputs fail with the "<s> is NaN" message.
func ParseNumber(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, Issues{Issue{
			Path:    "/",
			Code:    CodeInvalidType,
			Message: fmt.Sprintf("%s is NaN", s),
			Hint:    "expected number",
		}}
	}
	return f, nil
}

// ParseBool converts a raw string into a bool. Only the exact literals
// "true" and "false" are accepted.
func ParseBool(s string) (bool, error) {
	switch s {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, Issues{Issue{
			Path:    "/",
			Code:    CodeInvalidType,
			Message: fmt.Sprintf("%s is not a boolean", s),
			Hint:    `expected "true" or "false"`,
		}}
	}
}

// ParseString is the identity conversion; it never fails.
func ParseString(s string) (string, error) { return s, nil }

// FormatNumber renders a float64 using the shortest round-trippable
// representation. ParseNumber(FormatNumber(f)) == f for finite f.
func FormatNumber(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }

// convertScalar applies the kind's conversion rule to one raw value.
func convertScalar(kind Kind, raw string) (any, error) {
	switch kind {
	case KindNumber:
		return ParseNumber(raw)
	case KindBool:
		return ParseBool(raw)
	default:
		return raw, nil
	}
}

// convertArray converts every raw value in order. On failure it returns the
// first failing element's error and no value.
func convertArray(elem Scalar, raws []string) ([]any, error) {
	out := make([]any, 0, len(raws))
	var firstErr error
	for _, raw := range raws {
		v, err := convertScalar(elem.Kind, raw)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		out = append(out, v)
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}

// runChecks executes refinements in declaration order, stopping at the first
// failure.
func runChecks(ctx context.Context, checks []Check, v any) error {
	for _, c := range checks {
		if c.Fn == nil {
			continue
		}
		if err := c.Fn(ctx, v); err != nil {
			return err
		}
	}
	return nil
}
