package dsl

import (
	"context"
	"fmt"
	"reflect"
	"regexp"

	qskema "github.com/reoring/qskema"
	"github.com/reoring/qskema/i18n"
	js "github.com/reoring/qskema/jsonschema"
)

// FieldAdapter wraps a qskema.FieldSchema under construction. Chain methods
// return a new adapter; construction errors are deferred until Build so call
// chains stay fluent.
type FieldAdapter struct {
	fs  qskema.FieldSchema
	err error
}

// Number creates a number field adapter (decoded as float64).
func Number() FieldAdapter { return FieldAdapter{fs: qskema.Scalar{Kind: qskema.KindNumber}} }

// Bool creates a boolean field adapter ("true"/"false" literals only).
func Bool() FieldAdapter { return FieldAdapter{fs: qskema.Scalar{Kind: qskema.KindBool}} }

// String creates a string field adapter (identity conversion).
func String() FieldAdapter { return FieldAdapter{fs: qskema.Scalar{Kind: qskema.KindString}} }

// Array creates an array field adapter from a scalar element adapter. Every
// occurrence of the key converts through elem in input order.
func Array(elem FieldAdapter) FieldAdapter {
	if elem.err != nil {
		return elem
	}
	sc, ok := elem.fs.(qskema.Scalar)
	if !ok {
		return FieldAdapter{err: buildErr("array element must be a plain scalar adapter")}
	}
	return FieldAdapter{fs: qskema.Array{Elem: sc}}
}

// Schema exposes the assembled FieldSchema; Err reports deferred builder errors.
func (ad FieldAdapter) Schema() qskema.FieldSchema { return ad.fs }
func (ad FieldAdapter) Err() error                 { return ad.err }

// Optional marks the field as not required for union matching.
func (ad FieldAdapter) Optional() FieldAdapter {
	if ad.err != nil {
		return ad
	}
	return FieldAdapter{fs: qskema.Optional{Inner: ad.fs}}
}

// Default supplies a fallback used when the key is absent or malformed. The
// fallback value still runs the field's checks.
func (ad FieldAdapter) Default(v any) FieldAdapter {
	if ad.err != nil {
		return ad
	}
	return FieldAdapter{fs: qskema.Default{Inner: ad.fs, Value: v}}
}

// Min sets a numeric minimum (inclusive) at runtime and in JSON Schema.
// Non-numeric values are ignored by this guard (type errors are handled
// elsewhere).
func (ad FieldAdapter) Min(n float64) FieldAdapter {
	return ad.withCheck(qskema.Check{
		Name: "min",
		Fn: func(ctx context.Context, v any) error {
			if f, ok := asFloat(v); ok && f < n {
				return qskema.Issues{qskema.Issue{Path: "/", Code: qskema.CodeTooSmall, Message: i18n.T(qskema.CodeTooSmall, nil), Params: map[string]any{"min": n, "got": f}, Rule: "min"}}
			}
			return nil
		},
		Annotate: func(s *js.Schema) { s.Minimum = ptrFloat(n) },
	})
}

// Max sets a numeric maximum (inclusive) at runtime and in JSON Schema.
func (ad FieldAdapter) Max(n float64) FieldAdapter {
	return ad.withCheck(qskema.Check{
		Name: "max",
		Fn: func(ctx context.Context, v any) error {
			if f, ok := asFloat(v); ok && f > n {
				return qskema.Issues{qskema.Issue{Path: "/", Code: qskema.CodeTooBig, Message: i18n.T(qskema.CodeTooBig, nil), Params: map[string]any{"max": n, "got": f}, Rule: "max"}}
			}
			return nil
		},
		Annotate: func(s *js.Schema) { s.Maximum = ptrFloat(n) },
	})
}

// MinLen constrains string length or array element count (inclusive).
func (ad FieldAdapter) MinLen(n int) FieldAdapter {
	return ad.withCheck(qskema.Check{
		Name: "minLen",
		Fn: func(ctx context.Context, v any) error {
			if l, ok := lengthOf(v); ok && l < n {
				return qskema.Issues{qskema.Issue{Path: "/", Code: qskema.CodeTooShort, Message: i18n.T(qskema.CodeTooShort, nil), Params: map[string]any{"min": n, "got": l}, Rule: "minLen"}}
			}
			return nil
		},
		Annotate: func(s *js.Schema) {
			if s.Type == "array" {
				s.MinItems = ptrInt(n)
			} else {
				s.MinLength = ptrInt(n)
			}
		},
	})
}

// MaxLen constrains string length or array element count (inclusive).
func (ad FieldAdapter) MaxLen(n int) FieldAdapter {
	return ad.withCheck(qskema.Check{
		Name: "maxLen",
		Fn: func(ctx context.Context, v any) error {
			if l, ok := lengthOf(v); ok && l > n {
				return qskema.Issues{qskema.Issue{Path: "/", Code: qskema.CodeTooLong, Message: i18n.T(qskema.CodeTooLong, nil), Params: map[string]any{"max": n, "got": l}, Rule: "maxLen"}}
			}
			return nil
		},
		Annotate: func(s *js.Schema) {
			if s.Type == "array" {
				s.MaxItems = ptrInt(n)
			} else {
				s.MaxLength = ptrInt(n)
			}
		},
	})
}

// Pattern constrains string values to a regular expression. A malformed
// expression is a builder error surfaced at Build time.
func (ad FieldAdapter) Pattern(expr string) FieldAdapter {
	if ad.err != nil {
		return ad
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return FieldAdapter{err: buildErr(fmt.Sprintf("invalid pattern %q: %v", expr, err))}
	}
	return ad.withCheck(qskema.Check{
		Name: "pattern",
		Fn: func(ctx context.Context, v any) error {
			if s, ok := v.(string); ok && !re.MatchString(s) {
				return qskema.Issues{qskema.Issue{Path: "/", Code: qskema.CodePattern, Message: i18n.T(qskema.CodePattern, nil), Params: map[string]any{"pattern": expr}, Rule: "pattern"}}
			}
			return nil
		},
		Annotate: func(s *js.Schema) { s.Pattern = expr },
	})
}

// Enum restricts the value to the given set. Numeric members compare with
// float64 tolerance so int literals work for number fields.
func (ad FieldAdapter) Enum(values ...any) FieldAdapter {
	members := append([]any(nil), values...)
	return ad.withCheck(qskema.Check{
		Name: "enum",
		Fn: func(ctx context.Context, v any) error {
			for _, m := range members {
				if enumEqual(v, m) {
					return nil
				}
			}
			return qskema.Issues{qskema.Issue{Path: "/", Code: qskema.CodeInvalidEnum, Message: i18n.T(qskema.CodeInvalidEnum, nil), Params: map[string]any{"got": v}, Rule: "enum"}}
		},
		Annotate: func(s *js.Schema) { s.Enum = members },
	})
}

// Refine attaches a named custom check executed after conversion.
func (ad FieldAdapter) Refine(name string, fn func(ctx context.Context, v any) error) FieldAdapter {
	if fn == nil {
		return ad
	}
	return ad.withCheck(qskema.Check{Name: name, Fn: fn})
}

// withCheck appends a check to the innermost Scalar or Array node, rebuilding
// the wrapper chain.
func (ad FieldAdapter) withCheck(c qskema.Check) FieldAdapter {
	if ad.err != nil {
		return ad
	}
	fs, err := appendCheck(ad.fs, c)
	if err != nil {
		return FieldAdapter{err: err}
	}
	return FieldAdapter{fs: fs}
}

func appendCheck(f qskema.FieldSchema, c qskema.Check) (qskema.FieldSchema, error) {
	switch t := f.(type) {
	case qskema.Optional:
		inner, err := appendCheck(t.Inner, c)
		if err != nil {
			return nil, err
		}
		return qskema.Optional{Inner: inner}, nil
	case qskema.Default:
		inner, err := appendCheck(t.Inner, c)
		if err != nil {
			return nil, err
		}
		return qskema.Default{Inner: inner, Value: t.Value}, nil
	case qskema.Scalar:
		t.Checks = append(append([]qskema.Check(nil), t.Checks...), c)
		return t, nil
	case qskema.Array:
		t.Checks = append(append([]qskema.Check(nil), t.Checks...), c)
		return t, nil
	default:
		return nil, buildErr("cannot attach check to empty field adapter")
	}
}

// ---- helpers ----

func ptrFloat(v float64) *float64 { return &v }
func ptrInt(v int) *int           { return &v }

func buildErr(hint string) error {
	return qskema.Issues{qskema.Issue{Path: "/", Code: qskema.CodeInvalidSchema, Message: i18n.T(qskema.CodeInvalidSchema, nil), Hint: hint}}
}

// asFloat widens any numeric value to float64. Defaults may be declared with
// int literals while decoded values are always float64.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int, int8, int16, int32, int64:
		return float64(reflect.ValueOf(n).Int()), true
	case uint, uint8, uint16, uint32, uint64:
		return float64(reflect.ValueOf(n).Uint()), true
	default:
		return 0, false
	}
}

func lengthOf(v any) (int, bool) {
	switch t := v.(type) {
	case string:
		return len(t), true
	case []any:
		return len(t), true
	default:
		rv := reflect.ValueOf(v)
		if rv.IsValid() && (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array) {
			return rv.Len(), true
		}
		return 0, false
	}
}

func enumEqual(a, b any) bool {
	if fa, ok := asFloat(a); ok {
		if fb, ok := asFloat(b); ok {
			return fa == fb
		}
		return false
	}
	return a == b
}
