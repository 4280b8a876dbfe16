package qskema

import (
	"context"
	"fmt"

	"github.com/reoring/qskema/i18n"
)

// DecodeOpt bundles decoding options.
type DecodeOpt struct {
	// Presence configures metadata collection for DecodeWithMeta.
	Presence PresenceOpt
	// IssueSink observes field-level issues that the decoder recovers from
	// (conversion failures, rejected checks, missing required fields,
	// unmatched unions). It never receives fatal schema issues.
	IssueSink func(Issue)
}

// Decode is the primary entry point. It collects pairs from the Source into
// RawParams and walks the schema. Field-level failures degrade to omission;
// the returned error is non-nil only for source I/O failures and
// schema-authoring defects (CodeInvalidSchema).
func Decode(ctx context.Context, s Schema, src Source, opts ...DecodeOpt) (map[string]any, error) {
	params, err := Collect(src)
	if err != nil {
		return nil, err
	}
	return DecodeParams(ctx, s, params, opts...)
}

// DecodeQuery decodes a raw query string ("a=1&b=2") against the schema.
func DecodeQuery(ctx context.Context, s Schema, rawQuery string, opts ...DecodeOpt) (map[string]any, error) {
	return Decode(ctx, s, Query(rawQuery), opts...)
}

// DecodeParams decodes pre-collected RawParams. Decoding is a pure function
// of its inputs: the same params and schema always yield the same result.
func DecodeParams(ctx context.Context, s Schema, params RawParams, opts ...DecodeOpt) (map[string]any, error) {
	var opt DecodeOpt
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	if err := validateSchema(s); err != nil {
		return nil, err
	}
	return decodeValue(ctx, s, params, nil, opt.IssueSink)
}

// DecodeWithMeta decodes like Decode and additionally collects presence
// metadata (seen / was-empty / default-applied) per field pointer.
func DecodeWithMeta(ctx context.Context, s Schema, src Source, opts ...DecodeOpt) (Decoded[map[string]any], error) {
	var zero Decoded[map[string]any]
	params, err := Collect(src)
	if err != nil {
		return zero, err
	}
	opt := normalizeWithMetaOpt(opts)
	if err := validateSchema(s); err != nil {
		return zero, err
	}
	pm := PresenceMap{"/": PresenceSeen}
	m, err := decodeValue(ctx, s, params, pm, opt.IssueSink)
	if err != nil {
		return zero, err
	}
	return Decoded[map[string]any]{Value: m, Presence: applyPresenceOptions(pm, opt.Presence)}, nil
}

// SafeDecode decodes v, returning (nil, false) on error.
func SafeDecode(ctx context.Context, s Schema, src Source, opts ...DecodeOpt) (map[string]any, bool) {
	m, err := Decode(ctx, s, src, opts...)
	if err != nil {
		return nil, false
	}
	return m, true
}

func normalizeWithMetaOpt(opts []DecodeOpt) DecodeOpt {
	var opt DecodeOpt
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	if !opt.Presence.Collect && len(opt.Presence.Include) == 0 && len(opt.Presence.Exclude) == 0 {
		opt.Presence.Collect = true
	}
	return opt
}

// ---- schema walker ----

// decodeValue dispatches on the schema variant. Shapes parse strictly; union
// candidates parse leniently inside resolveUnion.
func decodeValue(ctx context.Context, s Schema, params RawParams, pm PresenceMap, sink func(Issue)) (map[string]any, error) {
	switch t := s.(type) {
	case OptionalOf:
		// Optionality at the top level has no behavioral effect beyond
		// delegation: an empty result is a valid decode.
		return decodeValue(ctx, t.Inner, params, pm, sink)
	case *Shape:
		return parseShape(ctx, t, params, modeStrict, pm, sink), nil
	case *Union:
		return resolveUnion(ctx, t, params, pm, sink), nil
	default:
		return nil, Issues{Issue{
			Path:    "/",
			Code:    CodeInvalidSchema,
			Message: i18n.T(CodeInvalidSchema, nil),
			Hint:    fmt.Sprintf("unrecognized schema kind %T", s),
		}}
	}
}

// validateSchema rejects schema-authoring defects up front so the shape
// parser and union resolver never fail mid-walk.
func validateSchema(s Schema) error {
	switch t := s.(type) {
	case nil:
		return Issues{Issue{Path: "/", Code: CodeInvalidSchema, Message: i18n.T(CodeInvalidSchema, nil), Hint: "nil schema"}}
	case OptionalOf:
		return validateSchema(t.Inner)
	case *Shape:
		return validateShape(t)
	case *Union:
		if t == nil || len(t.Candidates) == 0 {
			return Issues{Issue{Path: "/", Code: CodeInvalidSchema, Message: i18n.T(CodeInvalidSchema, nil), Hint: "union requires at least one candidate"}}
		}
		for i, c := range t.Candidates {
			if c == nil {
				return Issues{Issue{Path: fmt.Sprintf("/%d", i), Code: CodeInvalidSchema, Message: i18n.T(CodeInvalidSchema, nil), Hint: "nil union candidate"}}
			}
			if err := validateShape(c); err != nil {
				return err
			}
		}
		return nil
	default:
		return Issues{Issue{Path: "/", Code: CodeInvalidSchema, Message: i18n.T(CodeInvalidSchema, nil), Hint: fmt.Sprintf("unrecognized schema kind %T", s)}}
	}
}

func validateShape(sh *Shape) error {
	if sh == nil {
		return Issues{Issue{Path: "/", Code: CodeInvalidSchema, Message: i18n.T(CodeInvalidSchema, nil), Hint: "nil shape"}}
	}
	for _, f := range sh.Fields {
		if f.Name == "" {
			return Issues{Issue{Path: "/", Code: CodeInvalidSchema, Message: i18n.T(CodeInvalidSchema, nil), Hint: "empty field name"}}
		}
		switch baseOf(f.Schema).(type) {
		case Scalar, Array:
		default:
			return Issues{Issue{Path: "/" + f.Name, Code: CodeInvalidSchema, Message: i18n.T(CodeInvalidSchema, nil), Hint: "field schema must unwrap to a scalar or array"}}
		}
	}
	return nil
}

// ---- shape parser ----

// parseMode selects the single behavioral difference between plain shape
// decoding and union candidate probing: how a conversion failure on a
// non-defaultable field is handled.
type parseMode int

const (
	modeStrict  parseMode = iota // omit the field, keep going
	modeLenient                  // abandon the whole shape, return empty
)

// parseShape resolves each declared field from params. It never fails: all
// field-level errors degrade to omission, except the lenient bail-out which
// returns an empty map for the whole shape.
func parseShape(ctx context.Context, sh *Shape, params RawParams, mode parseMode, pm PresenceMap, sink func(Issue)) map[string]any {
	out := make(map[string]any, len(sh.Fields))
	for _, fl := range sh.Fields {
		name, fs := fl.Name, fl.Schema
		base := baseOf(fs)
		defVal, hasDefault := defaultOf(fs)

		raws, supplied := params[name]
		if !supplied {
			if hasDefault {
				applyFieldDefault(ctx, name, base, defVal, out, pm, sink)
			} else if isRequired(fs) {
				emit(sink, Issue{Path: "/" + name, Code: CodeRequired, Message: i18n.T(CodeRequired, nil), Hint: "required field missing"})
			}
			continue
		}

		if pm != nil {
			pm["/"+name] |= PresenceSeen
			if len(raws) == 1 && raws[0] == "" {
				pm["/"+name] |= PresenceWasEmpty
			}
		}

		v, err := convertField(base, raws)
		if err != nil {
			if hasDefault {
				// A malformed value for a defaultable field is treated as
				// absence.
				applyFieldDefault(ctx, name, base, defVal, out, pm, sink)
				continue
			}
			if mode == modeLenient {
				// All-or-nothing candidate acceptance: one bad field
				// invalidates the whole shape attempt.
				emit(sink, rebase(name, err))
				return map[string]any{}
			}
			emit(sink, rebase(name, err))
			continue
		}
		if err := checkField(ctx, base, v); err != nil {
			emit(sink, rebase(name, err))
			continue
		}
		out[name] = v
	}
	return out
}

// applyFieldDefault resolves a field to its declared default, still running
// the declared checks so the result never carries an invalid value.
func applyFieldDefault(ctx context.Context, name string, base FieldSchema, defVal any, out map[string]any, pm PresenceMap, sink func(Issue)) {
	if err := checkField(ctx, base, defVal); err != nil {
		emit(sink, rebase(name, err))
		return
	}
	out[name] = defVal
	if pm != nil {
		pm["/"+name] |= PresenceDefaultApplied
	}
}

// convertField applies the conversion rule of the unwrapped field kind.
func convertField(base FieldSchema, raws []string) (any, error) {
	switch t := base.(type) {
	case Array:
		vs, err := convertArray(t.Elem, raws)
		if err != nil {
			return nil, err
		}
		return vs, nil
	case Scalar:
		if len(raws) > 1 {
			return nil, Issues{Issue{
				Path:    "/",
				Code:    CodeMultipleValues,
				Message: i18n.T(CodeMultipleValues, nil),
				Params:  map[string]any{"got": len(raws)},
			}}
		}
		return convertScalar(t.Kind, raws[0])
	default:
		// validateSchema guards this; kept for direct parseShape callers.
		return nil, Issues{Issue{Path: "/", Code: CodeInvalidSchema, Message: i18n.T(CodeInvalidSchema, nil)}}
	}
}

// checkField runs the declared refinements against a converted value.
// Array element checks run per element before slice-level checks.
func checkField(ctx context.Context, base FieldSchema, v any) error {
	switch t := base.(type) {
	case Scalar:
		return runChecks(ctx, t.Checks, v)
	case Array:
		if vs, ok := v.([]any); ok {
			for i, ev := range vs {
				if err := runChecks(ctx, t.Elem.Checks, ev); err != nil {
					return rebaseIndex(i, err)
				}
			}
		}
		return runChecks(ctx, t.Checks, v)
	default:
		return nil
	}
}

// ---- union resolver ----

// resolveUnion tries each candidate in declared order with lenient parsing
// and accepts the first whose required fields are all present in the result.
// First match wins; no match yields an empty map, not an error.
func resolveUnion(ctx context.Context, u *Union, params RawParams, pm PresenceMap, sink func(Issue)) map[string]any {
	for _, cand := range u.Candidates {
		var local PresenceMap
		if pm != nil {
			local = PresenceMap{}
		}
		m := parseShape(ctx, cand, params, modeLenient, local, nil)
		if satisfiesRequired(cand, m) {
			for k, v := range local {
				pm[k] |= v
			}
			return m
		}
	}
	emit(sink, Issue{Path: "/", Code: CodeUnionUnmatched, Message: i18n.T(CodeUnionUnmatched, nil), Hint: "no candidate shape matched"})
	return map[string]any{}
}

func satisfiesRequired(sh *Shape, m map[string]any) bool {
	for _, f := range sh.Fields {
		if !isRequired(f.Schema) {
			continue
		}
		if _, ok := m[f.Name]; !ok {
			return false
		}
	}
	return true
}

// ---- issue plumbing ----

func emit(sink func(Issue), iss ...Issue) {
	if sink == nil {
		return
	}
	for _, it := range iss {
		sink(it)
	}
}

// rebase rewrites child issue paths under "/field" so sink observers see
// where a failure happened.
func rebase(name string, err error) Issue {
	base := "/" + name
	if child, ok := AsIssues(err); ok && len(child) > 0 {
		it := child[0]
		switch {
		case it.Path == "" || it.Path == "/":
			it.Path = base
		case it.Path[0] == '/':
			it.Path = base + it.Path
		default:
			it.Path = base + "/" + it.Path
		}
		return it
	}
	return Issue{Path: base, Code: CodeParseError, Message: err.Error(), Cause: err}
}

func rebaseIndex(i int, err error) error {
	if child, ok := AsIssues(err); ok && len(child) > 0 {
		it := child[0]
		prefix := fmt.Sprintf("/%d", i)
		if it.Path == "" || it.Path == "/" {
			it.Path = prefix
		} else {
			it.Path = prefix + it.Path
		}
		return Issues{it}
	}
	return err
}
