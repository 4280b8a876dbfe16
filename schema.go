package qskema

import (
	"context"

	js "github.com/reoring/qskema/jsonschema"
)

// Kind enumerates the scalar kinds a field can decode to.
type Kind int

const (
	KindString Kind = iota // decoded as string (identity)
	KindNumber             // decoded as float64
	KindBool               // decoded as bool ("true"/"false" literals only)
)

// String returns the lowercase kind name used in diagnostics and schema documents.
func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	default:
		return "string"
	}
}

// Check is a named refinement executed after a field value converts
// successfully. Fn returns nil to accept the value; any error (preferably
// Issues) rejects it and the field is omitted from the result.
type Check struct {
	Name string
	Fn   func(ctx context.Context, v any) error
	// Annotate optionally projects the constraint into a JSON Schema
	// fragment so runtime behavior and exported documentation stay aligned.
	Annotate func(*js.Schema)
}

// FieldSchema describes how one declared field decodes. It is a sealed
// tagged variant: Scalar, Array, Optional and Default are the only kinds.
type FieldSchema interface{ isFieldSchema() }

// Scalar decodes a single raw value into its Kind.
type Scalar struct {
	Kind   Kind
	Checks []Check
}

// Array decodes every raw value occurrence of the key through Elem,
// preserving input order. Checks apply to the converted slice as a whole;
// Elem.Checks apply per element.
type Array struct {
	Elem   Scalar
	Checks []Check
}

// Optional marks a field as not required for union candidate matching.
// It has no effect on how present values convert.
type Optional struct {
	Inner FieldSchema
}

// Default supplies a fallback value used when the key is absent or its raw
// value fails conversion. The fallback still runs the inner kind's checks.
type Default struct {
	Inner FieldSchema
	Value any
}

func (Scalar) isFieldSchema()   {}
func (Array) isFieldSchema()    {}
func (Optional) isFieldSchema() {}
func (Default) isFieldSchema()  {}

// Field pairs a declared name with its FieldSchema. Declaration order is
// preserved by Shape and drives the lenient bail-out, so it is significant.
type Field struct {
	Name   string
	Schema FieldSchema
}

// Schema describes a decodable parameter set. It is a sealed tagged variant:
// *Shape, *Union and OptionalOf are the only kinds; anything else is a
// schema-authoring defect reported as CodeInvalidSchema.
type Schema interface{ isSchema() }

// Shape is a plain object schema: a fixed, ordered set of named fields.
type Shape struct {
	Fields []Field
}

// Union is an ordered sequence of candidate shapes resolved by first match.
// Candidate order is part of the contract: reordering changes which shape an
// ambiguous input resolves to.
type Union struct {
	Candidates []*Shape
}

// OptionalOf wraps a schema whose input may be entirely absent. Decoding
// delegates to the inner schema; an empty result is a valid decode.
type OptionalOf struct {
	Inner Schema
}

func (*Shape) isSchema()     {}
func (*Union) isSchema()     {}
func (OptionalOf) isSchema() {}

// baseOf unwraps Optional/Default layers down to the Scalar or Array node
// that determines the conversion rule.
func baseOf(f FieldSchema) FieldSchema {
	for {
		switch t := f.(type) {
		case Optional:
			f = t.Inner
		case Default:
			f = t.Inner
		default:
			return f
		}
	}
}

// defaultOf reports the declared default value when a Default layer exists
// anywhere in the wrapper chain.
func defaultOf(f FieldSchema) (any, bool) {
	for {
		switch t := f.(type) {
		case Optional:
			f = t.Inner
		case Default:
			return t.Value, true
		default:
			return nil, false
		}
	}
}

// isRequired reports whether a field participates in union required-set
// matching: true only when its wrapper chain contains neither Optional nor
// Default.
func isRequired(f FieldSchema) bool {
	switch f.(type) {
	case Optional, Default:
		return false
	default:
		return true
	}
}

// RequiredFields returns the names of the shape's required fields in
// declaration order.
func (s *Shape) RequiredFields() []string {
	out := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		if isRequired(f.Schema) {
			out = append(out, f.Name)
		}
	}
	return out
}

// FieldNames returns the declared field names in declaration order.
func (s *Shape) FieldNames() []string {
	out := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		out = append(out, f.Name)
	}
	return out
}
