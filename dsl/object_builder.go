package dsl

import (
	"fmt"

	qskema "github.com/reoring/qskema"
)

type objectBuilder struct {
	fields []qskema.Field
	seen   map[string]struct{}
	err    error
}

// Object creates a new shape builder. Field declaration order is preserved:
// it drives iteration during decoding and the lenient bail-out inside unions.
func Object() *objectBuilder {
	return &objectBuilder{seen: map[string]struct{}{}}
}

// Field registers a field with its adapter. Re-declaring a name is a builder
// error surfaced at Build time.
func (b *objectBuilder) Field(name string, ad FieldAdapter) *objectBuilder {
	if b.err != nil {
		return b
	}
	if ad.err != nil {
		b.err = ad.err
		return b
	}
	if name == "" {
		b.err = buildErr("empty field name")
		return b
	}
	if _, dup := b.seen[name]; dup {
		b.err = buildErr(fmt.Sprintf("duplicate field %q", name))
		return b
	}
	b.seen[name] = struct{}{}
	b.fields = append(b.fields, qskema.Field{Name: name, Schema: ad.fs})
	return b
}

// Build validates the builder and returns the assembled shape.
func (b *objectBuilder) Build() (qskema.Schema, error) {
	sh, err := b.shape()
	if err != nil {
		return nil, err
	}
	return sh, nil
}

// MustBuild is like Build but panics on error.
func (b *objectBuilder) MustBuild() qskema.Schema {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}

func (b *objectBuilder) shape() (*qskema.Shape, error) {
	if b.err != nil {
		return nil, b.err
	}
	return &qskema.Shape{Fields: append([]qskema.Field(nil), b.fields...)}, nil
}
