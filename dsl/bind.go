package dsl

import (
	"context"
	"reflect"

	qskema "github.com/reoring/qskema"
)

// Bind builds the object schema and binds it to struct type T. Struct fields
// resolve their decode keys via qskema.ResolveStructKey (qskema tag > query
// tag > json tag > field name).
func Bind[T any](b *objectBuilder) (*BoundSchema[T], error) {
	sh, err := b.shape()
	if err != nil {
		return nil, err
	}
	var t T
	rt := reflect.TypeOf(t)
	if rt != nil && rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	if rt == nil || rt.Kind() != reflect.Struct {
		return nil, buildErr("Bind[T] requires struct T")
	}
	idxByName := make(map[string]int)
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := qskema.ResolveStructKey(sf)
		if name == "-" || name == "" {
			continue
		}
		idxByName[name] = i
	}
	fm := make(map[string]int)
	for _, f := range sh.Fields {
		if i, ok := idxByName[f.Name]; ok {
			fm[f.Name] = i
		}
	}
	return &BoundSchema[T]{shape: sh, t: rt, fieldByKey: fm}, nil
}

// MustBind is like Bind but panics on error.
func MustBind[T any](b *objectBuilder) *BoundSchema[T] {
	s, err := Bind[T](b)
	if err != nil {
		panic(err)
	}
	return s
}

// BoundSchema decodes parameter sets straight into struct values of type T.
type BoundSchema[T any] struct {
	shape      *qskema.Shape
	t          reflect.Type
	fieldByKey map[string]int
}

// Schema exposes the underlying shape for composition (e.g. inside unions).
func (s *BoundSchema[T]) Schema() qskema.Schema { return s.shape }

// Decode decodes the source into a T. Unresolved fields keep their zero value.
func (s *BoundSchema[T]) Decode(ctx context.Context, src qskema.Source, opts ...qskema.DecodeOpt) (T, error) {
	var zero T
	m, err := qskema.Decode(ctx, s.shape, src, opts...)
	if err != nil {
		return zero, err
	}
	return s.assign(m)
}

// DecodeQuery decodes a raw query string into a T.
func (s *BoundSchema[T]) DecodeQuery(ctx context.Context, rawQuery string, opts ...qskema.DecodeOpt) (T, error) {
	return s.Decode(ctx, qskema.Query(rawQuery), opts...)
}

// DecodeWithMeta decodes into a T together with presence metadata keyed by
// the schema's declared field names.
func (s *BoundSchema[T]) DecodeWithMeta(ctx context.Context, src qskema.Source, opts ...qskema.DecodeOpt) (qskema.Decoded[T], error) {
	var zero qskema.Decoded[T]
	dm, err := qskema.DecodeWithMeta(ctx, s.shape, src, opts...)
	if err != nil {
		return zero, err
	}
	out, err := s.assign(dm.Value)
	if err != nil {
		return zero, err
	}
	return qskema.Decoded[T]{Value: out, Presence: dm.Presence}, nil
}

// assign maps decoded values into struct fields, converting scalars and
// rebuilding []any element-wise for slice targets.
func (s *BoundSchema[T]) assign(m map[string]any) (T, error) {
	var zero T
	rv := reflect.New(s.t).Elem()
	for key, idx := range s.fieldByKey {
		val, ok := m[key]
		if !ok {
			continue
		}
		fv := rv.Field(idx)
		if !fv.CanSet() {
			continue
		}
		if val == nil {
			continue
		}
		vv := reflect.ValueOf(val)
		switch {
		case vv.Type().AssignableTo(fv.Type()):
			fv.Set(vv)
		case vv.Type().ConvertibleTo(fv.Type()) && (fv.Kind() != reflect.String || vv.Kind() == reflect.String):
			fv.Set(vv.Convert(fv.Type()))
		case fv.Kind() == reflect.Slice && vv.Kind() == reflect.Slice:
			if err := assignSlice(fv, vv); err != nil {
				return zero, qskema.Issues{qskema.Issue{Path: "/" + key, Code: qskema.CodeInvalidType, Message: "field type mismatch"}}
			}
		default:
			return zero, qskema.Issues{qskema.Issue{Path: "/" + key, Code: qskema.CodeInvalidType, Message: "field type mismatch"}}
		}
	}
	return rv.Interface().(T), nil
}

func assignSlice(dst, src reflect.Value) error {
	out := reflect.MakeSlice(dst.Type(), src.Len(), src.Len())
	et := dst.Type().Elem()
	for i := 0; i < src.Len(); i++ {
		ev := src.Index(i)
		if ev.Kind() == reflect.Interface {
			ev = ev.Elem()
		}
		switch {
		case !ev.IsValid():
			return errMismatch
		case ev.Type().AssignableTo(et):
			out.Index(i).Set(ev)
		case ev.Type().ConvertibleTo(et) && (et.Kind() != reflect.String || ev.Kind() == reflect.String):
			out.Index(i).Set(ev.Convert(et))
		default:
			return errMismatch
		}
	}
	dst.Set(out)
	return nil
}

var errMismatch = qskema.Issues{qskema.Issue{Path: "/", Code: qskema.CodeInvalidType, Message: "slice element type mismatch"}}
