// Package yamlschema imports declarative schema description documents into
// qskema schemas. A document describes an object shape, an ordered union of
// shapes, or an optional wrapper around either:
//
//	type: object
//	fields:
//	  q:    { type: string, minLength: 1 }
//	  page: { type: number, default: 1, min: 1 }
//	  tags: { type: array, items: string }
//
//	type: union
//	oneOf:
//	  - fields: { id:   { type: number } }
//	  - fields: { name: { type: string } }
//
// YAML documents keep field declaration order, which is significant for
// union resolution and the lenient bail-out.
package yamlschema

import (
	"errors"
	"fmt"
	"sort"

	qskema "github.com/reoring/qskema"
	"github.com/reoring/qskema/dsl"
	"gopkg.in/yaml.v3"
)

// Options controls import behavior.
type Options struct {
	// StrictConstraints turns unknown field-spec keys into errors instead of
	// diagnostics.
	StrictConstraints bool
}

// Diag collects non-fatal findings during import.
type Diag interface {
	Warnings() []string
}

type simpleDiag struct{ warns []string }

func (d *simpleDiag) Warnings() []string { return d.warns }
func (d *simpleDiag) warnf(format string, args ...any) {
	d.warns = append(d.warns, fmt.Sprintf(format, args...))
}

// namedSpec is one field declaration in document order.
type namedSpec struct {
	name string
	spec map[string]any
}

// ImportYAML parses a single-document YAML schema description. Field order
// follows the document.
func ImportYAML(data []byte, opts Options) (qskema.Schema, Diag, error) {
	d := &simpleDiag{}
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, d, fmt.Errorf("yamlschema: invalid YAML: %w", err)
	}
	n := &root
	if n.Kind == yaml.DocumentNode {
		if len(n.Content) == 0 {
			return nil, d, errors.New("yamlschema: empty document")
		}
		n = n.Content[0]
	}
	s, err := importSchemaNode(n, opts, d)
	return s, d, err
}

// Import compiles an already-decoded description (map[string]any). Field
// order is not recoverable from Go maps, so names sort lexically for
// determinism; prefer ImportYAML when candidate or bail-out order matters.
func Import(doc map[string]any, opts Options) (qskema.Schema, Diag, error) {
	d := &simpleDiag{}
	if doc == nil {
		return nil, d, errors.New("yamlschema: nil document")
	}
	s, err := importSchemaMap(doc, opts, d)
	return s, d, err
}

// ---- YAML node path (order-preserving) ----

func importSchemaNode(n *yaml.Node, opts Options, d *simpleDiag) (qskema.Schema, error) {
	if n.Kind != yaml.MappingNode {
		return nil, errors.New("yamlschema: schema description must be a mapping")
	}
	var (
		typ      string
		optional bool
		fieldsN  *yaml.Node
		oneOfN   *yaml.Node
	)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i].Value, n.Content[i+1]
		switch key {
		case "type":
			typ = val.Value
		case "optional":
			if err := val.Decode(&optional); err != nil {
				return nil, fmt.Errorf("yamlschema: optional: %w", err)
			}
		case "fields":
			fieldsN = val
		case "oneOf":
			oneOfN = val
		default:
			d.warnf("ignored top-level key %q", key)
		}
	}

	var s qskema.Schema
	switch {
	case typ == "union" || (typ == "" && oneOfN != nil):
		if oneOfN == nil || oneOfN.Kind != yaml.SequenceNode || len(oneOfN.Content) == 0 {
			return nil, errors.New("yamlschema: union requires a non-empty oneOf sequence")
		}
		cands := make([]qskema.Schema, 0, len(oneOfN.Content))
		for i, cn := range oneOfN.Content {
			specs, err := fieldSpecsFromNode(candidateFields(cn))
			if err != nil {
				return nil, fmt.Errorf("yamlschema: oneOf[%d]: %w", i, err)
			}
			sh, err := buildShape(specs, opts, d)
			if err != nil {
				return nil, fmt.Errorf("yamlschema: oneOf[%d]: %w", i, err)
			}
			cands = append(cands, sh)
		}
		u, err := dsl.Union(cands...)
		if err != nil {
			return nil, err
		}
		s = u
	case typ == "object" || typ == "":
		if fieldsN == nil {
			return nil, errors.New("yamlschema: object requires fields")
		}
		specs, err := fieldSpecsFromNode(fieldsN)
		if err != nil {
			return nil, err
		}
		sh, err := buildShape(specs, opts, d)
		if err != nil {
			return nil, err
		}
		s = sh
	default:
		return nil, fmt.Errorf("yamlschema: unrecognized schema type %q", typ)
	}

	if optional {
		s = dsl.Optional(s)
	}
	return s, nil
}

// candidateFields unwraps `- fields: {...}` entries; a bare mapping is
// treated as the fields mapping itself.
func candidateFields(n *yaml.Node) *yaml.Node {
	if n.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(n.Content); i += 2 {
			if n.Content[i].Value == "fields" {
				return n.Content[i+1]
			}
		}
	}
	return n
}

func fieldSpecsFromNode(n *yaml.Node) ([]namedSpec, error) {
	if n == nil || n.Kind != yaml.MappingNode {
		return nil, errors.New("fields must be a mapping")
	}
	specs := make([]namedSpec, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		name := n.Content[i].Value
		var m map[string]any
		if err := n.Content[i+1].Decode(&m); err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		specs = append(specs, namedSpec{name: name, spec: m})
	}
	return specs, nil
}

// ---- decoded map path (sorted for determinism) ----

func importSchemaMap(doc map[string]any, opts Options, d *simpleDiag) (qskema.Schema, error) {
	typ, _ := doc["type"].(string)
	optional, _ := doc["optional"].(bool)
	oneOf, hasOneOf := doc["oneOf"].([]any)

	var s qskema.Schema
	switch {
	case typ == "union" || (typ == "" && hasOneOf):
		if len(oneOf) == 0 {
			return nil, errors.New("yamlschema: union requires a non-empty oneOf sequence")
		}
		cands := make([]qskema.Schema, 0, len(oneOf))
		for i, c := range oneOf {
			cm, ok := c.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("yamlschema: oneOf[%d] is not a mapping", i)
			}
			if fm, ok := cm["fields"].(map[string]any); ok {
				cm = fm
			}
			sh, err := buildShape(sortedSpecs(cm), opts, d)
			if err != nil {
				return nil, fmt.Errorf("yamlschema: oneOf[%d]: %w", i, err)
			}
			cands = append(cands, sh)
		}
		u, err := dsl.Union(cands...)
		if err != nil {
			return nil, err
		}
		s = u
	case typ == "object" || typ == "":
		fm, ok := doc["fields"].(map[string]any)
		if !ok {
			return nil, errors.New("yamlschema: object requires fields")
		}
		sh, err := buildShape(sortedSpecs(fm), opts, d)
		if err != nil {
			return nil, err
		}
		s = sh
	default:
		return nil, fmt.Errorf("yamlschema: unrecognized schema type %q", typ)
	}

	if optional {
		s = dsl.Optional(s)
	}
	return s, nil
}

func sortedSpecs(fields map[string]any) []namedSpec {
	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	sort.Strings(names)
	specs := make([]namedSpec, 0, len(names))
	for _, name := range names {
		m, _ := fields[name].(map[string]any)
		specs = append(specs, namedSpec{name: name, spec: m})
	}
	return specs
}

// ---- shared shape construction ----

func buildShape(specs []namedSpec, opts Options, d *simpleDiag) (qskema.Schema, error) {
	b := dsl.Object()
	for _, ns := range specs {
		ad, err := buildField(ns.name, ns.spec, opts, d)
		if err != nil {
			return nil, err
		}
		b = b.Field(ns.name, ad)
	}
	return b.Build()
}

var knownSpecKeys = map[string]struct{}{
	"type": {}, "items": {}, "optional": {}, "default": {},
	"min": {}, "max": {}, "minLength": {}, "maxLength": {},
	"pattern": {}, "enum": {},
}

func buildField(name string, spec map[string]any, opts Options, d *simpleDiag) (dsl.FieldAdapter, error) {
	var zero dsl.FieldAdapter
	if spec == nil {
		spec = map[string]any{}
	}
	for k := range spec {
		if _, ok := knownSpecKeys[k]; !ok {
			if opts.StrictConstraints {
				return zero, fmt.Errorf("yamlschema: field %q: unknown key %q", name, k)
			}
			d.warnf("field %q: ignored key %q", name, k)
		}
	}

	typ, _ := spec["type"].(string)
	if typ == "" {
		typ = "string"
	}

	var ad dsl.FieldAdapter
	switch typ {
	case "array":
		items, _ := spec["items"].(string)
		elem, err := scalarAdapter(items)
		if err != nil {
			return zero, fmt.Errorf("yamlschema: field %q: %w", name, err)
		}
		ad = dsl.Array(elem)
	default:
		var err error
		ad, err = scalarAdapter(typ)
		if err != nil {
			return zero, fmt.Errorf("yamlschema: field %q: %w", name, err)
		}
	}

	if v, ok := spec["min"]; ok {
		f, ok := toFloat(v)
		if !ok {
			return zero, fmt.Errorf("yamlschema: field %q: min must be numeric", name)
		}
		ad = ad.Min(f)
	}
	if v, ok := spec["max"]; ok {
		f, ok := toFloat(v)
		if !ok {
			return zero, fmt.Errorf("yamlschema: field %q: max must be numeric", name)
		}
		ad = ad.Max(f)
	}
	if v, ok := spec["minLength"]; ok {
		n, ok := toInt(v)
		if !ok {
			return zero, fmt.Errorf("yamlschema: field %q: minLength must be an integer", name)
		}
		ad = ad.MinLen(n)
	}
	if v, ok := spec["maxLength"]; ok {
		n, ok := toInt(v)
		if !ok {
			return zero, fmt.Errorf("yamlschema: field %q: maxLength must be an integer", name)
		}
		ad = ad.MaxLen(n)
	}
	if v, ok := spec["pattern"].(string); ok {
		ad = ad.Pattern(v)
	}
	if v, ok := spec["enum"].([]any); ok {
		ad = ad.Enum(v...)
	}

	if dv, ok := spec["default"]; ok {
		if typ == "number" {
			if f, ok := toFloat(dv); ok {
				dv = f
			}
		}
		ad = ad.Default(dv)
	}
	if opt, _ := spec["optional"].(bool); opt {
		ad = ad.Optional()
	}
	return ad, nil
}

func scalarAdapter(typ string) (dsl.FieldAdapter, error) {
	switch typ {
	case "number":
		return dsl.Number(), nil
	case "boolean", "bool":
		return dsl.Bool(), nil
	case "string", "":
		return dsl.String(), nil
	default:
		return dsl.FieldAdapter{}, fmt.Errorf("unrecognized field type %q", typ)
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
