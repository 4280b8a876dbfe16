package qskema

import (
	"sort"

	js "github.com/reoring/qskema/jsonschema"
)

// JSONSchemaOf projects a query schema into a JSON Schema representation for
// documentation purposes. The decoder ignores undeclared keys, so objects
// export additionalProperties true.
func JSONSchemaOf(s Schema) (*js.Schema, error) {
	if err := validateSchema(s); err != nil {
		return nil, err
	}
	return jsonSchemaOf(s), nil
}

func jsonSchemaOf(s Schema) *js.Schema {
	switch t := s.(type) {
	case OptionalOf:
		return jsonSchemaOf(t.Inner)
	case *Union:
		out := &js.Schema{OneOf: make([]*js.Schema, 0, len(t.Candidates))}
		for _, c := range t.Candidates {
			out.OneOf = append(out.OneOf, jsonSchemaOf(c))
		}
		return out
	case *Shape:
		props := make(map[string]*js.Schema, len(t.Fields))
		var req []string
		for _, f := range t.Fields {
			props[f.Name] = jsonSchemaOfField(f.Schema)
			if isRequired(f.Schema) {
				req = append(req, f.Name)
			}
		}
		sort.Strings(req)
		return &js.Schema{Type: "object", Properties: props, Required: req, AdditionalProperties: true}
	default:
		return &js.Schema{}
	}
}

func jsonSchemaOfField(f FieldSchema) *js.Schema {
	switch t := f.(type) {
	case Optional:
		return jsonSchemaOfField(t.Inner)
	case Default:
		out := jsonSchemaOfField(t.Inner)
		out.Default = t.Value
		return out
	case Array:
		out := &js.Schema{Type: "array", Items: jsonSchemaOfField(t.Elem)}
		annotate(out, t.Checks)
		return out
	case Scalar:
		out := &js.Schema{Type: t.Kind.String()}
		annotate(out, t.Checks)
		return out
	default:
		return &js.Schema{}
	}
}

func annotate(out *js.Schema, checks []Check) {
	for _, c := range checks {
		if c.Annotate != nil {
			c.Annotate(out)
		}
	}
}
