package qskema_test

import (
	"reflect"
	"testing"

	qskema "github.com/reoring/qskema"
	js "github.com/reoring/qskema/jsonschema"
)

func TestJSONSchemaOf_Shape(t *testing.T) {
	sh := &qskema.Shape{Fields: []qskema.Field{
		{Name: "q", Schema: qskema.Scalar{Kind: qskema.KindString}},
		{Name: "page", Schema: qskema.Default{Inner: qskema.Scalar{Kind: qskema.KindNumber}, Value: float64(1)}},
		{Name: "tags", Schema: qskema.Optional{Inner: qskema.Array{Elem: qskema.Scalar{Kind: qskema.KindString}}}},
		{Name: "safe", Schema: qskema.Scalar{Kind: qskema.KindBool}},
	}}

	sch, err := qskema.JSONSchemaOf(sh)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if sch.Type != "object" {
		t.Fatalf("unexpected type: %q", sch.Type)
	}
	if !reflect.DeepEqual(sch.Required, []string{"q", "safe"}) {
		t.Fatalf("unexpected required: %#v", sch.Required)
	}
	if sch.AdditionalProperties != true {
		t.Fatalf("undeclared keys are ignored, expected additionalProperties true")
	}
	if sch.Properties["q"].Type != "string" {
		t.Fatalf("unexpected q: %#v", sch.Properties["q"])
	}
	if p := sch.Properties["page"]; p.Type != "number" || p.Default != float64(1) {
		t.Fatalf("unexpected page: %#v", p)
	}
	if p := sch.Properties["tags"]; p.Type != "array" || p.Items == nil || p.Items.Type != "string" {
		t.Fatalf("unexpected tags: %#v", p)
	}
	if sch.Properties["safe"].Type != "boolean" {
		t.Fatalf("unexpected safe: %#v", sch.Properties["safe"])
	}
}

func TestJSONSchemaOf_Union(t *testing.T) {
	sch, err := qskema.JSONSchemaOf(lookupUnion())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(sch.OneOf) != 2 {
		t.Fatalf("unexpected oneOf: %#v", sch.OneOf)
	}
	if sch.OneOf[0].Properties["id"].Type != "number" {
		t.Fatalf("unexpected first candidate: %#v", sch.OneOf[0])
	}
	if sch.OneOf[1].Properties["name"].Type != "string" {
		t.Fatalf("unexpected second candidate: %#v", sch.OneOf[1])
	}
}

func TestJSONSchemaOf_InvalidSchema(t *testing.T) {
	if _, err := qskema.JSONSchemaOf(nil); err == nil {
		t.Fatalf("expected error for nil schema")
	}
}

func TestJSONSchemaOf_ChecksAnnotate(t *testing.T) {
	sh := &qskema.Shape{Fields: []qskema.Field{
		{Name: "n", Schema: qskema.Scalar{Kind: qskema.KindNumber, Checks: []qskema.Check{{
			Name: "min",
			Annotate: func(out *js.Schema) {
				v := 1.0
				out.Minimum = &v
			},
		}}}},
	}}
	sch, err := qskema.JSONSchemaOf(sh)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	p := sch.Properties["n"]
	if p.Minimum == nil || *p.Minimum != 1 {
		t.Fatalf("annotation not applied: %#v", p)
	}
}
