package qskema_test

import (
	"context"
	"reflect"
	"testing"

	qskema "github.com/reoring/qskema"
)

func searchShape() *qskema.Shape {
	return &qskema.Shape{Fields: []qskema.Field{
		{Name: "a", Schema: qskema.Default{Inner: qskema.Scalar{Kind: qskema.KindNumber}, Value: float64(5)}},
		{Name: "b", Schema: qskema.Scalar{Kind: qskema.KindString}},
	}}
}

func TestDecodeQuery_DefaultApplied(t *testing.T) {
	ctx := context.Background()
	v, err := qskema.DecodeQuery(ctx, searchShape(), "b=x")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	want := map[string]any{"a": float64(5), "b": "x"}
	if !reflect.DeepEqual(v, want) {
		t.Fatalf("unexpected value: %#v", v)
	}
}

func TestDecodeQuery_MalformedDefaultableFallsBack(t *testing.T) {
	ctx := context.Background()
	v, err := qskema.DecodeQuery(ctx, searchShape(), "a=abc&b=x")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if v["a"] != float64(5) {
		t.Fatalf("expected default for malformed a, got %#v", v)
	}
}

func TestDecodeQuery_MultipleValuesOmitsScalar(t *testing.T) {
	ctx := context.Background()
	sh := &qskema.Shape{Fields: []qskema.Field{
		{Name: "a", Schema: qskema.Scalar{Kind: qskema.KindNumber}},
	}}

	var issues []qskema.Issue
	opt := qskema.DecodeOpt{IssueSink: func(is qskema.Issue) { issues = append(issues, is) }}
	v, err := qskema.DecodeQuery(ctx, sh, "a=5&a=6", opt)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(v) != 0 {
		t.Fatalf("expected empty result, got %#v", v)
	}
	if len(issues) != 1 || issues[0].Code != qskema.CodeMultipleValues {
		t.Fatalf("expected multiple_values issue, got %#v", issues)
	}
	if issues[0].Path != "/a" {
		t.Fatalf("unexpected issue path: %q", issues[0].Path)
	}
}

func TestDecodeQuery_ArrayPreservesOrder(t *testing.T) {
	ctx := context.Background()
	sh := &qskema.Shape{Fields: []qskema.Field{
		{Name: "tags", Schema: qskema.Array{Elem: qskema.Scalar{Kind: qskema.KindString}}},
	}}
	v, err := qskema.DecodeQuery(ctx, sh, "tags=a&tags=b&tags=a")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	want := []any{"a", "b", "a"}
	if !reflect.DeepEqual(v["tags"], want) {
		t.Fatalf("unexpected tags: %#v", v["tags"])
	}
}

func TestDecodeQuery_ArraySingleValue(t *testing.T) {
	ctx := context.Background()
	sh := &qskema.Shape{Fields: []qskema.Field{
		{Name: "n", Schema: qskema.Array{Elem: qskema.Scalar{Kind: qskema.KindNumber}}},
	}}
	v, err := qskema.DecodeQuery(ctx, sh, "n=3")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !reflect.DeepEqual(v["n"], []any{float64(3)}) {
		t.Fatalf("unexpected n: %#v", v["n"])
	}
}

func TestDecodeQuery_ArrayElementFailureOmitsWhole(t *testing.T) {
	ctx := context.Background()
	sh := &qskema.Shape{Fields: []qskema.Field{
		{Name: "n", Schema: qskema.Array{Elem: qskema.Scalar{Kind: qskema.KindNumber}}},
	}}
	var issues []qskema.Issue
	opt := qskema.DecodeOpt{IssueSink: func(is qskema.Issue) { issues = append(issues, is) }}
	v, err := qskema.DecodeQuery(ctx, sh, "n=1&n=abc&n=3", opt)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, ok := v["n"]; ok {
		t.Fatalf("expected n omitted, got %#v", v)
	}
	if len(issues) != 1 || issues[0].Code != qskema.CodeInvalidType {
		t.Fatalf("expected invalid_type issue, got %#v", issues)
	}
}

func TestDecodeQuery_RequiredMissingReported(t *testing.T) {
	ctx := context.Background()
	sh := &qskema.Shape{Fields: []qskema.Field{
		{Name: "q", Schema: qskema.Scalar{Kind: qskema.KindString}},
	}}
	var issues []qskema.Issue
	opt := qskema.DecodeOpt{IssueSink: func(is qskema.Issue) { issues = append(issues, is) }}
	v, err := qskema.DecodeQuery(ctx, sh, "", opt)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(v) != 0 {
		t.Fatalf("expected empty result, got %#v", v)
	}
	if len(issues) != 1 || issues[0].Code != qskema.CodeRequired || issues[0].Path != "/q" {
		t.Fatalf("expected required issue at /q, got %#v", issues)
	}
}

func TestDecodeQuery_OptionalAbsenceIsSilent(t *testing.T) {
	ctx := context.Background()
	sh := &qskema.Shape{Fields: []qskema.Field{
		{Name: "q", Schema: qskema.Optional{Inner: qskema.Scalar{Kind: qskema.KindString}}},
	}}
	var issues []qskema.Issue
	opt := qskema.DecodeOpt{IssueSink: func(is qskema.Issue) { issues = append(issues, is) }}
	v, err := qskema.DecodeQuery(ctx, sh, "", opt)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(v) != 0 || len(issues) != 0 {
		t.Fatalf("expected silent empty decode, got %#v issues %#v", v, issues)
	}
}

func TestDecodeQuery_CheckFailureOmitsWithoutDefault(t *testing.T) {
	ctx := context.Background()
	min10 := qskema.Check{
		Name: "min",
		Fn: func(ctx context.Context, v any) error {
			if f, ok := v.(float64); ok && f < 10 {
				return qskema.Issues{qskema.Issue{Code: qskema.CodeTooSmall, Message: "too small"}}
			}
			return nil
		},
	}
	sh := &qskema.Shape{Fields: []qskema.Field{
		{Name: "n", Schema: qskema.Default{
			Inner: qskema.Scalar{Kind: qskema.KindNumber, Checks: []qskema.Check{min10}},
			Value: float64(50),
		}},
	}}
	var issues []qskema.Issue
	opt := qskema.DecodeOpt{IssueSink: func(is qskema.Issue) { issues = append(issues, is) }}

	// 3 converts fine but violates the check: omission, never default.
	v, err := qskema.DecodeQuery(ctx, sh, "n=3", opt)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, ok := v["n"]; ok {
		t.Fatalf("expected n omitted after check failure, got %#v", v)
	}
	if len(issues) != 1 || issues[0].Code != qskema.CodeTooSmall || issues[0].Path != "/n" {
		t.Fatalf("expected too_small at /n, got %#v", issues)
	}
}

func TestDecodeQuery_DefaultValueStillChecked(t *testing.T) {
	ctx := context.Background()
	rejectAll := qskema.Check{
		Name: "reject",
		Fn: func(ctx context.Context, v any) error {
			return qskema.Issues{qskema.Issue{Code: qskema.CodeTooSmall, Message: "too small"}}
		},
	}
	sh := &qskema.Shape{Fields: []qskema.Field{
		{Name: "n", Schema: qskema.Default{
			Inner: qskema.Scalar{Kind: qskema.KindNumber, Checks: []qskema.Check{rejectAll}},
			Value: float64(1),
		}},
	}}
	v, err := qskema.DecodeQuery(ctx, sh, "")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, ok := v["n"]; ok {
		t.Fatalf("default must not bypass checks: %#v", v)
	}
}

func TestDecode_Idempotent(t *testing.T) {
	ctx := context.Background()
	sh := searchShape()
	v1, err := qskema.DecodeQuery(ctx, sh, "a=7&b=x")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	v2, err := qskema.DecodeQuery(ctx, sh, "a=7&b=x")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !reflect.DeepEqual(v1, v2) {
		t.Fatalf("decode is not deterministic: %#v vs %#v", v1, v2)
	}
}

func TestDecodeQuery_OptionalOfDelegates(t *testing.T) {
	ctx := context.Background()
	s := qskema.OptionalOf{Inner: searchShape()}
	v, err := qskema.DecodeQuery(ctx, s, "b=x")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if v["b"] != "x" {
		t.Fatalf("unexpected value: %#v", v)
	}
}

func TestDecode_NilSchemaIsFatal(t *testing.T) {
	ctx := context.Background()
	_, err := qskema.DecodeQuery(ctx, nil, "a=1")
	if err == nil {
		t.Fatalf("expected invalid_schema error")
	}
	iss, ok := qskema.AsIssues(err)
	if !ok || len(iss) == 0 || iss[0].Code != qskema.CodeInvalidSchema {
		t.Fatalf("expected invalid_schema, got %v", err)
	}
}

func TestDecode_EmptyUnionIsFatal(t *testing.T) {
	ctx := context.Background()
	_, err := qskema.DecodeQuery(ctx, &qskema.Union{}, "a=1")
	if err == nil {
		t.Fatalf("expected invalid_schema error")
	}
	iss, _ := qskema.AsIssues(err)
	if len(iss) == 0 || iss[0].Code != qskema.CodeInvalidSchema {
		t.Fatalf("expected invalid_schema, got %v", err)
	}
}

func TestDecode_BadFieldSchemaIsFatal(t *testing.T) {
	ctx := context.Background()
	// Optional chain that never reaches a scalar or array.
	sh := &qskema.Shape{Fields: []qskema.Field{
		{Name: "x", Schema: qskema.Optional{Inner: nil}},
	}}
	_, err := qskema.DecodeQuery(ctx, sh, "x=1")
	if err == nil {
		t.Fatalf("expected invalid_schema error")
	}
	iss, _ := qskema.AsIssues(err)
	if len(iss) == 0 || iss[0].Code != qskema.CodeInvalidSchema {
		t.Fatalf("expected invalid_schema, got %v", err)
	}
}

func TestSafeDecode(t *testing.T) {
	ctx := context.Background()
	if _, ok := qskema.SafeDecode(ctx, nil, qskema.Query("a=1")); ok {
		t.Fatalf("expected ok=false for nil schema")
	}
	v, ok := qskema.SafeDecode(ctx, searchShape(), qskema.Query("b=x"))
	if !ok || v["b"] != "x" {
		t.Fatalf("unexpected result: %#v, %v", v, ok)
	}
}

func TestDecodeQuery_EmptyValueIsPresent(t *testing.T) {
	ctx := context.Background()
	sh := &qskema.Shape{Fields: []qskema.Field{
		{Name: "q", Schema: qskema.Scalar{Kind: qskema.KindString}},
	}}
	v, err := qskema.DecodeQuery(ctx, sh, "q=")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got, ok := v["q"]; !ok || got != "" {
		t.Fatalf("expected empty string present, got %#v", v)
	}
}
