package qskema_test

import (
	"context"
	"reflect"
	"testing"

	qskema "github.com/reoring/qskema"
)

func lookupUnion() *qskema.Union {
	byID := &qskema.Shape{Fields: []qskema.Field{
		{Name: "id", Schema: qskema.Scalar{Kind: qskema.KindNumber}},
	}}
	byName := &qskema.Shape{Fields: []qskema.Field{
		{Name: "name", Schema: qskema.Scalar{Kind: qskema.KindString}},
		{Name: "fuzzy", Schema: qskema.Default{Inner: qskema.Scalar{Kind: qskema.KindBool}, Value: false}},
	}}
	return &qskema.Union{Candidates: []*qskema.Shape{byID, byName}}
}

func TestUnion_FirstMatchWins(t *testing.T) {
	ctx := context.Background()
	u := lookupUnion()

	v, err := qskema.DecodeQuery(ctx, u, "id=42")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !reflect.DeepEqual(v, map[string]any{"id": float64(42)}) {
		t.Fatalf("unexpected value: %#v", v)
	}

	// Both candidates satisfiable: declaration order decides.
	v, err = qskema.DecodeQuery(ctx, u, "id=42&name=bob")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, ok := v["name"]; ok {
		t.Fatalf("first candidate should win: %#v", v)
	}
	if v["id"] != float64(42) {
		t.Fatalf("unexpected value: %#v", v)
	}
}

func TestUnion_SecondCandidate(t *testing.T) {
	ctx := context.Background()
	v, err := qskema.DecodeQuery(ctx, lookupUnion(), "name=bob")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	want := map[string]any{"name": "bob", "fuzzy": false}
	if !reflect.DeepEqual(v, want) {
		t.Fatalf("unexpected value: %#v", v)
	}
}

func TestUnion_LenientBailSkipsCandidate(t *testing.T) {
	ctx := context.Background()
	// id present but malformed: the first candidate bails as a whole and
	// resolution falls through to the name candidate.
	v, err := qskema.DecodeQuery(ctx, lookupUnion(), "id=oops&name=bob")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if v["name"] != "bob" {
		t.Fatalf("expected fallthrough to name candidate, got %#v", v)
	}
}

func TestUnion_NoMatchYieldsEmpty(t *testing.T) {
	ctx := context.Background()
	var issues []qskema.Issue
	opt := qskema.DecodeOpt{IssueSink: func(is qskema.Issue) { issues = append(issues, is) }}
	v, err := qskema.DecodeQuery(ctx, lookupUnion(), "foo=bar", opt)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(v) != 0 {
		t.Fatalf("expected empty map, got %#v", v)
	}
	if len(issues) != 1 || issues[0].Code != qskema.CodeUnionUnmatched {
		t.Fatalf("expected union_unmatched, got %#v", issues)
	}
}

func TestUnion_AllOptionalCandidateAlwaysMatches(t *testing.T) {
	ctx := context.Background()
	anyShape := &qskema.Shape{Fields: []qskema.Field{
		{Name: "x", Schema: qskema.Optional{Inner: qskema.Scalar{Kind: qskema.KindString}}},
	}}
	u := &qskema.Union{Candidates: []*qskema.Shape{anyShape}}
	v, err := qskema.DecodeQuery(ctx, u, "unrelated=1")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(v) != 0 {
		t.Fatalf("expected empty match, got %#v", v)
	}
}

func TestUnion_DefaultedFieldNotRequired(t *testing.T) {
	ctx := context.Background()
	// fuzzy has a default, so name alone satisfies the candidate.
	sh := &qskema.Shape{Fields: []qskema.Field{
		{Name: "name", Schema: qskema.Scalar{Kind: qskema.KindString}},
		{Name: "fuzzy", Schema: qskema.Default{Inner: qskema.Scalar{Kind: qskema.KindBool}, Value: true}},
	}}
	if got := sh.RequiredFields(); !reflect.DeepEqual(got, []string{"name"}) {
		t.Fatalf("unexpected required fields: %#v", got)
	}
	u := &qskema.Union{Candidates: []*qskema.Shape{sh}}
	v, err := qskema.DecodeQuery(ctx, u, "name=bob")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if v["fuzzy"] != true {
		t.Fatalf("expected default inside matched candidate, got %#v", v)
	}
}
