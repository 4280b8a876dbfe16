package qskema_test

import (
	"reflect"
	"testing"

	qskema "github.com/reoring/qskema"
)

func TestResolveStructKey(t *testing.T) {
	type sample struct {
		A string `qskema:"name=alpha" query:"qa" json:"ja"`
		B string `query:"qb" json:"jb"`
		C string `json:"jc,omitempty"`
		D string `json:"-"`
		E string
	}
	rt := reflect.TypeOf(sample{})
	want := map[string]string{
		"A": "alpha",
		"B": "qb",
		"C": "jc",
		"D": "-",
		"E": "E",
	}
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if got := qskema.ResolveStructKey(sf); got != want[sf.Name] {
			t.Fatalf("field %s: got %q, want %q", sf.Name, got, want[sf.Name])
		}
	}
}
