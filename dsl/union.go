package dsl

import (
	"fmt"

	qskema "github.com/reoring/qskema"
)

// Union builds an ordered first-match union from shape schemas. Candidate
// order is significant: reordering changes which shape an ambiguous input
// resolves to. Each candidate must be a shape built with Object().
func Union(candidates ...qskema.Schema) (qskema.Schema, error) {
	if len(candidates) == 0 {
		return nil, buildErr("union requires at least one candidate")
	}
	shapes := make([]*qskema.Shape, 0, len(candidates))
	for i, c := range candidates {
		sh, ok := c.(*qskema.Shape)
		if !ok || sh == nil {
			return nil, buildErr(fmt.Sprintf("union candidate %d is not a shape", i))
		}
		shapes = append(shapes, sh)
	}
	return &qskema.Union{Candidates: shapes}, nil
}

// MustUnion is like Union but panics on error.
func MustUnion(candidates ...qskema.Schema) qskema.Schema {
	u, err := Union(candidates...)
	if err != nil {
		panic(err)
	}
	return u
}

// Optional wraps a whole schema whose input may be entirely absent. Decoding
// delegates to the inner schema; an empty result stays a valid decode.
func Optional(inner qskema.Schema) qskema.Schema {
	return qskema.OptionalOf{Inner: inner}
}
