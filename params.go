package qskema

import (
	"errors"
	"io"
)

// RawParams maps a field name to the ordered raw string values supplied for
// it, one entry per occurrence. Absence means the key is not in the map; a
// present key always has at least one value.
type RawParams map[string][]string

// Collect drains a Source into RawParams, appending each value to its key's
// sequence in encounter order. Pair content never fails; only source I/O
// errors propagate.
func Collect(src Source) (RawParams, error) {
	params := RawParams{}
	if src == nil {
		return params, nil
	}
	for {
		p, err := src.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return params, nil
			}
			return nil, toIssues(err)
		}
		params[p.Key] = append(params[p.Key], p.Value)
	}
}

// Has reports whether the key was supplied at least once.
func (p RawParams) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// First returns the first raw value for key, or "" when absent.
func (p RawParams) First(key string) string {
	if vs, ok := p[key]; ok && len(vs) > 0 {
		return vs[0]
	}
	return ""
}

func toIssues(err error) Issues {
	if err == nil {
		return nil
	}
	if ii, ok := AsIssues(err); ok {
		return ii
	}
	return AppendIssues(nil, Issue{Code: CodeParseError, Message: err.Error(), Cause: err})
}
