// Package scan implements the raw query-string scanner behind the default
// query driver. It yields ordered key/value pairs and never rejects input:
// malformed percent-escapes keep their raw text so collection stays total.
package scan

import (
	"io"
	"net/url"
	"strings"
)

// Pair is one key/value occurrence with the byte offset of its start in the
// original input (-1 when unknown).
type Pair struct {
	Key    string
	Value  string
	Offset int64
}

// PairSource yields pairs in encounter order, ending with io.EOF.
type PairSource interface {
	Next() (Pair, error)
	Location() int64
}

// queryScanner walks an URL-encoded query string ("a=1&b=two&a=3").
type queryScanner struct {
	raw string
	pos int
}

// NewQueryString wraps a raw query string as a PairSource. A leading '?' is
// tolerated, '+' decodes to space, and segments split on '&'.
func NewQueryString(raw string) PairSource {
	raw = strings.TrimPrefix(raw, "?")
	return &queryScanner{raw: raw}
}

// NewQueryReader drains r and scans its contents as a query string.
func NewQueryReader(r io.Reader) PairSource {
	data, err := io.ReadAll(r)
	if err != nil {
		return &errSource{err: err}
	}
	return NewQueryString(string(data))
}

func (s *queryScanner) Next() (Pair, error) {
	for s.pos < len(s.raw) {
		start := s.pos
		end := strings.IndexByte(s.raw[s.pos:], '&')
		var seg string
		if end < 0 {
			seg = s.raw[s.pos:]
			s.pos = len(s.raw)
		} else {
			seg = s.raw[s.pos : s.pos+end]
			s.pos += end + 1
		}
		if seg == "" {
			continue
		}
		key, val := seg, ""
		if i := strings.IndexByte(seg, '='); i >= 0 {
			key, val = seg[:i], seg[i+1:]
		}
		return Pair{Key: unescape(key), Value: unescape(val), Offset: int64(start)}, nil
	}
	return Pair{}, io.EOF
}

func (s *queryScanner) Location() int64 { return int64(s.pos) }

// unescape percent-decodes best-effort: undecodable text is kept verbatim.
func unescape(s string) string {
	if !strings.ContainsAny(s, "%+") {
		return s
	}
	if out, err := url.QueryUnescape(s); err == nil {
		return out
	}
	return s
}

type errSource struct{ err error }

func (e *errSource) Next() (Pair, error) { return Pair{}, e.err }
func (e *errSource) Location() int64     { return -1 }
