// Package jsonform adapts a flat JSON object into a qskema pair Source. It
// covers APIs that echo form data as JSON: members must be scalars or arrays
// of scalars, and array elements become one pair per element in document
// order, exactly as repeated query keys would.
package jsonform

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	j "github.com/goccy/go-json"

	qskema "github.com/reoring/qskema"
	"github.com/reoring/qskema/internal/scan"
)

// Bytes wraps a JSON object document as a Source.
func Bytes(b []byte) qskema.Source { return Reader(bytes.NewReader(b)) }

// Reader wraps a JSON object stream as a Source.
func Reader(r io.Reader) qskema.Source {
	dec := j.NewDecoder(r)
	dec.UseNumber()
	return qskema.SourceFromScan(&source{dec: dec})
}

type source struct {
	dec     *j.Decoder
	started bool
	done    bool
	curKey  string
	inArray bool
	err     error
}

func (s *source) Next() (scan.Pair, error) {
	if s.err != nil {
		return scan.Pair{}, s.err
	}
	if s.done {
		return scan.Pair{}, io.EOF
	}
	if !s.started {
		tok, err := s.dec.Token()
		if err != nil {
			return scan.Pair{}, s.fail(err)
		}
		if d, ok := tok.(j.Delim); !ok || d != j.Delim('{') {
			return scan.Pair{}, s.fail(fmt.Errorf("jsonform: top-level value must be an object, got %v", tok))
		}
		s.started = true
	}
	for {
		tok, err := s.dec.Token()
		if err != nil {
			return scan.Pair{}, s.fail(err)
		}
		if d, ok := tok.(j.Delim); ok {
			switch d {
			case j.Delim('}'):
				s.done = true
				return scan.Pair{}, io.EOF
			case j.Delim('['):
				if s.curKey == "" || s.inArray {
					return scan.Pair{}, s.fail(fmt.Errorf("jsonform: unexpected array"))
				}
				s.inArray = true
			case j.Delim(']'):
				s.inArray = false
				s.curKey = ""
			case j.Delim('{'):
				return scan.Pair{}, s.fail(fmt.Errorf("jsonform: nested objects are not supported (key %q)", s.curKey))
			}
			continue
		}
		if s.curKey == "" && !s.inArray {
			ks, ok := tok.(string)
			if !ok {
				return scan.Pair{}, s.fail(fmt.Errorf("jsonform: object key must be a string, got %v", tok))
			}
			s.curKey = ks
			continue
		}
		val, err := stringify(tok)
		if err != nil {
			return scan.Pair{}, s.fail(fmt.Errorf("jsonform: key %q: %w", s.curKey, err))
		}
		key := s.curKey
		if !s.inArray {
			s.curKey = ""
		}
		return scan.Pair{Key: key, Value: val, Offset: -1}, nil
	}
}

func (s *source) Location() int64 { return -1 }

func (s *source) fail(err error) error {
	if err == io.EOF && !s.done {
		err = io.ErrUnexpectedEOF
	}
	s.err = err
	return err
}

// stringify renders a scalar token the way it would appear in a query
// string: numbers keep their literal text, booleans become their literals,
// null becomes the empty string.
func stringify(tok j.Token) (string, error) {
	switch t := tok.(type) {
	case string:
		return t, nil
	case j.Number:
		return t.String(), nil
	case bool:
		if t {
			return "true", nil
		}
		return "false", nil
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("unsupported value %v", tok)
	}
}
