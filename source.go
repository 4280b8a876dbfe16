package qskema

import (
	"io"
	"net/url"
	"sort"
	"sync"

	"github.com/reoring/qskema/internal/scan"
)

// Pair is one key/value occurrence in the input. Offset records the byte
// position when known (-1 otherwise).
type Pair struct {
	Key    string
	Value  string
	Offset int64
}

// Source abstracts over polymorphic pair inputs. Next returns io.EOF after
// the final pair.
type Source interface {
	Next() (Pair, error)
	Location() int64 // byte offset; -1 if unknown
}

// QueryDriver converts raw query text into a Source via a pluggable SPI. The
// default implementation is based on the internal scanner and may be swapped
// with SetQueryDriver.
type QueryDriver interface {
	NewString(q string) Source
	NewReader(r io.Reader) Source
	Name() string
}

var (
	queryDriverMu      sync.RWMutex
	currentQueryDriver QueryDriver = defaultQueryDriver{}
)

// SetQueryDriver replaces the global query driver; nil values are ignored.
func SetQueryDriver(d QueryDriver) {
	if d == nil {
		return
	}
	queryDriverMu.Lock()
	currentQueryDriver = d
	queryDriverMu.Unlock()
}

// UseDefaultQueryDriver restores the built-in scanner-backed driver.
func UseDefaultQueryDriver() {
	queryDriverMu.Lock()
	currentQueryDriver = defaultQueryDriver{}
	queryDriverMu.Unlock()
}

func getQueryDriver() QueryDriver {
	queryDriverMu.RLock()
	d := currentQueryDriver
	queryDriverMu.RUnlock()
	return d
}

// defaultQueryDriver wraps the internal/scan implementation.
type defaultQueryDriver struct{}

func (defaultQueryDriver) NewString(q string) Source {
	return &scanSourceAdapter{inner: scan.NewQueryString(q)}
}
func (defaultQueryDriver) NewReader(r io.Reader) Source {
	return &scanSourceAdapter{inner: scan.NewQueryReader(r)}
}
func (defaultQueryDriver) Name() string { return "scan" }

// Query wraps a raw query string ("a=1&b=2") as a Source.
func Query(q string) Source { return getQueryDriver().NewString(q) }

// QueryReader wraps an io.Reader carrying query text as a Source.
func QueryReader(r io.Reader) Source { return getQueryDriver().NewReader(r) }

// SourceFromScan wraps a scan.PairSource as a Source. It is exported for
// alternate driver packages under source/.
func SourceFromScan(inner scan.PairSource) Source {
	return &scanSourceAdapter{inner: inner}
}

type scanSourceAdapter struct{ inner scan.PairSource }

func (s *scanSourceAdapter) Next() (Pair, error) {
	p, err := s.inner.Next()
	if err != nil {
		return Pair{}, err
	}
	return Pair{Key: p.Key, Value: p.Value, Offset: p.Offset}, nil
}

func (s *scanSourceAdapter) Location() int64 { return s.inner.Location() }

// Pairs wraps an explicit pair slice as a Source, preserving order.
func Pairs(pairs ...Pair) Source { return &sliceSource{pairs: pairs} }

// Values adapts url.Values as a Source. url.Values loses cross-key encounter
// order, so keys are emitted in sorted order for determinism; per-key value
// order is preserved.
func Values(v url.Values) Source {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var pairs []Pair
	for _, k := range keys {
		for _, val := range v[k] {
			pairs = append(pairs, Pair{Key: k, Value: val, Offset: -1})
		}
	}
	return &sliceSource{pairs: pairs}
}

type sliceSource struct {
	pairs []Pair
	pos   int
}

func (s *sliceSource) Next() (Pair, error) {
	if s.pos >= len(s.pairs) {
		return Pair{}, io.EOF
	}
	p := s.pairs[s.pos]
	s.pos++
	return p, nil
}

func (s *sliceSource) Location() int64 { return -1 }
