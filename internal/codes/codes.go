// Package codes holds the versioned table mapping short CSV codes to their
// bilingual display strings.
package codes

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

//go:embed codes.json
var defaultTable []byte

type Kind string

const (
	KindCourse  Kind = "course"
	KindPayment Kind = "payment"
	KindStatus  Kind = "status"
)

type Entry struct {
	Code    string `json:"code"`
	Kind    Kind   `json:"kind"`
	Display string `json:"display"`
}

// Table is immutable after Load.
type Table struct {
	version int
	entries map[string]Entry
}

type document struct {
	Version int     `json:"version"`
	Codes   []Entry `json:"codes"`
}

var ErrInvalidTable = errors.New("invalid code table")

// Default returns the embedded table.
func Default() (*Table, error) {
	return Load(strings.NewReader(string(defaultTable)))
}

// LoadFile reads an override table from disk.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open code table: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Open returns the table at path, or the embedded one when path is empty.
func Open(path string) (*Table, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	return LoadFile(path)
}

func Load(r io.Reader) (*Table, error) {
	var doc document
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTable, err)
	}
	if doc.Version < 1 {
		return nil, fmt.Errorf("%w: version must be positive", ErrInvalidTable)
	}

	t := &Table{version: doc.Version, entries: make(map[string]Entry, len(doc.Codes))}
	for _, e := range doc.Codes {
		e.Code = strings.TrimSpace(e.Code)
		if e.Code == "" || strings.TrimSpace(e.Display) == "" {
			return nil, fmt.Errorf("%w: empty code or display", ErrInvalidTable)
		}
		switch e.Kind {
		case KindCourse, KindPayment, KindStatus:
		default:
			return nil, fmt.Errorf("%w: code %q has unknown kind %q", ErrInvalidTable, e.Code, e.Kind)
		}
		if _, dup := t.entries[e.Code]; dup {
			return nil, fmt.Errorf("%w: duplicate code %q", ErrInvalidTable, e.Code)
		}
		t.entries[e.Code] = e
	}
	// Substitution must be idempotent, so no display string may itself be a code.
	for _, e := range t.entries {
		if _, clash := t.entries[e.Display]; clash {
			return nil, fmt.Errorf("%w: display %q of %q is also a code", ErrInvalidTable, e.Display, e.Code)
		}
	}
	return t, nil
}

func (t *Table) Version() int { return t.version }

func (t *Table) Lookup(code string) (Entry, bool) {
	e, ok := t.entries[code]
	return e, ok
}

// IsCourse reports whether code names a course.
func (t *Table) IsCourse(code string) bool {
	e, ok := t.entries[code]
	return ok && e.Kind == KindCourse
}

// Substitute returns the display string for value when value is a code and
// value unchanged otherwise.
func (t *Table) Substitute(value string) string {
	if e, ok := t.entries[value]; ok {
		return e.Display
	}
	return value
}

// Courses lists course codes in sorted order.
func (t *Table) Courses() []string {
	var out []string
	for code, e := range t.entries {
		if e.Kind == KindCourse {
			out = append(out, code)
		}
	}
	sort.Strings(out)
	return out
}
