package model

import (
	"fmt"
	"sort"
)

// Position is a zero-based line/column pair. Column counts characters, not
// bytes.
type Position struct {
	Line   int
	Column int
}

type SourceRange struct {
	File  string
	Start Position
	End   Position
}

// String renders the range with one-based lines and columns.
func (r SourceRange) String() string {
	return fmt.Sprintf("%s:%d:%d-%d:%d", r.File, r.Start.Line+1, r.Start.Column+1, r.End.Line+1, r.End.Column+1)
}

// Contains reports whether other lies entirely inside r.
func (r SourceRange) Contains(other SourceRange) bool {
	if r.File != other.File {
		return false
	}
	return !comesBefore(other.Start, r.Start) && !comesBefore(r.End, other.End)
}

func comesBefore(a, b Position) bool {
	if a.Line != b.Line {
		return a.Line < b.Line
	}
	return a.Column < b.Column
}

// Slot is a named insertion point inside a template. Name is empty for the default slot.
type Slot struct {
	Name        string
	SourceRange SourceRange
}

func NewSlot(name string, sourceRange SourceRange) Slot {
	return Slot{Name: name, SourceRange: sourceRange}
}

// LocalID is an element inside a template carrying an explicit id attribute.
type LocalID struct {
	ID          string
	SourceRange SourceRange
}

func NewLocalID(id string, sourceRange SourceRange) LocalID {
	return LocalID{ID: id, SourceRange: sourceRange}
}

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

type Warning struct {
	Code        string
	Message     string
	Severity    Severity
	SourceRange SourceRange
}

func (w Warning) String() string {
	return fmt.Sprintf("%s [%s] %s: %s", w.SourceRange, w.Severity, w.Code, w.Message)
}

// Set is an unordered collection of strings.
type Set map[string]struct{}

func NewSet(values ...string) Set {
	s := make(Set, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

func (s Set) Has(value string) bool {
	_, ok := s[value]
	return ok
}

func (s Set) Len() int {
	return len(s)
}

// Values returns the members in sorted order.
func (s Set) Values() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
