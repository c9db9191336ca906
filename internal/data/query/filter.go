// Package query parses the small filter language accepted by --query:
//
//	SELECT dom_modules [WHERE <cond> [AND <cond>]...]
//
// Numeric fields are slots, local_ids and warnings. String fields are id,
// path and comment, compared with = / != or CONTAINS.
package query

import (
	"regexp"
	"strconv"
	"strings"

	"domscan/internal/core/errors"
	"domscan/internal/engine/polymer"
)

var (
	selectRE       = regexp.MustCompile(`(?i)^\s*SELECT\s+dom_modules(?:\s+WHERE\s+(.+))?\s*$`)
	andSplitRE     = regexp.MustCompile(`(?i)\s+AND\s+`)
	numericCondRE  = regexp.MustCompile(`(?i)^\s*([a-z_]+)\s*(>=|<=|!=|=|>|<)\s*(-?[0-9]+)\s*$`)
	containsCondRE = regexp.MustCompile(`(?i)^\s*([a-z_]+)\s+CONTAINS\s+['"]([^'"]+)['"]\s*$`)
	stringCondRE   = regexp.MustCompile(`(?i)^\s*([a-z_]+)\s*(=|!=)\s*['"]([^'"]*)['"]\s*$`)
)

var (
	numericFields = map[string]bool{"slots": true, "local_ids": true, "warnings": true}
	stringFields  = map[string]bool{"id": true, "path": true, "comment": true}
)

type Filter struct {
	Conditions []Condition
}

type Condition struct {
	Field  string
	Op     string
	IntVal int
	StrVal string
	IsInt  bool
}

func Parse(raw string) (Filter, error) {
	matches := selectRE.FindStringSubmatch(strings.TrimSpace(raw))
	if len(matches) == 0 {
		return Filter{}, errors.New(errors.CodeValidationError, "invalid query: expected SELECT dom_modules [WHERE ...]")
	}

	where := strings.TrimSpace(matches[1])
	if where == "" {
		return Filter{}, nil
	}

	parts := andSplitRE.Split(where, -1)
	filter := Filter{Conditions: make([]Condition, 0, len(parts))}
	for _, part := range parts {
		cond, err := parseCondition(part)
		if err != nil {
			return Filter{}, err
		}
		filter.Conditions = append(filter.Conditions, cond)
	}
	return filter, nil
}

func parseCondition(raw string) (Condition, error) {
	if match := numericCondRE.FindStringSubmatch(raw); len(match) == 4 {
		field := strings.ToLower(match[1])
		if !numericFields[field] {
			return Condition{}, unknownField(field)
		}
		value, err := strconv.Atoi(match[3])
		if err != nil {
			return Condition{}, errors.Wrap(err, errors.CodeValidationError, "invalid numeric value "+match[3])
		}
		return Condition{Field: field, Op: match[2], IntVal: value, IsInt: true}, nil
	}

	if match := containsCondRE.FindStringSubmatch(raw); len(match) == 3 {
		field := strings.ToLower(match[1])
		if !stringFields[field] {
			return Condition{}, unknownField(field)
		}
		return Condition{Field: field, Op: "contains", StrVal: match[2]}, nil
	}

	if match := stringCondRE.FindStringSubmatch(raw); len(match) == 4 {
		field := strings.ToLower(match[1])
		if !stringFields[field] {
			return Condition{}, unknownField(field)
		}
		return Condition{Field: field, Op: match[2], StrVal: match[3]}, nil
	}

	return Condition{}, errors.New(errors.CodeValidationError, "invalid query condition "+strconv.Quote(strings.TrimSpace(raw)))
}

func unknownField(field string) error {
	return errors.New(errors.CodeValidationError, "unknown query field "+strconv.Quote(field))
}

// Match reports whether m, found in the document at path, satisfies every
// condition. A module without an id compares as the empty string.
func (f Filter) Match(path string, m *polymer.DomModule) bool {
	for _, cond := range f.Conditions {
		if !cond.match(path, m) {
			return false
		}
	}
	return true
}

func (c Condition) match(path string, m *polymer.DomModule) bool {
	if c.IsInt {
		var n int
		switch c.Field {
		case "slots":
			n = len(m.Slots())
		case "local_ids":
			n = len(m.LocalIDs())
		case "warnings":
			n = len(m.Warnings())
		}
		return compareInt(n, c.Op, c.IntVal)
	}

	var s string
	switch c.Field {
	case "id":
		s, _ = m.ID()
	case "path":
		s = path
	case "comment":
		s, _ = m.Comment()
	}
	switch c.Op {
	case "contains":
		return strings.Contains(s, c.StrVal)
	case "!=":
		return s != c.StrVal
	default:
		return s == c.StrVal
	}
}

func compareInt(n int, op string, v int) bool {
	switch op {
	case ">":
		return n > v
	case ">=":
		return n >= v
	case "<":
		return n < v
	case "<=":
		return n <= v
	case "!=":
		return n != v
	default:
		return n == v
	}
}
