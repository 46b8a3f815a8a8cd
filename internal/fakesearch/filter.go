package fakesearch

import (
	"fmt"
	"regexp"
	"strings"
)

// The fake understands a small equality subset of the filter language:
// clauses of the form `key = value` or `key != value` joined with AND.
// Values may be single- or double-quoted. Keys are looked up in metadata
// first and then in map content.
var (
	andRe    = regexp.MustCompile(`(?i)\s+AND\s+`)
	clauseRe = regexp.MustCompile(`^\s*([A-Za-z_][A-Za-z0-9_.]*)\s*(!=|=)\s*(.+?)\s*$`)
)

// InvalidFilterError is returned for expressions outside the supported subset.
type InvalidFilterError struct {
	Expr string
}

func (e *InvalidFilterError) Error() string {
	return fmt.Sprintf("Invalid filter: %s", e.Expr)
}

type clause struct {
	key    string
	negate bool
	value  string
}

func parseFilter(expr string) (func(Document) bool, error) {
	if strings.TrimSpace(expr) == "" {
		return func(Document) bool { return true }, nil
	}

	var clauses []clause
	for _, part := range andRe.Split(expr, -1) {
		m := clauseRe.FindStringSubmatch(part)
		if m == nil {
			return nil, &InvalidFilterError{Expr: expr}
		}
		clauses = append(clauses, clause{key: m[1], negate: m[2] == "!=", value: unquote(m[3])})
	}

	return func(d Document) bool {
		for _, c := range clauses {
			v, ok := lookup(d, c.key)
			equal := ok && fmt.Sprint(v) == c.value
			if equal == c.negate {
				return false
			}
		}
		return true
	}, nil
}

func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '\'' && s[len(s)-1] == '\'') || (s[0] == '"' && s[len(s)-1] == '"') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

func lookup(d Document, key string) (any, bool) {
	if v, ok := walk(d.Metadata, key); ok {
		return v, true
	}
	if m, ok := d.Content.(map[string]any); ok {
		return walk(m, key)
	}
	return nil, false
}

// walk resolves dotted keys through nested maps.
func walk(m map[string]any, key string) (any, bool) {
	var cur any = m
	for _, part := range strings.Split(key, ".") {
		mm, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = mm[part]; !ok {
			return nil, false
		}
	}
	return cur, true
}
