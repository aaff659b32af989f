package model

import (
	"fmt"
	"strings"
)

// Lookup is a parsed field-lookup string such as "title__icontains",
// "pk__startswith" or "artist.title__icontains". Relations are
// traversed with dots, the operator is a trailing "__op" suffix and
// defaults to exact. "pk" resolves to the target model's primary key.
type Lookup struct {
	Raw     string
	RelPath string // dotted relation path, "" for a root column
	Column  string
	Op      string // normalized operator name
}

// operator aliases kept for backwards-compatible filter definitions
var opAliases = map[string]string{
	"eq":    "exact",
	"start": "startswith",
	"end":   "endswith",
	"cnt":   "contains",
}

var knownOps = map[string]bool{
	"exact":       true,
	"iexact":      true,
	"contains":    true,
	"icontains":   true,
	"startswith":  true,
	"istartswith": true,
	"endswith":    true,
	"iendswith":   true,
	"gt":          true,
	"gte":         true,
	"lt":          true,
	"lte":         true,
	"in":          true,
}

// ParseLookup splits a lookup string into path, column and operator.
// An unknown operator is a configuration error, not a silent skip.
func ParseLookup(s string) (Lookup, error) {
	lk := Lookup{Raw: s, Op: "exact"}

	path := s
	if idx := strings.LastIndex(s, "__"); idx > 0 {
		op := s[idx+2:]
		if alias, ok := opAliases[op]; ok {
			op = alias
		}
		if !knownOps[op] {
			return Lookup{}, fmt.Errorf("lookup %q: unknown operator %q", s, s[idx+2:])
		}
		lk.Op = op
		path = s[:idx]
	}

	path = strings.TrimSpace(path)
	if path == "" {
		return Lookup{}, fmt.Errorf("lookup %q: empty field path", s)
	}
	if idx := strings.LastIndex(path, "."); idx != -1 {
		lk.RelPath = path[:idx]
		lk.Column = path[idx+1:]
		if lk.RelPath == "" || lk.Column == "" {
			return Lookup{}, fmt.Errorf("lookup %q: malformed field path", s)
		}
	} else {
		lk.Column = path
	}
	return lk, nil
}

// ResolveTarget walks a dotted relation path and returns the model it
// lands on. An empty path is the model itself.
func (m *Model) ResolveTarget(relPath string) (*Model, error) {
	cur := m
	if relPath == "" {
		return cur, nil
	}
	for _, seg := range strings.Split(relPath, ".") {
		rel := cur.GetRelation(seg)
		if rel == nil {
			return nil, fmt.Errorf("model %s: unknown relation %q in path %q", cur.Name, seg, relPath)
		}
		ref := rel.GetModelRef()
		if ref == nil {
			return nil, fmt.Errorf("model %s: relation %q is not linked", cur.Name, seg)
		}
		cur = ref
	}
	return cur, nil
}

// SpawnsDuplicates reports whether any hop of the relation path is a
// to-many relation, i.e. whether a join along it can multiply rows.
func (m *Model) SpawnsDuplicates(relPath string) (bool, error) {
	cur := m
	if relPath == "" {
		return false, nil
	}
	for _, seg := range strings.Split(relPath, ".") {
		rel := cur.GetRelation(seg)
		if rel == nil {
			return false, fmt.Errorf("model %s: unknown relation %q in path %q", cur.Name, seg, relPath)
		}
		if rel.Duplicative() {
			return true, nil
		}
		ref := rel.GetModelRef()
		if ref == nil {
			return false, fmt.Errorf("model %s: relation %q is not linked", cur.Name, seg)
		}
		cur = ref
	}
	return false, nil
}

// ColumnFor resolves a parsed lookup into an aliased SQL column using
// the alias map produced by DetectJoins for the same query.
func (m *Model) ColumnFor(lk Lookup, aliases map[string]string) (string, error) {
	target, err := m.ResolveTarget(lk.RelPath)
	if err != nil {
		return "", err
	}
	col := lk.Column
	if col == "pk" {
		col = target.GetPrimaryKey()
	}
	alias := "main"
	if lk.RelPath != "" {
		a, ok := aliases[lk.RelPath]
		if !ok {
			return "", fmt.Errorf("no join alias for relation path %q", lk.RelPath)
		}
		alias = a
	}
	return alias + "." + col, nil
}
