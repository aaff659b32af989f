// Package search compiles a widget descriptor plus a free-text term
// into a SQL query and runs it. Matching follows the select-box
// contract: every whitespace token must hit at least one search field,
// the whole term is OR-ed in as an exact-phrase fallback, dependent
// field values constrain the result as equalities, and the combined
// query is deduplicated only when some lookup traverses a to-many
// relation.
package search

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"TomSelectAPI/internal/model"
	"TomSelectAPI/internal/widget"

	sq "github.com/Masterminds/squirrel"
)

var (
	ErrNoSearchFields = errors.New("search: no search fields configured")
	ErrBadPage        = errors.New("search: page must be >= 1")
)

// Build compiles the SELECT for one search request. dep maps model
// lookup names (already translated from form field names) to values.
func Build(m *model.Model, d *widget.Descriptor, term string, dep map[string]string, page int) (sq.SelectBuilder, error) {
	var zero sq.SelectBuilder
	if len(d.SearchFields) == 0 {
		return zero, ErrNoSearchFields
	}
	if page < 1 {
		return zero, ErrBadPage
	}
	max := d.MaxResults
	if max <= 0 {
		max = widget.DefaultMaxResults
	}

	searchLookups := make([]model.Lookup, 0, len(d.SearchFields))
	for _, f := range d.SearchFields {
		lk, err := model.ParseLookup(f)
		if err != nil {
			return zero, fmt.Errorf("search field: %w", err)
		}
		searchLookups = append(searchLookups, lk)
	}

	depKeys := sortedKeys(dep)
	depLookups := make([]model.Lookup, 0, len(depKeys))
	for _, k := range depKeys {
		lk, err := model.ParseLookup(k)
		if err != nil {
			return zero, fmt.Errorf("dependent field: %w", err)
		}
		depLookups = append(depLookups, lk)
	}

	filterKeys := make([]string, 0, len(d.Filters))
	for k := range d.Filters {
		filterKeys = append(filterKeys, k)
	}
	sort.Strings(filterKeys)
	filterLookups := make([]model.Lookup, 0, len(filterKeys))
	for _, k := range filterKeys {
		lk, err := model.ParseLookup(k)
		if err != nil {
			return zero, fmt.Errorf("base filter: %w", err)
		}
		filterLookups = append(filterLookups, lk)
	}

	label := d.Label
	if label == "" {
		label = m.LabelTemplate()
	}
	labelPaths := model.TemplateFields(label)

	orderLk, orderDir := parseOrder(m)

	// joins cover every path the query touches
	var relPaths []string
	if orderLk.RelPath != "" {
		relPaths = append(relPaths, orderLk.RelPath)
	}
	for _, lk := range searchLookups {
		relPaths = append(relPaths, lk.RelPath)
	}
	for _, lk := range depLookups {
		relPaths = append(relPaths, lk.RelPath)
	}
	for _, lk := range filterLookups {
		relPaths = append(relPaths, lk.RelPath)
	}
	for _, p := range labelPaths {
		if idx := strings.LastIndex(p, "."); idx != -1 {
			relPaths = append(relPaths, p[:idx])
		}
	}
	joins, aliases, err := model.DetectJoins(m, relPaths)
	if err != nil {
		return zero, err
	}

	// One dedup decision for the whole combined filter (search fields
	// plus dependent lookups), instead of re-deriving it per clause.
	distinct := false
	for _, lk := range append(append([]model.Lookup{}, searchLookups...), depLookups...) {
		dup, err := m.SpawnsDuplicates(lk.RelPath)
		if err != nil {
			return zero, err
		}
		if dup {
			distinct = true
			break
		}
	}

	var where sq.And

	for i, lk := range filterLookups {
		col, err := m.ColumnFor(lk, aliases)
		if err != nil {
			return zero, err
		}
		cond, err := filterCondition(col, lk.Op, d.Filters[filterKeys[i]])
		if err != nil {
			return zero, err
		}
		where = append(where, cond)
	}

	if tokens := strings.Fields(term); len(tokens) > 0 {
		searchCols := make([]string, len(searchLookups))
		for i, lk := range searchLookups {
			col, err := m.ColumnFor(lk, aliases)
			if err != nil {
				return zero, err
			}
			searchCols[i] = col
		}

		// every token must match some field...
		var perToken sq.And
		for _, token := range tokens {
			var fieldOr sq.Or
			for i, lk := range searchLookups {
				cond, err := termCondition(searchCols[i], lk.Op, token)
				if err != nil {
					return zero, err
				}
				fieldOr = append(fieldOr, cond)
			}
			perToken = append(perToken, fieldOr)
		}
		// ...or the whole term matches a field as one phrase
		termOr := sq.Or{perToken}
		for i, lk := range searchLookups {
			cond, err := termCondition(searchCols[i], lk.Op, term)
			if err != nil {
				return zero, err
			}
			termOr = append(termOr, cond)
		}
		where = append(where, termOr)
	}

	for i, lk := range depLookups {
		col, err := m.ColumnFor(lk, aliases)
		if err != nil {
			return zero, err
		}
		where = append(where, sq.Expr(col+"::text = ?", dep[depKeys[i]]))
	}

	valueCol, err := m.ColumnFor(model.Lookup{Column: valueField(m, d)}, aliases)
	if err != nil {
		return zero, err
	}
	cols := []string{fmt.Sprintf(`%s AS "__value"`, valueCol)}
	selected := map[string]bool{valueCol: true}
	for _, p := range labelPaths {
		lk := model.Lookup{Column: p}
		if idx := strings.LastIndex(p, "."); idx != -1 {
			lk = model.Lookup{RelPath: p[:idx], Column: p[idx+1:]}
		}
		col, err := m.ColumnFor(lk, aliases)
		if err != nil {
			return zero, err
		}
		cols = append(cols, fmt.Sprintf(`%s AS "%s"`, col, p))
		selected[col] = true
	}

	orderCol, err := m.ColumnFor(orderLk, aliases)
	if err != nil {
		return zero, err
	}
	// DISTINCT requires every order expression to appear in the select
	// list, including the primary-key tiebreak
	if !selected[orderCol] {
		cols = append(cols, fmt.Sprintf(`%s AS "__order"`, orderCol))
		selected[orderCol] = true
	}
	pkCol := "main." + m.GetPrimaryKey()
	if pkCol != orderCol && !selected[pkCol] {
		cols = append(cols, fmt.Sprintf(`%s AS "__pk"`, pkCol))
		selected[pkCol] = true
	}

	sb := sq.SelectBuilder{}.PlaceholderFormat(sq.Dollar).
		Columns(cols...).
		From(fmt.Sprintf("%s AS main", m.Table))
	for _, j := range joins {
		sb = sb.LeftJoin(fmt.Sprintf("%s AS %s ON %s", j.Table, j.Alias, j.On))
	}
	if len(where) > 0 {
		sb = sb.Where(where)
	}
	if distinct {
		sb = sb.Distinct()
	}
	sb = sb.OrderBy(orderCol + " " + orderDir)
	if pkCol != orderCol {
		sb = sb.OrderBy(pkCol + " ASC")
	}
	return sb.Limit(uint64(max)).Offset(uint64((page - 1) * max)), nil
}

func valueField(m *model.Model, d *widget.Descriptor) string {
	if d.ValueField != "" {
		return d.ValueField
	}
	return m.GetPrimaryKey()
}

// parseOrder splits the model's default ordering into a lookup and a
// direction. Dotted columns ("artist.title DESC") become relation
// lookups so the join planner and alias map cover them like any other
// related column.
func parseOrder(m *model.Model) (model.Lookup, string) {
	col, dir := m.GetPrimaryKey(), "ASC"
	if m.Order != "" {
		parts := strings.Fields(m.Order)
		col = parts[0]
		if len(parts) > 1 && strings.EqualFold(parts[1], "DESC") {
			dir = "DESC"
		}
	}
	lk := model.Lookup{Column: col}
	if idx := strings.LastIndex(col, "."); idx != -1 {
		lk = model.Lookup{RelPath: col[:idx], Column: col[idx+1:]}
	}
	return lk, dir
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// termCondition matches one token (or the whole term) against a
// column. Columns are cast to text so pattern operators also work on
// numeric primary keys ("pk__startswith").
func termCondition(col, op, s string) (sq.Sqlizer, error) {
	esc := escapeLike(s)
	switch op {
	case "exact":
		return sq.Expr(col+"::text = ?", s), nil
	case "iexact":
		return sq.Expr(col+"::text ILIKE ?", esc), nil
	case "contains":
		return sq.Expr(col+"::text LIKE ?", "%"+esc+"%"), nil
	case "icontains":
		return sq.Expr(col+"::text ILIKE ?", "%"+esc+"%"), nil
	case "startswith":
		return sq.Expr(col+"::text LIKE ?", esc+"%"), nil
	case "istartswith":
		return sq.Expr(col+"::text ILIKE ?", esc+"%"), nil
	case "endswith":
		return sq.Expr(col+"::text LIKE ?", "%"+esc), nil
	case "iendswith":
		return sq.Expr(col+"::text ILIKE ?", "%"+esc), nil
	}
	return nil, fmt.Errorf("search: operator %q not usable for term matching", op)
}

// filterCondition handles base-query clauses, which carry typed values.
func filterCondition(col, op string, val any) (sq.Sqlizer, error) {
	switch op {
	case "exact":
		if s, ok := val.(string); ok {
			return sq.Expr(col+"::text = ?", s), nil
		}
		return sq.Eq{col: val}, nil
	case "in":
		return sq.Eq{col: val}, nil // squirrel renders slices as IN
	case "lt":
		return sq.Lt{col: val}, nil
	case "lte":
		return sq.LtOrEq{col: val}, nil
	case "gt":
		return sq.Gt{col: val}, nil
	case "gte":
		return sq.GtOrEq{col: val}, nil
	}
	return termCondition(col, op, fmt.Sprintf("%v", val))
}

// escapeLike neutralizes LIKE metacharacters in user input.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	return strings.ReplaceAll(s, `_`, `\_`)
}
