package search

import (
	"context"
	"fmt"

	"TomSelectAPI/internal/logger"
	"TomSelectAPI/internal/model"
	"TomSelectAPI/internal/widget"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Item is one value/label pair in the order the query produced it.
type Item struct {
	Value any    `json:"id"`
	Text  string `json:"text"`
}

type Result struct {
	Items []Item
	More  bool
	Page  int
}

// Run executes a compiled search and folds rows into option items.
// A page filled exactly to the cap reports More=true: over-reporting
// one empty extra page is cheaper than counting the full match set.
func Run(ctx context.Context, pool *pgxpool.Pool, m *model.Model, d *widget.Descriptor, term string, dep map[string]string, page int) (*Result, error) {
	sb, err := Build(m, d, term, dep, page)
	if err != nil {
		return nil, err
	}
	sql, args, err := sb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("search: build SQL: %w", err)
	}
	logger.Debug("search_query", map[string]any{
		"model": m.Name,
		"sql":   sql,
		"args":  args,
	})

	rows, err := pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("search: query %s: %w", m.Name, err)
	}
	defer rows.Close()

	label := d.Label
	if label == "" {
		label = m.LabelTemplate()
	}

	fds := rows.FieldDescriptions()
	items := []Item{}
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("search: read row: %w", err)
		}
		row := make(map[string]any, len(fds))
		var value any
		for i, fd := range fds {
			if fd.Name == "__value" {
				value = vals[i]
				continue
			}
			row[fd.Name] = vals[i]
		}
		items = append(items, Item{Value: value, Text: model.FormatTemplate(label, row)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search: iterate rows: %w", err)
	}

	max := d.MaxResults
	if max <= 0 {
		max = widget.DefaultMaxResults
	}
	return &Result{
		Items: items,
		More:  len(items) == max,
		Page:  page,
	}, nil
}
