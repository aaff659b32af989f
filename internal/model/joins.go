package model

import (
	"fmt"
	"sort"
	"strings"
)

// DetectJoins определяет, какие JOIN-ы нужны для модели на основе
// путей отношений, встречающихся в поисковых и зависимых полях.
// Paths are deduplicated and sorted so alias assignment is
// deterministic; sorting also guarantees every prefix of a nested path
// is planned before the path itself.
func DetectJoins(m *Model, relPaths []string) ([]*JoinSpec, map[string]string, error) {
	uniq := make([]string, 0, len(relPaths))
	seen := map[string]bool{}
	for _, p := range relPaths {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		uniq = append(uniq, p)
	}
	sort.Strings(uniq)

	joins := make([]*JoinSpec, 0, len(uniq))
	aliases := map[string]string{}
	counter := 0

	for _, path := range uniq {
		cur := m
		parentAlias := "main"
		prefix := ""
		for _, seg := range strings.Split(path, ".") {
			full := seg
			if prefix != "" {
				full = prefix + "." + seg
			}
			rel := cur.GetRelation(seg)
			if rel == nil {
				return nil, nil, fmt.Errorf("model %s: unknown relation %q in path %q", cur.Name, seg, path)
			}
			ref := rel.GetModelRef()
			if ref == nil {
				return nil, nil, fmt.Errorf("model %s: relation %q is not linked", cur.Name, seg)
			}

			if alias, ok := aliases[full]; ok {
				parentAlias = alias
				prefix = full
				cur = ref
				continue
			}

			alias := fmt.Sprintf("t%d", counter)
			switch {
			case rel.Through != "":
				// many-to-many: join table first, then the target
				throughAlias := fmt.Sprintf("j%d", counter)
				joins = append(joins, &JoinSpec{
					Table:       rel.Through,
					Alias:       throughAlias,
					On:          fmt.Sprintf("%s.%s = %s.%s", throughAlias, rel.ThroughFK, parentAlias, cur.GetPrimaryKey()),
					Duplicative: true,
				})
				joins = append(joins, &JoinSpec{
					Table:       rel.Table,
					Alias:       alias,
					On:          fmt.Sprintf("%s.%s = %s.%s", alias, ref.GetPrimaryKey(), throughAlias, rel.ThroughRefFK),
					Duplicative: true,
				})
			case rel.Type == "belongs_to":
				joins = append(joins, &JoinSpec{
					Table: rel.Table,
					Alias: alias,
					On:    fmt.Sprintf("%s.%s = %s.%s", parentAlias, rel.FK, alias, rel.PK),
				})
			default:
				// has_one / has_many: fk lives on the related table
				joins = append(joins, &JoinSpec{
					Table:       rel.Table,
					Alias:       alias,
					On:          fmt.Sprintf("%s.%s = %s.%s", alias, rel.FK, parentAlias, cur.GetPrimaryKey()),
					Duplicative: rel.Type == "has_many",
				})
			}
			counter++
			aliases[full] = alias
			parentAlias = alias
			prefix = full
			cur = ref
		}
	}
	return joins, aliases, nil
}
