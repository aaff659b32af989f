package model

import (
	"fmt"
	"regexp"
	"strconv"
)

var templateRegexp = regexp.MustCompile(`\{([\w\.]+)(\[(\d+)(\.\.(\d+))?\])?\}`)

// FormatTemplate renders an option label from a row map. Placeholders
// are {field} or {rel.field}, optionally with a substring range:
// "{surname} {name}[0]." renders the first letter of name.
func FormatTemplate(template string, row map[string]any) string {
	return templateRegexp.ReplaceAllStringFunc(template, func(match string) string {
		parts := templateRegexp.FindStringSubmatch(match)
		key := parts[1]
		from := parts[3]
		to := parts[5]

		valRaw, ok := row[key]
		if !ok || valRaw == nil {
			return ""
		}
		val := fmt.Sprintf("%v", valRaw)
		if from == "" {
			return val
		}

		startIdx, _ := strconv.Atoi(from)
		endIdx := startIdx + 1
		if to != "" {
			endIdx, _ = strconv.Atoi(to)
		}

		if startIdx >= len(val) {
			return ""
		}
		if endIdx > len(val) {
			endIdx = len(val)
		}
		return val[startIdx:endIdx]
	})
}

// TemplateFields lists the distinct field paths referenced by a label
// template, in order of first appearance.
func TemplateFields(template string) []string {
	var fields []string
	seen := map[string]bool{}
	for _, match := range templateRegexp.FindAllStringSubmatch(template, -1) {
		if key := match[1]; !seen[key] {
			seen[key] = true
			fields = append(fields, key)
		}
	}
	return fields
}
