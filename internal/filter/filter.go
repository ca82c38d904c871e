// Package filter implements the connection table query language: whitespace
// separated terms, all of which must match. A term is either key:value,
// matched against one column, or a bare word matched against every column.
// Matching is case-insensitive substring containment.
package filter

import (
	"strings"

	"github.com/tcpview/tcpview/pkg/model"
)

type term struct {
	column model.Column
	any    bool
	value  string
}

type Filter struct {
	terms   []term
	ignored []string
}

func Parse(query string) Filter {
	var f Filter
	for _, word := range strings.Fields(query) {
		key, value, hasColon := strings.Cut(word, ":")
		if !hasColon {
			f.terms = append(f.terms, term{any: true, value: strings.ToLower(word)})
			continue
		}
		col, ok := model.ColumnByKey(strings.ToLower(key))
		if !ok || value == "" {
			f.ignored = append(f.ignored, word)
			continue
		}
		f.terms = append(f.terms, term{column: col, value: strings.ToLower(value)})
	}
	return f
}

// Empty reports whether the filter passes every row.
func (f Filter) Empty() bool { return len(f.terms) == 0 }

// Ignored returns the key:value terms that were dropped because the key is
// not a known column or the value is empty.
func (f Filter) Ignored() []string { return f.ignored }

func (f Filter) Match(r model.DisplayRow) bool {
	var all string
	for _, t := range f.terms {
		var cell string
		if t.any {
			if all == "" {
				all = strings.ToLower(strings.Join(r.Cells(), " "))
			}
			cell = all
		} else {
			cell = strings.ToLower(r.Cell(t.column))
		}
		if !strings.Contains(cell, t.value) {
			return false
		}
	}
	return true
}

// Apply returns the rows that match f, preserving order.
func Apply(rows []model.DisplayRow, f Filter) []model.DisplayRow {
	if f.Empty() {
		return rows
	}
	out := make([]model.DisplayRow, 0, len(rows))
	for _, r := range rows {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}
