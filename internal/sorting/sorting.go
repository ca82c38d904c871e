// Package sorting orders display rows by one column.
package sorting

import (
	"sort"
	"strconv"
	"strings"

	"github.com/tcpview/tcpview/pkg/model"
)

// State is the active sort column and direction. The zero value keeps
// source order.
type State struct {
	Column model.Column
	Desc   bool
	Active bool
}

func By(col model.Column, desc bool) State {
	return State{Column: col, Desc: desc, Active: true}
}

// Toggle selects col. Selecting the active column flips the direction, any
// other column starts ascending.
func (s State) Toggle(col model.Column) State {
	if s.Active && s.Column == col {
		s.Desc = !s.Desc
		return s
	}
	return By(col, false)
}

// Indicator is the header suffix for col: an arrow for the active column,
// empty for every other one.
func (s State) Indicator(col model.Column) string {
	if !s.Active || s.Column != col {
		return ""
	}
	if s.Desc {
		return " ↓"
	}
	return " ↑"
}

// Apply returns a sorted copy of rows. Equal keys keep their relative order.
func Apply(rows []model.DisplayRow, s State) []model.DisplayRow {
	out := append([]model.DisplayRow(nil), rows...)
	if !s.Active {
		return out
	}

	cmp := compareText
	if s.Column.Numeric() {
		cmp = compareNumeric
	}
	keys := make([]string, len(out))
	for i, r := range out {
		keys[i] = model.StripMarker(r.Cell(s.Column))
	}

	idx := make([]int, len(out))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		c := cmp(keys[idx[i]], keys[idx[j]])
		if s.Desc {
			return c > 0
		}
		return c < 0
	})

	sorted := make([]model.DisplayRow, len(out))
	for i, k := range idx {
		sorted[i] = out[k]
	}
	return sorted
}

func compareText(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

// compareNumeric treats anything that is not an integer as 0.
func compareNumeric(a, b string) int {
	x, y := atoi(a), atoi(b)
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}

func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

// ParseColumn accepts a column key ("lport") as used by flags and query strings.
func ParseColumn(key string) (model.Column, bool) {
	return model.ColumnByKey(strings.ToLower(strings.TrimSpace(key)))
}
