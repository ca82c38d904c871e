// Package diff classifies the rows of a new snapshot against the previous one.
package diff

import "github.com/tcpview/tcpview/pkg/model"

// Diff classifies every row of current against previous by identity key.
// Rows whose key disappeared are appended as tombstones with class Removed.
// An empty previous means first run: every row is Unchanged.
//
// When several previous rows share a key the last one is used for comparison,
// so a collision can misclassify an untouched socket as Changed.
func Diff(previous, current []model.ConnectionRow) []model.DisplayRow {
	out := make([]model.DisplayRow, 0, len(current))
	if len(previous) == 0 {
		for _, row := range current {
			out = append(out, model.DisplayRow{Row: row, Class: model.Unchanged})
		}
		return out
	}

	index := make(map[model.Key]model.ConnectionRow, len(previous))
	for _, row := range previous {
		index[row.Key()] = row
	}

	present := make(map[model.Key]bool, len(current))
	for _, row := range current {
		key := row.Key()
		present[key] = true

		class := model.Added
		if prev, ok := index[key]; ok {
			class = model.Changed
			if prev == row {
				class = model.Unchanged
			}
		}
		out = append(out, model.DisplayRow{Row: row, Class: class})
	}

	emitted := make(map[model.Key]bool)
	for _, row := range previous {
		key := row.Key()
		if present[key] || emitted[key] {
			continue
		}
		emitted[key] = true
		out = append(out, model.DisplayRow{Row: index[key], Class: model.Removed})
	}
	return out
}

// Purge drops tombstones and clears Added/Changed highlighting once a display
// cycle has passed.
func Purge(rows []model.DisplayRow) []model.DisplayRow {
	out := make([]model.DisplayRow, 0, len(rows))
	for _, r := range rows {
		if r.Class == model.Removed {
			continue
		}
		r.Class = model.Unchanged
		out = append(out, r)
	}
	return out
}

// Pending reports whether rows still carry highlighting or tombstones.
func Pending(rows []model.DisplayRow) bool {
	for _, r := range rows {
		if r.Class != model.Unchanged {
			return true
		}
	}
	return false
}

type Counts struct {
	Total     int `json:"total"`
	Added     int `json:"added"`
	Changed   int `json:"changed"`
	Removed   int `json:"removed"`
	Unchanged int `json:"unchanged"`
}

func Summarize(rows []model.DisplayRow) Counts {
	var c Counts
	for _, r := range rows {
		switch r.Class {
		case model.Added:
			c.Added++
		case model.Changed:
			c.Changed++
		case model.Removed:
			c.Removed++
		default:
			c.Unchanged++
		}
	}
	c.Total = len(rows)
	return c
}
