// Package pipeline ties snapshot building, diffing, filtering and sorting
// into one Session that front ends poll and render.
package pipeline

import (
	"context"
	"time"

	"github.com/tcpview/tcpview/internal/diff"
	"github.com/tcpview/tcpview/internal/filter"
	"github.com/tcpview/tcpview/internal/sorting"
	"github.com/tcpview/tcpview/pkg/model"
)

// Snapshotter produces one snapshot per call. *snapshot.Builder satisfies it.
type Snapshotter interface {
	Build(ctx context.Context) model.Snapshot
}

// DisplaySet is what a front end renders: the filtered and ordered rows plus
// the state that produced them.
type DisplaySet struct {
	Rows    []model.DisplayRow `json:"rows"`
	Sort    sorting.State      `json:"-"`
	Filter  string             `json:"filter,omitempty"`
	Ignored []string           `json:"ignored,omitempty"`
	Counts  diff.Counts        `json:"counts"`
	Err     error              `json:"-"`
	Taken   time.Time          `json:"taken"`
}

// Session is not safe for concurrent use.
type Session struct {
	src Snapshotter

	// baseline is the last snapshot that was read successfully.
	baseline model.Snapshot
	current  model.Snapshot
	rows     []model.DisplayRow

	query  string
	filter filter.Filter
	sort   sorting.State
}

func NewSession(src Snapshotter) *Session {
	return &Session{src: src}
}

// Refresh builds a new snapshot and applies it.
func (s *Session) Refresh(ctx context.Context) {
	s.Apply(s.src.Build(ctx))
}

// Apply diffs snap against the last good snapshot. A failed snapshot replaces
// the display with its placeholder row but leaves the baseline alone, so the
// next good poll is still diffed against real data.
func (s *Session) Apply(snap model.Snapshot) {
	s.current = snap
	if snap.Err != nil {
		s.rows = make([]model.DisplayRow, 0, len(snap.Rows))
		for _, r := range snap.Rows {
			s.rows = append(s.rows, model.DisplayRow{Row: r})
		}
		return
	}
	s.rows = diff.Diff(s.baseline.Rows, snap.Rows)
	s.baseline = snap
}

// Purge clears highlighting and drops tombstones.
func (s *Session) Purge() {
	s.rows = diff.Purge(s.rows)
}

// Pending reports whether a purge would change anything.
func (s *Session) Pending() bool {
	return diff.Pending(s.rows)
}

// SetFilter replaces the active query and returns the terms it ignored.
func (s *Session) SetFilter(query string) []string {
	s.query = query
	s.filter = filter.Parse(query)
	return s.filter.Ignored()
}

func (s *Session) Query() string { return s.query }

func (s *Session) ToggleSort(col model.Column) sorting.State {
	s.sort = s.sort.Toggle(col)
	return s.sort
}

func (s *Session) SetSort(st sorting.State) { s.sort = st }

func (s *Session) Sort() sorting.State { return s.sort }

// Err is the error of the most recent snapshot, if it failed.
func (s *Session) Err() error { return s.current.Err }

// View filters then sorts the current rows. Counts cover every row, filtered
// or not.
func (s *Session) View() DisplaySet {
	return s.view(s.query, s.filter, s.sort)
}

// ViewWith is View with a one-off query and sort that leave the session's own
// settings untouched.
func (s *Session) ViewWith(query string, st sorting.State) DisplaySet {
	return s.view(query, filter.Parse(query), st)
}

func (s *Session) view(query string, f filter.Filter, st sorting.State) DisplaySet {
	rows := sorting.Apply(filter.Apply(s.rows, f), st)
	return DisplaySet{
		Rows:    rows,
		Sort:    st,
		Filter:  query,
		Ignored: f.Ignored(),
		Counts:  diff.Summarize(s.rows),
		Err:     s.current.Err,
		Taken:   s.current.Taken,
	}
}
