package model

import (
	"strconv"
	"strings"
	"time"
)

// RemovedMarker is appended to the process cell of tombstoned rows.
const RemovedMarker = " [removed]"

type ConnectionRow struct {
	ProcessName string `json:"process_name"`
	PID         int    `json:"pid,omitempty"`
	LocalIP     string `json:"local_ip"`
	LocalPort   int    `json:"local_port"`
	RemoteIP    string `json:"remote_ip,omitempty"`
	RemotePort  int    `json:"remote_port,omitempty"`
	Hostname    string `json:"hostname,omitempty"`
	Status      string `json:"status"`
	Family      string `json:"family"`
	Type        string `json:"type"`
}

// Key correlates a connection across snapshots. It is not unique within a
// snapshot: wildcard listeners of different processes can share it.
type Key struct {
	LocalIP   string
	LocalPort int
}

func (r ConnectionRow) Key() Key {
	return Key{LocalIP: r.LocalIP, LocalPort: r.LocalPort}
}

// Snapshot is the set of rows captured at one poll. Err is set when the
// source could not be read; Rows then holds a single placeholder row.
type Snapshot struct {
	Rows  []ConnectionRow
	Taken time.Time
	Err   error
}

type ChangeClass int

const (
	Unchanged ChangeClass = iota
	Added
	Changed
	Removed
)

func (c ChangeClass) String() string {
	switch c {
	case Added:
		return "added"
	case Changed:
		return "changed"
	case Removed:
		return "removed"
	default:
		return "unchanged"
	}
}

func (c ChangeClass) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

type DisplayRow struct {
	Row   ConnectionRow `json:"row"`
	Class ChangeClass   `json:"class"`
}

// Cells returns the row's text in column order.
func (d DisplayRow) Cells() []string {
	cells := make([]string, NumColumns)
	for c := Column(0); c < NumColumns; c++ {
		cells[c] = d.Cell(c)
	}
	return cells
}

func (d DisplayRow) Cell(c Column) string {
	r := d.Row
	switch c {
	case ColName:
		if d.Class == Removed {
			return r.ProcessName + RemovedMarker
		}
		return r.ProcessName
	case ColPID:
		return optionalInt(r.PID)
	case ColLocalIP:
		return r.LocalIP
	case ColLocalPort:
		return strconv.Itoa(r.LocalPort)
	case ColRemoteIP:
		return r.RemoteIP
	case ColRemotePort:
		return optionalInt(r.RemotePort)
	case ColHost:
		return r.Hostname
	case ColStatus:
		return r.Status
	case ColFamily:
		return r.Family
	case ColType:
		return r.Type
	}
	return ""
}

func optionalInt(v int) string {
	if v == 0 {
		return ""
	}
	return strconv.Itoa(v)
}

// StripMarker removes the tombstone marker from a cell value.
func StripMarker(cell string) string {
	return strings.TrimSuffix(cell, RemovedMarker)
}
