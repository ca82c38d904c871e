// Package snapshot turns raw OS socket records into normalized connection rows.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tcpview/tcpview/pkg/model"
)

var ErrSourceUnavailable = errors.New("connection source unavailable")

type Source interface {
	ListConnections(ctx context.Context) ([]model.RawConnection, error)
}

type ProcessNamer interface {
	ProcessName(pid int) model.ProcessLookup
}

// ProcessTable is implemented by namers that can list every process in one
// call. The builder then skips per-pid lookups; a pid missing from the table
// has exited and gets no name.
type ProcessTable interface {
	ProcessNames(ctx context.Context) (map[int]string, error)
}

// HostResolver resolves a batch of remote addresses and returns only after
// every lookup finished or timed out.
type HostResolver interface {
	ResolveAll(ctx context.Context, ips []string) map[string]string
}

type Builder struct {
	Source Source
	Names  ProcessNamer
	// Hosts is optional; nil leaves every hostname empty.
	Hosts HostResolver
}

// Build captures one snapshot. A source failure does not propagate: the
// snapshot carries Err and a single placeholder row describing it.
func (b *Builder) Build(ctx context.Context) model.Snapshot {
	taken := time.Now()
	raws, err := b.Source.ListConnections(ctx)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
		return model.Snapshot{Rows: []model.ConnectionRow{ErrorRow(err)}, Taken: taken, Err: err}
	}
	return model.Snapshot{Rows: b.FromRaw(ctx, raws), Taken: taken}
}

// FromRaw normalizes raws in order, dropping records without a local address.
func (b *Builder) FromRaw(ctx context.Context, raws []model.RawConnection) []model.ConnectionRow {
	names, perPID := b.processTable(ctx)
	rows := make([]model.ConnectionRow, 0, len(raws))
	var remotes []string

	for _, raw := range raws {
		if raw.Local == nil || raw.Local.IP == "" {
			continue
		}
		row := model.ConnectionRow{
			ProcessName: b.processName(raw.PID, names, perPID),
			PID:         raw.PID,
			LocalIP:     raw.Local.IP,
			LocalPort:   raw.Local.Port,
			Status:      NormalizeStatus(raw.Status),
			Family:      FamilyName(raw.Family),
			Type:        TypeName(raw.Type),
		}
		if raw.Remote != nil {
			row.RemoteIP = raw.Remote.IP
			row.RemotePort = raw.Remote.Port
			if row.RemoteIP != "" {
				remotes = append(remotes, row.RemoteIP)
			}
		}
		rows = append(rows, row)
	}

	if b.Hosts != nil && len(remotes) > 0 {
		hosts := b.Hosts.ResolveAll(ctx, remotes)
		for i := range rows {
			rows[i].Hostname = hosts[rows[i].RemoteIP]
		}
	}
	return rows
}

// processTable preloads names for this build. perPID reports whether names
// missing from the table still need a ProcessName call.
func (b *Builder) processTable(ctx context.Context) (names map[int]string, perPID bool) {
	if table, ok := b.Names.(ProcessTable); ok {
		if all, err := table.ProcessNames(ctx); err == nil {
			return all, false
		}
	}
	return make(map[int]string), true
}

func (b *Builder) processName(pid int, memo map[int]string, perPID bool) string {
	if pid <= 0 || b.Names == nil {
		return ""
	}
	if name, ok := memo[pid]; ok || !perPID {
		return name
	}
	var name string
	if res := b.Names.ProcessName(pid); res.Status == model.LookupFound {
		name = res.Name
	}
	memo[pid] = name
	return name
}

// NormalizeStatus maps a missing state to "-".
func NormalizeStatus(status string) string {
	status = strings.TrimSpace(status)
	if status == "" || strings.EqualFold(status, "none") {
		return "-"
	}
	return status
}

// ErrorRow is the placeholder shown instead of connections when the source failed.
func ErrorRow(err error) model.ConnectionRow {
	return model.ConnectionRow{
		ProcessName: "Error",
		Status:      err.Error(),
		Family:      "-",
		Type:        "-",
	}
}

// FamilyName returns the symbolic name of an address family code, or the
// code itself when it is not known.
func FamilyName(code int) string {
	if name, ok := familyNames[code]; ok {
		return name
	}
	return strconv.Itoa(code)
}

func TypeName(code int) string {
	if name, ok := typeNames[code]; ok {
		return name
	}
	return strconv.Itoa(code)
}
