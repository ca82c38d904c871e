// Package source adapts the per-OS socket and process readers in proc to the
// interfaces the snapshot builder consumes.
package source

import (
	"context"

	"github.com/tcpview/tcpview/internal/proc"
	"github.com/tcpview/tcpview/pkg/model"
)

// OS reads connections and process names from the running host.
type OS struct{}

func (OS) ListConnections(ctx context.Context) ([]model.RawConnection, error) {
	return proc.ListConnections(ctx)
}

func (OS) ProcessName(pid int) model.ProcessLookup {
	return proc.ProcessName(pid)
}

// ProcessNames lists every process once per snapshot, which is far cheaper
// than one ps or tasklist run per pid.
func (OS) ProcessNames(ctx context.Context) (map[int]string, error) {
	return proc.ListProcessNames(ctx)
}

// Static replays a fixed set of connections. Err, when set, is returned by
// every ListConnections call.
type Static struct {
	Conns []model.RawConnection
	Names map[int]string
	Err   error
}

func (s Static) ListConnections(ctx context.Context) ([]model.RawConnection, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return append([]model.RawConnection(nil), s.Conns...), nil
}

func (s Static) ProcessName(pid int) model.ProcessLookup {
	if name, ok := s.Names[pid]; ok {
		return model.Found(name)
	}
	return model.NotFound
}
