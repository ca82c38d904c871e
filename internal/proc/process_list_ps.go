//go:build darwin || freebsd

package proc

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// ListProcessNames maps every running pid to its command name with a single
// ps invocation.
func ListProcessNames(ctx context.Context) (map[int]string, error) {
	out, err := exec.CommandContext(ctx, "ps", "-axo", "pid=,comm=").Output()
	if err != nil {
		return nil, fmt.Errorf("ps process list: %w", err)
	}
	return parsePsNames(string(out)), nil
}

func parsePsNames(out string) map[int]string {
	names := make(map[int]string)
	for line := range strings.Lines(out) {
		pidStr, comm, ok := strings.Cut(strings.TrimSpace(line), " ")
		if !ok {
			continue
		}
		pid, err := strconv.Atoi(pidStr)
		if err != nil {
			continue
		}
		// comm may be a full path on darwin
		if comm = strings.TrimSpace(comm); comm != "" {
			names[pid] = filepath.Base(comm)
		}
	}
	return names
}
