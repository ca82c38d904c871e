//go:build linux

package proc

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ListProcessNames maps every pid under /proc to its command name. Processes
// that exit mid-scan are skipped.
func ListProcessNames(ctx context.Context) (map[int]string, error) {
	entries, err := os.ReadDir("/proc")
	if err != nil {
		return nil, fmt.Errorf("read /proc: %w", err)
	}

	names := make(map[int]string, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		pid, err := strconv.Atoi(entry.Name())
		if err != nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if comm, err := os.ReadFile(fmt.Sprintf("/proc/%d/comm", pid)); err == nil {
			if name := strings.TrimSpace(string(comm)); name != "" {
				names[pid] = name
				continue
			}
		}
		stat, err := os.ReadFile(fmt.Sprintf("/proc/%d/stat", pid))
		if err != nil {
			continue
		}
		if name, err := parseStatComm(stat); err == nil {
			names[pid] = name
		}
	}
	return names, nil
}
