//go:build windows

package proc

import (
	"context"
	"encoding/csv"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// ListProcessNames maps every running pid to its image name with a single
// tasklist invocation.
func ListProcessNames(ctx context.Context) (map[int]string, error) {
	out, err := exec.CommandContext(ctx, "tasklist", "/FO", "CSV", "/NH").Output()
	if err != nil {
		return nil, fmt.Errorf("tasklist: %w", err)
	}
	return parseTasklistAll(string(out))
}

// parseTasklistAll reads CSV lines of "Image Name","PID","Session Name","Session#","Mem Usage"
func parseTasklistAll(out string) (map[int]string, error) {
	r := csv.NewReader(strings.NewReader(strings.TrimSpace(out)))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse tasklist output: %w", err)
	}

	names := make(map[int]string, len(records))
	for _, record := range records {
		if len(record) < 2 || record[0] == "" {
			continue
		}
		pid, err := strconv.Atoi(record[1])
		if err != nil {
			continue
		}
		names[pid] = record[0]
	}
	return names, nil
}
