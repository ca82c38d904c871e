//go:build windows

package proc

import (
	"encoding/csv"
	"fmt"
	"os/exec"
	"strings"

	"github.com/tcpview/tcpview/pkg/model"
)

func ProcessName(pid int) model.ProcessLookup {
	if pid <= 0 {
		return model.NotFound
	}
	out, err := exec.Command("tasklist", "/FI", fmt.Sprintf("PID eq %d", pid), "/FO", "CSV", "/NH").Output()
	if err != nil {
		return model.NotFound
	}
	return parseTasklist(string(out))
}

// parseTasklist reads one CSV line: "Image Name","PID","Session Name","Session#","Mem Usage"
func parseTasklist(out string) model.ProcessLookup {
	if strings.Contains(out, "No tasks are running") {
		return model.NotFound
	}
	record, err := csv.NewReader(strings.NewReader(strings.TrimSpace(out))).Read()
	if err != nil || len(record) == 0 || record[0] == "" {
		return model.NotFound
	}
	return model.Found(record[0])
}
