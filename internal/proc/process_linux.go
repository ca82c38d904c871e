//go:build linux

package proc

import (
	"fmt"
	"os"
	"strings"

	"github.com/tcpview/tcpview/pkg/model"
)

// ProcessName resolves pid to its command name. A process that exited since
// the socket scan is NotFound; one owned by another user may be Denied.
func ProcessName(pid int) model.ProcessLookup {
	if pid <= 0 {
		return model.NotFound
	}
	comm, err := os.ReadFile(fmt.Sprintf("/proc/%d/comm", pid))
	if err == nil {
		if name := strings.TrimSpace(string(comm)); name != "" {
			return model.Found(name)
		}
	}

	stat, err := os.ReadFile(fmt.Sprintf("/proc/%d/stat", pid))
	if err != nil {
		return lookupFailure(err)
	}
	name, err := parseStatComm(stat)
	if err != nil {
		return model.NotFound
	}
	return model.Found(name)
}

func parseStatComm(stat []byte) (string, error) {
	raw := string(stat)
	open := strings.Index(raw, "(")
	close := strings.LastIndex(raw, ")")
	if open == -1 || close == -1 || close <= open {
		return "", fmt.Errorf("invalid stat format")
	}
	return raw[open+1 : close], nil
}
