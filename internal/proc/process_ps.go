//go:build darwin || freebsd

package proc

import (
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tcpview/tcpview/pkg/model"
)

func ProcessName(pid int) model.ProcessLookup {
	if pid <= 0 {
		return model.NotFound
	}
	out, err := exec.Command("ps", "-p", strconv.Itoa(pid), "-o", "comm=").Output()
	if err != nil {
		return model.NotFound
	}
	comm := strings.TrimSpace(string(out))
	if comm == "" {
		return model.NotFound
	}
	return model.Found(filepath.Base(comm))
}
