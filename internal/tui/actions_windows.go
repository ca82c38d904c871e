//go:build windows

package tui

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// Windows has no signals; both actions end the process.
func killProcess(pid int) error { return terminate(pid) }
func termProcess(pid int) error { return terminate(pid) }

func terminate(pid int) error {
	if pid <= 0 {
		return fmt.Errorf("invalid PID %d", pid)
	}
	h, err := windows.OpenProcess(windows.PROCESS_TERMINATE, false, uint32(pid))
	if err != nil {
		return fmt.Errorf("open PID %d: %w", pid, err)
	}
	defer windows.CloseHandle(h) //nolint:errcheck
	if err := windows.TerminateProcess(h, 1); err != nil {
		return fmt.Errorf("terminate PID %d failed: %w", pid, err)
	}
	return nil
}
