//go:build !windows

package tui

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

func killProcess(pid int) error { return signalOwner(pid, unix.SIGKILL) }
func termProcess(pid int) error { return signalOwner(pid, unix.SIGTERM) }

// signalOwner signals the process that owned a socket in the last snapshot.
// It may have exited since.
func signalOwner(pid int, sig unix.Signal) error {
	if pid <= 0 {
		return fmt.Errorf("invalid PID %d", pid)
	}
	err := unix.Kill(pid, sig)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, unix.ESRCH):
		return fmt.Errorf("PID %d already exited", pid)
	case errors.Is(err, unix.EPERM):
		return fmt.Errorf("not permitted to signal PID %d", pid)
	}
	return fmt.Errorf("%s to PID %d failed: %w", unix.SignalName(sig), pid, err)
}
