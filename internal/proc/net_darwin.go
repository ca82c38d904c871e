//go:build darwin

package proc

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/tcpview/tcpview/pkg/model"
	"golang.org/x/sys/unix"
)

func ListConnections(ctx context.Context) ([]model.RawConnection, error) {
	out, err := exec.CommandContext(ctx, "lsof", "-i", "-P", "-n").Output()
	if err != nil && len(out) == 0 {
		// lsof exits 1 when it matched nothing
		if exitErr, ok := err.(*exec.ExitError); ok && exitErr.ExitCode() == 1 {
			return nil, nil
		}
		return nil, &TableError{Path: "lsof", Err: err}
	}
	return parseLsof(string(out)), nil
}

// parseLsof reads `lsof -i -P -n` output:
// COMMAND PID USER FD TYPE DEVICE SIZE/OFF NODE NAME [(STATE)]
func parseLsof(out string) []model.RawConnection {
	var conns []model.RawConnection
	seen := make(map[string]bool)

	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 9 || fields[0] == "COMMAND" {
			continue
		}

		pid, err := strconv.Atoi(fields[1])
		if err != nil {
			continue
		}

		c := model.RawConnection{PID: pid, Family: unix.AF_INET}
		if fields[4] == "IPv6" {
			c.Family = unix.AF_INET6
		}
		switch fields[7] {
		case "TCP":
			c.Type = unix.SOCK_STREAM
		case "UDP":
			c.Type = unix.SOCK_DGRAM
		default:
			continue
		}
		if len(fields) > 9 {
			c.Status = normalizeDarwinState(strings.Trim(fields[9], "()"))
		}

		local, remote, _ := strings.Cut(fields[8], "->")
		if ip, port := parseNetstatAddr(local); port > 0 || ip != "" {
			c.Local = &model.Addr{IP: ip, Port: port}
		}
		if remote != "" {
			if ip, port := parseNetstatAddr(remote); ip != "" {
				c.Remote = &model.Addr{IP: ip, Port: port}
			}
		}

		// lsof lists one line per file descriptor; dup'd sockets repeat
		key := fmt.Sprintf("%d|%s|%s|%s", pid, fields[4], fields[7], fields[8])
		if seen[key] {
			continue
		}
		seen[key] = true
		conns = append(conns, c)
	}
	return conns
}

func normalizeDarwinState(state string) string {
	switch state {
	case "FIN_WAIT_1", "FIN_WAIT_2", "TIME_WAIT", "CLOSE_WAIT", "LAST_ACK", "CLOSING", "ESTABLISHED", "LISTEN", "SYN_SENT":
		return state
	case "SYN_RECEIVED":
		return "SYN_RECV"
	case "CLOSED":
		return "CLOSE"
	}
	return state
}

// parseNetstatAddr parses addresses like "*:8080", "127.0.0.1:8080", "[::1]:8080"
func parseNetstatAddr(addr string) (string, int) {
	if strings.HasPrefix(addr, "[") {
		bracketEnd := strings.LastIndex(addr, "]")
		if bracketEnd == -1 {
			return "", 0
		}
		ip := addr[1:bracketEnd]
		rest := addr[bracketEnd+1:]
		if len(rest) > 1 && (rest[0] == ':' || rest[0] == '.') {
			port, err := strconv.Atoi(rest[1:])
			if err == nil {
				if ip == "" {
					return "::", port
				}
				return ip, port
			}
		}
		return "", 0
	}

	if strings.HasPrefix(addr, "*") {
		if len(addr) > 1 && (addr[1] == ':' || addr[1] == '.') {
			port, err := strconv.Atoi(addr[2:])
			if err == nil {
				return "0.0.0.0", port
			}
		}
		return "", 0
	}

	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		port, err := strconv.Atoi(addr[idx+1:])
		if err == nil {
			return addr[:idx], port
		}
	}
	return "", 0
}
