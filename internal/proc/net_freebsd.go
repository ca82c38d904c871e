//go:build freebsd

package proc

import (
	"context"
	"os/exec"
	"strconv"
	"strings"

	"github.com/tcpview/tcpview/pkg/model"
	"golang.org/x/sys/unix"
)

func ListConnections(ctx context.Context) ([]model.RawConnection, error) {
	out, err := exec.CommandContext(ctx, "sockstat", "-46", "-s").Output()
	if err != nil {
		return nil, &TableError{Path: "sockstat", Err: err}
	}
	return parseSockstat(string(out)), nil
}

var sockstatStates = map[string]string{
	"ESTABLISHED": "ESTABLISHED",
	"SYN_SENT":    "SYN_SENT",
	"SYN_RCVD":    "SYN_RECV",
	"FIN_WAIT_1":  "FIN_WAIT_1",
	"FIN_WAIT_2":  "FIN_WAIT_2",
	"TIME_WAIT":   "TIME_WAIT",
	"CLOSED":      "CLOSE",
	"CLOSE_WAIT":  "CLOSE_WAIT",
	"LAST_ACK":    "LAST_ACK",
	"LISTEN":      "LISTEN",
	"CLOSING":     "CLOSING",
}

// parseSockstat reads `sockstat -46 -s` output:
// USER COMMAND PID FD PROTO LOCAL FOREIGN [PATH STATE] [CONN STATE]
func parseSockstat(out string) []model.RawConnection {
	var conns []model.RawConnection
	seen := make(map[string]bool)

	for line := range strings.Lines(out) {
		fields := strings.Fields(line)
		if len(fields) < 7 || fields[0] == "USER" {
			continue
		}

		pid, err := strconv.Atoi(fields[2])
		if err != nil {
			// kernel sockets show "?" for the owner
			pid = 0
		}
		proto := fields[4] // tcp4, tcp6, tcp46, udp4, udp6
		c := model.RawConnection{PID: pid, Family: unix.AF_INET}
		if strings.Contains(proto, "6") {
			c.Family = unix.AF_INET6
		}
		switch {
		case strings.HasPrefix(proto, "tcp"):
			c.Type = unix.SOCK_STREAM
		case strings.HasPrefix(proto, "udp"):
			c.Type = unix.SOCK_DGRAM
		default:
			continue
		}

		ip, port, ok := parseSockstatAddr(fields[5], proto)
		if !ok {
			continue
		}
		c.Local = &model.Addr{IP: ip, Port: port}
		if ip, port, ok := parseSockstatAddr(fields[6], proto); ok && fields[6] != "*:*" {
			c.Remote = &model.Addr{IP: ip, Port: port}
		}

		if c.Type == unix.SOCK_STREAM {
			c.Status = sockstatStates[fields[len(fields)-1]]
			if c.Status == "" && c.Remote == nil {
				c.Status = "LISTEN"
			}
		}

		key := strings.Join([]string{fields[2], proto, fields[5], fields[6]}, "|")
		if seen[key] {
			continue
		}
		seen[key] = true
		conns = append(conns, c)
	}
	return conns
}

// parseSockstatAddr parses addresses like "*:80", "127.0.0.1:8080", "[::1]:8080"
// and "fe80::1%em0:22". proto tells which wildcard to use for "*".
func parseSockstatAddr(addr, proto string) (string, int, bool) {
	if strings.HasPrefix(addr, "[") {
		bracketEnd := strings.LastIndex(addr, "]")
		if bracketEnd == -1 {
			return "", 0, false
		}
		rest := addr[bracketEnd+1:]
		if len(rest) < 2 || rest[0] != ':' {
			return "", 0, false
		}
		port, err := strconv.Atoi(rest[1:])
		if err != nil {
			return "", 0, false
		}
		return addr[1:bracketEnd], port, true
	}

	idx := strings.LastIndex(addr, ":")
	if idx == -1 {
		return "", 0, false
	}
	ip, portStr := addr[:idx], addr[idx+1:]
	port := 0
	if portStr != "*" {
		p, err := strconv.Atoi(portStr)
		if err != nil {
			return "", 0, false
		}
		port = p
	}
	if ip == "*" {
		if strings.Contains(proto, "6") {
			return "::", port, true
		}
		return "0.0.0.0", port, true
	}
	return ip, port, true
}
