//go:build windows

package proc

import (
	"context"
	"os/exec"
	"strconv"
	"strings"

	"github.com/tcpview/tcpview/pkg/model"
	"golang.org/x/sys/windows"
)

func ListConnections(ctx context.Context) ([]model.RawConnection, error) {
	out, err := exec.CommandContext(ctx, "netstat", "-ano").Output()
	if err != nil {
		return nil, &TableError{Path: "netstat -ano", Err: err}
	}
	return parseNetstat(string(out)), nil
}

// parseNetstat reads `netstat -ano` output:
//
//	TCP 0.0.0.0:135 0.0.0.0:0 LISTENING 888  (len 5)
//	UDP 0.0.0.0:123 *:*       999            (len 4)
func parseNetstat(out string) []model.RawConnection {
	var conns []model.RawConnection
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 4 {
			continue
		}

		c := model.RawConnection{}
		var pidStr string
		switch strings.ToUpper(fields[0]) {
		case "TCP", "TCPV6":
			if len(fields) < 5 {
				continue
			}
			c.Type = windows.SOCK_STREAM
			c.Status = fields[3]
			if c.Status == "LISTENING" {
				c.Status = "LISTEN"
			}
			pidStr = fields[4]
		case "UDP", "UDPV6":
			c.Type = windows.SOCK_DGRAM
			pidStr = fields[3]
		default:
			continue
		}

		pid, err := strconv.Atoi(pidStr)
		if err != nil {
			continue
		}
		c.PID = pid

		c.Family = windows.AF_INET
		if strings.HasPrefix(fields[1], "[") {
			c.Family = windows.AF_INET6
		}
		if ip, port, ok := splitHostPort(fields[1]); ok {
			c.Local = &model.Addr{IP: ip, Port: port}
		}
		if ip, port, ok := splitHostPort(fields[2]); ok && !unconnected(ip, port) {
			c.Remote = &model.Addr{IP: ip, Port: port}
		}
		conns = append(conns, c)
	}
	return conns
}

func splitHostPort(addr string) (string, int, bool) {
	lastColon := strings.LastIndex(addr, ":")
	if lastColon == -1 {
		return "", 0, false
	}
	ip := addr[:lastColon]
	// specialized handling for [::] or [::1] on windows to avoid double bracket
	if len(ip) > 2 && strings.HasPrefix(ip, "[") && strings.HasSuffix(ip, "]") {
		ip = ip[1 : len(ip)-1]
	}
	port, err := strconv.Atoi(addr[lastColon+1:])
	if err != nil {
		return "", 0, false
	}
	return ip, port, true
}

func unconnected(ip string, port int) bool {
	return port == 0 && (ip == "0.0.0.0" || ip == "::" || ip == "*")
}
