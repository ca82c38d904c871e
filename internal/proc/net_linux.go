//go:build linux

package proc

import (
	"bufio"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/tcpview/tcpview/pkg/model"
	"golang.org/x/sys/unix"
)

type socketTable struct {
	path     string
	ipv6     bool
	sockType int
}

var socketTables = []socketTable{
	{path: "/proc/net/tcp", ipv6: false, sockType: unix.SOCK_STREAM},
	{path: "/proc/net/tcp6", ipv6: true, sockType: unix.SOCK_STREAM},
	{path: "/proc/net/udp", ipv6: false, sockType: unix.SOCK_DGRAM},
	{path: "/proc/net/udp6", ipv6: true, sockType: unix.SOCK_DGRAM},
}

type socketEntry struct {
	local  model.Addr
	remote model.Addr
	state  int
	inode  string
}

// ListConnections reads the kernel socket tables and joins every socket to
// its owning pid through /proc/<pid>/fd. It fails only when no table could
// be read at all.
func ListConnections(ctx context.Context) ([]model.RawConnection, error) {
	owners := socketOwners()

	var conns []model.RawConnection
	var firstErr error
	read := 0
	for _, t := range socketTables {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		entries, err := readTable(t)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		read++
		for _, e := range entries {
			conns = append(conns, e.raw(t, owners[e.inode]))
		}
	}
	if read == 0 && firstErr != nil {
		return nil, firstErr
	}
	return conns, nil
}

func readTable(t socketTable) ([]socketEntry, error) {
	f, err := os.Open(t.path)
	if err != nil {
		return nil, &TableError{Path: t.path, Err: err}
	}
	defer f.Close()

	entries, err := parseTable(f, t.ipv6)
	if err != nil {
		return nil, &TableError{Path: t.path, Err: err}
	}
	return entries, nil
}

func parseTable(r io.Reader, ipv6 bool) ([]socketEntry, error) {
	scanner := bufio.NewScanner(r)
	scanner.Scan() // skip header

	var entries []socketEntry
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 10 {
			continue
		}

		state, err := strconv.ParseInt(fields[3], 16, 32)
		if err != nil {
			continue
		}
		localIP, localPort := parseAddr(fields[1], ipv6)
		remoteIP, remotePort := parseAddr(fields[2], ipv6)

		entries = append(entries, socketEntry{
			local:  model.Addr{IP: localIP, Port: localPort},
			remote: model.Addr{IP: remoteIP, Port: remotePort},
			state:  int(state),
			inode:  fields[9],
		})
	}
	return entries, scanner.Err()
}

func (e socketEntry) raw(t socketTable, pid int) model.RawConnection {
	c := model.RawConnection{
		PID:    pid,
		Family: unix.AF_INET,
		Type:   t.sockType,
	}
	if t.ipv6 {
		c.Family = unix.AF_INET6
	}
	if e.local.IP != "" {
		local := e.local
		c.Local = &local
	}
	if !unconnected(e.remote) {
		remote := e.remote
		c.Remote = &remote
	}
	// the kernel tracks a state for UDP too, but it carries no meaning there
	if t.sockType == unix.SOCK_STREAM {
		c.Status = mapTCPState(e.state)
	}
	return c
}

func unconnected(a model.Addr) bool {
	if a.Port != 0 {
		return false
	}
	return a.IP == "" || a.IP == "0.0.0.0" || a.IP == "::"
}

func parseAddr(raw string, ipv6 bool) (string, int) {
	parts := strings.Split(raw, ":")
	if len(parts) < 2 {
		return "", 0
	}
	portHex := parts[1]
	port, _ := strconv.ParseInt(portHex, 16, 32)

	ipHex := parts[0]
	b, err := hex.DecodeString(ipHex)
	if err != nil {
		return "", int(port)
	}

	if ipv6 {
		if len(b) != 16 {
			return "::", int(port)
		}
		// /proc/net/tcp6 stores IPv6 as 4 little-endian 32-bit groups
		ip := make(net.IP, 16)
		for i := 0; i < 4; i++ {
			ip[i*4+0] = b[i*4+3]
			ip[i*4+1] = b[i*4+2]
			ip[i*4+2] = b[i*4+1]
			ip[i*4+3] = b[i*4+0]
		}
		return ip.String(), int(port)
	}

	if len(b) < 4 {
		return "", int(port)
	}
	ip := strconv.Itoa(int(b[3])) + "." +
		strconv.Itoa(int(b[2])) + "." +
		strconv.Itoa(int(b[1])) + "." +
		strconv.Itoa(int(b[0]))

	return ip, int(port)
}

// socketOwners maps socket inodes to the pid holding them. Processes whose fd
// directory cannot be read are skipped; their sockets show up without a pid.
func socketOwners() map[string]int {
	owners := make(map[string]int)

	procs, err := os.ReadDir("/proc")
	if err != nil {
		return owners
	}

	for _, p := range procs {
		if !p.IsDir() {
			continue
		}
		pid, err := strconv.Atoi(p.Name())
		if err != nil {
			continue
		}

		fdPath := fmt.Sprintf("/proc/%d/fd", pid)
		fds, err := os.ReadDir(fdPath)
		if err != nil {
			continue
		}

		for _, fd := range fds {
			link, err := os.Readlink(fmt.Sprintf("%s/%s", fdPath, fd.Name()))
			if err != nil {
				continue
			}
			if strings.HasPrefix(link, "socket:[") {
				inode := strings.TrimSuffix(strings.TrimPrefix(link, "socket:["), "]")
				if _, seen := owners[inode]; !seen {
					owners[inode] = pid
				}
			}
		}
	}
	return owners
}
