package output

import (
	"fmt"
	"io"
	"net"
	"strconv"

	"github.com/tcpview/tcpview/pkg/model"
)

var (
	colorResetTree   = "\033[0m"
	colorMagentaTree = "\033[35m"
	colorGreenTree   = "\033[32m"
	colorBoldTree    = "\033[2m"
)

// treeLimit caps the connections listed under one process.
const treeLimit = 10

type procGroup struct {
	name string
	pid  int
	rows []model.DisplayRow
}

// groupByProcess groups rows by owning process in order of first appearance.
func groupByProcess(rows []model.DisplayRow) []*procGroup {
	var groups []*procGroup
	index := make(map[string]*procGroup)
	for _, r := range rows {
		key := r.Row.ProcessName + "\x00" + strconv.Itoa(r.Row.PID)
		g, ok := index[key]
		if !ok {
			g = &procGroup{name: r.Row.ProcessName, pid: r.Row.PID}
			index[key] = g
			groups = append(groups, g)
		}
		g.rows = append(g.rows, r)
	}
	return groups
}

// PrintTree writes one branch per process with its connections below it.
func PrintTree(w io.Writer, rows []model.DisplayRow, colorEnabled bool) {
	colorReset := ""
	colorMagenta := ""
	colorGreen := ""
	colorBold := ""
	if colorEnabled {
		colorReset = colorResetTree
		colorMagenta = colorMagentaTree
		colorGreen = colorGreenTree
		colorBold = colorBoldTree
	}

	for _, g := range groupByProcess(rows) {
		name := CleanText(g.name)
		if name == "" {
			name = "?"
		}
		if g.pid > 0 {
			fmt.Fprintf(w, "%s%s%s (%spid %d%s)\n", colorGreen, name, colorReset, colorBold, g.pid, colorReset)
		} else {
			fmt.Fprintf(w, "%s%s%s\n", colorGreen, name, colorReset)
		}

		count := len(g.rows)
		for i, r := range g.rows {
			if i >= treeLimit {
				fmt.Fprintf(w, "  %s└─ %s... and %d more\n", colorMagenta, colorReset, count-treeLimit)
				break
			}
			connector := "├─ "
			if i == count-1 {
				connector = "└─ "
			}
			fmt.Fprintf(w, "  %s%s%s%s\n", colorMagenta, connector, colorReset, describe(r))
		}
	}
}

// describe renders one connection as "TYPE local -> remote (host) STATUS".
func describe(r model.DisplayRow) string {
	row := r.Row
	s := row.Type + " " + Endpoint(row.LocalIP, row.LocalPort)
	if row.RemoteIP != "" {
		s += " -> " + Endpoint(row.RemoteIP, row.RemotePort)
		if row.Hostname != "" {
			s += " (" + CleanText(row.Hostname) + ")"
		}
	}
	if row.Status != "" && row.Status != "-" {
		s += " " + row.Status
	}
	if r.Class != model.Unchanged {
		s += " [" + r.Class.String() + "]"
	}
	return s
}

// Endpoint joins ip and port, bracketing IPv6 addresses.
func Endpoint(ip string, port int) string {
	if port == 0 {
		return ip
	}
	return net.JoinHostPort(ip, strconv.Itoa(port))
}
