//go:build linux

package proc

import "fmt"

// tcpStates is indexed by the kernel state code (include/net/tcp_states.h).
var tcpStates = [...]string{
	1:  "ESTABLISHED",
	2:  "SYN_SENT",
	3:  "SYN_RECV",
	4:  "FIN_WAIT_1",
	5:  "FIN_WAIT_2",
	6:  "TIME_WAIT",
	7:  "CLOSE",
	8:  "CLOSE_WAIT",
	9:  "LAST_ACK",
	10: "LISTEN",
	11: "CLOSING",
	12: "NEW_SYN_RECV",
}

func mapTCPState(state int) string {
	if state > 0 && state < len(tcpStates) {
		return tcpStates[state]
	}
	return fmt.Sprintf("UNKNOWN (%02X)", state)
}
