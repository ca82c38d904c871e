package proc

// ExplainState describes a socket state in plain words and, for states that
// commonly block a port, suggests what to do about it.
func ExplainState(state string) (explanation, workaround string) {
	switch state {
	case "LISTEN":
		return "Actively listening for connections", ""
	case "TIME_WAIT":
		return "Connection closed, waiting for delayed packets", "Wait for timeout (usually 60s) or use SO_REUSEADDR"
	case "CLOSE_WAIT":
		return "Remote side closed connection, local side has not closed yet", "The application should call close() on the socket"
	case "FIN_WAIT_1", "FIN_WAIT1":
		return "Local side initiated close, waiting for acknowledgment", ""
	case "FIN_WAIT_2", "FIN_WAIT2":
		return "Local close acknowledged, waiting for remote close", ""
	case "ESTABLISHED":
		return "Active connection", ""
	case "SYN_SENT":
		return "Connection request sent, waiting for response", ""
	case "SYN_RECV", "SYN_RECEIVED", "NEW_SYN_RECV":
		return "Connection request received, sending acknowledgment", ""
	case "CLOSING":
		return "Both sides initiated close simultaneously", ""
	case "LAST_ACK":
		return "Waiting for final acknowledgment of close", ""
	case "", "-":
		return "Connectionless socket", ""
	default:
		return "Socket in " + state + " state", ""
	}
}
