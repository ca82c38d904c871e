//go:build !windows

package snapshot

import "golang.org/x/sys/unix"

var familyNames = map[int]string{
	unix.AF_UNSPEC: "AF_UNSPEC",
	unix.AF_UNIX:   "AF_UNIX",
	unix.AF_INET:   "AF_INET",
	unix.AF_INET6:  "AF_INET6",
}

var typeNames = map[int]string{
	unix.SOCK_STREAM:    "SOCK_STREAM",
	unix.SOCK_DGRAM:     "SOCK_DGRAM",
	unix.SOCK_RAW:       "SOCK_RAW",
	unix.SOCK_SEQPACKET: "SOCK_SEQPACKET",
}
