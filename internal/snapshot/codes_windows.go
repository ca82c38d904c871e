//go:build windows

package snapshot

import "golang.org/x/sys/windows"

var familyNames = map[int]string{
	windows.AF_UNSPEC: "AF_UNSPEC",
	windows.AF_UNIX:   "AF_UNIX",
	windows.AF_INET:   "AF_INET",
	windows.AF_INET6:  "AF_INET6",
}

var typeNames = map[int]string{
	windows.SOCK_STREAM:    "SOCK_STREAM",
	windows.SOCK_DGRAM:     "SOCK_DGRAM",
	windows.SOCK_RAW:       "SOCK_RAW",
	windows.SOCK_SEQPACKET: "SOCK_SEQPACKET",
}
