package model

// Addr is one socket endpoint. Every OS source normalizes to this shape.
type Addr struct {
	IP   string
	Port int
}

// RawConnection is one socket record as reported by the OS, before
// process and hostname enrichment. PID is 0 when no process owns the socket.
type RawConnection struct {
	Local  *Addr
	Remote *Addr
	PID    int
	Status string
	Family int
	Type   int
}

type LookupStatus int

const (
	LookupFound LookupStatus = iota
	LookupNotFound
	LookupDenied
)

// ProcessLookup is the outcome of resolving a pid to its process name.
type ProcessLookup struct {
	Status LookupStatus
	Name   string
}

func Found(name string) ProcessLookup { return ProcessLookup{Status: LookupFound, Name: name} }

var (
	NotFound = ProcessLookup{Status: LookupNotFound}
	Denied   = ProcessLookup{Status: LookupDenied}
)
