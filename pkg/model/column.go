package model

// Column is a fixed cell position shared by filtering, sorting and rendering.
type Column int

const (
	ColName Column = iota
	ColPID
	ColLocalIP
	ColLocalPort
	ColRemoteIP
	ColRemotePort
	ColHost
	ColStatus
	ColFamily
	ColType

	NumColumns
)

var columnKeys = [NumColumns]string{"name", "pid", "lip", "lport", "rip", "rport", "host", "status", "family", "type"}

var columnTitles = [NumColumns]string{"Process", "PID", "Local IP", "Local Port", "Remote IP", "Remote Port", "Hostname", "Status", "Family", "Type"}

func (c Column) Key() string {
	if c < 0 || c >= NumColumns {
		return ""
	}
	return columnKeys[c]
}

func (c Column) Title() string {
	if c < 0 || c >= NumColumns {
		return ""
	}
	return columnTitles[c]
}

// Numeric reports whether the column compares as an integer.
func (c Column) Numeric() bool {
	return c == ColPID || c == ColLocalPort || c == ColRemotePort
}

// ColumnByKey maps a filter/sort key such as "rport" to its column.
func ColumnByKey(key string) (Column, bool) {
	for i, k := range columnKeys {
		if k == key {
			return Column(i), true
		}
	}
	return 0, false
}

func ColumnKeys() []string {
	return append([]string(nil), columnKeys[:]...)
}
