package output

import (
	"fmt"
	"io"

	"github.com/tcpview/tcpview/pkg/model"
)

var classSigils = map[model.ChangeClass]string{
	model.Added:   "+",
	model.Changed: "~",
	model.Removed: "-",
}

// PrintChanges writes one line per added, changed or removed row and returns
// how many it wrote.
func PrintChanges(w io.Writer, rows []model.DisplayRow) int {
	n := 0
	for _, r := range rows {
		sigil, ok := classSigils[r.Class]
		if !ok {
			continue
		}
		name := CleanText(r.Row.ProcessName)
		if r.Row.PID > 0 {
			name = fmt.Sprintf("%s[%d]", name, r.Row.PID)
		}
		fmt.Fprintf(w, "%s %-8s %s %s\n", sigil, r.Class, name, describe(model.DisplayRow{Row: r.Row}))
		n++
	}
	return n
}
