package output

import (
	"regexp"
	"strings"
	"unicode"
)

var ansiSeq = regexp.MustCompile(`[\x1b\x9b][[\\]()#;?]*(?:(?:(?:[a-zA-Z\d]*(?:;[a-zA-Z\d]*)*)?[\x07])|(?:(?:\d{1,4}(?:;\d{0,4})*)?[\dA-PRZcf-ntqry=><~]))`)

// CleanText removes escape sequences and control characters from text we do
// not control, such as process names, before it reaches a terminal.
func CleanText(s string) string {
	s = ansiSeq.ReplaceAllString(s, "")
	if strings.IndexFunc(s, unicode.IsControl) < 0 {
		return s
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return '?'
		}
		return r
	}, s)
}
