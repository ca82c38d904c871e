// Package logging provides the named, colored loggers used by the headless
// commands. The TUI never logs; it reports through its status line.
package logging

import (
	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

type Logger struct {
	log     *logger.Logger
	verbose bool
}

// New returns a logger whose lines are prefixed with name. Debug lines are
// only written when verbose is set.
func New(name string, verbose bool) *Logger {
	return &Logger{
		log:     logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, name)),
		verbose: verbose,
	}
}

// A nil *Logger discards everything.
func (l *Logger) Infoln(args ...any) {
	if l != nil {
		l.log.Infoln(args...)
	}
}

func (l *Logger) Warn(args ...any) {
	if l != nil {
		l.log.Warn(args...)
	}
}

func (l *Logger) Debugln(args ...any) {
	if l != nil && l.verbose {
		l.log.Debugln(args...)
	}
}
