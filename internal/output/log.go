package output

import (
	"io"

	"github.com/pterm/pterm"
)

// Logger prints progress lines. Debug lines only appear in verbose mode;
// warnings and errors go to the error stream.
type Logger struct {
	Verbose bool

	debug *pterm.PrefixPrinter
	info  *pterm.PrefixPrinter
	warn  *pterm.PrefixPrinter
	err   *pterm.PrefixPrinter
}

func NewLogger(out, errOut io.Writer, verbose bool) *Logger {
	return &Logger{
		Verbose: verbose,
		debug:   pterm.Debug.WithDebugger(false).WithWriter(out),
		info:    pterm.Info.WithWriter(out),
		warn:    pterm.Warning.WithWriter(errOut),
		err:     pterm.Error.WithWriter(errOut),
	}
}

// SetStyling switches pterm colours and prefixes' styling on or off.
// Callers turn it off when output is not going to a terminal.
func SetStyling(enabled bool) {
	if enabled {
		pterm.EnableStyling()
		return
	}
	pterm.DisableStyling()
}

func (l *Logger) Debugf(format string, a ...interface{}) {
	if l.Verbose {
		l.debug.Printfln(format, a...)
	}
}

func (l *Logger) Infof(format string, a ...interface{}) {
	l.info.Printfln(format, a...)
}

func (l *Logger) Warnf(format string, a ...interface{}) {
	l.warn.Printfln(format, a...)
}

func (l *Logger) Errorf(format string, a ...interface{}) {
	l.err.Printfln(format, a...)
}
