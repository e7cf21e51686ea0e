// Package logger configures the process wide charmbracelet logger.
package logger

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
)

type Options struct {
	Verbose bool      // debug level and caller reporting
	NoColor bool      // plain ASCII output
	Output  io.Writer // os.Stderr when nil
}

// Init installs the default logger and returns it
func Init(opts Options) *log.Logger {
	w := opts.Output
	if w == nil {
		w = os.Stderr
	}

	level := log.WarnLevel
	if opts.Verbose {
		level = log.DebugLevel
	}

	l := log.NewWithOptions(w, log.Options{
		Level:        level,
		ReportCaller: opts.Verbose,
		Prefix:       "MINIVM",
	})

	if opts.NoColor {
		l.SetColorProfile(termenv.Ascii)
	} else {
		l.SetColorProfile(termenv.ANSI256)
	}

	log.SetDefault(l)
	return l
}
