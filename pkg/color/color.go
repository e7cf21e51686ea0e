// Package color paints terminal output for dumps, diagnostics and the shell.
package color

import (
	"os"

	"github.com/muesli/termenv"
)

const (
	Red       = termenv.ANSIRed
	Green     = termenv.ANSIGreen
	Yellow    = termenv.ANSIYellow
	Blue      = termenv.ANSIBlue
	Gray      = termenv.ANSIBrightBlack
	BrightRed = termenv.ANSIBrightRed
)

var colorEnabled = true

func init() {
	if os.Getenv("NO_COLOR") != "" || termenv.NewOutput(os.Stdout).Profile == termenv.Ascii {
		colorEnabled = false
	}
}

func EnableColor(enable bool) {
	colorEnabled = enable
}

func IsColorEnabled() bool {
	return colorEnabled
}

// Colorize wraps text in the foreground color, or returns it untouched when
// color is off
func Colorize(c termenv.ANSIColor, text string) string {
	if !colorEnabled {
		return text
	}
	return termenv.String(text).Foreground(c).String()
}

func RedText(text string) string       { return Colorize(Red, text) }
func BrightRedText(text string) string { return Colorize(BrightRed, text) }
func GreenText(text string) string     { return Colorize(Green, text) }
func YellowText(text string) string    { return Colorize(Yellow, text) }
func BlueText(text string) string      { return Colorize(Blue, text) }
func GrayText(text string) string      { return Colorize(Gray, text) }
