package logger_test

import (
	"bytes"
	"minivm/internal/logger"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestLevels(t *testing.T) {
	prev := log.Default()
	defer log.SetDefault(prev)

	tests := []struct {
		verbose   bool
		wantDebug bool
	}{
		{false, false},
		{true, true},
	}

	for _, test := range tests {
		var buf bytes.Buffer
		logger.Init(logger.Options{Verbose: test.verbose, NoColor: true, Output: &buf})

		log.Debug("stepping", "pc", 3)
		log.Warn("halted", "steps", 500000)

		out := buf.String()
		if !strings.Contains(out, "MINIVM") || !strings.Contains(out, "steps=500000") {
			t.Errorf("verbose=%v: expected prefixed warning, got %q", test.verbose, out)
		}
		if got := strings.Contains(out, "pc=3"); got != test.wantDebug {
			t.Errorf("verbose=%v: debug line present=%v, got %q", test.verbose, got, out)
		}
	}
}
