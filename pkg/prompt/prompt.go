package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
	"github.com/peterh/liner"
)

// LineReader reads one line of input after showing a prompt.
// io.EOF ends the session.
type LineReader interface {
	Prompt(prompt string) (string, error)
}

// Terminal is a line editor with history for interactive sessions
type Terminal struct {
	line    *liner.State
	history string // history file, empty to disable
}

// NewTerminal opens the line editor and loads the history file if present
func NewTerminal(history string) *Terminal {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	if history != "" {
		if f, err := os.Open(history); err == nil {
			_, _ = line.ReadHistory(f)
			f.Close()
		}
	}

	return &Terminal{line: line, history: history}
}

// Prompt reads a line. Ctrl-C and Ctrl-D both end the session.
func (t *Terminal) Prompt(prompt string) (string, error) {
	input, err := t.line.Prompt(prompt)
	if err != nil {
		switch err {
		case io.EOF, liner.ErrPromptAborted:
			return "", io.EOF
		}
		return "", err
	}

	if strings.TrimSpace(input) != "" {
		t.line.AppendHistory(input)
	}
	return input, nil
}

// Close saves the history and restores the terminal
func (t *Terminal) Close() error {
	if t.history != "" {
		if err := os.MkdirAll(filepath.Dir(t.history), 0755); err != nil {
			log.Warn("Cannot create history directory", "error", err)
		} else if f, err := os.Create(t.history); err != nil {
			log.Warn("Cannot write history file", "error", err)
		} else {
			_, _ = t.line.WriteHistory(f)
			f.Close()
		}
	}
	return t.line.Close()
}

// Scanner reads lines from a plain stream, echoing prompts to out
type Scanner struct {
	sc  *bufio.Scanner
	out io.Writer
}

func NewScanner(in io.Reader, out io.Writer) *Scanner {
	return &Scanner{sc: bufio.NewScanner(in), out: out}
}

func (s *Scanner) Prompt(prompt string) (string, error) {
	if s.out != nil {
		fmt.Fprint(s.out, prompt)
	}
	if !s.sc.Scan() {
		if err := s.sc.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return s.sc.Text(), nil
}

// Interactive reports whether both stdin and stdout are terminals
func Interactive() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())
}
