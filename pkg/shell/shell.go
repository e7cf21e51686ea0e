package shell

import (
	"errors"
	"fmt"
	"io"
	"minivm/pkg/color"
	"minivm/pkg/debugger"
	"minivm/pkg/program"
	"minivm/pkg/prompt"
	"minivm/pkg/vm"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
)

const DefaultPrompt = "minivm> "

const helpText = `Available commands:
  submit <file>     Register a source file, prints its PID
  list              List programs and their states
  compile <pid>     Check, generate and link a program
  ir <pid>          Print the linked instructions
  run <pid>         Run a program and print its final state
  debug <pid>       Attach the debugger to a fresh run
  memstat <pid>     Show heap objects (alias: leaks)
  gc <pid>          Run the garbage collector
  kill <pid>        Destroy a program
  exit              Leave the shell
`

// Shell dispatches program commands read one line at a time.
type Shell struct {
	table     *program.Table
	in        prompt.LineReader
	out       io.Writer
	prompt    string
	debugOpts []debugger.Option
}

type Option func(*Shell)

// WithPrompt replaces the default shell prompt
func WithPrompt(p string) Option {
	return func(s *Shell) {
		if p != "" {
			s.prompt = p
		}
	}
}

// WithDebuggerOptions configures debugger sessions started by debug
func WithDebuggerOptions(opts ...debugger.Option) Option {
	return func(s *Shell) { s.debugOpts = append(s.debugOpts, opts...) }
}

func New(table *program.Table, in prompt.LineReader, out io.Writer, opts ...Option) *Shell {
	s := &Shell{table: table, in: in, out: out, prompt: DefaultPrompt}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Run reads commands until exit or end of input
func (s *Shell) Run() error {
	for {
		line, err := s.in.Prompt(s.prompt)
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(s.out)
				return nil
			}
			return err
		}

		exit, err := s.Execute(line)
		if err != nil {
			return err
		}
		if exit {
			return nil
		}
	}
}

// Execute runs one command line and reports whether the shell should exit.
// Only reader failures and fatal runtime errors are returned.
func (s *Shell) Execute(line string) (bool, error) {
	args := strings.Fields(line)
	if len(args) == 0 {
		return false, nil
	}
	log.Debug("Shell command", "args", args)

	switch args[0] {
	case "exit", "quit":
		return true, nil

	case "help":
		fmt.Fprint(s.out, helpText)

	case "submit":
		if len(args) < 2 {
			fmt.Fprintln(s.out, "Usage: submit <file>")
			return false, nil
		}
		p, err := s.table.Submit(args[1])
		if err != nil {
			fmt.Fprintf(s.out, "submit: %v\n", err)
			return false, nil
		}
		fmt.Fprintf(s.out, "PID = %d\n", p.PID)

	case "list":
		for _, p := range s.table.List() {
			fmt.Fprintln(s.out, p)
		}

	case "compile":
		if p := s.lookup(args); p != nil {
			s.compile(p)
		}

	case "ir":
		if p := s.lookup(args); p != nil {
			if !p.Compiled() {
				fmt.Fprintf(s.out, "Program not compiled yet. Run: compile %d\n", p.PID)
				return false, nil
			}
			fmt.Fprintf(s.out, "IR for Program %d:\n", p.PID)
			p.Dump(s.out)
		}

	case "run":
		if p := s.lookup(args); p != nil {
			return false, s.run(p)
		}

	case "debug":
		if p := s.lookup(args); p != nil {
			return false, s.debug(p)
		}

	case "memstat", "leaks":
		if p := s.lookup(args); p != nil {
			report, err := p.Leaks()
			if err != nil {
				fmt.Fprintln(s.out, "Program has not been run yet (no memory state).")
				return false, nil
			}
			report.WriteTo(s.out)
		}

	case "gc":
		if p := s.lookup(args); p != nil {
			if p.VM == nil {
				fmt.Fprintln(s.out, "Program has not been run yet.")
				return false, nil
			}
			fmt.Fprintf(s.out, "Running Garbage Collector on PID %d...\n", p.PID)
			p.Collect()
			report, _ := p.Leaks()
			report.WriteTo(s.out)
		}

	case "kill":
		if p := s.lookup(args); p != nil {
			s.table.Kill(p.PID)
			fmt.Fprintf(s.out, "Killed %d\n", p.PID)
		}

	default:
		fmt.Fprintf(s.out, "Unknown command: %s. Type 'help'.\n", args[0])
	}

	return false, nil
}

// lookup resolves the pid argument, reporting problems to the user
func (s *Shell) lookup(args []string) *program.Program {
	if len(args) < 2 {
		fmt.Fprintf(s.out, "Usage: %s <pid>\n", args[0])
		return nil
	}

	pid, err := strconv.Atoi(strings.TrimPrefix(args[1], "%"))
	if err != nil {
		fmt.Fprintln(s.out, "PID must be a number")
		return nil
	}

	p, err := s.table.Lookup(pid)
	if err != nil {
		fmt.Fprintf(s.out, "No such program with PID %d\n", pid)
		return nil
	}
	return p
}

func (s *Shell) compile(p *program.Program) bool {
	fmt.Fprintf(s.out, "Compiling program %d...\n", p.PID)
	if err := p.Compile(); err != nil {
		fmt.Fprintln(s.out, program.Describe(err))
		fmt.Fprintln(s.out, color.RedText("Compilation failed."))
		return false
	}
	fmt.Fprintln(s.out, color.GreenText("Compilation successful."))
	return true
}

func (s *Shell) run(p *program.Program) error {
	if !p.Compiled() && !s.compile(p) {
		return nil
	}

	fmt.Fprintf(s.out, "Running program %d\n", p.PID)
	err := p.Run(s.out)

	var hit *vm.BreakpointHit
	switch {
	case err == nil:
		return nil
	case errors.As(err, &hit):
		fmt.Fprintf(s.out, "Breakpoint hit at IR[%d]\n", hit.PC)
	case errors.Is(err, vm.ErrMaxStepsExceeded):
		fmt.Fprintln(s.out, "VM halted: possible infinite loop")
	case vm.IsFatal(err):
		vm.Fatal(err)
		return err
	default:
		fmt.Fprintf(s.out, "run: %v\n", err)
	}
	return nil
}

func (s *Shell) debug(p *program.Program) error {
	if !p.Compiled() && !s.compile(p) {
		return nil
	}

	fmt.Fprintf(s.out, "Attached to PID %d [PAUSED]\n", p.PID)
	if err := p.Debug(s.in, s.out, s.debugOpts...); err != nil {
		return err
	}

	if p.State == program.Terminated {
		fmt.Fprintf(s.out, "PID %d terminated.\n", p.PID)
	} else {
		fmt.Fprintf(s.out, "PID %d is paused.\n", p.PID)
	}
	return nil
}
