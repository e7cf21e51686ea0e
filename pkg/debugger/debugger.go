package debugger

import (
	"errors"
	"fmt"
	"io"
	"minivm/pkg/prompt"
	"minivm/pkg/vm"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
)

const DefaultPrompt = "(dbg) "

const helpText = `Available commands:
  step          Execute one instruction
  continue      Resume execution until completion or breakpoint
  break <line>  Set breakpoint at source line
  state         Print current registers and stack
  memstat       Show memory usage statistics
  gc            Run garbage collector
  quit          Exit debugger (program remains in current state)
`

// Debugger drives a VM from line commands, one request and one response at a time.
type Debugger struct {
	vm     *vm.VM
	in     prompt.LineReader
	out    io.Writer
	prompt string
}

type Option func(*Debugger)

// WithPrompt replaces the default "(dbg) " prompt
func WithPrompt(p string) Option {
	return func(d *Debugger) {
		if p != "" {
			d.prompt = p
		}
	}
}

// New creates a debugger session for m
func New(m *vm.VM, in prompt.LineReader, out io.Writer, opts ...Option) *Debugger {
	d := &Debugger{vm: m, in: in, out: out, prompt: DefaultPrompt}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Run reads commands until quit, end of input or the end of the program.
// It only returns an error for a failing reader or a fatal runtime error.
func (d *Debugger) Run() error {
	fmt.Fprintln(d.out, "Entering VM debugger. Type 'help' for commands.")
	d.vm.SetState(vm.Paused)

	defer func() {
		if d.vm.Done() {
			d.vm.SetState(vm.Terminated)
		} else if d.vm.State() != vm.Terminated {
			d.vm.SetState(vm.Paused)
		}
	}()

	for {
		line, err := d.in.Prompt(d.prompt)
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(d.out)
				return nil
			}
			return err
		}

		done, err := d.Execute(strings.TrimSpace(line))
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

// Execute runs a single command and reports whether the session is over
func (d *Debugger) Execute(cmd string) (bool, error) {
	log.Debug("Debugger command", "cmd", cmd, "pc", d.vm.PC())

	switch {
	case cmd == "":
		return false, nil

	case cmd == "help":
		fmt.Fprint(d.out, helpText)

	case cmd == "step":
		halted, err := d.vm.Step()
		if err != nil {
			return d.handle(err)
		}
		if halted {
			fmt.Fprintln(d.out, "Program finished or halted.")
			return true, nil
		}
		d.vm.SetState(vm.Paused)

	case cmd == "continue":
		if err := d.vm.Run(); err != nil {
			return d.handle(err)
		}
		d.vm.ReportLeaks().WriteTo(d.out)
		fmt.Fprintln(d.out, "Program finished execution.")
		return true, nil

	case cmd == "state":
		d.vm.PrintState(d.out)

	case cmd == "break" || strings.HasPrefix(cmd, "break "):
		d.setBreakpoint(strings.TrimSpace(strings.TrimPrefix(cmd, "break")))

	case cmd == "memstat" || cmd == "leaks":
		d.vm.ReportLeaks().WriteTo(d.out)

	case cmd == "gc":
		fmt.Fprintln(d.out, "Running Garbage Collector...")
		d.vm.Collect()
		fmt.Fprintln(d.out, "GC Complete.")
		d.vm.ReportLeaks().WriteTo(d.out)

	case cmd == "quit":
		return true, nil

	default:
		fmt.Fprintln(d.out, "Unknown command. Type 'help'.")
	}

	return false, nil
}

func (d *Debugger) setBreakpoint(arg string) {
	line, err := strconv.Atoi(arg)
	if err != nil {
		fmt.Fprintln(d.out, "Usage: break <line>")
		return
	}

	ip, ok := d.vm.BreakpointAtLine(line)
	if !ok {
		fmt.Fprintf(d.out, "No instruction found for line %d\n", line)
		return
	}
	fmt.Fprintf(d.out, "Breakpoint set at line %d (IP=%d)\n", line, ip)
}

// handle reports a step or run error; only fatal runtime errors end the session
func (d *Debugger) handle(err error) (bool, error) {
	var hit *vm.BreakpointHit
	switch {
	case errors.As(err, &hit):
		fmt.Fprintf(d.out, "Breakpoint hit at IR[%d]\n", hit.PC)
		return false, nil

	case errors.Is(err, vm.ErrMaxStepsExceeded):
		fmt.Fprintln(d.out, "VM halted: possible infinite loop")
		return false, nil

	case vm.IsFatal(err):
		vm.Fatal(err)
		return true, err

	default:
		fmt.Fprintf(d.out, "Error: %v\n", err)
		return false, nil
	}
}
