package program

import (
	"errors"
	"fmt"
	"io"
	"minivm/pkg/codegen"
	"minivm/pkg/debugger"
	"minivm/pkg/parser"
	"minivm/pkg/prompt"
	"minivm/pkg/semantic"
	"minivm/pkg/vm"

	"github.com/charmbracelet/log"
)

type State int

const (
	Submitted State = iota
	Ready
	Running
	Paused
	Terminated
	Failed
)

func (s State) String() string {
	switch s {
	case Submitted:
		return "SUBMITTED"
	case Ready:
		return "READY"
	case Running:
		return "RUNNING"
	case Paused:
		return "PAUSED"
	case Terminated:
		return "TERMINATED"
	case Failed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

var (
	ErrNotCompiled = errors.New("program not compiled")
	ErrNotRun      = errors.New("program has not been run")
)

// Program is one submitted source file and everything derived from it.
type Program struct {
	PID        int
	State      State
	SourcePath string
	Source     string

	Sequence *codegen.Sequence // linked, nil until compiled
	VM       *vm.VM            // persistent across runs, nil until run or debugged
	Err      error             // last compile error

	vmOpts []vm.Option
}

// New creates a submitted program
func New(pid int, path, source string, opts ...vm.Option) *Program {
	return &Program{
		PID:        pid,
		State:      Submitted,
		SourcePath: path,
		Source:     source,
		vmOpts:     opts,
	}
}

// Compile runs parse, check, generate and link. A failure moves the program
// to Failed and keeps the error; compiling again may succeed.
func (p *Program) Compile() error {
	seq, err := Compile(p.Source)
	if err != nil {
		p.State = Failed
		p.Err = err
		p.Sequence = nil
		log.Debug("Compilation failed", "pid", p.PID, "error", err)
		return err
	}

	p.Sequence = seq
	p.VM = nil
	p.Err = nil
	p.State = Ready
	log.Debug("Compilation successful", "pid", p.PID, "instructions", seq.Len())
	return nil
}

// Compile turns source text into a linked sequence. The tree only lives
// inside lower, so it is released before linking.
func Compile(source string) (*codegen.Sequence, error) {
	seq, err := lower(source)
	if err != nil {
		return nil, err
	}

	if err := codegen.Link(seq); err != nil {
		return nil, err
	}
	return seq, nil
}

func lower(source string) (*codegen.Sequence, error) {
	tree, err := parser.ParseSource(source)
	if err != nil {
		return nil, err
	}

	if err := semantic.Check(tree); err != nil {
		return nil, err
	}

	return codegen.Generate(tree)
}

// Compiled reports whether a linked sequence is attached
func (p *Program) Compiled() bool {
	return p.Sequence != nil
}

func (p *Program) ensureCompiled() error {
	if p.Compiled() {
		return nil
	}
	return p.Compile()
}

// Run executes the program on its persistent VM and writes the final state
// and leak report. A breakpoint or the step bound leaves it Paused.
func (p *Program) Run(w io.Writer) error {
	if err := p.ensureCompiled(); err != nil {
		return err
	}
	if p.VM == nil {
		p.VM = vm.New(p.Sequence, p.vmOpts...)
	}

	p.State = Running
	err := p.VM.Run()
	switch {
	case err == nil:
		p.State = Terminated
		p.VM.Dump(w)
		p.VM.ReportLeaks().WriteTo(w)
		return nil

	case vm.IsFatal(err):
		p.State = Terminated
		return err

	default:
		p.State = Paused
		return err
	}
}

// Debug resets the VM and hands it to an interactive debugger session
func (p *Program) Debug(in prompt.LineReader, w io.Writer, opts ...debugger.Option) error {
	if err := p.ensureCompiled(); err != nil {
		return err
	}
	if p.VM == nil {
		p.VM = vm.New(p.Sequence, p.vmOpts...)
	}
	p.VM.Reset()
	p.State = Paused

	err := debugger.New(p.VM, in, w, opts...).Run()

	if p.VM.Done() || vm.IsFatal(err) {
		p.State = Terminated
	} else {
		p.State = Paused
	}
	return err
}

// Collect runs the garbage collector on the program's VM
func (p *Program) Collect() (vm.GCStats, error) {
	if p.VM == nil {
		return vm.GCStats{}, ErrNotRun
	}
	return p.VM.Collect(), nil
}

// Leaks reports the objects left on the program's heap
func (p *Program) Leaks() (vm.LeakReport, error) {
	if p.VM == nil {
		return vm.LeakReport{}, ErrNotRun
	}
	return p.VM.ReportLeaks(), nil
}

// Dump writes the linked instruction sequence
func (p *Program) Dump(w io.Writer) error {
	if !p.Compiled() {
		return ErrNotCompiled
	}
	return codegen.Dump(w, p.Sequence)
}

// Destroy releases the VM heap and the compiled sequence
func (p *Program) Destroy() {
	if p.VM != nil {
		p.VM.Destroy()
		p.VM = nil
	}
	p.Sequence = nil
	p.State = Terminated
}

func (p *Program) String() string {
	return fmt.Sprintf("Program PID=%d State=%s Source=%s", p.PID, p.State, p.SourcePath)
}

// Describe renders a compile error for the terminal, using the colored form when the error has one
func Describe(err error) string {
	var pretty interface{ Pretty() string }
	if errors.As(err, &pretty) {
		return pretty.Pretty()
	}
	return err.Error()
}

// NewCompiled wraps an already linked sequence, for example one loaded from an image
func NewCompiled(pid int, path string, seq *codegen.Sequence, opts ...vm.Option) *Program {
	p := New(pid, path, "", opts...)
	p.Sequence = seq
	p.State = Ready
	return p
}
