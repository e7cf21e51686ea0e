package vm

import (
	"fmt"
	"io"
	"minivm/pkg/codegen"
	"slices"
)

const (
	DefaultStackSize = 1024
	DefaultMaxSteps  = 500000
)

type State int

const (
	Ready State = iota
	Running
	Paused
	Terminated
)

func (s State) String() string {
	switch s {
	case Ready:
		return "READY"
	case Running:
		return "RUNNING"
	case Paused:
		return "PAUSED"
	case Terminated:
		return "TERMINATED"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// VM executes a linked instruction sequence on an operand stack of boxed
// heap objects. Each VM owns its own stack, store, heap and breakpoints.
type VM struct {
	seq *codegen.Sequence // linked program
	pc  int               // program counter

	stack     []*Object // operand stack, len is the stack pointer
	stackSize int       // operand stack capacity

	store map[string]*Object // variable bindings
	heap  []*Object          // every allocated object

	breakpoints map[int]struct{} // instruction indices

	state    State
	maxSteps int // maximum steps (0 = unlimited)
	steps    int // steps executed
}

type Option func(*VM)

// WithMaxSteps sets a maximum number of steps before returning ErrMaxStepsExceeded
func WithMaxSteps(n int) Option {
	return func(m *VM) { m.maxSteps = n }
}

// WithStackSize sets the operand stack capacity
func WithStackSize(n int) Option {
	return func(m *VM) {
		if n > 0 {
			m.stackSize = n
		}
	}
}

// New creates a VM for a linked sequence
func New(seq *codegen.Sequence, opts ...Option) *VM {
	m := &VM{
		seq:       seq,
		stackSize: DefaultStackSize,
		maxSteps:  DefaultMaxSteps,
	}

	for _, o := range opts {
		o(m)
	}
	m.Reset()

	return m
}

// Reset re-initializes pc, stack, store, heap, step counter, state and breakpoints
func (m *VM) Reset() {
	m.pc = 0
	m.stack = make([]*Object, 0, m.stackSize)
	m.store = make(map[string]*Object)
	m.heap = nil
	m.breakpoints = make(map[int]struct{})
	m.steps = 0
	m.state = Ready
}

// Sequence returns the program being executed
func (m *VM) Sequence() *codegen.Sequence {
	return m.seq
}

// PC returns the program counter
func (m *VM) PC() int {
	return m.pc
}

// Steps returns the number of executed steps
func (m *VM) Steps() int {
	return m.steps
}

func (m *VM) State() State {
	return m.state
}

// SetState is used by the debugger to mark the VM paused or terminated
func (m *VM) SetState(s State) {
	m.state = s
}

// Done reports whether the pc reached the Halt instruction or the end of the sequence
func (m *VM) Done() bool {
	if m.seq == nil || m.pc < 0 || m.pc >= m.seq.Len() {
		return true
	}
	return m.seq.At(m.pc).Op == codegen.OpHalt
}

// Stack returns the values on the operand stack, bottom first
func (m *VM) Stack() []int64 {
	out := make([]int64, len(m.stack))
	for i, o := range m.stack {
		out[i] = o.Value
	}
	return out
}

// Lookup returns the value bound to name
func (m *VM) Lookup(name string) (int64, bool) {
	o, ok := m.store[name]
	if !ok {
		return 0, false
	}
	return o.Value, true
}

// Names returns the bound variable names in sorted order
func (m *VM) Names() []string {
	names := make([]string, 0, len(m.store))
	for name := range m.store {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// SetBreakpoint marks an instruction index
func (m *VM) SetBreakpoint(pc int) error {
	if m.seq == nil || pc < 0 || pc >= m.seq.Len() {
		return fmt.Errorf("breakpoint IR[%d] out of range", pc)
	}
	m.breakpoints[pc] = struct{}{}
	return nil
}

// BreakpointAtLine sets a breakpoint on the first instruction generated for
// a source line and returns its index.
func (m *VM) BreakpointAtLine(line int) (int, bool) {
	if m.seq == nil || line < 1 {
		return 0, false
	}
	for i, instr := range m.seq.Instructions {
		if instr.Line == line {
			m.breakpoints[i] = struct{}{}
			return i, true
		}
	}
	return 0, false
}

// Breakpoints returns the breakpoint indices in ascending order
func (m *VM) Breakpoints() []int {
	out := make([]int, 0, len(m.breakpoints))
	for pc := range m.breakpoints {
		out = append(out, pc)
	}
	slices.Sort(out)
	return out
}

// Dump writes the final variable bindings
func (m *VM) Dump(w io.Writer) {
	fmt.Fprintln(w, "--- VM Final State ---")
	for _, name := range m.Names() {
		fmt.Fprintf(w, "%s = %d\n", name, m.store[name].Value)
	}
	fmt.Fprintln(w, "----------------------")
}

// PrintState writes the program counter and the operand stack
func (m *VM) PrintState(w io.Writer) {
	fmt.Fprintf(w, "PC = %d\n", m.pc)
	fmt.Fprintln(w, "Stack:")
	for i, o := range m.stack {
		fmt.Fprintf(w, "  [%d] %d\n", i, o.Value)
	}
}

func (m *VM) push(o *Object) error {
	if len(m.stack) >= m.stackSize {
		return ErrStackOverflow
	}
	m.stack = append(m.stack, o)
	return nil
}

func (m *VM) pop() (*Object, error) {
	if len(m.stack) == 0 {
		return nil, ErrStackUnderflow
	}
	o := m.stack[len(m.stack)-1]
	m.stack[len(m.stack)-1] = nil
	m.stack = m.stack[:len(m.stack)-1]
	return o, nil
}
