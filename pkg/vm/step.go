package vm

import (
	"minivm/pkg/codegen"

	"github.com/charmbracelet/log"
)

// Step executes a single instruction, returning (halted, error).
//
// A done VM reports halted without counting a step. A breakpoint on the
// current instruction is reported before execution as *BreakpointHit and is
// reported again on every later call.
func (m *VM) Step() (bool, error) {
	if m.seq == nil || !m.seq.Linked {
		return false, ErrNotLinked
	}

	if m.Done() {
		m.state = Terminated
		return true, nil
	}

	if _, ok := m.breakpoints[m.pc]; ok {
		m.state = Paused
		return false, &BreakpointHit{PC: m.pc, Line: m.seq.At(m.pc).Line}
	}

	if m.maxSteps > 0 && m.steps >= m.maxSteps {
		m.state = Paused
		log.Error("VM halted: possible infinite loop", "steps", m.steps, "pc", m.pc)
		return false, ErrMaxStepsExceeded
	}

	if m.state == Ready {
		m.state = Running
	}

	in := m.seq.At(m.pc)
	m.steps++
	if err := m.exec(in); err != nil {
		m.state = Terminated
		return false, &RuntimeError{PC: m.pc, Line: in.Line, Op: in.Op, Err: err}
	}

	return false, nil
}

// Run executes until halt or error. A normal halt is followed by a
// collection and a leak report.
func (m *VM) Run() error {
	m.state = Running

	for {
		halted, err := m.Step()
		if err != nil {
			return err
		}

		if halted {
			m.Collect()
			leaks := m.ReportLeaks()
			log.Debug("Leak report", "objects", leaks.Objects, "bytes", leaks.Bytes)
			return nil
		}
	}
}

// exec performs one instruction and advances the pc
func (m *VM) exec(in codegen.Instruction) error {
	next := m.pc + 1

	switch in.Op {
	case codegen.OpLoadConst:
		v, _ := in.Int()
		if err := m.push(m.alloc(v)); err != nil {
			return err
		}

	case codegen.OpLoadVar:
		name, _ := in.Name()
		o, ok := m.store[name]
		if !ok {
			o = m.alloc(0)
		}
		if err := m.push(o); err != nil {
			return err
		}

	case codegen.OpStoreVar:
		name, _ := in.Name()
		o, err := m.pop()
		if err != nil {
			return err
		}
		m.store[name] = o

	case codegen.OpAdd, codegen.OpSub, codegen.OpMul, codegen.OpDiv,
		codegen.OpEq, codegen.OpNe, codegen.OpLt, codegen.OpGt, codegen.OpLe, codegen.OpGe:
		right, err := m.pop()
		if err != nil {
			return err
		}
		left, err := m.pop()
		if err != nil {
			return err
		}
		v, err := evalBinary(in.Op, left.Value, right.Value)
		if err != nil {
			return err
		}
		if err := m.push(m.alloc(v)); err != nil {
			return err
		}

	case codegen.OpJump:
		target, err := m.target(in)
		if err != nil {
			return err
		}
		next = target

	case codegen.OpJumpIfZero:
		target, err := m.target(in)
		if err != nil {
			return err
		}
		o, err := m.pop()
		if err != nil {
			return err
		}
		if o.Value == 0 {
			next = target
		}

	case codegen.OpLabel:

	default:
		return ErrUnknownOpcode
	}

	m.pc = next
	return nil
}

// target returns the resolved jump index; jumping to the end of the sequence is allowed
func (m *VM) target(in codegen.Instruction) (int, error) {
	t, ok := in.Int()
	if !ok || t < 0 || int(t) > m.seq.Len() {
		return 0, ErrBadJump
	}
	return int(t), nil
}

func evalBinary(op codegen.Operation, a, b int64) (int64, error) {
	switch op {
	case codegen.OpAdd:
		return a + b, nil
	case codegen.OpSub:
		return a - b, nil
	case codegen.OpMul:
		return a * b, nil
	case codegen.OpDiv:
		if b == 0 {
			return 0, ErrDivisionByZero
		}
		return a / b, nil
	case codegen.OpEq:
		return boolToInt(a == b), nil
	case codegen.OpNe:
		return boolToInt(a != b), nil
	case codegen.OpLt:
		return boolToInt(a < b), nil
	case codegen.OpGt:
		return boolToInt(a > b), nil
	case codegen.OpLe:
		return boolToInt(a <= b), nil
	case codegen.OpGe:
		return boolToInt(a >= b), nil
	default:
		return 0, ErrUnknownOpcode
	}
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
