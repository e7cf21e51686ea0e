package vm

import (
	"errors"
	"fmt"
	"minivm/pkg/codegen"

	"github.com/charmbracelet/log"
)

var (
	ErrMaxStepsExceeded = errors.New("maximum steps exceeded")
	ErrBreakpoint       = errors.New("breakpoint hit")
	ErrNotLinked        = errors.New("sequence is not linked")

	ErrDivisionByZero = errors.New("division by zero")
	ErrUnknownOpcode  = errors.New("unknown opcode")
	ErrStackOverflow  = errors.New("stack overflow")
	ErrStackUnderflow = errors.New("stack underflow")
	ErrBadJump        = errors.New("jump target out of range")
)

// BreakpointHit is returned by Step when the instruction at PC carries a
// breakpoint. The instruction has not been executed.
type BreakpointHit struct {
	PC   int
	Line int
}

func (b *BreakpointHit) Error() string {
	return fmt.Sprintf("breakpoint hit at IR[%d] (line %d)", b.PC, b.Line)
}

func (b *BreakpointHit) Is(target error) bool {
	return target == ErrBreakpoint
}

// RuntimeError is an execution failure the program cannot recover from.
type RuntimeError struct {
	PC   int
	Line int
	Op   codegen.Operation
	Err  error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("runtime error: %v (IR[%d] %s, line %d)", e.Err, e.PC, e.Op, e.Line)
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// Fatal reports whether the error must terminate the process
func (e *RuntimeError) Fatal() bool {
	return true
}

// IsFatal reports whether err carries a fatal runtime error
func IsFatal(err error) bool {
	var rt *RuntimeError
	return errors.As(err, &rt) && rt.Fatal()
}

// Fatal terminates the process with exit status 1. Tests replace it.
var Fatal = func(err error) {
	log.Fatal("Runtime error", "error", err)
}
