package codegen

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownNode      = errors.New("unknown node kind")
	ErrUnknownOperator  = errors.New("unknown operator")
	ErrUnknownOperation = errors.New("unknown operation")
	ErrBadOperand       = errors.New("bad operand")
	ErrUnresolvedLabel  = errors.New("unresolved label")
	ErrDuplicateLabel   = errors.New("duplicate label")
	ErrBadImage         = errors.New("bad bytecode image")
)

// LinkError reports a jump or label the linker could not resolve.
type LinkError struct {
	Label int // label id
	Index int // instruction index of the offending jump or label
	Err   error
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("link: %v L%d at instruction %d", e.Err, e.Label, e.Index)
}

func (e *LinkError) Unwrap() error {
	return e.Err
}
