package semantic

import (
	"errors"
	"fmt"
	"minivm/pkg/color"
)

type Kind int

const (
	UndeclaredVariable Kind = iota + 1
	DuplicateDeclaration
)

var (
	ErrUndeclaredVariable   = errors.New("undeclared variable")
	ErrDuplicateDeclaration = errors.New("duplicate declaration")
)

func (k Kind) sentinel() error {
	switch k {
	case UndeclaredVariable:
		return ErrUndeclaredVariable
	case DuplicateDeclaration:
		return ErrDuplicateDeclaration
	default:
		return nil
	}
}

func (k Kind) String() string {
	switch k {
	case UndeclaredVariable:
		return "UndeclaredVariable"
	case DuplicateDeclaration:
		return "DuplicateDeclaration"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is a semantic failure naming the offending variable.
type Error struct {
	Kind Kind
	Name string
	Line int
}

func newError(kind Kind, name string, line int) *Error {
	return &Error{Kind: kind, Name: name, Line: line}
}

func (e *Error) Error() string {
	switch e.Kind {
	case DuplicateDeclaration:
		return fmt.Sprintf("variable '%s' already declared (line %d)", e.Name, e.Line)
	default:
		return fmt.Sprintf("variable '%s' not declared (line %d)", e.Name, e.Line)
	}
}

func (e *Error) Unwrap() error {
	return e.Kind.sentinel()
}

// Pretty renders the error for terminal output
func (e *Error) Pretty() string {
	msg := "Undefined variable"
	if e.Kind == DuplicateDeclaration {
		msg = "Redeclaration of variable"
	}
	return color.RedText(msg) + " `" + color.BlueText(e.Name) + "`" +
		" at " + color.YellowText(fmt.Sprintf("Line: %d", e.Line))
}
