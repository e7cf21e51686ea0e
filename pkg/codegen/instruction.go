package codegen

import (
	"fmt"
)

type Operation string

// List of IR operations
const (
	OpLoadConst  Operation = "LOAD_CONST"
	OpLoadVar    Operation = "LOAD_VAR"
	OpStoreVar   Operation = "STORE_VAR"
	OpAdd        Operation = "ADD"
	OpSub        Operation = "SUB"
	OpMul        Operation = "MUL"
	OpDiv        Operation = "DIV"
	OpEq         Operation = "EQ"
	OpNe         Operation = "NE"
	OpLt         Operation = "LT"
	OpGt         Operation = "GT"
	OpLe         Operation = "LE"
	OpGe         Operation = "GE"
	OpJump       Operation = "JMP"
	OpJumpIfZero Operation = "JZ"
	OpLabel      Operation = "LABEL"
	OpHalt       Operation = "HALT"
)

// Operand is the single argument an instruction may carry: IntOperand or NameOperand.
type Operand interface {
	isOperand()
}

// IntOperand is a constant (LOAD_CONST), a label id (LABEL, and jumps before
// linking) or an instruction index (jumps after linking).
type IntOperand int64

// NameOperand is a variable name (LOAD_VAR, STORE_VAR).
type NameOperand string

func (IntOperand) isOperand()  {}
func (NameOperand) isOperand() {}

type Instruction struct {
	Op   Operation
	Arg  Operand // nil for operators and HALT
	Line int     // originating source line
}

// Int returns the integer operand
func (i Instruction) Int() (int64, bool) {
	v, ok := i.Arg.(IntOperand)
	return int64(v), ok
}

// Name returns the name operand
func (i Instruction) Name() (string, bool) {
	v, ok := i.Arg.(NameOperand)
	return string(v), ok
}

// IsJump reports whether the instruction carries a jump target
func (i Instruction) IsJump() bool {
	return i.Op == OpJump || i.Op == OpJumpIfZero
}

// String returns a string representation of the instruction
func (i Instruction) String() string {
	switch i.Op {
	case OpLabel:
		id, _ := i.Int()
		return fmt.Sprintf("L%d:", id)
	case OpLoadConst, OpJump, OpJumpIfZero:
		v, _ := i.Int()
		return fmt.Sprintf("%s %d", i.Op, v)
	case OpLoadVar, OpStoreVar:
		name, _ := i.Name()
		return fmt.Sprintf("%s %s", i.Op, name)
	default:
		return string(i.Op)
	}
}

func LoadConst(v int64, line int) Instruction {
	return Instruction{Op: OpLoadConst, Arg: IntOperand(v), Line: line}
}

func LoadVar(name string, line int) Instruction {
	return Instruction{Op: OpLoadVar, Arg: NameOperand(name), Line: line}
}

func StoreVar(name string, line int) Instruction {
	return Instruction{Op: OpStoreVar, Arg: NameOperand(name), Line: line}
}

func Jump(target int, line int) Instruction {
	return Instruction{Op: OpJump, Arg: IntOperand(target), Line: line}
}

func JumpIfZero(target int, line int) Instruction {
	return Instruction{Op: OpJumpIfZero, Arg: IntOperand(target), Line: line}
}

func Label(id int, line int) Instruction {
	return Instruction{Op: OpLabel, Arg: IntOperand(id), Line: line}
}

func Halt(line int) Instruction {
	return Instruction{Op: OpHalt, Line: line}
}

// Simple builds an operator instruction without operand
func Simple(op Operation, line int) Instruction {
	return Instruction{Op: op, Line: line}
}

// GetOperation maps a source operator to an IR operation
func GetOperation(op string) (Operation, bool) {
	switch op {
	case "+":
		return OpAdd, true
	case "-":
		return OpSub, true
	case "*":
		return OpMul, true
	case "/":
		return OpDiv, true
	case "==":
		return OpEq, true
	case "!=":
		return OpNe, true
	case "<":
		return OpLt, true
	case ">":
		return OpGt, true
	case "<=":
		return OpLe, true
	case ">=":
		return OpGe, true
	default:
		return "", false
	}
}

// operandKind describes which operand an operation requires
type operandKind int

const (
	noOperand operandKind = iota
	intOperand
	nameOperand
)

var operations = map[Operation]operandKind{
	OpLoadConst:  intOperand,
	OpLoadVar:    nameOperand,
	OpStoreVar:   nameOperand,
	OpAdd:        noOperand,
	OpSub:        noOperand,
	OpMul:        noOperand,
	OpDiv:        noOperand,
	OpEq:         noOperand,
	OpNe:         noOperand,
	OpLt:         noOperand,
	OpGt:         noOperand,
	OpLe:         noOperand,
	OpGe:         noOperand,
	OpJump:       intOperand,
	OpJumpIfZero: intOperand,
	OpLabel:      intOperand,
	OpHalt:       noOperand,
}

// Valid reports whether op is a known operation
func (op Operation) Valid() bool {
	_, ok := operations[op]
	return ok
}

// validate checks that the instruction carries exactly the operand its operation needs
func (i Instruction) validate() error {
	kind, ok := operations[i.Op]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownOperation, i.Op)
	}

	switch kind {
	case intOperand:
		if _, ok := i.Arg.(IntOperand); !ok {
			return fmt.Errorf("%w: %s needs an integer operand", ErrBadOperand, i.Op)
		}
	case nameOperand:
		if name, ok := i.Arg.(NameOperand); !ok || name == "" {
			return fmt.Errorf("%w: %s needs a name operand", ErrBadOperand, i.Op)
		}
	default:
		if i.Arg != nil {
			return fmt.Errorf("%w: %s takes no operand", ErrBadOperand, i.Op)
		}
	}

	return nil
}
