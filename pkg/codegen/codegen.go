package codegen

import (
	"fmt"
	"minivm/pkg/ast"

	"github.com/charmbracelet/log"
)

// Sequence is a flat instruction list. Jumps name label ids until Link
// rewrites them into instruction indices and sets Linked.
type Sequence struct {
	Instructions []Instruction
	Labels       int // number of label ids allocated
	Linked       bool
}

// Len returns the number of instructions
func (s *Sequence) Len() int {
	return len(s.Instructions)
}

// At returns the instruction at index i
func (s *Sequence) At(i int) Instruction {
	return s.Instructions[i]
}

// Validate checks every instruction for a known operation and a matching operand
func (s *Sequence) Validate() error {
	for i, instr := range s.Instructions {
		if err := instr.validate(); err != nil {
			return fmt.Errorf("instruction %d: %w", i, err)
		}
	}
	return nil
}

type Codegen struct {
	pb           []Instruction // Program Block (list of IR instructions)
	labelCounter int           // Next fresh label id
}

// NewCodegen creates a new Codegen instance
func NewCodegen() *Codegen {
	return &Codegen{
		pb: make([]Instruction, 0),
	}
}

// Generate lowers a checked tree into an unlinked sequence ending in one HALT.
func Generate(root *ast.Node) (*Sequence, error) {
	return NewCodegen().Generate(root)
}

// Generate lowers a checked tree into an unlinked sequence ending in one HALT.
func (c *Codegen) Generate(root *ast.Node) (*Sequence, error) {
	c.pb = make([]Instruction, 0)
	c.labelCounter = 0

	if err := c.genStatements(root); err != nil {
		return nil, err
	}
	c.emit(Halt(0))

	log.Debug("Generated IR", "instructions", len(c.pb), "labels", c.labelCounter)
	return &Sequence{Instructions: c.pb, Labels: c.labelCounter}, nil
}

// emit appends an instruction to the program block
func (c *Codegen) emit(instr Instruction) {
	c.pb = append(c.pb, instr)
}

// newLabel allocates a fresh label id
func (c *Codegen) newLabel() int {
	id := c.labelCounter
	c.labelCounter++
	return id
}

func (c *Codegen) genStatements(n *ast.Node) error {
	for ; n != nil; n = n.Next {
		if err := c.genStatement(n); err != nil {
			return err
		}
	}
	return nil
}

func (c *Codegen) genStatement(n *ast.Node) error {
	switch n.Kind {
	case ast.Block:
		return c.genStatements(n.Left)

	case ast.VarDecl:
		if n.Right == nil {
			c.emit(LoadConst(0, n.Line))
		} else if err := c.genExpr(n.Right); err != nil {
			return err
		}
		c.emit(StoreVar(n.Name, n.Line))

	case ast.Assign:
		if err := c.genExpr(n.Right); err != nil {
			return err
		}
		c.emit(StoreVar(n.Left.Name, n.Line))

	case ast.If:
		elseLabel, endLabel := c.newLabel(), c.newLabel()
		if err := c.genExpr(n.Left); err != nil {
			return err
		}
		c.emit(JumpIfZero(elseLabel, n.Line))
		if err := c.genStatement(n.Right); err != nil {
			return err
		}
		c.emit(Jump(endLabel, n.Line))
		c.emit(Label(elseLabel, n.Line))
		if n.Third != nil {
			if err := c.genStatement(n.Third); err != nil {
				return err
			}
		}
		c.emit(Label(endLabel, n.Line))

	case ast.While:
		startLabel, endLabel := c.newLabel(), c.newLabel()
		c.emit(Label(startLabel, n.Line))
		if err := c.genExpr(n.Left); err != nil {
			return err
		}
		c.emit(JumpIfZero(endLabel, n.Line))
		if err := c.genStatement(n.Right); err != nil {
			return err
		}
		c.emit(Jump(startLabel, n.Line))
		c.emit(Label(endLabel, n.Line))

	case ast.For:
		startLabel, endLabel := c.newLabel(), c.newLabel()
		if n.Left != nil {
			if err := c.genStatement(n.Left); err != nil {
				return err
			}
		}
		c.emit(Label(startLabel, n.Line))
		if err := c.genExpr(n.Right); err != nil {
			return err
		}
		c.emit(JumpIfZero(endLabel, n.Line))
		if err := c.genStatement(n.Third); err != nil {
			return err
		}
		if n.Fourth != nil {
			if err := c.genStatement(n.Fourth); err != nil {
				return err
			}
		}
		c.emit(Jump(startLabel, n.Line))
		c.emit(Label(endLabel, n.Line))

	default:
		return fmt.Errorf("%w: %s as statement (line %d)", ErrUnknownNode, n.Kind, n.Line)
	}

	return nil
}

func (c *Codegen) genExpr(n *ast.Node) error {
	if n == nil {
		return fmt.Errorf("%w: missing expression", ErrUnknownNode)
	}

	switch n.Kind {
	case ast.IntLiteral:
		c.emit(LoadConst(n.Value, n.Line))

	case ast.Identifier:
		c.emit(LoadVar(n.Name, n.Line))

	case ast.BinOp:
		op, ok := GetOperation(n.Op)
		if !ok {
			return fmt.Errorf("%w: %q (line %d)", ErrUnknownOperator, n.Op, n.Line)
		}
		if err := c.genExpr(n.Left); err != nil {
			return err
		}
		if err := c.genExpr(n.Right); err != nil {
			return err
		}
		c.emit(Simple(op, n.Line))

	default:
		return fmt.Errorf("%w: %s as expression (line %d)", ErrUnknownNode, n.Kind, n.Line)
	}

	return nil
}
