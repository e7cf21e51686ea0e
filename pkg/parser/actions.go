package parser

import (
	"errors"
	"fmt"
	"minivm/pkg/ast"
	"minivm/pkg/lexer"
	"minivm/pkg/parser/stack"
	"strconv"

	"github.com/charmbracelet/log"
)

var errMalformed = errors.New("malformed tree")

// builder assembles the tree while the parser runs. Semantic actions pop their
// operands from the node stack and push the node they build.
type builder struct {
	nodes        *stack.Stack[*ast.Node]   // semantic stack
	names        *stack.Stack[lexer.Token] // captured identifiers (declaration and assignment targets)
	ops          *stack.Stack[lexer.Token] // captured relational operators
	blocks       *stack.Stack[blockMark]   // open blocks
	currentToken lexer.Token               // last matched token
	root         *ast.Node
}

type blockMark struct {
	depth int // node stack depth when the block opened
	line  int
}

func newBuilder() *builder {
	return &builder{
		nodes:  stack.NewStack[*ast.Node](),
		names:  stack.NewStack[lexer.Token](),
		ops:    stack.NewStack[lexer.Token](),
		blocks: stack.NewStack[blockMark](),
	}
}

// setCurrentToken sets the token most recently matched by the parser
func (b *builder) setCurrentToken(token lexer.Token) {
	b.currentToken = token
}

// execute dispatches a semantic action symbol
func (b *builder) execute(action string) error {
	switch action {
	case "@program":
		return b.programAction()
	case "@name":
		b.names.Push(b.currentToken)
	case "@no_init", "@no_else":
		b.nodes.Push(nil)
	case "@var_decl":
		return b.varDeclAction()
	case "@assign":
		return b.assignAction()
	case "@int":
		return b.intAction()
	case "@ident":
		b.nodes.Push(ast.NewIdent(b.currentToken.Literal, b.currentToken.Pos.Line))
	case "@add":
		return b.binaryAction("+")
	case "@sub":
		return b.binaryAction("-")
	case "@mul":
		return b.binaryAction("*")
	case "@div":
		return b.binaryAction("/")
	case "@op":
		b.ops.Push(b.currentToken)
	case "@binop":
		op, ok := b.ops.Pop()
		if !ok {
			return fmt.Errorf("%w: relational operator missing", errMalformed)
		}
		return b.binaryAction(op.Lexeme)
	case "@neg":
		return b.negAction()
	case "@block_start":
		b.blocks.Push(blockMark{depth: b.nodes.Size(), line: b.currentToken.Pos.Line})
	case "@block_end":
		return b.blockEndAction()
	case "@if":
		return b.ifAction()
	case "@while":
		return b.whileAction()
	case "@for":
		return b.forAction()
	default:
		log.Error("Unknown semantic action", "action", action)
		return fmt.Errorf("%w: unknown action %s", errMalformed, action)
	}

	return nil
}

// popNodes pops n entries and returns them in push order; nil entries are allowed
func (b *builder) popNodes(n int) ([]*ast.Node, error) {
	if b.nodes.Size() < n {
		return nil, fmt.Errorf("%w: expected %d nodes, have %d", errMalformed, n, b.nodes.Size())
	}

	return b.nodes.Truncate(b.nodes.Size() - n), nil
}

func (b *builder) programAction() error {
	if b.blocks.Size() != 0 {
		return fmt.Errorf("%w: unclosed block", errMalformed)
	}

	b.root = ast.NewBlock(b.nodes.Truncate(0), 1)
	log.Debug("Parsed program", "statements", len(ast.Statements(b.root.Left)))

	return nil
}

func (b *builder) varDeclAction() error {
	name, ok := b.names.Pop()
	if !ok {
		return fmt.Errorf("%w: declaration without a name", errMalformed)
	}

	n, err := b.popNodes(1)
	if err != nil {
		return err
	}

	b.nodes.Push(ast.NewVarDecl(name.Literal, n[0], name.Pos.Line))
	return nil
}

func (b *builder) assignAction() error {
	name, ok := b.names.Pop()
	if !ok {
		return fmt.Errorf("%w: assignment without a target", errMalformed)
	}

	n, err := b.popNodes(1)
	if err != nil {
		return err
	}
	if n[0] == nil {
		return fmt.Errorf("%w: assignment without a value", errMalformed)
	}

	b.nodes.Push(ast.NewAssign(ast.NewIdent(name.Literal, name.Pos.Line), n[0]))
	return nil
}

func (b *builder) intAction() error {
	v, err := strconv.ParseInt(b.currentToken.Literal, 10, 64)
	if err != nil {
		return fmt.Errorf("Invalid integer literal '%s'", b.currentToken.Lexeme)
	}

	b.nodes.Push(ast.NewInt(v, b.currentToken.Pos.Line))
	return nil
}

func (b *builder) binaryAction(op string) error {
	n, err := b.popNodes(2)
	if err != nil {
		return err
	}
	if n[0] == nil || n[1] == nil {
		return fmt.Errorf("%w: operand missing for %s", errMalformed, op)
	}

	b.nodes.Push(ast.NewBinOp(op, n[0], n[1]))
	return nil
}

// negAction lowers unary minus to 0 - x
func (b *builder) negAction() error {
	n, err := b.popNodes(1)
	if err != nil {
		return err
	}
	if n[0] == nil {
		return fmt.Errorf("%w: operand missing for unary -", errMalformed)
	}

	b.nodes.Push(ast.NewBinOp("-", ast.NewInt(0, n[0].Line), n[0]))
	return nil
}

func (b *builder) blockEndAction() error {
	mark, ok := b.blocks.Pop()
	if !ok {
		return fmt.Errorf("%w: block end without start", errMalformed)
	}

	b.nodes.Push(ast.NewBlock(b.nodes.Truncate(mark.depth), mark.line))
	return nil
}

func (b *builder) ifAction() error {
	n, err := b.popNodes(3)
	if err != nil {
		return err
	}

	b.nodes.Push(ast.NewIf(n[0], n[1], n[2]))
	return nil
}

func (b *builder) whileAction() error {
	n, err := b.popNodes(2)
	if err != nil {
		return err
	}

	b.nodes.Push(ast.NewWhile(n[0], n[1]))
	return nil
}

func (b *builder) forAction() error {
	// init, cond, step, body
	n, err := b.popNodes(4)
	if err != nil {
		return err
	}

	b.nodes.Push(ast.NewFor(n[0], n[1], n[2], n[3]))
	return nil
}
