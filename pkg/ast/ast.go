package ast

import (
	"fmt"
	"strings"
)

type Kind int

const (
	Block Kind = iota
	VarDecl
	Assign
	BinOp
	IntLiteral
	Identifier
	If
	While
	For
)

var kindNames = [...]string{
	Block:      "Block",
	VarDecl:    "VarDecl",
	Assign:     "Assign",
	BinOp:      "BinOp",
	IntLiteral: "IntLiteral",
	Identifier: "Identifier",
	If:         "If",
	While:      "While",
	For:        "For",
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Node is one tree node. Child slots by kind:
//
//	Block       Left = first statement
//	VarDecl     Name, Right = initializer (may be nil)
//	Assign      Left = Identifier target, Right = value
//	BinOp       Op, Left, Right
//	IntLiteral  Value
//	Identifier  Name
//	If          Left = condition, Right = then, Third = else (may be nil)
//	While       Left = condition, Right = body
//	For         Left = init, Right = condition, Third = body, Fourth = step (init and step may be nil)
//
// Next links statements of the same list.
type Node struct {
	Kind Kind

	Left   *Node
	Right  *Node
	Third  *Node
	Fourth *Node
	Next   *Node

	Name  string
	Value int64
	Op    string
	Line  int
}

func NewInt(value int64, line int) *Node {
	return &Node{Kind: IntLiteral, Value: value, Line: line}
}

func NewIdent(name string, line int) *Node {
	return &Node{Kind: Identifier, Name: name, Line: line}
}

func NewBinOp(op string, left, right *Node) *Node {
	return &Node{Kind: BinOp, Op: op, Left: left, Right: right, Line: left.Line}
}

func NewAssign(target, value *Node) *Node {
	return &Node{Kind: Assign, Left: target, Right: value, Line: target.Line}
}

func NewVarDecl(name string, init *Node, line int) *Node {
	return &Node{Kind: VarDecl, Name: name, Right: init, Line: line}
}

func NewIf(cond, then, els *Node) *Node {
	return &Node{Kind: If, Left: cond, Right: then, Third: els, Line: cond.Line}
}

func NewWhile(cond, body *Node) *Node {
	return &Node{Kind: While, Left: cond, Right: body, Line: cond.Line}
}

func NewFor(init, cond, step, body *Node) *Node {
	return &Node{Kind: For, Left: init, Right: cond, Third: body, Fourth: step, Line: cond.Line}
}

// NewBlock wraps a statement list, linking the statements through Next.
func NewBlock(stmts []*Node, line int) *Node {
	b := &Node{Kind: Block, Line: line}
	b.Left = Link(stmts)
	return b
}

// Link chains nodes through Next and returns the head.
func Link(stmts []*Node) *Node {
	var head, tail *Node
	for _, s := range stmts {
		if s == nil {
			continue
		}
		if head == nil {
			head = s
		} else {
			tail.Next = s
		}
		tail = s
	}
	return head
}

// Statements returns the statement list starting at n.
func Statements(n *Node) []*Node {
	var out []*Node
	for ; n != nil; n = n.Next {
		out = append(out, n)
	}
	return out
}

// String renders the tree in an indented debug form.
func (n *Node) String() string {
	var sb strings.Builder
	n.write(&sb, 0)
	return sb.String()
}

func (n *Node) write(sb *strings.Builder, indent int) {
	for ; n != nil; n = n.Next {
		sb.WriteString(strings.Repeat("  ", indent))
		sb.WriteString(n.Kind.String())
		switch n.Kind {
		case VarDecl, Identifier:
			fmt.Fprintf(sb, " %s", n.Name)
		case IntLiteral:
			fmt.Fprintf(sb, " %d", n.Value)
		case BinOp:
			fmt.Fprintf(sb, " %s", n.Op)
		}
		fmt.Fprintf(sb, " (L%d)\n", n.Line)

		for _, child := range []*Node{n.Left, n.Right, n.Third, n.Fourth} {
			if child != nil {
				child.write(sb, indent+1)
			}
		}
	}
}
