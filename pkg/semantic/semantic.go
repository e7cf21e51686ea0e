package semantic

import (
	"minivm/pkg/ast"

	"github.com/charmbracelet/log"
)

// Checker validates declare-before-use and duplicate declarations.
// A Checker holds one symbol table; Check resets it on every call.
type Checker struct {
	symbolTable map[string]struct{} // declared variable names
}

// NewChecker creates a new Checker instance
func NewChecker() *Checker {
	return &Checker{
		symbolTable: make(map[string]struct{}),
	}
}

// Check walks the tree and returns the first semantic error, or nil.
func Check(root *ast.Node) error {
	return NewChecker().Check(root)
}

// Check walks the tree and returns the first semantic error, or nil.
func (c *Checker) Check(root *ast.Node) error {
	c.symbolTable = make(map[string]struct{})

	if err := c.walk(root); err != nil {
		log.Debug("Semantic check failed", "error", err)
		return err
	}

	log.Debug("Semantic check passed", "symbols", len(c.symbolTable))
	return nil
}

// Declared reports whether name was declared by the last Check call
func (c *Checker) Declared(name string) bool {
	_, ok := c.symbolTable[name]
	return ok
}

// walk visits the node, then left, right, third, fourth and next, failing fast.
func (c *Checker) walk(n *ast.Node) error {
	for ; n != nil; n = n.Next {
		switch n.Kind {
		case ast.VarDecl:
			if c.Declared(n.Name) {
				return newError(DuplicateDeclaration, n.Name, n.Line)
			}
			c.symbolTable[n.Name] = struct{}{}

		case ast.Assign:
			if n.Left != nil && n.Left.Kind == ast.Identifier && !c.Declared(n.Left.Name) {
				return newError(UndeclaredVariable, n.Left.Name, n.Left.Line)
			}

		case ast.Identifier:
			if !c.Declared(n.Name) {
				return newError(UndeclaredVariable, n.Name, n.Line)
			}
		}

		for _, child := range []*ast.Node{n.Left, n.Right, n.Third, n.Fourth} {
			if err := c.walk(child); err != nil {
				return err
			}
		}
	}

	return nil
}
