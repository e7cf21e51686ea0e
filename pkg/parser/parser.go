package parser

import (
	"fmt"
	"minivm/pkg/ast"
	"minivm/pkg/lexer"
	"minivm/pkg/parser/stack"
	"strings"

	"github.com/charmbracelet/log"
)

type Parser struct {
	stack        *stack.Stack[string] // LL(1) parsing stack
	lexer        *lexer.Lexer         // lexer instance
	b            *builder             // tree builder driven by semantic actions
	currentToken lexer.Token          // current token
	table        ParsingTable         // LL(1) parsing table
	errors       []SyntaxError        // list of errors
}

// NewParser creates a new parser instance
func NewParser(l *lexer.Lexer) *Parser {
	p := &Parser{
		lexer:  l,
		b:      newBuilder(),
		table:  NewParsingTable(),
		stack:  stack.NewStack("$", "Program"), // Program is start state and $ is bottom of the stack
		errors: []SyntaxError{},
	}

	// Initialize current token
	p.nextToken()

	return p
}

// Parse starts parsing the input program. Parsing stops at the first error.
func (p *Parser) Parse() {
	for p.stack.Size() > 1 { // While stack is not empty (only $ remains)
		top, _ := p.stack.Pop()

		if p.isTerminal(top) {
			if p.isSemanticAction(top) {
				if err := p.b.execute(top); err != nil {
					p.addError(err.Error())
					return
				}
			} else if p.matchTerminal(top) {
				p.b.setCurrentToken(p.currentToken)
				p.nextToken()
			} else {
				p.handleTerminalError(top)
				return
			}
		} else {
			// Non-terminal: pick production from table
			if production, ok := p.table[top][p.currentToken.Type]; ok {
				rhsLength := len(production.RHS)
				if rhsLength == 0 || (rhsLength == 1 && production.RHS[0] == "ε") {
					continue
				}

				// Push RHS in reverse order so the first symbol is on top
				for i := rhsLength - 1; i >= 0; i-- {
					if production.RHS[i] != "ε" {
						p.stack.Push(production.RHS[i])
					}
				}
			} else {
				p.handleNonTerminalError(top)
				return
			}
		}
	}

	if p.currentToken.Type != lexer.EOF {
		p.handleUnexpectedEndOfInput()
	}
}

// nextToken advances to the next token from the lexer
func (p *Parser) nextToken() {
	p.currentToken = p.lexer.NextToken()
	if p.currentToken.Type == lexer.ILLEGAL {
		log.Debug("Illegal character", "char", p.currentToken.Lexeme, "line", p.currentToken.Pos.Line)
	}
}

// isSemanticAction checks if a symbol is a semantic action
func (p *Parser) isSemanticAction(symbol string) bool {
	return strings.HasPrefix(symbol, "@")
}

// Tree returns the parsed program as a Block node, or nil if parsing failed
func (p *Parser) Tree() *ast.Node {
	if len(p.errors) > 0 {
		return nil
	}
	return p.b.root
}

// ParseSource parses src and returns the program tree or the first syntax error
func ParseSource(src string) (*ast.Node, error) {
	p := NewParser(lexer.NewLexer(src))
	p.Parse()

	if errs := p.Errors(); len(errs) > 0 {
		return nil, fmt.Errorf("parsing failed with %d errors: %w", len(errs), errs[0])
	}

	return p.Tree(), nil
}
