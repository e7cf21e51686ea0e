package parser

import (
	"minivm/pkg/lexer"
)

// terminals maps the grammar spelling of each token type back to it
var terminals = func() map[string]lexer.TokenType {
	m := make(map[string]lexer.TokenType)
	for t := lexer.EOF; t < lexer.ILLEGAL; t++ {
		m[t.String()] = t
	}
	return m
}()

// isTerminal checks if a symbol is a terminal. Semantic actions count as
// terminals since they never expand.
func (p *Parser) isTerminal(symbol string) bool {
	_, ok := terminals[symbol]
	return ok || p.isSemanticAction(symbol)
}

// matchTerminal checks if the current token matches the expected terminal
func (p *Parser) matchTerminal(expected string) bool {
	t, ok := terminals[expected]
	return ok && t == p.currentToken.Type
}
