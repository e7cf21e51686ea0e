package parser

import (
	"fmt"
	"minivm/pkg/color"
	"minivm/pkg/lexer"
)

// SyntaxError is a parse error with the position of the offending token.
type SyntaxError struct {
	Msg string
	Pos lexer.Position
}

func (e SyntaxError) Error() string {
	return fmt.Sprintf("%s at line %d, column %d", e.Msg, e.Pos.Line, e.Pos.Column)
}

// Pretty renders the error for terminal output
func (e SyntaxError) Pretty() string {
	return color.RedText(e.Msg) + " at " + color.YellowText(fmt.Sprintf("Line: %d, Column %d", e.Pos.Line, e.Pos.Column))
}

// handleTerminalError is called when a terminal on the stack doesn't match current token.
func (p *Parser) handleTerminalError(expected string) {
	if p.currentToken.Type == lexer.ILLEGAL {
		p.addError(fmt.Sprintf("Illegal character '%s'", p.currentToken.Lexeme))
		return
	}

	// Heuristic: if we expected ';' but current token clearly starts a new statement,
	// closes a block, or ends input, report "Missing semicolon".
	if expected == ";" && p.isStatementBoundary(p.currentToken.Type) {
		p.addError("Missing semicolon")
		return
	}

	// `var = 42;`
	if expected == "id" && p.currentToken.Type == lexer.ASSIGN {
		p.addError("Missing identifier")
		return
	}

	p.addContextualError(expected)
}

// handleNonTerminalError is called when there is no production for top non-terminal and current token.
func (p *Parser) handleNonTerminalError(expected string) {
	if p.currentToken.Type == lexer.ILLEGAL {
		p.addError(fmt.Sprintf("Illegal character '%s'", p.currentToken.Lexeme))
		return
	}

	// Empty condition: if () or while ()
	if expected == "Expr" && p.currentToken.Type == lexer.RPAREN {
		p.addError("Empty condition")
		return
	}

	// `if (x > 1 {`
	if p.isExpressionTail(expected) && p.currentToken.Type == lexer.LBRACE {
		p.addError("Missing closing parenthesis")
		return
	}

	// An expression tail followed by something that starts a new statement is
	// most often a missing semicolon.
	if p.isExpressionTail(expected) && p.isStatementBoundary(p.currentToken.Type) {
		p.addError("Missing semicolon")
		return
	}

	p.addContextualError(expected)
}

// handleUnexpectedEndOfInput is called when the stack is exhausted but input remains
func (p *Parser) handleUnexpectedEndOfInput() {
	p.addError(fmt.Sprintf("Unexpected token '%s' at end of input", p.currentToken.Lexeme))
}

// addError records a parsing error with location
func (p *Parser) addError(msg string) {
	p.errors = append(p.errors, SyntaxError{Msg: msg, Pos: p.currentToken.Pos})
}

// Errors returns the list of parsing errors
func (p *Parser) Errors() []SyntaxError {
	return p.errors
}

// isExpressionTail checks if the non-terminal is part of an expression
func (p *Parser) isExpressionTail(sym string) bool {
	switch sym {
	case "Rel", "Sum'", "Term'":
		return true
	default:
		return false
	}
}

// isStatementBoundary checks if a token type indicates the start of a new statement or block boundary
func (p *Parser) isStatementBoundary(t lexer.TokenType) bool {
	switch t {
	case lexer.VAR, lexer.ID, lexer.IF, lexer.WHILE, lexer.FOR, lexer.ELSE, lexer.RBRACE, lexer.EOF:
		return true
	default:
		return false
	}
}

// addContextualError generates a contextual error message based on expected and current token
func (p *Parser) addContextualError(expected string) {
	p.addError(p.categorizeError(expected, p.currentToken))
}

// categorizeError provides a specific error message based on expected symbol and current token
func (p *Parser) categorizeError(expected string, current lexer.Token) string {
	switch expected {
	case ")":
		return "Missing closing parenthesis"
	case "}":
		return "Missing closing brace"
	case "{", "Block":
		return "Missing opening brace"
	case ";":
		return "Missing semicolon"
	case "=":
		return "Missing assignment operator"
	case "(":
		if current.Type == lexer.LBRACE {
			return "Wrong bracket type - expected parenthesis"
		}
		return "Missing opening parenthesis"
	}

	switch expected {
	case "id":
		if current.Type == lexer.SEMICOLON {
			return "Missing identifier"
		}
		if current.Type.Category() == lexer.KEYWORD {
			return "Cannot use reserved keyword as identifier"
		}
		return "Expected identifier"
	case "num":
		return "Expected number"
	}

	if (expected == "Expr" || expected == "Sum" || expected == "Term" || expected == "Factor") &&
		(current.Type == lexer.SEMICOLON || current.Type == lexer.RPAREN) {
		return "Missing expression"
	}

	if expected == "Stmt" || expected == "StmtList" || expected == "Program" {
		return fmt.Sprintf("Unexpected token '%s'", current.Lexeme)
	}

	return "Syntax error"
}
