package lexer

import (
	"fmt"
)

type TokenType int

// Token is one lexeme of the source. Literal is set for identifiers and
// numbers only.
type Token struct {
	Type    TokenType
	Lexeme  string
	Literal string
	Pos     Position
}

func NewToken(tokenType TokenType, lexeme, literal string, pos Position) Token {
	return Token{Type: tokenType, Lexeme: lexeme, Literal: literal, Pos: pos}
}

const (
	EOF TokenType = iota

	VAR
	IF
	ELSE
	WHILE
	FOR

	ID
	NUM

	ASSIGN
	PLUS
	MINUS
	MULT
	DIV
	LT
	GT
	LE
	GE
	EQ
	NE

	SEMICOLON
	LPAREN
	RPAREN
	LBRACE
	RBRACE

	ILLEGAL
)

type Category int

const (
	NONE Category = iota
	KEYWORD
	IDENTIFIER
	LITERAL
	OPERATOR
	DELIMITER
)

// symbols holds the grammar spelling of each token type, the one the parse
// table is written in
var symbols = [...]struct {
	name string
	cat  Category
}{
	EOF: {"$", NONE},

	VAR:   {"var", KEYWORD},
	IF:    {"if", KEYWORD},
	ELSE:  {"else", KEYWORD},
	WHILE: {"while", KEYWORD},
	FOR:   {"for", KEYWORD},

	ID:  {"id", IDENTIFIER},
	NUM: {"num", LITERAL},

	ASSIGN: {"=", OPERATOR},
	PLUS:   {"+", OPERATOR},
	MINUS:  {"-", OPERATOR},
	MULT:   {"*", OPERATOR},
	DIV:    {"/", OPERATOR},
	LT:     {"<", OPERATOR},
	GT:     {">", OPERATOR},
	LE:     {"<=", OPERATOR},
	GE:     {">=", OPERATOR},
	EQ:     {"==", OPERATOR},
	NE:     {"!=", OPERATOR},

	SEMICOLON: {";", DELIMITER},
	LPAREN:    {"(", DELIMITER},
	RPAREN:    {")", DELIMITER},
	LBRACE:    {"{", DELIMITER},
	RBRACE:    {"}", DELIMITER},
}

func (t TokenType) valid() bool {
	return t >= 0 && int(t) < len(symbols)
}

func (t TokenType) String() string {
	switch {
	case t.valid():
		return symbols[t].name
	case t == ILLEGAL:
		return "ILLEGAL"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(t))
	}
}

func (t TokenType) Category() Category {
	if !t.valid() {
		return NONE
	}
	return symbols[t].cat
}

func (t Token) String() string {
	if t.Literal == "" {
		return fmt.Sprintf("%s %q at %s", t.Type, t.Lexeme, t.Pos)
	}
	return fmt.Sprintf("%s(%s) at %s", t.Type, t.Literal, t.Pos)
}
