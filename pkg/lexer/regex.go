package lexer

import (
	"regexp"
)

var tokenRegexes = map[TokenType]*regexp.Regexp{
	LE: regexp.MustCompile(`^<=`),
	GE: regexp.MustCompile(`^>=`),
	EQ: regexp.MustCompile(`^==`),
	NE: regexp.MustCompile(`^!=`),

	VAR:   regexp.MustCompile(`^var\b`),
	IF:    regexp.MustCompile(`^if\b`),
	ELSE:  regexp.MustCompile(`^else\b`),
	WHILE: regexp.MustCompile(`^while\b`),
	FOR:   regexp.MustCompile(`^for\b`),

	ASSIGN: regexp.MustCompile(`^=`),
	PLUS:   regexp.MustCompile(`^\+`),
	MINUS:  regexp.MustCompile(`^-`),
	MULT:   regexp.MustCompile(`^\*`),
	DIV:    regexp.MustCompile(`^/`),
	LT:     regexp.MustCompile(`^<`),
	GT:     regexp.MustCompile(`^>`),

	SEMICOLON: regexp.MustCompile(`^;`),
	LPAREN:    regexp.MustCompile(`^\(`),
	RPAREN:    regexp.MustCompile(`^\)`),
	LBRACE:    regexp.MustCompile(`^\{`),
	RBRACE:    regexp.MustCompile(`^\}`),

	NUM: regexp.MustCompile(`^\d+\b`),
	ID:  regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*`),
}

// trivia is skipped between tokens
var trivia = regexp.MustCompile(`^(\s+|//.*)`)

// Keywords before identifiers, two-char operators before one-char ones
var matchOrder = []TokenType{
	WHILE, ELSE, VAR, FOR, IF,
	LE, GE, EQ, NE, ASSIGN, PLUS, MINUS, MULT, DIV, LT, GT,
	SEMICOLON, LPAREN, RPAREN, LBRACE, RBRACE,
	NUM, ID,
}

// MatchToken matches the first token at the start of s. Whitespace and
// comments come back as EOF with a non-empty lexeme so the caller can skip
// them; an unmatched byte comes back as ILLEGAL with matched false.
func MatchToken(s string) (TokenType, string, bool) {
	if s == "" {
		return EOF, "", false
	}
	if match := trivia.FindString(s); match != "" {
		return EOF, match, true
	}

	for _, t := range matchOrder {
		if match := tokenRegexes[t].FindString(s); match != "" {
			return t, match, true
		}
	}

	return ILLEGAL, s[:1], false
}
