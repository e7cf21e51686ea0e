package lexer

// Lexer splits minivm source into tokens on demand.
type Lexer struct {
	src  string
	pos  Position // next unread byte
	prev Token    // last token returned
}

func NewLexer(src string) *Lexer {
	return &Lexer{src: src, pos: NewPosition(1, 1, 0)}
}

// NextToken returns the next token, EOF once the input is exhausted.
// A byte no pattern matches comes back alone as ILLEGAL.
func (l *Lexer) NextToken() Token {
	tok := l.scan()
	l.prev = tok
	return tok
}

// Tokens drains the lexer, the trailing EOF included
func (l *Lexer) Tokens() []Token {
	var toks []Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == EOF {
			return toks
		}
	}
}

func (l *Lexer) scan() Token {
	for {
		rest := l.src[l.pos.Offset:]
		start := l.pos
		if rest == "" {
			return NewToken(EOF, "", "", start)
		}

		tokenType, lexeme, matched := MatchToken(rest)
		if !matched {
			l.pos.advance(lexeme)
			return NewToken(ILLEGAL, lexeme, "", start)
		}
		if tokenType == EOF {
			// whitespace or comment
			l.pos.advance(lexeme)
			continue
		}

		// "-7" is one literal where an operand may start, so "x = -7" loads -7
		// while "x -7" stays a subtraction
		if tokenType == MINUS && l.operandExpected() {
			if t, digits, ok := MatchToken(rest[1:]); ok && t == NUM {
				tokenType, lexeme = NUM, "-"+digits
			}
		}

		l.pos.advance(lexeme)
		return NewToken(tokenType, lexeme, literal(tokenType, lexeme), start)
	}
}

func (l *Lexer) operandExpected() bool {
	switch l.prev.Type {
	case EOF, ASSIGN, LPAREN, SEMICOLON, LBRACE,
		PLUS, MINUS, MULT, DIV,
		LT, GT, LE, GE, EQ, NE:
		return true
	}
	return false
}

func literal(t TokenType, lexeme string) string {
	if t == NUM || t == ID {
		return lexeme
	}
	return ""
}
