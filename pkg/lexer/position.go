package lexer

import "fmt"

// Position locates a byte of the source. Line and Column start at 1.
type Position struct {
	Line   int
	Column int
	Offset int
}

func NewPosition(line, column, offset int) Position {
	return Position{Line: line, Column: column, Offset: offset}
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// advance moves the position past text
func (p *Position) advance(text string) {
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			p.Line++
			p.Column = 1
		} else {
			p.Column++
		}
	}
	p.Offset += len(text)
}
