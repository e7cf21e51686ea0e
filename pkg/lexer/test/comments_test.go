package lexer_test

import (
	"minivm/pkg/lexer"
	"testing"
)

func TestComments(t *testing.T) {
	input := `// leading comment
var x = 10; // trailing comment
// x = 0;
while (x > 0) { x = x - 1; }`

	expected := []lexer.TokenType{
		lexer.VAR, lexer.ID, lexer.ASSIGN, lexer.NUM, lexer.SEMICOLON,
		lexer.WHILE, lexer.LPAREN, lexer.ID, lexer.GT, lexer.NUM, lexer.RPAREN,
		lexer.LBRACE, lexer.ID, lexer.ASSIGN, lexer.ID, lexer.MINUS, lexer.NUM, lexer.SEMICOLON, lexer.RBRACE,
		lexer.EOF,
	}

	toks := lexer.NewLexer(input).Tokens()
	if len(toks) != len(expected) {
		t.Fatalf("expected %d tokens, got %d: %v", len(expected), len(toks), toks)
	}
	for i, want := range expected {
		if toks[i].Type != want {
			t.Errorf("token %d: expected %s, got %s", i, want, toks[i].Type)
		}
	}

	if pos := toks[0].Pos; pos.Line != 2 || pos.Column != 1 {
		t.Errorf("expected var at 2:1, got %s", pos)
	}
	if pos := toks[5].Pos; pos.Line != 4 || pos.Column != 1 {
		t.Errorf("expected while at 4:1, got %s", pos)
	}
}

func TestCommentAtEndOfInput(t *testing.T) {
	toks := lexer.NewLexer("var a; // no newline").Tokens()

	if n := len(toks); n != 4 || toks[n-1].Type != lexer.EOF {
		t.Errorf("expected var id ; EOF, got %v", toks)
	}
}
