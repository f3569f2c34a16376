package lexer

import "testing"

func types(toks []Token) []Type {
	out := make([]Type, len(toks))
	for i, t := range toks {
		out[i] = t.Type
	}
	return out
}

func assertTypes(t *testing.T, toks []Token, want []Type) {
	t.Helper()
	got := types(toks)
	if len(got) != len(want) {
		t.Fatalf("token count = %d, want %d\ngot:  %v\nwant: %v", len(got), len(want), got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token[%d] = %v, want %v\ngot:  %v\nwant: %v", i, got[i], want[i], got, want)
		}
	}
}

func TestTokenize_SimpleAssignment(t *testing.T) {
	toks, err := New("x = 1\n").Tokenize()
	if err != nil {
		t.Fatalf("Tokenize() error = %v", err)
	}
	assertTypes(t, toks, []Type{NAME, ASSIGN, NUMBER, NEWLINE, EOF})
}

func TestTokenize_IndentAndDedent(t *testing.T) {
	src := "if x:\n    y = 1\nz = 2\n"
	toks, err := New(src).Tokenize()
	if err != nil {
		t.Fatalf("Tokenize() error = %v", err)
	}
	assertTypes(t, toks, []Type{
		NAME, NAME, COLON, NEWLINE,
		INDENT, NAME, ASSIGN, NUMBER, NEWLINE,
		DEDENT, NAME, ASSIGN, NUMBER, NEWLINE,
		EOF,
	})
}

func TestTokenize_NestedIndentEmitsMultipleDedents(t *testing.T) {
	src := "if a:\n    if b:\n        x = 1\ny = 2\n"
	toks, err := New(src).Tokenize()
	if err != nil {
		t.Fatalf("Tokenize() error = %v", err)
	}
	dedents := 0
	for _, tok := range toks {
		if tok.Type == DEDENT {
			dedents++
		}
	}
	if dedents != 2 {
		t.Errorf("dedent count = %d, want 2", dedents)
	}
}

func TestTokenize_ParenSuppressesNewline(t *testing.T) {
	src := "x = foo(\n    1,\n    2,\n)\n"
	toks, err := New(src).Tokenize()
	if err != nil {
		t.Fatalf("Tokenize() error = %v", err)
	}
	newlines := 0
	for _, tok := range toks {
		if tok.Type == NEWLINE {
			newlines++
		}
	}
	if newlines != 1 {
		t.Errorf("newline count = %d, want 1 (newlines inside parens must be suppressed)", newlines)
	}
}

func TestTokenize_StringEscapes(t *testing.T) {
	toks, err := New(`x = "a\nb"` + "\n").Tokenize()
	if err != nil {
		t.Fatalf("Tokenize() error = %v", err)
	}
	var got string
	for _, tok := range toks {
		if tok.Type == STRING {
			got = tok.Value
		}
	}
	if got != "a\nb" {
		t.Errorf("string value = %q, want %q", got, "a\nb")
	}
}

func TestTokenize_UnterminatedStringErrors(t *testing.T) {
	if _, err := New(`x = "abc` + "\n").Tokenize(); err == nil {
		t.Fatal("Tokenize() succeeded on an unterminated string")
	}
}

func TestTokenize_InconsistentIndentationErrors(t *testing.T) {
	src := "if a:\n     x = 1\n   y = 2\n"
	if _, err := New(src).Tokenize(); err == nil {
		t.Fatal("Tokenize() succeeded on inconsistent indentation")
	}
}

func TestTokenize_TwoCharOperators(t *testing.T) {
	toks, err := New("a == b != c <= d >= e\n").Tokenize()
	if err != nil {
		t.Fatalf("Tokenize() error = %v", err)
	}
	assertTypes(t, toks, []Type{NAME, EQ, NAME, NEQ, NAME, LTE, NAME, GTE, NAME, NEWLINE, EOF})
}

func TestTokenize_FloatNumber(t *testing.T) {
	toks, err := New("x = 3.14\n").Tokenize()
	if err != nil {
		t.Fatalf("Tokenize() error = %v", err)
	}
	if toks[2].Type != NUMBER || toks[2].Value != "3.14" {
		t.Errorf("got %+v, want NUMBER 3.14", toks[2])
	}
}

func TestTokenize_TracksOffsetForVerbatimSlicing(t *testing.T) {
	src := "def run(self):\n    return 1\n"
	toks, err := New(src).Tokenize()
	if err != nil {
		t.Fatalf("Tokenize() error = %v", err)
	}
	for _, tok := range toks {
		if tok.Type == NAME && tok.Value == "return" {
			if src[tok.Offset:tok.Offset+len("return")] != "return" {
				t.Errorf("Offset %d does not point at the return keyword in source", tok.Offset)
			}
			return
		}
	}
	t.Fatal("did not find the return token")
}

func TestUnexpectedCharacterErrors(t *testing.T) {
	if _, err := New("x = 1 ~ 2\n").Tokenize(); err == nil {
		t.Fatal("Tokenize() succeeded on an unsupported operator character")
	}
}
