package token

import "testing"

func toks(kinds ...Kind) []Token {
	out := make([]Token, len(kinds))
	for i, k := range kinds {
		out[i] = Token{Kind: k}
	}
	return out
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name  string
		input []Token
		want  int
	}{
		{"no operator", toks(IDENT, TEXT), -1},
		{"empty", nil, -1},
		{"assign over arrow", toks(IDENT, ASSIGN, TEXT, ARROW, ADDRESS), 1},
		{"arrow over plus", toks(TEXT, PLUS, TEXT, ARROW, ADDRESS), 3},
		{"plus is left-assoc", toks(TEXT, PLUS, TEXT, PLUS, TEXT), 1},
		{"pipe is right-assoc", toks(IDENT, PIPE, IDENT, PIPE, IDENT), 3},
		{"index is postfix and right-assoc", toks(IDENT, INDEX, SLICE), 2},
		{"pipe over index", toks(IDENT, INDEX, PIPE, IDENT), 2},
		{"receive binds tightest", toks(RECEIVE, IDENT, INDEX), 2},
		{"plus over pipe", toks(RECEIVE, IDENT, PLUS, IDENT, PIPE, IDENT), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Split(tt.input); got != tt.want {
				t.Errorf("expected split at %d, got %d", tt.want, got)
			}
		})
	}
}

func TestKeyword(t *testing.T) {
	for word, want := range map[string]Kind{"if": IF, "elif": ELIF, "else": ELSE, "iff": IDENT, "x": IDENT} {
		if got := Keyword(word); got != want {
			t.Errorf("Keyword(%q): expected %s, got %s", word, want, got)
		}
	}
}

func TestQuote(t *testing.T) {
	tests := map[string]string{
		`plain`:      `"plain"`,
		`say "hi"`:   `"say \"hi\""`,
		"a\nb\tc":    `"a\nb\tc"`,
		`back\slash`: `"back\\slash"`,
	}
	for in, want := range tests {
		if got := Quote(in); got != want {
			t.Errorf("Quote(%q): expected %s, got %s", in, want, got)
		}
	}
}

func TestFormat(t *testing.T) {
	tree := []Token{
		{Kind: IDENT, Text: "x"},
		{Kind: ASSIGN},
		{Kind: PARENS, Block: []Token{{Kind: TEXT, Text: "a"}, {Kind: COMMA}, {Kind: RECEIVE}, {Kind: IDENT, Text: "y"}}},
		{Kind: SLICE, Start: []Token{{Kind: IDENT, Text: "1"}}},
		{Kind: ARROW},
		{Kind: ADDRESS, Name: []Token{{Kind: IDENT, Text: "io"}}, Server: []Token{{Kind: IDENT, Text: "std.com"}}},
		{Kind: SEMICOLON},
	}
	want := `x = ("a" , @ y) [1:] > <io@std.com> ;`
	if got := Format(tree); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestPos(t *testing.T) {
	if !EOF.IsEOF() {
		t.Error("expected EOF to be end of input")
	}
	if got := EOF.String(); got != "end of input" {
		t.Errorf("expected 'end of input', got %q", got)
	}
	if got := (Pos{Line: 3, Column: 7}).String(); got != "3:7" {
		t.Errorf("expected '3:7', got %q", got)
	}
}
