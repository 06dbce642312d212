package parser

import (
	"errors"
	"testing"

	"nickandperla.net/epistle/internal/diag"
	"nickandperla.net/epistle/internal/expr"
)

func parseOne(t *testing.T, src string) expr.Instruction {
	t.Helper()
	prog, err := ParseString(src, "test")
	if err != nil {
		t.Fatalf("ParseString(%q) error: %v", src, err)
	}
	if len(prog) != 1 {
		t.Fatalf("ParseString(%q): expected one instruction, got %d", src, len(prog))
	}
	return prog[0]
}

func TestParsePrecedence(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`x = "a" + "b";`, `x = (a + b)`},
		{`"s" + @x > <u@s>;`, `(s + (@x)) > <u@s>`},
		{`r = "s" > <u@s>;`, `r = (s > <u@s>)`},
		{`x = @y[0];`, `x = ((@y)[0])`},
		{`x = @y[1:][0];`, `x = (((@y)[1:])[0])`},
		{`x = @y | upper | lower;`, `x = (((@y) | upper) | lower)`},
		{`x = @a + @b | upper;`, `x = ((@a) + ((@b) | upper))`},
		{`x = @(@key);`, `x = (@(@key))`},
		{`(a, b) = ("1", "2");`, `("a", "b") = ("1", "2")`},
	}
	for _, tt := range tests {
		if got := parseOne(t, tt.input).String(); got != tt.want {
			t.Errorf("%s: expected %s, got %s", tt.input, tt.want, got)
		}
	}
}

func TestParseTuples(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`x = ();`, `x = ()`},
		{`x = ("a",);`, `x = ("a",)`},
		{`x = ("a");`, `x = a`},
		{`x = ("a", ("b", "c"));`, `x = ("a", ("b", "c"))`},
		{`x = ("a" + "b", @c);`, `x = ((a + b), (@c))`},
	}
	for _, tt := range tests {
		got := parseOne(t, tt.input).String()
		if got != tt.want {
			t.Errorf("%s: expected %s, got %s", tt.input, tt.want, got)
		}
	}
}

func TestParsePipeSugar(t *testing.T) {
	in := parseOne(t, `x = @y | split(",");`)
	assign, ok := in.(expr.Assign)
	if !ok {
		t.Fatalf("expected Assign, got %T", in)
	}
	pipe, ok := assign.Operand.(expr.Expression).Instr.(expr.Pipe)
	if !ok {
		t.Fatalf("expected Pipe, got %T", assign.Operand)
	}
	mod, ok := pipe.Modifier.(expr.Tuple)
	if !ok || len(mod.Items) != 2 || mod.Items[0].String() != `"split"` || mod.Items[1].String() != `","` {
		t.Errorf("expected (split, \",\"), got %s", pipe.Modifier)
	}

	in = parseOne(t, `x = @y | trim();`)
	mod, ok = in.(expr.Assign).Operand.(expr.Expression).Instr.(expr.Pipe).Modifier.(expr.Tuple)
	if !ok || len(mod.Items) != 1 {
		t.Errorf("expected (trim,), got %v", mod)
	}
}

func TestParseDefinitions(t *testing.T) {
	srv, ok := parseOne(t, `!example.com;`).(expr.CreateServer)
	if !ok || srv.Name.String() != `"example.com"` {
		t.Errorf("expected CreateServer example.com, got %v", srv)
	}

	bare, ok := parseOne(t, `!<bob@example.com>;`).(expr.CreateUser)
	if !ok || len(bare.Reactions) != 0 {
		t.Errorf("expected user without reactions, got %v", bare)
	}

	user, ok := parseOne(t, `!<bob@example.com> { "^hi" { x = "1"; }; "*" {}; };`).(expr.CreateUser)
	if !ok {
		t.Fatal("expected CreateUser")
	}
	if len(user.Reactions) != 2 {
		t.Fatalf("expected two reactions, got %d", len(user.Reactions))
	}
	if user.Reactions[0].Pattern != "^hi" || len(user.Reactions[0].Body) != 1 {
		t.Errorf("unexpected first reaction: %s", user.Reactions[0])
	}
	if user.Reactions[1].Pattern != expr.CatchAll || len(user.Reactions[1].Body) != 0 {
		t.Errorf("unexpected second reaction: %s", user.Reactions[1])
	}

	named, ok := parseOne(t, `!@srv + ".com";`).(expr.CreateServer)
	if !ok {
		t.Fatal("expected CreateServer for a computed name")
	}
	if _, ok := named.Name.(expr.Expression); !ok {
		t.Errorf("expected computed server name, got %T", named.Name)
	}

	computed, ok := parseOne(t, `!<(@name)@(@srv)>;`).(expr.CreateUser)
	if !ok {
		t.Fatal("expected CreateUser")
	}
	if _, ok := computed.Name.(expr.Expression); !ok {
		t.Errorf("expected computed user name, got %T", computed.Name)
	}
}

func TestParseIfChain(t *testing.T) {
	in := parseOne(t, `if @a { x = "1"; } elif @b { x = "2"; } else { x = "3"; };`)
	chain, ok := in.(expr.Conditional)
	if !ok {
		t.Fatalf("expected Conditional, got %T", in)
	}
	if len(chain.Branches) != 3 {
		t.Fatalf("expected 3 branches, got %d", len(chain.Branches))
	}
	if chain.Branches[2].Cond != nil {
		t.Error("expected else branch to have no condition")
	}
	single := parseOne(t, `if "1" {};`).(expr.Conditional)
	if len(single.Branches) != 1 {
		t.Errorf("expected 1 branch, got %d", len(single.Branches))
	}
}

func TestParseStatements(t *testing.T) {
	prog, err := ParseString(`x = "1";; ("s" > <u@s>); y = "2";`, "test")
	if err != nil {
		t.Fatalf("ParseString error: %v", err)
	}
	if len(prog) != 3 {
		t.Fatalf("expected 3 instructions, got %d", len(prog))
	}
	if _, ok := prog[1].(expr.MailTo); !ok {
		t.Errorf("expected parenthesized statement to be MailTo, got %T", prog[1])
	}

	prog, err = ParseString("# only a comment\n", "test")
	if err != nil || len(prog) != 0 {
		t.Errorf("expected empty program, got %v (%v)", prog, err)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		input string
		kind  diag.SyntaxKind
	}{
		{`x = "a"`, diag.ExpectedSemicolon},
		{`"a";`, diag.ExpectedExpression},
		{`("a");`, diag.ExpectedExpression},
		{`x = "a" "b";`, diag.BadExpression},
		{`x = ;`, diag.BadExpression},
		{`x = {};`, diag.BadExpression},
		{`@ ;`, diag.BadExpression},
		{`x = a @ b;`, diag.BadExpression},
		{`x = @y[0] z;`, diag.BadExpression},
		{`x = (a, , b);`, diag.BadExpression},
		{`!;`, diag.BadDefinition},
		{`!{};`, diag.BadDefinition},
		{`!("a", "b");`, diag.BadDefinition},
		{`!name extra;`, diag.BadDefinition},
		{`!name {};`, diag.BadDefinition},
		{`!<u@s> {} x;`, diag.BadDefinition},
		{`!<u@s> x;`, diag.BadUserBlock},
		{`!<u@s> { x = "1"; };`, diag.BadUserBlock},
		{`!<u@s> { "(" {}; };`, diag.BadUserBlock},
		{`!<u@s> { "a" {} };`, diag.ExpectedSemicolon},
		{`else {};`, diag.MalformedIfStatement},
		{`elif @x {};`, diag.MalformedIfStatement},
		{`if @x;`, diag.MalformedIfStatement},
		{`if {};`, diag.MalformedIfStatement},
		{`if @x {} else {} elif @y {};`, diag.MalformedIfStatement},
		{`if @x {} else @y {};`, diag.MalformedIfStatement},
		{`if @x {} if @y {};`, diag.MalformedIfStatement},
		{`x = "open;`, diag.Unterminated},
		{`x = $;`, diag.UnexpectedSymbol},
	}
	for _, tt := range tests {
		_, err := ParseString(tt.input, "prog.email")
		var se *diag.SyntaxError
		if !errors.As(err, &se) {
			t.Errorf("%s: expected syntax error, got %v", tt.input, err)
			continue
		}
		if se.Kind != tt.kind {
			t.Errorf("%s: expected %s, got %s (%v)", tt.input, tt.kind, se.Kind, se)
		}
		if se.File != "prog.email" {
			t.Errorf("%s: expected file prog.email, got %q", tt.input, se.File)
		}
	}
}

func TestExpectedSemicolonPosition(t *testing.T) {
	_, err := ParseString("x = \"a\";\ny = \"b\"", "test")
	var se *diag.SyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("expected syntax error, got %v", err)
	}
	if se.Pos.Line != 2 || se.Pos.Column != 5 {
		t.Errorf("expected error at 2:5, got %s", se.Pos)
	}
}
