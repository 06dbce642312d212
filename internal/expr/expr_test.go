package expr

import (
	"errors"
	"log/slog"
	"testing"

	"nickandperla.net/epistle/internal/diag"
	"nickandperla.net/epistle/internal/mail"
)

// fakeRuntime records what instructions ask of the interpreter.
type fakeRuntime struct {
	servers   []string
	users     []string
	sent      []mail.Mail
	modifiers Modifiers
}

func (r *fakeRuntime) AddServer(name string) { r.servers = append(r.servers, name) }
func (r *fakeRuntime) AddUser(name, server string, _ []Reaction) {
	r.users = append(r.users, name+"@"+server)
}
func (r *fakeRuntime) Send(m mail.Mail) { r.sent = append(r.sent, m) }
func (r *fakeRuntime) Modifier(name string) (Modifier, bool) {
	m, ok := r.modifiers[name]
	return m, ok
}
func (r *fakeRuntime) Logger() *slog.Logger { return slog.New(slog.DiscardHandler) }

func newTestScope() (*Scope, *fakeRuntime) {
	rt := &fakeRuntime{modifiers: DefaultModifiers()}
	return NewScope(rt, mail.Anonymous, NewEnvironment()), rt
}

func text(s string) Text { return Text{Value: s} }

func addr(user, server string) Address {
	return Address{User: text(user), Server: text(server)}
}

func mustResolve(t *testing.T, s *Scope, v Value) Value {
	t.Helper()
	r, err := s.Resolve(v)
	if err != nil {
		t.Fatalf("Resolve(%s) error: %v", v, err)
	}
	return r
}

func runtimeKind(t *testing.T, err error) diag.RuntimeKind {
	t.Helper()
	var rt *diag.RuntimeError
	if !errors.As(err, &rt) {
		t.Fatalf("expected runtime error, got %v", err)
	}
	return rt.Kind
}

func TestConcat(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want string
	}{
		{"texts", text("ab"), text("cd"), `"abcd"`},
		{"text and tuple", text("a"), TextTuple("b", "c"), `("a", "b", "c")`},
		{"tuple and text", TextTuple("a", "b"), text("c"), `("a", "b", "c")`},
		{"tuples", TextTuple("a"), TextTuple("b"), `("a", "b")`},
		{"null left", Null{}, text("x"), `"x"`},
		{"null right", TextTuple("x"), Null{}, `("x",)`},
		{"address and text", addr("u", "s"), text("x"), `(<u@s>, "x")`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Concat(tt.a, tt.b).String(); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestAtAndRange(t *testing.T) {
	word := text("héllo")
	v, err := At(word, 1)
	if err != nil || v.String() != `"é"` {
		t.Errorf("expected é, got %v (%v)", v, err)
	}
	v, err = At(TextTuple("a", "b", "c"), -1)
	if err != nil || v.String() != `"c"` {
		t.Errorf("expected c, got %v (%v)", v, err)
	}
	if _, err := At(word, 5); runtimeKind(t, err) != diag.Index {
		t.Errorf("expected index error, got %v", err)
	}
	if _, err := At(word, -6); runtimeKind(t, err) != diag.Index {
		t.Errorf("expected index error, got %v", err)
	}
	if _, err := At(addr("u", "s"), 0); runtimeKind(t, err) != diag.Coercion {
		t.Errorf("expected coercion error, got %v", err)
	}

	one, three, minusOne := 1, 3, -1
	tests := []struct {
		start, end *int
		want       string
	}{
		{&one, &three, `"él"`},
		{nil, &one, `"h"`},
		{&three, nil, `"lo"`},
		{nil, &minusOne, `"héll"`},
		{nil, nil, `"héllo"`},
	}
	for _, tt := range tests {
		v, err := Range(word, tt.start, tt.end)
		if err != nil {
			t.Errorf("Range error: %v", err)
			continue
		}
		if v.String() != tt.want {
			t.Errorf("expected %s, got %s", tt.want, v)
		}
	}
	if _, err := Range(word, &three, &one); runtimeKind(t, err) != diag.Index {
		t.Errorf("expected index error for reversed bounds, got %v", err)
	}
	v, err = Range(TextTuple("a", "b", "c"), &one, nil)
	if err != nil || v.String() != `("b", "c")` {
		t.Errorf("expected (b, c), got %v (%v)", v, err)
	}
}

func TestTruthy(t *testing.T) {
	falsy := []Value{nil, Null{}, text(""), text("0"), text("false"), text("FALSE"), Tuple{}}
	for _, v := range falsy {
		if Truthy(v) {
			t.Errorf("expected %v to be false", v)
		}
	}
	truthy := []Value{text("1"), text("no"), TextTuple(""), addr("u", "s")}
	for _, v := range truthy {
		if !Truthy(v) {
			t.Errorf("expected %v to be true", v)
		}
	}
}

func TestNumber(t *testing.T) {
	s, _ := newTestScope()
	if n, err := Number[int](s, text(" 42 ")); err != nil || n != 42 {
		t.Errorf("expected 42, got %d (%v)", n, err)
	}
	if n, err := Number[int](s, text("-3")); err != nil || n != -3 {
		t.Errorf("expected -3, got %d (%v)", n, err)
	}
	if _, err := Number[int](s, text("1.5")); runtimeKind(t, err) != diag.Coercion {
		t.Errorf("expected coercion error, got %v", err)
	}
	if f, err := Number[float64](s, text("1.5")); err != nil || f != 1.5 {
		t.Errorf("expected 1.5, got %v (%v)", f, err)
	}
	if _, err := Number[int](s, text("abc")); runtimeKind(t, err) != diag.Coercion {
		t.Errorf("expected coercion error, got %v", err)
	}
	if n, err := Number[int](s, text("1e3")); err != nil || n != 1000 {
		t.Errorf("expected 1000, got %d (%v)", n, err)
	}
	if n, err := Number[uint64](s, text("18446744073709551615")); err != nil || n != 18446744073709551615 {
		t.Errorf("expected max uint64, got %d (%v)", n, err)
	}
	if n, err := Number[int32](s, text("-2147483648")); err != nil || n != -2147483648 {
		t.Errorf("expected min int32, got %d (%v)", n, err)
	}
}

func TestNumberRejectsOutOfRange(t *testing.T) {
	s, _ := newTestScope()
	check := func(name string, err error) {
		t.Helper()
		if runtimeKind(t, err) != diag.Coercion {
			t.Errorf("%s: expected coercion error, got %v", name, err)
		}
	}
	_, err := Number[int32](s, text("3000000000"))
	check("int32 overflow", err)
	_, err = Number[uint](s, text("-1"))
	check("negative uint", err)
	_, err = Number[uint32](s, text("4294967296"))
	check("uint32 overflow", err)
	_, err = Number[int64](s, text("9223372036854775808"))
	check("int64 overflow", err)
	_, err = Number[int](s, text("99999999999999999999"))
	check("huge int", err)
	_, err = Number[int](s, text("1e30"))
	check("huge exponent", err)
	_, err = Number[float64](s, text("1e400"))
	check("float64 overflow", err)
	_, err = Number[float32](s, text("1e39"))
	check("float32 overflow", err)

	_, err = Index{Operand: text("abc"), Pos: text("99999999999999999999")}.Exec(s)
	check("huge index", err)
}

func TestResolveIsIdempotent(t *testing.T) {
	s, _ := newTestScope()
	v := NewTuple(Expression{Instr: Concatenate{Left: text("a"), Right: text("b")}}, addr("u", "s"))
	once := mustResolve(t, s, v)
	twice := mustResolve(t, s, once)
	if once.String() != `("ab", <u@s>)` || twice.String() != once.String() {
		t.Errorf("expected stable resolution, got %s then %s", once, twice)
	}
}

func TestResolveRunsExpressionsEachTime(t *testing.T) {
	s, rt := newTestScope()
	send := Expression{Instr: MailTo{Draft: text("ping"), To: addr("u", "s")}}
	mustResolve(t, s, send)
	mustResolve(t, s, send)
	if len(rt.sent) != 2 {
		t.Errorf("expected every resolution to send, got %d mails", len(rt.sent))
	}
}

func TestMailTo(t *testing.T) {
	s, rt := newTestScope()
	draft := NewTuple(text("subj"), text("body"), text("att"))
	out, err := MailTo{Draft: draft, To: addr("u", "s")}.Exec(s)
	if err != nil {
		t.Fatalf("Exec error: %v", err)
	}
	if out.String() != `("subj", "body", "att")` {
		t.Errorf("expected the draft back, got %s", out)
	}
	if len(rt.sent) != 1 {
		t.Fatalf("expected one mail, got %d", len(rt.sent))
	}
	m := rt.sent[0]
	if m.From != mail.Anonymous || m.To.String() != "u@s" || m.Subject != "subj" || m.Body != "body" {
		t.Errorf("unexpected mail: %+v", m)
	}

	if _, err := (MailTo{Draft: TextTuple("only"), To: addr("u", "s")}).Exec(s); runtimeKind(t, err) != diag.Coercion {
		t.Errorf("expected coercion error for a 1-tuple draft, got %v", err)
	}
	if _, err := (MailTo{Draft: text("x"), To: text("nobody")}).Exec(s); runtimeKind(t, err) != diag.Coercion {
		t.Errorf("expected coercion error for a text address, got %v", err)
	}
}

func TestAssignAndEnvRead(t *testing.T) {
	s, _ := newTestScope()
	if _, err := (Assign{Target: text("x"), Operand: text("1")}).Exec(s); err != nil {
		t.Fatalf("Assign error: %v", err)
	}
	target := NewTuple(text("a"), text("b"))
	if _, err := (Assign{Target: target, Operand: TextTuple("2", "3")}).Exec(s); err != nil {
		t.Fatalf("destructuring error: %v", err)
	}
	v, err := EnvRead{Key: NewTuple(text("x"), text("a"), text("b"), text("missing"))}.Exec(s)
	if err != nil {
		t.Fatalf("EnvRead error: %v", err)
	}
	if v.String() != `("1", "2", "3", null)` {
		t.Errorf("unexpected lookup: %s", v)
	}

	if _, err := (Assign{Target: target, Operand: TextTuple("1")}).Exec(s); runtimeKind(t, err) != diag.Arity {
		t.Errorf("expected arity error, got %v", err)
	}
	if _, err := (Assign{Target: target, Operand: text("1")}).Exec(s); runtimeKind(t, err) != diag.Arity {
		t.Errorf("expected arity error, got %v", err)
	}

	// Storing null unbinds.
	if _, err := (Assign{Target: text("x"), Operand: Null{}}).Exec(s); err != nil {
		t.Fatalf("Assign error: %v", err)
	}
	if s.Env.Has("x") {
		t.Error("expected x to be unbound")
	}
}

func TestConditional(t *testing.T) {
	s, _ := newTestScope()
	set := func(v string) []Instruction {
		return []Instruction{Assign{Target: text("r"), Operand: text(v)}}
	}
	chain := Conditional{Branches: []Branch{
		{Cond: text("0"), Body: set("first")},
		{Cond: Expression{Instr: EnvRead{Key: text("flag")}}, Body: set("second")},
		{Body: set("else")},
	}}
	if _, err := chain.Exec(s); err != nil {
		t.Fatalf("Exec error: %v", err)
	}
	if got := s.Env.Get("r"); got.String() != `"else"` {
		t.Errorf("expected else branch, got %s", got)
	}
	s.Env.Set("flag", text("yes"))
	if _, err := chain.Exec(s); err != nil {
		t.Fatalf("Exec error: %v", err)
	}
	if got := s.Env.Get("r"); got.String() != `"second"` {
		t.Errorf("expected second branch, got %s", got)
	}
}

func TestIndexAndSlice(t *testing.T) {
	s, _ := newTestScope()
	v, err := Index{Operand: TextTuple("a", "b"), Pos: text("-1")}.Exec(s)
	if err != nil || v.String() != `"b"` {
		t.Errorf("expected b, got %v (%v)", v, err)
	}
	v, err = Slice{Operand: text("hello"), Start: text("1")}.Exec(s)
	if err != nil || v.String() != `"ello"` {
		t.Errorf("expected ello, got %v (%v)", v, err)
	}
	if _, err := (Index{Operand: text("hi"), Pos: text("x")}).Exec(s); runtimeKind(t, err) != diag.Coercion {
		t.Errorf("expected coercion error, got %v", err)
	}
}

func TestPipe(t *testing.T) {
	s, _ := newTestScope()
	tests := []struct {
		operand  Value
		modifier Value
		want     string
	}{
		{text("abc"), text("upper"), `"ABC"`},
		{text("ABC"), text("lower"), `"abc"`},
		{text("hello world"), text("title"), `"Hello World"`},
		{text("ab"), text("chars"), `("a", "b")`},
		{TextTuple("a", "b"), text("merge"), `"ab"`},
		{TextTuple("a1", "b", "c2"), NewTuple(text("filter"), text("[0-9]")), `("a1", "c2")`},
		{text("héllo"), text("len"), `"5"`},
		{Null{}, text("len"), `"0"`},
		{text("a,b"), NewTuple(text("split"), text(",")), `("a", "b")`},
		{TextTuple("a", "b"), NewTuple(text("join"), text("-")), `"a-b"`},
		{text("  x "), text("trim"), `"x"`},
		{text("x"), text("nosuch"), `null`},
		{text("x"), NewTuple(text("upper"), text("extra")), `null`},
	}
	for _, tt := range tests {
		v, err := Pipe{Operand: tt.operand, Modifier: tt.modifier}.Exec(s)
		if err != nil {
			t.Errorf("%s | %s: unexpected error %v", tt.operand, tt.modifier, err)
			continue
		}
		if v.String() != tt.want {
			t.Errorf("%s | %s: expected %s, got %s", tt.operand, tt.modifier, tt.want, v)
		}
	}

	_, err := Pipe{Operand: TextTuple("a"), Modifier: NewTuple(text("filter"), text("("))}.Exec(s)
	if runtimeKind(t, err) != diag.Modifier {
		t.Errorf("expected modifier error for a bad pattern, got %v", err)
	}
	_, err = Pipe{Operand: NewTuple(addr("u", "s")), Modifier: text("upper")}.Exec(s)
	if runtimeKind(t, err) != diag.Coercion {
		t.Errorf("expected coercion error, got %v", err)
	}
}

func TestCreateInstructions(t *testing.T) {
	s, rt := newTestScope()
	if _, err := (CreateServer{Name: text("srv")}).Exec(s); err != nil {
		t.Fatalf("CreateServer error: %v", err)
	}
	if _, err := (CreateUser{Name: text("bob"), Server: Expression{Instr: Concatenate{Left: text("s"), Right: text("rv")}}}).Exec(s); err != nil {
		t.Fatalf("CreateUser error: %v", err)
	}
	if len(rt.servers) != 1 || rt.servers[0] != "srv" {
		t.Errorf("expected server srv, got %v", rt.servers)
	}
	if len(rt.users) != 1 || rt.users[0] != "bob@srv" {
		t.Errorf("expected user bob@srv, got %v", rt.users)
	}
}

func TestReaction(t *testing.T) {
	all, err := NewReaction(CatchAll, nil)
	if err != nil {
		t.Fatalf("NewReaction error: %v", err)
	}
	if !all.Match("") || !all.Match("anything") {
		t.Error("expected catch-all to match everything")
	}
	re, err := NewReaction("^ad+$", nil)
	if err != nil {
		t.Fatalf("NewReaction error: %v", err)
	}
	if !re.Match("add") || re.Match("sub") {
		t.Error("unexpected regex match results")
	}
	sub, _ := NewReaction("ll", nil)
	if !sub.Match("hello") {
		t.Error("expected unanchored match")
	}
	if _, err := NewReaction("(", nil); err == nil {
		t.Error("expected error for invalid pattern")
	}
}

func TestInstructionString(t *testing.T) {
	in := Assign{
		Target: text("x"),
		Operand: Expression{Instr: MailTo{
			Draft: NewTuple(text("s"), Expression{Instr: EnvRead{Key: text("content")}}),
			To:    addr("io", "std.com"),
		}},
	}
	want := `x = (("s", (@content)) > <io@std.com>)`
	if got := in.String(); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}
