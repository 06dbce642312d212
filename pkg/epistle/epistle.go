package epistle

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"nickandperla.net/epistle/internal/diag"
	"nickandperla.net/epistle/internal/expr"
	"nickandperla.net/epistle/internal/interp"
	"nickandperla.net/epistle/internal/parser"
	"nickandperla.net/epistle/internal/stdlib"
	"nickandperla.net/epistle/internal/store"
)

// Stats counts what the runtime did since it was set up.
type Stats = interp.Stats

// SyntaxError is returned for programs that do not parse.
type SyntaxError = diag.SyntaxError

// RuntimeError is returned for programs that fail while running.
type RuntimeError = diag.RuntimeError

// Runtime is the epistle interpreter runtime.
type Runtime struct {
	it           *interp.Interpreter
	journals     []store.Journal
	journal      store.Journal
	logger       *slog.Logger
	outputWriter func(text string) error
	modifiers    expr.Modifiers
	maxTicks     int
	prelude      string
	noStdlib     bool
	setupErr     error
}

// New creates a new epistle runtime with the given options. Unless
// WithNoStdlib is given, std.com is installed and the prelude has run when
// New returns.
func New(opts ...Option) (*Runtime, error) {
	r := &Runtime{
		modifiers: expr.DefaultModifiers(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.setupErr != nil {
		r.closeJournals()
		return nil, r.setupErr
	}

	switch len(r.journals) {
	case 0:
	case 1:
		r.journal = r.journals[0]
	default:
		r.journal = store.Multi(r.journals)
	}

	// Build interpreter options
	itOpts := []interp.Option{
		interp.WithModifiers(r.modifiers),
		interp.WithMaxTicks(r.maxTicks),
	}
	if r.logger != nil {
		itOpts = append(itOpts, interp.WithLogger(r.logger))
	}
	if r.journal != nil {
		itOpts = append(itOpts, interp.WithJournal(r.journal))
	}
	r.it = interp.New(itOpts...)

	if !r.noStdlib {
		stdlib.Install(r.it, r.outputWriter)
		prelude := r.prelude
		if prelude == "" {
			prelude = DefaultPrelude
		}
		if err := r.Run(prelude, "<prelude>"); err != nil {
			r.closeJournals()
			return nil, fmt.Errorf("prelude: %w", err)
		}
	}
	r.it.ResetStats()
	return r, nil
}

// Run parses src and executes it to completion. file is only used in
// errors.
func (r *Runtime) Run(src, file string) error {
	prog, err := parser.ParseString(src, file)
	if err != nil {
		return err
	}
	return r.it.Execute(prog)
}

// RunFile runs the program in path.
func (r *Runtime) RunFile(path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return r.Run(string(src), path)
}

// Eval runs one interactive entry. Bindings made by earlier entries remain
// visible.
func (r *Runtime) Eval(src string) error {
	return r.Run(src, "<repl>")
}

// Check parses src without running it.
func (r *Runtime) Check(src, file string) error {
	_, err := parser.ParseString(src, file)
	return err
}

// Env returns the bindings of the top-level actor as "name = value" lines,
// sorted by name.
func (r *Runtime) Env() []string {
	env := r.it.Env()
	out := make([]string, 0, env.Len())
	for _, k := range env.Keys() {
		out = append(out, k+" = "+env.Get(k).String())
	}
	return out
}

// Stats returns the counters accumulated since setup.
func (r *Runtime) Stats() Stats {
	return r.it.Stats()
}

// Journal returns the configured journal, or nil.
func (r *Runtime) Journal() Journal {
	return r.journal
}

// Interpreter exposes the underlying interpreter, for embedders that
// register native users.
func (r *Runtime) Interpreter() *interp.Interpreter {
	return r.it
}

// Close releases resources.
func (r *Runtime) Close() error {
	return r.closeJournals()
}

func (r *Runtime) closeJournals() error {
	var first error
	for _, j := range r.journals {
		if err := j.Close(); err != nil && first == nil {
			first = err
		}
	}
	r.journals = nil
	return first
}

// RenderError formats err against src. Syntax errors get the offending line
// and a caret; other errors are returned as text.
func RenderError(src string, err error) string {
	var se *diag.SyntaxError
	if errors.As(err, &se) {
		return diag.Render(src, se)
	}
	return err.Error()
}
