package epistle

import (
	"io"
	"log/slog"

	"nickandperla.net/epistle/internal/config"
	"nickandperla.net/epistle/internal/expr"
	"nickandperla.net/epistle/internal/store"
)

// Option configures a Runtime.
type Option func(*Runtime)

// WithJournal records deliveries in j. Journals from several options are
// all written.
func WithJournal(j store.Journal) Option {
	return func(r *Runtime) {
		r.journals = append(r.journals, j)
	}
}

// WithSQLiteJournal records deliveries in a SQLite database at path.
func WithSQLiteJournal(path string) Option {
	return func(r *Runtime) {
		j, err := store.NewSQLite(path)
		if err != nil {
			r.setupErr = err
			return
		}
		r.journals = append(r.journals, j)
	}
}

// WithEMLJournal writes every delivery as an .eml file under dir.
func WithEMLJournal(dir string) Option {
	return func(r *Runtime) {
		j, err := store.NewEML(dir)
		if err != nil {
			r.setupErr = err
			return
		}
		r.journals = append(r.journals, j)
	}
}

// WithMemoryJournal records deliveries in memory (for testing).
func WithMemoryJournal() Option {
	return func(r *Runtime) {
		r.journals = append(r.journals, store.NewMemory())
	}
}

// WithOutputWriter sets the writer for <io@std.com>.
func WithOutputWriter(writer func(text string) error) Option {
	return func(r *Runtime) {
		r.outputWriter = writer
	}
}

// WithOutput sets the io.Writer for output.
func WithOutput(w io.Writer) Option {
	return func(r *Runtime) {
		r.outputWriter = func(text string) error {
			_, err := io.WriteString(w, text)
			return err
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runtime) {
		r.logger = l
	}
}

// WithMaxTicks bounds each run. Zero means unlimited.
func WithMaxTicks(n int) Option {
	return func(r *Runtime) {
		r.maxTicks = n
	}
}

// WithModifier adds or replaces a modifier.
func WithModifier(name string, m Modifier) Option {
	return func(r *Runtime) {
		r.modifiers[name] = m
	}
}

// WithPrelude sets a custom prelude source to be run on startup.
// If not set, DefaultPrelude is used.
func WithPrelude(source string) Option {
	return func(r *Runtime) {
		r.prelude = source
	}
}

// WithNoStdlib disables the std.com server and the prelude.
func WithNoStdlib() Option {
	return func(r *Runtime) {
		r.noStdlib = true
	}
}

// WithConfig applies a loaded configuration. Later options override it.
func WithConfig(c *config.Config) Option {
	return func(r *Runtime) {
		r.noStdlib = !c.Stdlib
		r.maxTicks = c.MaxTicks
		if c.Journal.SQLite != "" {
			WithSQLiteJournal(c.Journal.SQLite)(r)
		}
		if c.Journal.EMLDir != "" {
			WithEMLJournal(c.Journal.EMLDir)(r)
		}
	}
}

// Modifier post-processes a value piped into it.
type Modifier = expr.Modifier

// Journal records deliveries.
type Journal = store.Journal

// Value is an epistle value.
type Value = expr.Value

// Scope is what a modifier runs against.
type Scope = expr.Scope

// NewText creates a text value.
func NewText(s string) Value {
	return expr.NewText(s)
}
