// Command epistle is the epistle interpreter CLI.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"

	"nickandperla.net/epistle/internal/config"
	"nickandperla.net/epistle/internal/stdlib"
	"nickandperla.net/epistle/internal/store"
	"nickandperla.net/epistle/pkg/epistle"
)

func main() {
	var (
		evalStr    = flag.String("e", "", "Run epistle source given as a string")
		file       = flag.String("f", "", "Run an epistle file")
		configPath = flag.String("config", "", "Configuration file (default: search ./epistle.yaml, ~/.epistle/)")
		journal    = flag.String("journal", "", "Record deliveries in this SQLite database")
		emlDir     = flag.String("eml", "", "Write every delivery as an .eml file in this directory")
		noStdlib   = flag.Bool("no-stdlib", false, "Disable the std.com server and prelude")
		maxTicks   = flag.Int("max-ticks", 0, "Abort after this many ticks (0 = unlimited)")
		watch      = flag.Bool("watch", false, "Re-run the file whenever it changes")
		verbose    = flag.Bool("v", false, "Log every tick and delivery")
		stats      = flag.Bool("stats", false, "Print delivery statistics after the run")
		check      = flag.Bool("check", false, "Parse only; report syntax errors and exit")
		reference  = flag.Bool("ref", false, "Print the language reference and exit")
	)

	flag.Parse()

	if *reference {
		fmt.Print(stdlib.Reference)
		return
	}

	if *file == "" && flag.NArg() > 0 {
		*file = flag.Arg(0)
	}

	// Load configuration, then let explicit flags override it
	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.Load(*configPath)
	} else {
		cfg, err = config.AutoLoad()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "journal":
			cfg.Journal.SQLite = *journal
		case "eml":
			cfg.Journal.EMLDir = *emlDir
		case "no-stdlib":
			cfg.Stdlib = !*noStdlib
		case "max-ticks":
			cfg.MaxTicks = *maxTicks
		case "v":
			if *verbose {
				cfg.Log.Level = config.LogLevelDebug
			}
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	runtime, err := epistle.New(
		epistle.WithConfig(cfg),
		epistle.WithLogger(newLogger(cfg, os.Stderr)),
		epistle.WithOutput(os.Stdout),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer runtime.Close()

	var src, name string
	switch {
	case *evalStr != "":
		src, name = *evalStr, "<arg>"

	case *file != "":
		data, err := os.ReadFile(*file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading file: %v\n", err)
			os.Exit(1)
		}
		src, name = string(data), *file

	case !isTerminal(os.Stdin):
		// Piped input (no file specified)
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading stdin: %v\n", err)
			os.Exit(1)
		}
		src, name = string(data), "<stdin>"

	default:
		runREPL(runtime)
		return
	}

	if *check {
		if err := runtime.Check(src, name); err != nil {
			report(os.Stderr, src, err)
			os.Exit(1)
		}
		return
	}

	if *watch {
		if *file == "" {
			fmt.Fprintln(os.Stderr, "Error: -watch needs a file")
			os.Exit(1)
		}
		runtime.Close()
		if err := watchFile(*file, cfg, *stats); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	err = runtime.Run(src, name)
	if *stats {
		printStats(os.Stderr, runtime.Stats())
		if jerr := printJournalTotals(os.Stderr, runtime.Journal()); jerr != nil {
			fmt.Fprintf(os.Stderr, "Error reading journal: %v\n", jerr)
		}
	}
	if err != nil {
		report(os.Stderr, src, err)
		runtime.Close()
		os.Exit(1)
	}
}

// newLogger builds the slog logger the configuration asks for.
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func printStats(w io.Writer, s epistle.Stats) {
	fmt.Fprintf(w, "%s ticks, %s sent, %s delivered, %s unmatched, %s dropped\n",
		humanize.Comma(int64(s.Ticks)),
		humanize.Comma(int64(s.Sent)),
		humanize.Comma(int64(s.Delivered)),
		humanize.Comma(int64(s.Unmatched)),
		humanize.Comma(int64(s.Dropped)),
	)
}

// journalCounter is implemented by journals that outlive a single run.
type journalCounter interface {
	Count() (map[store.Status]int, error)
}

// printJournalTotals prints the totals of the first persistent journal in j,
// if there is one.
func printJournalTotals(w io.Writer, j epistle.Journal) error {
	journals := []store.Journal{j}
	if m, ok := j.(store.Multi); ok {
		journals = m
	}
	for _, jj := range journals {
		c, ok := jj.(journalCounter)
		if !ok {
			continue
		}
		counts, err := c.Count()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "journal: %s delivered, %s unmatched, %s dropped across all runs\n",
			humanize.Comma(int64(counts[store.Delivered])),
			humanize.Comma(int64(counts[store.Unmatched])),
			humanize.Comma(int64(counts[store.Dropped])),
		)
		return nil
	}
	return nil
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
