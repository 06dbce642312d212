package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"nickandperla.net/epistle/internal/diag"
	"nickandperla.net/epistle/internal/parser"
	"nickandperla.net/epistle/internal/stdlib"
	"nickandperla.net/epistle/pkg/epistle"
)

const (
	historyFile = ".epistle_history"
	promptMain  = "epistle> "
	promptCont  = "...      "
)

func printBanner() {
	fmt.Println("epistle REPL (Ctrl+D to exit)")
	fmt.Println("  :env   list top-level bindings")
	fmt.Println("  :ref   show the language reference")
	fmt.Println("  :quit  exit")
	fmt.Println()
}

func runREPL(runtime *epistle.Runtime) {
	printBanner()

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	for {
		src, ok := readStatement(ln)
		if !ok {
			fmt.Println()
			return
		}
		if strings.TrimSpace(src) == "" {
			continue
		}
		if quit := handleCommand(runtime, src); quit {
			return
		}
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))
	}
}

// handleCommand runs a REPL command or an epistle entry. It reports whether
// the REPL should exit.
func handleCommand(runtime *epistle.Runtime, src string) bool {
	switch strings.TrimSpace(src) {
	case ":quit", ":q":
		return true
	case ":env":
		for _, line := range runtime.Env() {
			fmt.Println(line)
		}
		return false
	case ":ref":
		fmt.Print(stdlib.Reference)
		return false
	}
	if strings.HasPrefix(strings.TrimSpace(src), ":") {
		fmt.Println("unknown command. Type :quit to exit.")
		return false
	}
	if err := runtime.Eval(src); err != nil {
		report(os.Stderr, src, err)
	}
	return false
}

// readStatement reads lines until they form a complete entry: one that
// parses, or fails for a reason more input cannot fix.
func readStatement(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			return "", true
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") || !incomplete(src) {
			return src, true
		}
	}
}

// incomplete reports whether src ends before a construct or statement is
// closed.
func incomplete(src string) bool {
	_, err := parser.ParseString(src, "<repl>")
	var se *diag.SyntaxError
	if !errors.As(err, &se) {
		return false
	}
	return se.Kind == diag.Unterminated ||
		(se.Kind == diag.ExpectedSemicolon && strings.TrimSpace(src) != "")
}
