package main

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"nickandperla.net/epistle/pkg/epistle"
)

const (
	colorRed   = "\x1b[31m"
	colorReset = "\x1b[0m"
)

// report writes err to w, rendered against src. The report is red when w is
// a terminal.
func report(w io.Writer, src string, err error) {
	msg := epistle.RenderError(src, err)
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		msg = colorRed + msg + colorReset
	}
	fmt.Fprintln(w, msg)
}
