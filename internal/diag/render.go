// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package diag

import (
	"fmt"
	"strings"
)

// Render formats a syntax error against its source: a header, the offending
// line and a caret under the column. Tabs before the column are repeated in
// the caret line so the caret stays aligned however the terminal expands
// them. Errors at end of input point just past the last line.
func Render(src string, err *SyntaxError) string {
	var sb strings.Builder
	sb.WriteString("syntax error")
	if err.File != "" {
		sb.WriteString(" in " + err.File)
	}
	sb.WriteString(fmt.Sprintf(" at %s: %s", err.Pos, err.Kind))
	if err.Detail != "" {
		sb.WriteString(": " + err.Detail)
	}
	sb.WriteByte('\n')

	lines := strings.Split(strings.TrimRight(src, "\n"), "\n")
	if len(lines) == 0 || (len(lines) == 1 && lines[0] == "") {
		return sb.String()
	}

	line, col := err.Pos.Line, err.Pos.Column
	if err.Pos.IsEOF() {
		line = len(lines)
		col = len([]rune(lines[line-1])) + 1
	}
	if line > len(lines) {
		line = len(lines)
	}
	if line < 1 {
		line = 1
	}
	text := []rune(lines[line-1])
	if col < 1 {
		col = 1
	}
	if col > len(text)+1 {
		col = len(text) + 1
	}

	gutter := fmt.Sprintf("%4d | ", line)
	sb.WriteString(gutter)
	sb.WriteString(string(text))
	sb.WriteByte('\n')

	sb.WriteString(strings.Repeat(" ", len(gutter)))
	for _, r := range text[:col-1] {
		if r == '\t' {
			sb.WriteByte('\t')
		} else {
			sb.WriteByte(' ')
		}
	}
	sb.WriteString("^\n")
	return sb.String()
}
