// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package token

import "strings"

// Format serializes a token tree back to source. Re-scanning the result
// yields the same tree, minus positions.
func Format(toks []Token) string {
	var sb strings.Builder
	writeTokens(&sb, toks)
	return sb.String()
}

func writeTokens(sb *strings.Builder, toks []Token) {
	for i, t := range toks {
		if i > 0 {
			sb.WriteByte(' ')
		}
		writeToken(sb, t)
	}
}

func writeToken(sb *strings.Builder, t Token) {
	switch t.Kind {
	case TEXT:
		sb.WriteString(Quote(t.Text))
	case IDENT:
		sb.WriteString(t.Text)
	case IF:
		sb.WriteString("if")
	case ELIF:
		sb.WriteString("elif")
	case ELSE:
		sb.WriteString("else")
	case BRACES:
		sb.WriteByte('{')
		writeTokens(sb, t.Block)
		sb.WriteByte('}')
	case PARENS:
		sb.WriteByte('(')
		writeTokens(sb, t.Block)
		sb.WriteByte(')')
	case INDEX:
		sb.WriteByte('[')
		writeTokens(sb, t.Block)
		sb.WriteByte(']')
	case SLICE:
		sb.WriteByte('[')
		writeTokens(sb, t.Start)
		sb.WriteRune(RuneSliceColon)
		writeTokens(sb, t.End)
		sb.WriteByte(']')
	case ADDRESS:
		sb.WriteRune(RuneAddrOpen)
		writeTokens(sb, t.Name)
		sb.WriteRune(RuneReceive)
		writeTokens(sb, t.Server)
		sb.WriteRune(RuneAddrClose)
	case SEMICOLON:
		sb.WriteRune(RuneSemicolon)
	case COMMA:
		sb.WriteRune(RuneComma)
	case DEFINE:
		sb.WriteRune(RuneDefine)
	case ARROW:
		sb.WriteRune(RuneArrow)
	case PLUS:
		sb.WriteRune(RunePlus)
	case RECEIVE:
		sb.WriteRune(RuneReceive)
	case ASSIGN:
		sb.WriteRune(RuneAssign)
	case PIPE:
		sb.WriteRune(RunePipe)
	}
}

// Quote renders s as a string literal, escaping quotes, backslashes and
// control characters the scanner understands.
func Quote(s string) string {
	var sb strings.Builder
	sb.WriteRune(RuneQuote)
	for _, r := range s {
		switch r {
		case RuneQuote, RuneEscape:
			sb.WriteRune(RuneEscape)
			sb.WriteRune(r)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteRune(RuneQuote)
	return sb.String()
}
