// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package scanner turns epistle source into a nested token tree.
package scanner

import (
	"strings"
	"unicode"

	"nickandperla.net/epistle/internal/diag"
	"nickandperla.net/epistle/internal/token"
)

// Scanner tokenizes epistle source rune-by-rune. Delimited constructs are
// scanned recursively so each block token carries its own contents.
type Scanner struct {
	src  []rune
	off  int
	line int // Current line number (1-based)
	col  int // Column of the next rune (1-based)
	file string
}

// New creates a new Scanner over src. file is only used in errors.
func New(src, file string) *Scanner {
	return &Scanner{
		src:  []rune(src),
		line: 1,
		col:  1,
		file: file,
	}
}

// Scan tokenizes src. The first lexical error aborts the scan.
func Scan(src, file string) ([]token.Token, error) {
	return New(src, file).Scan()
}

// Scan tokenizes the whole input.
func (s *Scanner) Scan() ([]token.Token, error) {
	toks, _, _, err := s.scanBlock(0, token.EOF, 0)
	if err != nil {
		if se, ok := err.(*diag.SyntaxError); ok {
			se.File = s.file
		}
		return nil, err
	}
	return toks, nil
}

func (s *Scanner) pos() token.Pos {
	return token.Pos{Line: s.line, Column: s.col}
}

func (s *Scanner) peek() (rune, bool) {
	if s.off >= len(s.src) {
		return 0, false
	}
	return s.src[s.off], true
}

func (s *Scanner) next() (rune, bool) {
	r, ok := s.peek()
	if !ok {
		return 0, false
	}
	s.off++
	if r == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return r, true
}

// isIdentRune returns true if the rune may appear in a bare word.
func isIdentRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '_' || r == '-'
}

// scanBlock scans tokens until closer at this nesting level, or end of input
// when closer is 0. The first occurrence of split at this level divides the
// result into before and after; later occurrences are ordinary runes.
func (s *Scanner) scanBlock(closer rune, open token.Pos, split rune) (before, after []token.Token, didSplit bool, err error) {
	toks := []token.Token{}

	for {
		start := s.pos()
		r, ok := s.next()
		if !ok {
			if closer != 0 {
				return nil, nil, false, diag.Syntax(diag.Unterminated, token.EOF,
					"missing %q for block opened at %s", closer, open)
			}
			break
		}

		if closer != 0 && r == closer {
			break
		}
		if split != 0 && r == split && !didSplit {
			before, toks, didSplit = toks, []token.Token{}, true
			continue
		}

		switch {
		case unicode.IsSpace(r):
			continue

		case r == token.RuneComment:
			for {
				c, ok := s.next()
				if !ok || c == '\n' {
					break
				}
			}
			continue

		case isIdentRune(r):
			word := s.scanWord(r)
			toks = append(toks, token.Token{Kind: token.Keyword(word), Text: word, Pos: start})
			continue
		}

		switch r {
		case token.RuneQuote:
			text, err := s.scanText(start)
			if err != nil {
				return nil, nil, false, err
			}
			toks = append(toks, token.Token{Kind: token.TEXT, Text: text, Pos: start})

		case '{':
			block, _, _, err := s.scanBlock('}', start, 0)
			if err != nil {
				return nil, nil, false, err
			}
			toks = append(toks, token.Token{Kind: token.BRACES, Block: block, Pos: start})

		case '(':
			block, _, _, err := s.scanBlock(')', start, 0)
			if err != nil {
				return nil, nil, false, err
			}
			toks = append(toks, token.Token{Kind: token.PARENS, Block: block, Pos: start})

		case '[':
			lo, hi, isSlice, err := s.scanBlock(']', start, token.RuneSliceColon)
			if err != nil {
				return nil, nil, false, err
			}
			if isSlice {
				toks = append(toks, token.Token{Kind: token.SLICE, Start: nonEmpty(lo), End: nonEmpty(hi), Pos: start})
			} else {
				toks = append(toks, token.Token{Kind: token.INDEX, Block: lo, Pos: start})
			}

		case token.RuneAddrOpen:
			name, server, hasAt, err := s.scanBlock(token.RuneAddrClose, start, token.RuneReceive)
			if err != nil {
				return nil, nil, false, err
			}
			if !hasAt {
				return nil, nil, false, diag.Syntax(diag.MalformedUserpath, start, "missing '@' in user address")
			}
			if len(name) == 0 || len(server) == 0 {
				return nil, nil, false, diag.Syntax(diag.MalformedUserpath, start, "user address needs a name and a server")
			}
			toks = append(toks, token.Token{Kind: token.ADDRESS, Name: name, Server: server, Pos: start})

		default:
			kind := token.KindFromRune(r)
			if kind == token.ILLEGAL {
				return nil, nil, false, diag.Syntax(diag.UnexpectedSymbol, start, "%q is not a valid character", r)
			}
			toks = append(toks, token.Token{Kind: kind, Pos: start})
		}
	}

	if didSplit {
		return before, toks, true, nil
	}
	return toks, nil, false, nil
}

// scanWord accumulates a bare word starting with first.
func (s *Scanner) scanWord(first rune) string {
	var sb strings.Builder
	sb.WriteRune(first)
	for {
		r, ok := s.peek()
		if !ok || !isIdentRune(r) {
			return sb.String()
		}
		s.next()
		sb.WriteRune(r)
	}
}

// scanText reads a quoted string up to the first unescaped quote. A
// backslash escapes any rune; \n and \t stand for newline and tab.
func (s *Scanner) scanText(open token.Pos) (string, error) {
	var sb strings.Builder
	for {
		r, ok := s.next()
		if !ok {
			return "", diag.Syntax(diag.Unterminated, token.EOF, "missing closing quote for string opened at %s", open)
		}
		switch r {
		case token.RuneQuote:
			return sb.String(), nil
		case token.RuneEscape:
			e, ok := s.next()
			if !ok {
				return "", diag.Syntax(diag.Unterminated, token.EOF, "missing closing quote for string opened at %s", open)
			}
			switch e {
			case 'n':
				sb.WriteRune('\n')
			case 't':
				sb.WriteRune('\t')
			default:
				sb.WriteRune(e)
			}
		default:
			sb.WriteRune(r)
		}
	}
}

func nonEmpty(toks []token.Token) []token.Token {
	if len(toks) == 0 {
		return nil
	}
	return toks
}
