// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package token defines epistle token kinds, source positions and the nested
// token tree produced by the scanner.
package token

import "fmt"

// Kind represents an epistle token kind.
type Kind int

const (
	ILLEGAL Kind = iota

	// Structure
	SEMICOLON // ;
	COMMA     // ,
	BRACES    // { ... }
	PARENS    // ( ... )
	INDEX     // [ ... ]
	SLICE     // [ ... : ... ]

	// Literals
	TEXT    // "quoted"
	IDENT   // bare word
	ADDRESS // <name@server>

	// Operators
	DEFINE  // !
	ARROW   // >
	PLUS    // +
	RECEIVE // @
	ASSIGN  // =
	PIPE    // |

	// Keywords
	IF
	ELIF
	ELSE
)

// Operator and structural runes.
const (
	RuneDefine     = '!'
	RuneArrow      = '>'
	RunePlus       = '+'
	RuneReceive    = '@'
	RuneAssign     = '='
	RunePipe       = '|'
	RuneSemicolon  = ';'
	RuneComma      = ','
	RuneComment    = '#'
	RuneQuote      = '"'
	RuneEscape     = '\\'
	RuneAddrOpen   = '<'
	RuneAddrClose  = '>'
	RuneSliceColon = ':'
)

// KindFromRune returns the kind for a single-rune token, or ILLEGAL.
func KindFromRune(r rune) Kind {
	switch r {
	case RuneDefine:
		return DEFINE
	case RuneArrow:
		return ARROW
	case RunePlus:
		return PLUS
	case RuneReceive:
		return RECEIVE
	case RuneAssign:
		return ASSIGN
	case RunePipe:
		return PIPE
	case RuneSemicolon:
		return SEMICOLON
	case RuneComma:
		return COMMA
	}
	return ILLEGAL
}

// Keyword returns the keyword kind for an identifier, or IDENT.
func Keyword(ident string) Kind {
	switch ident {
	case "if":
		return IF
	case "elif":
		return ELIF
	case "else":
		return ELSE
	}
	return IDENT
}

// String returns the string representation of a token kind.
func (k Kind) String() string {
	switch k {
	case SEMICOLON:
		return "SEMICOLON"
	case COMMA:
		return "COMMA"
	case BRACES:
		return "BRACES"
	case PARENS:
		return "PARENS"
	case INDEX:
		return "INDEX"
	case SLICE:
		return "SLICE"
	case TEXT:
		return "TEXT"
	case IDENT:
		return "IDENT"
	case ADDRESS:
		return "ADDRESS"
	case DEFINE:
		return "DEFINE"
	case ARROW:
		return "ARROW"
	case PLUS:
		return "PLUS"
	case RECEIVE:
		return "RECEIVE"
	case ASSIGN:
		return "ASSIGN"
	case PIPE:
		return "PIPE"
	case IF:
		return "IF"
	case ELIF:
		return "ELIF"
	case ELSE:
		return "ELSE"
	}
	return "ILLEGAL"
}

// IsKeyword returns true for if/elif/else.
func (k Kind) IsKeyword() bool {
	switch k {
	case IF, ELIF, ELSE:
		return true
	}
	return false
}

// Pos is a source position. The zero Pos marks end of input.
type Pos struct {
	Line   int // 1-based
	Column int // 1-based, counted in runes
}

// EOF is the position reported for errors at end of input.
var EOF = Pos{}

// IsEOF returns true if the position marks end of input.
func (p Pos) IsEOF() bool {
	return p.Line == 0
}

func (p Pos) String() string {
	if p.IsEOF() {
		return "end of input"
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token is a positioned node of the token tree. Block-shaped tokens carry
// their contents already lexed.
type Token struct {
	Kind Kind
	Pos  Pos

	// Text holds the unescaped contents of TEXT and the word of IDENT.
	Text string

	// Block holds the contents of BRACES, PARENS and INDEX.
	Block []Token

	// Start and End hold the bounds of SLICE. A nil bound was omitted.
	Start, End []Token

	// Name and Server hold the halves of ADDRESS.
	Name, Server []Token
}

// IsOperator returns true if the token takes part in expression splitting.
func (t Token) IsOperator() bool {
	return Rank(t.Kind) > 0
}
