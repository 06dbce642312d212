// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package expr defines epistle values, the instruction tree and the
// evaluation scope they run in.
package expr

import (
	"strings"

	"nickandperla.net/epistle/internal/token"
)

// Kind is the dynamic type of a Value.
type Kind int

const (
	NullKind Kind = iota
	TextKind
	AddressKind
	TupleKind
	ExpressionKind
)

func (k Kind) String() string {
	switch k {
	case NullKind:
		return "null"
	case TextKind:
		return "text"
	case AddressKind:
		return "address"
	case TupleKind:
		return "tuple"
	case ExpressionKind:
		return "expression"
	}
	return "unknown"
}

// Value is the interface all epistle values implement.
type Value interface {
	// Kind returns the dynamic type of the value.
	Kind() Kind
	// String returns the source representation of the value.
	String() string
}

// Null represents an absent value.
type Null struct{}

func (Null) Kind() Kind     { return NullKind }
func (Null) String() string { return "null" }

// Text represents a string.
type Text struct {
	Value string
}

func (t Text) Kind() Kind     { return TextKind }
func (t Text) String() string { return token.Quote(t.Value) }

// Address represents a user address whose halves may be computed.
type Address struct {
	User   Value
	Server Value
}

func (a Address) Kind() Kind { return AddressKind }
func (a Address) String() string {
	return "<" + source(a.User) + "@" + source(a.Server) + ">"
}

// Tuple represents an ordered sequence of values.
type Tuple struct {
	Items []Value
}

func (t Tuple) Kind() Kind { return TupleKind }
func (t Tuple) String() string {
	parts := make([]string, len(t.Items))
	for i, v := range t.Items {
		parts[i] = v.String()
	}
	if len(parts) == 1 {
		return "(" + parts[0] + ",)"
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Expression represents a computation that has not run yet. Each resolution
// runs it again, side effects included.
type Expression struct {
	Instr Instruction
}

func (e Expression) Kind() Kind     { return ExpressionKind }
func (e Expression) String() string { return "(" + e.Instr.String() + ")" }

// NewText creates a Text value.
func NewText(s string) Text {
	return Text{Value: s}
}

// NewTuple creates a Tuple from values.
func NewTuple(items ...Value) Tuple {
	return Tuple{Items: items}
}

// TextTuple creates a Tuple of Text values.
func TextTuple(items ...string) Tuple {
	t := Tuple{Items: make([]Value, len(items))}
	for i, s := range items {
		t.Items[i] = Text{Value: s}
	}
	return t
}

// IsNull returns true for nil and Null.
func IsNull(v Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(Null)
	return ok
}

// source renders a value as it appears in an expression, writing plain
// words without quotes.
func source(v Value) string {
	if t, ok := v.(Text); ok && isWord(t.Value) {
		return t.Value
	}
	if v == nil {
		return ""
	}
	return v.String()
}

func isWord(s string) bool {
	if s == "" || token.Keyword(s) != token.IDENT {
		return false
	}
	for _, r := range s {
		if !(r == '.' || r == '_' || r == '-' || r >= '0' && r <= '9' ||
			r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			return false
		}
	}
	return true
}
