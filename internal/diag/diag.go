// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package diag defines the syntax and runtime error taxonomies and renders
// syntax errors against their source.
package diag

import (
	"fmt"

	"nickandperla.net/epistle/internal/token"
)

// SyntaxKind classifies lexical and syntactic errors.
type SyntaxKind int

const (
	UnexpectedSymbol SyntaxKind = iota
	Unterminated
	ExpectedSemicolon
	MalformedUserpath
	MalformedIfStatement
	ExpectedExpression
	BadExpression
	BadUserBlock
	BadDefinition
)

func (k SyntaxKind) String() string {
	switch k {
	case UnexpectedSymbol:
		return "unexpected symbol"
	case Unterminated:
		return "unterminated construct"
	case ExpectedSemicolon:
		return "expected ';'"
	case MalformedUserpath:
		return "malformed user address"
	case MalformedIfStatement:
		return "malformed if statement"
	case ExpectedExpression:
		return "expected an expression, found a value"
	case BadExpression:
		return "bad expression"
	case BadUserBlock:
		return "bad user block"
	case BadDefinition:
		return "bad definition"
	}
	return "syntax error"
}

// SyntaxError is the single error returned by the scanner or parser.
type SyntaxError struct {
	Kind   SyntaxKind
	Pos    token.Pos
	File   string
	Detail string
}

func (e *SyntaxError) Error() string {
	msg := e.Kind.String()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.File != "" {
		return fmt.Sprintf("%s:%s: %s", e.File, e.Pos, msg)
	}
	return fmt.Sprintf("%s: %s", e.Pos, msg)
}

// Syntax creates a SyntaxError.
func Syntax(kind SyntaxKind, pos token.Pos, format string, args ...any) *SyntaxError {
	return &SyntaxError{Kind: kind, Pos: pos, Detail: fmt.Sprintf(format, args...)}
}

// RuntimeKind classifies fatal runtime errors.
type RuntimeKind int

const (
	Arity RuntimeKind = iota
	Coercion
	Index
	Modifier
	TickLimit
	Journal
)

func (k RuntimeKind) String() string {
	switch k {
	case Arity:
		return "arity mismatch"
	case Coercion:
		return "coercion failed"
	case Index:
		return "index out of range"
	case Modifier:
		return "modifier failed"
	case TickLimit:
		return "tick limit exceeded"
	case Journal:
		return "journal write failed"
	}
	return "runtime error"
}

// RuntimeError aborts the current run.
type RuntimeError struct {
	Kind RuntimeKind
	Msg  string
	Err  error
}

func (e *RuntimeError) Error() string {
	msg := "runtime error: " + e.Kind.String()
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// Runtime creates a RuntimeError.
func Runtime(kind RuntimeKind, format string, args ...any) *RuntimeError {
	return &RuntimeError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}
