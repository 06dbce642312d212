// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package expr

import "strings"

// Instruction is a node of the executable tree.
type Instruction interface {
	// Exec runs the instruction in s and returns its result.
	Exec(s *Scope) (Value, error)
	// String returns the source representation of the instruction.
	String() string
}

// CreateServer declares a server.
type CreateServer struct {
	Name Value
}

// CreateUser declares a user with its reactions.
type CreateUser struct {
	Name      Value
	Server    Value
	Reactions []Reaction
}

// MailTo sends a draft to an address. Its result is the draft sent.
type MailTo struct {
	Draft Value
	To    Value
}

// Concatenate joins two values (see Concat).
type Concatenate struct {
	Left  Value
	Right Value
}

// EnvRead looks a key, or a tuple of keys, up in the environment.
type EnvRead struct {
	Key Value
}

// Index selects one element of text or a tuple.
type Index struct {
	Operand Value
	Pos     Value
}

// Slice selects a range of text or a tuple. Nil bounds were omitted.
type Slice struct {
	Operand Value
	Start   Value
	End     Value
}

// Assign binds a name, or destructures into a tuple of names.
type Assign struct {
	Target  Value
	Operand Value
}

// Branch is one arm of a Conditional. The else arm has a nil Cond.
type Branch struct {
	Cond Value
	Body []Instruction
}

// Conditional runs the body of the first branch whose condition holds.
type Conditional struct {
	Branches []Branch
}

// Pipe passes a value through a named modifier.
type Pipe struct {
	Operand  Value
	Modifier Value
}

func (i CreateServer) String() string {
	return "!" + source(i.Name)
}

func (i CreateUser) String() string {
	var sb strings.Builder
	sb.WriteString("!" + Address{User: i.Name, Server: i.Server}.String())
	if len(i.Reactions) > 0 {
		sb.WriteString(" {")
		for _, r := range i.Reactions {
			sb.WriteString(" " + r.String() + ";")
		}
		sb.WriteString(" }")
	}
	return sb.String()
}

func (i MailTo) String() string      { return source(i.Draft) + " > " + source(i.To) }
func (i Concatenate) String() string { return source(i.Left) + " + " + source(i.Right) }
func (i EnvRead) String() string     { return "@" + source(i.Key) }
func (i Index) String() string       { return source(i.Operand) + "[" + source(i.Pos) + "]" }
func (i Assign) String() string      { return source(i.Target) + " = " + source(i.Operand) }
func (i Pipe) String() string        { return source(i.Operand) + " | " + source(i.Modifier) }

func (i Slice) String() string {
	var lo, hi string
	if i.Start != nil {
		lo = source(i.Start)
	}
	if i.End != nil {
		hi = source(i.End)
	}
	return source(i.Operand) + "[" + lo + ":" + hi + "]"
}

func (i Conditional) String() string {
	var sb strings.Builder
	for n, b := range i.Branches {
		switch {
		case n == 0:
			sb.WriteString("if " + source(b.Cond) + " ")
		case b.Cond != nil:
			sb.WriteString(" elif " + source(b.Cond) + " ")
		default:
			sb.WriteString(" else ")
		}
		sb.WriteString(BlockString(b.Body))
	}
	return sb.String()
}

// BlockString renders a block of instructions in braces.
func BlockString(block []Instruction) string {
	if len(block) == 0 {
		return "{}"
	}
	var sb strings.Builder
	sb.WriteString("{")
	for _, in := range block {
		sb.WriteString(" " + in.String() + ";")
	}
	sb.WriteString(" }")
	return sb.String()
}
