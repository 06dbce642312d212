// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package parser builds the instruction tree from a scanned token tree.
//
// Statements end in ';'. Each statement is a definition ('!'), an if chain,
// or an expression. Expressions are split at the loosest-binding operator
// (see token.Split) and both halves are parsed recursively.
package parser

import (
	"errors"

	"nickandperla.net/epistle/internal/diag"
	"nickandperla.net/epistle/internal/expr"
	"nickandperla.net/epistle/internal/scanner"
	"nickandperla.net/epistle/internal/token"
)

// ParseString scans and parses src. file is only used in errors.
func ParseString(src, file string) ([]expr.Instruction, error) {
	toks, err := scanner.Scan(src, file)
	if err != nil {
		return nil, err
	}
	prog, err := Parse(toks)
	if err != nil {
		var se *diag.SyntaxError
		if errors.As(err, &se) {
			se.File = file
		}
		return nil, err
	}
	return prog, nil
}

// Parse parses a token tree into a program. The first syntax error aborts
// parsing; no partial program is returned.
func Parse(toks []token.Token) ([]expr.Instruction, error) {
	return parseBlock(toks)
}

// statements splits toks at top-level semicolons. Empty statements are
// dropped.
func statements(toks []token.Token) ([][]token.Token, error) {
	if len(toks) == 0 {
		return nil, nil
	}
	last := toks[len(toks)-1]
	if last.Kind != token.SEMICOLON {
		return nil, diag.Syntax(diag.ExpectedSemicolon, last.Pos, "statement must end in ';'")
	}
	var out [][]token.Token
	from := 0
	for i, t := range toks {
		if t.Kind != token.SEMICOLON {
			continue
		}
		if i > from {
			out = append(out, toks[from:i])
		}
		from = i + 1
	}
	return out, nil
}

func parseBlock(toks []token.Token) ([]expr.Instruction, error) {
	stmts, err := statements(toks)
	if err != nil {
		return nil, err
	}
	prog := make([]expr.Instruction, 0, len(stmts))
	for _, stmt := range stmts {
		var in expr.Instruction
		switch stmt[0].Kind {
		case token.DEFINE:
			in, err = parseDefine(stmt)
		case token.IF:
			in, err = parseIf(stmt)
		case token.ELIF, token.ELSE:
			err = diag.Syntax(diag.MalformedIfStatement, stmt[0].Pos, "%s without if", stmt[0].Kind)
		default:
			in, err = parseStatement(stmt)
		}
		if err != nil {
			return nil, err
		}
		prog = append(prog, in)
	}
	return prog, nil
}

// parseStatement parses an expression statement. A parenthesized
// expression is accepted; a bare value is not.
func parseStatement(toks []token.Token) (expr.Instruction, error) {
	if len(toks) == 1 && toks[0].Kind == token.PARENS {
		v, err := parseValue(toks[0].Block, toks[0].Pos)
		if err != nil {
			return nil, err
		}
		if e, ok := v.(expr.Expression); ok {
			return e.Instr, nil
		}
		return nil, diag.Syntax(diag.ExpectedExpression, toks[0].Pos, "%s is not a statement", v.Kind())
	}
	return parseExpression(toks)
}

// parseDefine parses '!name' and '!<user@server> { reactions }'.
func parseDefine(toks []token.Token) (expr.Instruction, error) {
	def := toks[0]
	if len(toks) < 2 {
		return nil, diag.Syntax(diag.BadDefinition, def.Pos, "nothing to define")
	}
	if toks[1].Kind == token.ADDRESS {
		return parseUser(toks)
	}
	if toks[1].Kind == token.BRACES {
		return nil, diag.Syntax(diag.BadDefinition, toks[1].Pos, "cannot define a block")
	}
	// A computed server name is an expression; anything else is one token.
	if len(toks) > 2 && token.Split(toks[1:]) < 0 {
		return nil, diag.Syntax(diag.BadDefinition, toks[2].Pos, "unexpected %s after server name", toks[2].Kind)
	}
	name, err := parseValue(toks[1:], toks[1].Pos)
	if err != nil {
		return nil, err
	}
	if _, ok := name.(expr.Tuple); ok {
		return nil, diag.Syntax(diag.BadDefinition, toks[1].Pos, "cannot define a %s", name.Kind())
	}
	return expr.CreateServer{Name: name}, nil
}

func parseUser(toks []token.Token) (expr.Instruction, error) {
	addr := toks[1]
	if len(toks) > 3 {
		return nil, diag.Syntax(diag.BadDefinition, toks[3].Pos, "unexpected %s after user block", toks[3].Kind)
	}
	name, err := parseValue(addr.Name, addr.Pos)
	if err != nil {
		return nil, err
	}
	server, err := parseValue(addr.Server, addr.Pos)
	if err != nil {
		return nil, err
	}
	in := expr.CreateUser{Name: name, Server: server}
	if len(toks) == 3 {
		if toks[2].Kind != token.BRACES {
			return nil, diag.Syntax(diag.BadUserBlock, toks[2].Pos, "expected a reaction block, found %s", toks[2].Kind)
		}
		in.Reactions, err = parseUserBlock(toks[2].Block)
		if err != nil {
			return nil, err
		}
	}
	return in, nil
}

// parseUserBlock parses reactions of the form "pattern" { body };.
func parseUserBlock(toks []token.Token) ([]expr.Reaction, error) {
	stmts, err := statements(toks)
	if err != nil {
		return nil, err
	}
	reactions := make([]expr.Reaction, 0, len(stmts))
	for _, stmt := range stmts {
		if len(stmt) != 2 || stmt[0].Kind != token.TEXT || stmt[1].Kind != token.BRACES {
			return nil, diag.Syntax(diag.BadUserBlock, stmt[0].Pos, "a reaction is a quoted pattern followed by a block")
		}
		body, err := parseBlock(stmt[1].Block)
		if err != nil {
			return nil, err
		}
		r, err := expr.NewReaction(stmt[0].Text, body)
		if err != nil {
			return nil, diag.Syntax(diag.BadUserBlock, stmt[0].Pos, "bad pattern: %v", err)
		}
		reactions = append(reactions, r)
	}
	return reactions, nil
}

// parseIf parses an if chain. Each elif and else continues the group
// before it; else must come last.
func parseIf(toks []token.Token) (expr.Instruction, error) {
	var groups [][]token.Token
	from := 0
	for i, t := range toks {
		if i > 0 && t.Kind.IsKeyword() {
			groups = append(groups, toks[from:i])
			from = i
		}
	}
	groups = append(groups, toks[from:])

	var chain expr.Conditional
	for n, g := range groups {
		kw := g[0]
		switch {
		case kw.Kind == token.IF && n > 0:
			return nil, diag.Syntax(diag.MalformedIfStatement, kw.Pos, "if inside an if chain needs a ';' before it")
		case kw.Kind == token.ELSE:
			if len(g) != 2 || g[1].Kind != token.BRACES {
				return nil, diag.Syntax(diag.MalformedIfStatement, kw.Pos, "else takes a block and nothing else")
			}
			if n != len(groups)-1 {
				return nil, diag.Syntax(diag.MalformedIfStatement, groups[n+1][0].Pos, "else must end the chain")
			}
			body, err := parseBlock(g[1].Block)
			if err != nil {
				return nil, err
			}
			chain.Branches = append(chain.Branches, expr.Branch{Body: body})
		default:
			if len(g) < 3 || g[len(g)-1].Kind != token.BRACES {
				return nil, diag.Syntax(diag.MalformedIfStatement, kw.Pos, "%s needs a condition and a block", kw.Kind)
			}
			cond, err := parseValue(g[1:len(g)-1], kw.Pos)
			if err != nil {
				return nil, err
			}
			body, err := parseBlock(g[len(g)-1].Block)
			if err != nil {
				return nil, err
			}
			chain.Branches = append(chain.Branches, expr.Branch{Cond: cond, Body: body})
		}
	}
	return chain, nil
}
