// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package parser

import (
	"nickandperla.net/epistle/internal/diag"
	"nickandperla.net/epistle/internal/expr"
	"nickandperla.net/epistle/internal/token"
)

// parseValue parses toks as a value: a single terminal token, or an
// expression wrapped for lazy evaluation. at positions errors for an empty
// slice.
func parseValue(toks []token.Token, at token.Pos) (expr.Value, error) {
	if len(toks) == 0 {
		return nil, diag.Syntax(diag.BadExpression, at, "missing value")
	}
	if token.Split(toks) < 0 {
		if len(toks) != 1 {
			return nil, diag.Syntax(diag.BadExpression, toks[1].Pos, "unexpected %s after value", toks[1].Kind)
		}
		return tokenValue(toks[0])
	}
	in, err := parseExpression(toks)
	if err != nil {
		return nil, err
	}
	return expr.Expression{Instr: in}, nil
}

// tokenValue converts a terminal token to a value.
func tokenValue(t token.Token) (expr.Value, error) {
	switch t.Kind {
	case token.TEXT, token.IDENT:
		return expr.Text{Value: t.Text}, nil
	case token.ADDRESS:
		user, err := parseValue(t.Name, t.Pos)
		if err != nil {
			return nil, err
		}
		server, err := parseValue(t.Server, t.Pos)
		if err != nil {
			return nil, err
		}
		return expr.Address{User: user, Server: server}, nil
	case token.PARENS:
		return parseParens(t)
	case token.BRACES:
		return nil, diag.Syntax(diag.BadExpression, t.Pos, "a block is not a value")
	}
	return nil, diag.Syntax(diag.BadExpression, t.Pos, "%s is not a value", t.Kind)
}

// parseParens parses a tuple literal, or a grouped value when the
// parentheses hold no top-level comma. "()" is the empty tuple and "(a,)"
// a tuple of one.
func parseParens(t token.Token) (expr.Value, error) {
	if len(t.Block) == 0 {
		return expr.Tuple{Items: []expr.Value{}}, nil
	}
	items, isTuple, err := tupleItems(t.Block, t.Pos)
	if err != nil {
		return nil, err
	}
	if !isTuple {
		return items[0], nil
	}
	return expr.Tuple{Items: items}, nil
}

// tupleItems splits toks at top-level commas and parses each part. A single
// trailing comma is allowed.
func tupleItems(toks []token.Token, at token.Pos) ([]expr.Value, bool, error) {
	var parts [][]token.Token
	from, sepAt := 0, at
	for i, t := range toks {
		if t.Kind == token.COMMA {
			parts = append(parts, toks[from:i])
			from, sepAt = i+1, t.Pos
		}
	}
	isTuple := len(parts) > 0
	if from < len(toks) || !isTuple {
		parts = append(parts, toks[from:])
	}
	items := make([]expr.Value, 0, len(parts))
	for _, p := range parts {
		v, err := parseValue(p, sepAt)
		if err != nil {
			return nil, false, err
		}
		items = append(items, v)
	}
	return items, isTuple, nil
}

// parseExpression splits toks at its loosest operator.
func parseExpression(toks []token.Token) (expr.Instruction, error) {
	i := token.Split(toks)
	if i < 0 {
		return nil, diag.Syntax(diag.ExpectedExpression, toks[0].Pos, "%s is a value, not an expression", toks[0].Kind)
	}
	op := toks[i]
	left, right := toks[:i], toks[i+1:]

	switch {
	case token.Prefix(op.Kind):
		if len(left) > 0 {
			return nil, diag.Syntax(diag.BadExpression, op.Pos, "%s takes no left operand", op.Kind)
		}
		key, err := parseValue(right, op.Pos)
		if err != nil {
			return nil, err
		}
		return expr.EnvRead{Key: key}, nil

	case token.Postfix(op.Kind):
		if len(right) > 0 {
			return nil, diag.Syntax(diag.BadExpression, right[0].Pos, "unexpected %s after %s", right[0].Kind, op.Kind)
		}
		operand, err := parseValue(left, op.Pos)
		if err != nil {
			return nil, err
		}
		if op.Kind == token.INDEX {
			pos, err := parseValue(op.Block, op.Pos)
			if err != nil {
				return nil, err
			}
			return expr.Index{Operand: operand, Pos: pos}, nil
		}
		in := expr.Slice{Operand: operand}
		if op.Start != nil {
			if in.Start, err = parseValue(op.Start, op.Pos); err != nil {
				return nil, err
			}
		}
		if op.End != nil {
			if in.End, err = parseValue(op.End, op.Pos); err != nil {
				return nil, err
			}
		}
		return in, nil
	}

	lhs, err := parseValue(left, op.Pos)
	if err != nil {
		return nil, err
	}
	if op.Kind == token.PIPE {
		mod, err := parseModifier(right, op.Pos)
		if err != nil {
			return nil, err
		}
		return expr.Pipe{Operand: lhs, Modifier: mod}, nil
	}
	rhs, err := parseValue(right, op.Pos)
	if err != nil {
		return nil, err
	}
	switch op.Kind {
	case token.ARROW:
		return expr.MailTo{Draft: lhs, To: rhs}, nil
	case token.PLUS:
		return expr.Concatenate{Left: lhs, Right: rhs}, nil
	case token.ASSIGN:
		return expr.Assign{Target: lhs, Operand: rhs}, nil
	}
	return nil, diag.Syntax(diag.BadExpression, op.Pos, "unexpected %s", op.Kind)
}

// parseModifier parses the right side of a pipe. name(args...) is shorthand
// for the tuple (name, args...).
func parseModifier(toks []token.Token, at token.Pos) (expr.Value, error) {
	if len(toks) == 2 && token.Split(toks) < 0 &&
		(toks[0].Kind == token.IDENT || toks[0].Kind == token.TEXT) && toks[1].Kind == token.PARENS {
		items := []expr.Value{expr.Text{Value: toks[0].Text}}
		if len(toks[1].Block) > 0 {
			args, _, err := tupleItems(toks[1].Block, toks[1].Pos)
			if err != nil {
				return nil, err
			}
			items = append(items, args...)
		}
		return expr.Tuple{Items: items}, nil
	}
	return parseValue(toks, at)
}
