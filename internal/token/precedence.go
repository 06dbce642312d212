// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package token

// Operator ranks. A higher rank binds looser and is split first.
const (
	RankNone    = 0
	RankReceive = 1
	RankIndex   = 2
	RankPipe    = 3
	RankPlus    = 1000
	RankArrow   = 1001
	RankAssign  = 1002
)

// Rank returns the splitting rank of an operator kind, or RankNone.
func Rank(k Kind) int {
	switch k {
	case ASSIGN:
		return RankAssign
	case ARROW:
		return RankArrow
	case PLUS:
		return RankPlus
	case PIPE:
		return RankPipe
	case INDEX, SLICE:
		return RankIndex
	case RECEIVE:
		return RankReceive
	}
	return RankNone
}

// RightAssoc returns true for operators that accept ties when choosing the
// split point, so the last occurrence wins.
func RightAssoc(k Kind) bool {
	switch k {
	case PIPE, INDEX, SLICE:
		return true
	}
	return false
}

// Postfix returns true for operators whose right operand must be empty.
func Postfix(k Kind) bool {
	return k == INDEX || k == SLICE
}

// Prefix returns true for operators whose left operand must be empty.
func Prefix(k Kind) bool {
	return k == RECEIVE
}

// Split finds the operator to split a flat token slice at. It returns -1 if
// the slice holds no operator.
func Split(toks []Token) int {
	pos, best := -1, RankNone
	for i, t := range toks {
		r := Rank(t.Kind)
		if r == RankNone {
			continue
		}
		if r > best || (RightAssoc(t.Kind) && r == best) {
			pos, best = i, r
		}
	}
	return pos
}
