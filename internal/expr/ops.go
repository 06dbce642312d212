// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package expr

import "nickandperla.net/epistle/internal/diag"

// Len returns the length of resolved text (in runes) or a tuple.
func Len(v Value) (int, bool) {
	switch x := v.(type) {
	case Text:
		return len([]rune(x.Value)), true
	case Tuple:
		return len(x.Items), true
	}
	return 0, false
}

// normalize adds n to a negative offset once.
func normalize(pos, n int) int {
	if pos < 0 {
		return pos + n
	}
	return pos
}

// At returns the element of resolved text or a tuple at pos. Negative
// positions count from the end.
func At(v Value, pos int) (Value, error) {
	n, ok := Len(v)
	if !ok {
		return nil, coercion("text or tuple", v)
	}
	i := normalize(pos, n)
	if i < 0 || i >= n {
		return nil, diag.Runtime(diag.Index, "index %d out of range for length %d", pos, n)
	}
	switch x := v.(type) {
	case Text:
		return Text{Value: string([]rune(x.Value)[i])}, nil
	case Tuple:
		return x.Items[i], nil
	}
	return nil, coercion("text or tuple", v)
}

// Range returns the part of resolved text or a tuple between start and end.
// A nil bound means the beginning or the end; negative bounds count from the
// end.
func Range(v Value, start, end *int) (Value, error) {
	n, ok := Len(v)
	if !ok {
		return nil, coercion("text or tuple", v)
	}
	lo, hi := 0, n
	if start != nil {
		lo = normalize(*start, n)
	}
	if end != nil {
		hi = normalize(*end, n)
	}
	if lo < 0 || hi > n || lo > hi {
		return nil, diag.Runtime(diag.Index, "slice [%d:%d] out of range for length %d", lo, hi, n)
	}
	switch x := v.(type) {
	case Text:
		return Text{Value: string([]rune(x.Value)[lo:hi])}, nil
	case Tuple:
		items := make([]Value, hi-lo)
		copy(items, x.Items[lo:hi])
		return Tuple{Items: items}, nil
	}
	return nil, coercion("text or tuple", v)
}

// Concat joins two resolved values. Two texts concatenate; otherwise both
// sides merge into one tuple, a non-tuple side counting as one element.
// Null is the identity on either side.
func Concat(a, b Value) Value {
	if IsNull(a) {
		return b
	}
	if IsNull(b) {
		return a
	}
	ta, aText := a.(Text)
	tb, bText := b.(Text)
	if aText && bText {
		return Text{Value: ta.Value + tb.Value}
	}
	var items []Value
	items = append(items, elements(a)...)
	items = append(items, elements(b)...)
	return Tuple{Items: items}
}

func elements(v Value) []Value {
	if t, ok := v.(Tuple); ok {
		return t.Items
	}
	return []Value{v}
}
