// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package expr

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Modifier post-processes a resolved value. Args are already resolved.
type Modifier func(s *Scope, v Value, args []Value) (Value, error)

// Modifiers maps modifier names to their functions.
type Modifiers map[string]Modifier

// ErrModifierArgs reports a modifier called with the wrong arguments. The
// pipe logs it and yields Null instead of aborting the run.
var ErrModifierArgs = errors.New("wrong modifier arguments")

func wantArgs(name string, args []Value, n int) error {
	if len(args) != n {
		return fmt.Errorf("%w: %s takes %d, got %d", ErrModifierArgs, name, n, len(args))
	}
	return nil
}

// DefaultModifiers returns a fresh set of the built-in modifiers.
func DefaultModifiers() Modifiers {
	return Modifiers{
		"chars":  modChars,
		"merge":  modMerge,
		"filter": modFilter,
		"len":    modLen,
		"upper":  caseModifier("upper", cases.Upper(language.Und)),
		"lower":  caseModifier("lower", cases.Lower(language.Und)),
		"title":  caseModifier("title", cases.Title(language.Und)),
		"split":  modSplit,
		"join":   modJoin,
		"trim":   modTrim,
	}
}

// modChars splits text into a tuple of one-character texts.
func modChars(s *Scope, v Value, args []Value) (Value, error) {
	if err := wantArgs("chars", args, 0); err != nil {
		return nil, err
	}
	str, err := s.Text(v)
	if err != nil {
		return nil, err
	}
	out := Tuple{Items: []Value{}}
	for _, r := range str {
		out.Items = append(out.Items, Text{Value: string(r)})
	}
	return out, nil
}

// modMerge joins the texts of a tuple with no separator.
func modMerge(s *Scope, v Value, args []Value) (Value, error) {
	if err := wantArgs("merge", args, 0); err != nil {
		return nil, err
	}
	parts, err := s.Strings(v)
	if err != nil {
		return nil, err
	}
	return Text{Value: strings.Join(parts, "")}, nil
}

// modFilter keeps the texts matching a regular expression.
func modFilter(s *Scope, v Value, args []Value) (Value, error) {
	if err := wantArgs("filter", args, 1); err != nil {
		return nil, err
	}
	pattern, err := s.Text(args[0])
	if err != nil {
		return nil, err
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	parts, err := s.Strings(v)
	if err != nil {
		return nil, err
	}
	out := Tuple{Items: []Value{}}
	for _, p := range parts {
		if re.MatchString(p) {
			out.Items = append(out.Items, Text{Value: p})
		}
	}
	return out, nil
}

func modLen(s *Scope, v Value, args []Value) (Value, error) {
	if err := wantArgs("len", args, 0); err != nil {
		return nil, err
	}
	if IsNull(v) {
		return Text{Value: "0"}, nil
	}
	n, ok := Len(v)
	if !ok {
		return nil, coercion("text or tuple", v)
	}
	return Text{Value: strconv.Itoa(n)}, nil
}

func caseModifier(name string, c cases.Caser) Modifier {
	return func(s *Scope, v Value, args []Value) (Value, error) {
		if err := wantArgs(name, args, 0); err != nil {
			return nil, err
		}
		str, err := s.Text(v)
		if err != nil {
			return nil, err
		}
		// Casers keep state between calls.
		c.Reset()
		return Text{Value: c.String(str)}, nil
	}
}

func modSplit(s *Scope, v Value, args []Value) (Value, error) {
	if err := wantArgs("split", args, 1); err != nil {
		return nil, err
	}
	str, err := s.Text(v)
	if err != nil {
		return nil, err
	}
	sep, err := s.Text(args[0])
	if err != nil {
		return nil, err
	}
	return TextTuple(strings.Split(str, sep)...), nil
}

func modJoin(s *Scope, v Value, args []Value) (Value, error) {
	if err := wantArgs("join", args, 1); err != nil {
		return nil, err
	}
	parts, err := s.Strings(v)
	if err != nil {
		return nil, err
	}
	sep, err := s.Text(args[0])
	if err != nil {
		return nil, err
	}
	return Text{Value: strings.Join(parts, sep)}, nil
}

func modTrim(s *Scope, v Value, args []Value) (Value, error) {
	if err := wantArgs("trim", args, 0); err != nil {
		return nil, err
	}
	str, err := s.Text(v)
	if err != nil {
		return nil, err
	}
	return Text{Value: strings.TrimSpace(str)}, nil
}
