// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package expr

import (
	"errors"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"nickandperla.net/epistle/internal/diag"
	"nickandperla.net/epistle/internal/mail"
)

// Runtime is the part of the interpreter instructions can reach. Every
// mutation it offers is deferred until the next tick.
type Runtime interface {
	AddServer(name string)
	AddUser(name, server string, reactions []Reaction)
	Send(m mail.Mail)
	Modifier(name string) (Modifier, bool)
	Logger() *slog.Logger
}

// Scope is what an instruction executes against: the runtime, the address of
// the acting user and that user's environment.
type Scope struct {
	Runtime Runtime
	Self    mail.Address
	Env     *Environment
}

// NewScope creates a scope for the given actor.
func NewScope(rt Runtime, self mail.Address, env *Environment) *Scope {
	return &Scope{Runtime: rt, Self: self, Env: env}
}

// Resolve evaluates expressions until none remain, including inside tuples
// and address halves. Resolving a resolved value has no effect.
func (s *Scope) Resolve(v Value) (Value, error) {
	for {
		switch x := v.(type) {
		case nil:
			return Null{}, nil
		case Expression:
			out, err := x.Instr.Exec(s)
			if err != nil {
				return nil, err
			}
			v = out
		case Tuple:
			items := make([]Value, len(x.Items))
			for i, item := range x.Items {
				r, err := s.Resolve(item)
				if err != nil {
					return nil, err
				}
				items[i] = r
			}
			return Tuple{Items: items}, nil
		case Address:
			user, err := s.Resolve(x.User)
			if err != nil {
				return nil, err
			}
			server, err := s.Resolve(x.Server)
			if err != nil {
				return nil, err
			}
			return Address{User: user, Server: server}, nil
		default:
			return v, nil
		}
	}
}

func coercion(want string, got Value) error {
	return diag.Runtime(diag.Coercion, "expected %s, found %s %s", want, got.Kind(), got)
}

// Text resolves v and requires text.
func (s *Scope) Text(v Value) (string, error) {
	r, err := s.Resolve(v)
	if err != nil {
		return "", err
	}
	if t, ok := r.(Text); ok {
		return t.Value, nil
	}
	return "", coercion("text", r)
}

// Tuple resolves v and requires a tuple.
func (s *Scope) Tuple(v Value) ([]Value, error) {
	r, err := s.Resolve(v)
	if err != nil {
		return nil, err
	}
	if t, ok := r.(Tuple); ok {
		return t.Items, nil
	}
	return nil, coercion("tuple", r)
}

// Unpack resolves v, returning the items of a tuple or v alone.
func (s *Scope) Unpack(v Value) ([]Value, error) {
	r, err := s.Resolve(v)
	if err != nil {
		return nil, err
	}
	if t, ok := r.(Tuple); ok {
		return t.Items, nil
	}
	return []Value{r}, nil
}

// Strings resolves v as Unpack does and requires every item to be text.
func (s *Scope) Strings(v Value) ([]string, error) {
	items, err := s.Unpack(v)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(items))
	for i, item := range items {
		t, ok := item.(Text)
		if !ok {
			return nil, coercion("text", item)
		}
		out[i] = t.Value
	}
	return out, nil
}

// Address resolves v and requires a user address with text halves.
func (s *Scope) Address(v Value) (mail.Address, error) {
	r, err := s.Resolve(v)
	if err != nil {
		return mail.Address{}, err
	}
	a, ok := r.(Address)
	if !ok {
		return mail.Address{}, coercion("address", r)
	}
	user, ok := a.User.(Text)
	if !ok {
		return mail.Address{}, coercion("text user name", a.User)
	}
	server, ok := a.Server.(Text)
	if !ok {
		return mail.Address{}, coercion("text server name", a.Server)
	}
	return mail.Address{User: user.Value, Server: server.Value}, nil
}

// Draft resolves v into a draft. Text becomes a subject-only draft; a tuple
// of at least two texts is (subject, body, attachments...).
func (s *Scope) Draft(v Value) (mail.Draft, error) {
	r, err := s.Resolve(v)
	if err != nil {
		return mail.Draft{}, err
	}
	switch x := r.(type) {
	case Text:
		return mail.Draft{Subject: x.Value}, nil
	case Tuple:
		if len(x.Items) < 2 {
			return mail.Draft{}, coercion("draft (subject, body, ...)", r)
		}
		parts := make([]string, len(x.Items))
		for i, item := range x.Items {
			t, ok := item.(Text)
			if !ok {
				return mail.Draft{}, coercion("text in draft", item)
			}
			parts[i] = t.Value
		}
		d := mail.Draft{Subject: parts[0], Body: parts[1]}
		if len(parts) > 2 {
			d.Attachments = parts[2:]
		}
		return d, nil
	}
	return mail.Draft{}, coercion("draft", r)
}

// Bool resolves v and reports its truthiness.
func (s *Scope) Bool(v Value) (bool, error) {
	r, err := s.Resolve(v)
	if err != nil {
		return false, err
	}
	return Truthy(r), nil
}

// Truthy reports the truthiness of a resolved value. Null, the empty tuple
// and the texts "", "0" and "false" (any case) are false.
func Truthy(v Value) bool {
	switch x := v.(type) {
	case nil, Null:
		return false
	case Text:
		switch strings.ToLower(x.Value) {
		case "", "0", "false":
			return false
		}
		return true
	case Tuple:
		return len(x.Items) > 0
	}
	return true
}

// Numeric lists the types Number can produce.
type Numeric interface {
	~int | ~int32 | ~int64 | ~uint | ~uint32 | ~uint64 | ~float32 | ~float64
}

// Number resolves v and parses its text as a number of type T. Integer types
// reject fractional input, and every type rejects values it cannot hold.
func Number[T Numeric](s *Scope, v Value) (T, error) {
	str, err := s.Text(v)
	if err != nil {
		return 0, err
	}
	str = strings.TrimSpace(str)
	fail := func(want string) (T, error) {
		return 0, diag.Runtime(diag.Coercion, "expected %s, found %q", want, str)
	}

	half := 0.5
	if T(half) != 0 {
		f, err := strconv.ParseFloat(str, 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return fail("number")
		}
		n := T(f)
		if err != nil || math.IsInf(float64(n), 0) && !math.IsInf(f, 0) {
			return fail("number in range")
		}
		return n, nil
	}

	if i, err := strconv.ParseInt(str, 10, 64); err == nil {
		return fromInt[T](i, fail)
	}
	if u, err := strconv.ParseUint(str, 10, 64); err == nil {
		n := T(u)
		if n < 0 || uint64(n) != u {
			return fail("integer in range")
		}
		return n, nil
	}
	f, err := strconv.ParseFloat(str, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return fail("number")
	}
	if f != math.Trunc(f) {
		return fail("integer")
	}
	if err != nil || f < math.MinInt64 || f >= math.MaxInt64 {
		return fail("integer in range")
	}
	return fromInt[T](int64(f), fail)
}

// fromInt converts i to the integer type T, failing when T cannot hold it.
func fromInt[T Numeric](i int64, fail func(string) (T, error)) (T, error) {
	n := T(i)
	if int64(n) != i || (n < 0) != (i < 0) {
		return fail("integer in range")
	}
	return n, nil
}
