// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package expr

import (
	"errors"

	"nickandperla.net/epistle/internal/diag"
)

// RunBlock executes instructions in order, discarding their results. The
// first error aborts the block.
func RunBlock(s *Scope, block []Instruction) error {
	for _, in := range block {
		if _, err := in.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (i CreateServer) Exec(s *Scope) (Value, error) {
	name, err := s.Text(i.Name)
	if err != nil {
		return nil, err
	}
	s.Runtime.AddServer(name)
	return Null{}, nil
}

func (i CreateUser) Exec(s *Scope) (Value, error) {
	name, err := s.Text(i.Name)
	if err != nil {
		return nil, err
	}
	server, err := s.Text(i.Server)
	if err != nil {
		return nil, err
	}
	s.Runtime.AddUser(name, server, i.Reactions)
	return Null{}, nil
}

func (i MailTo) Exec(s *Scope) (Value, error) {
	d, err := s.Draft(i.Draft)
	if err != nil {
		return nil, err
	}
	to, err := s.Address(i.To)
	if err != nil {
		return nil, err
	}
	s.Runtime.Send(d.Seal(s.Self, to))
	out := TextTuple(d.Subject, d.Body)
	for _, a := range d.Attachments {
		out.Items = append(out.Items, Text{Value: a})
	}
	return out, nil
}

func (i Concatenate) Exec(s *Scope) (Value, error) {
	left, err := s.Resolve(i.Left)
	if err != nil {
		return nil, err
	}
	right, err := s.Resolve(i.Right)
	if err != nil {
		return nil, err
	}
	return Concat(left, right), nil
}

func (i EnvRead) Exec(s *Scope) (Value, error) {
	key, err := s.Resolve(i.Key)
	if err != nil {
		return nil, err
	}
	return lookup(s.Env, key)
}

func lookup(env *Environment, key Value) (Value, error) {
	switch k := key.(type) {
	case Text:
		return env.Get(k.Value), nil
	case Tuple:
		items := make([]Value, len(k.Items))
		for n, item := range k.Items {
			v, err := lookup(env, item)
			if err != nil {
				return nil, err
			}
			items[n] = v
		}
		return Tuple{Items: items}, nil
	}
	return nil, coercion("text or tuple key", key)
}

func (i Index) Exec(s *Scope) (Value, error) {
	v, err := s.Resolve(i.Operand)
	if err != nil {
		return nil, err
	}
	pos, err := Number[int](s, i.Pos)
	if err != nil {
		return nil, err
	}
	return At(v, pos)
}

func (i Slice) Exec(s *Scope) (Value, error) {
	v, err := s.Resolve(i.Operand)
	if err != nil {
		return nil, err
	}
	start, err := bound(s, i.Start)
	if err != nil {
		return nil, err
	}
	end, err := bound(s, i.End)
	if err != nil {
		return nil, err
	}
	return Range(v, start, end)
}

func bound(s *Scope, v Value) (*int, error) {
	if v == nil {
		return nil, nil
	}
	n, err := Number[int](s, v)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (i Assign) Exec(s *Scope) (Value, error) {
	target, err := s.Resolve(i.Target)
	if err != nil {
		return nil, err
	}
	v, err := s.Resolve(i.Operand)
	if err != nil {
		return nil, err
	}
	if err := bind(s.Env, target, v); err != nil {
		return nil, err
	}
	return v, nil
}

func bind(env *Environment, target, v Value) error {
	switch t := target.(type) {
	case Text:
		env.Set(t.Value, v)
		return nil
	case Tuple:
		items, ok := v.(Tuple)
		if !ok {
			return diag.Runtime(diag.Arity, "cannot destructure %s %s into %d names", v.Kind(), v, len(t.Items))
		}
		if len(items.Items) != len(t.Items) {
			return diag.Runtime(diag.Arity, "cannot destructure %d values into %d names", len(items.Items), len(t.Items))
		}
		for n, name := range t.Items {
			if err := bind(env, name, items.Items[n]); err != nil {
				return err
			}
		}
		return nil
	}
	return coercion("name or tuple of names", target)
}

func (i Conditional) Exec(s *Scope) (Value, error) {
	for _, b := range i.Branches {
		if b.Cond != nil {
			ok, err := s.Bool(b.Cond)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
		}
		return Null{}, RunBlock(s, b.Body)
	}
	return Null{}, nil
}

func (i Pipe) Exec(s *Scope) (Value, error) {
	v, err := s.Resolve(i.Operand)
	if err != nil {
		return nil, err
	}
	call, err := s.Unpack(i.Modifier)
	if err != nil {
		return nil, err
	}
	if len(call) == 0 {
		return nil, coercion("modifier name", Tuple{})
	}
	name, ok := call[0].(Text)
	if !ok {
		return nil, coercion("modifier name", call[0])
	}
	log := s.Runtime.Logger()
	mod, ok := s.Runtime.Modifier(name.Value)
	if !ok {
		log.Warn("unknown modifier", "modifier", name.Value, "actor", s.Self.String())
		return Null{}, nil
	}
	out, err := mod(s, v, call[1:])
	if errors.Is(err, ErrModifierArgs) {
		log.Warn("bad modifier arguments", "modifier", name.Value, "actor", s.Self.String(), "error", err)
		return Null{}, nil
	}
	if err != nil {
		var rt *diag.RuntimeError
		if errors.As(err, &rt) {
			return nil, err
		}
		return nil, &diag.RuntimeError{Kind: diag.Modifier, Msg: name.Value, Err: err}
	}
	if out == nil {
		return Null{}, nil
	}
	return out, nil
}
