// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package expr

import "sort"

// Environment is a per-user variable store. It persists across deliveries
// and is only touched from the interpreter's goroutine.
type Environment struct {
	store map[string]Value
}

// NewEnvironment creates a new empty environment.
func NewEnvironment() *Environment {
	return &Environment{
		store: make(map[string]Value),
	}
}

// Get retrieves a value by name. Returns Null if not found.
func (n *Environment) Get(name string) Value {
	if v, ok := n.store[name]; ok {
		return v
	}
	return Null{}
}

// Set stores a value by name. Storing Null removes the binding.
func (n *Environment) Set(name string, v Value) {
	if IsNull(v) {
		delete(n.store, name)
		return
	}
	n.store[name] = v
}

// Has returns true if the name is bound.
func (n *Environment) Has(name string) bool {
	_, ok := n.store[name]
	return ok
}

// Keys returns the bound names in sorted order.
func (n *Environment) Keys() []string {
	keys := make([]string, 0, len(n.store))
	for k := range n.store {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of bindings.
func (n *Environment) Len() int {
	return len(n.store)
}
