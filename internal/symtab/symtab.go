// Package symtab implements the symbol table: a chain of lexical scopes
// mapping names to typed slots. The root scope is seeded with the global
// builtins (print, assert, string, type, ...), mirroring the teacher VM's
// globals map; every nested block, function call and foreach iteration
// pushes a child Scope rather than indexing into a flat slot array, which
// keeps closures simple (capture the Scope pointer, not a stack offset).
package symtab

import (
	"egg/internal/types"
	"egg/internal/value"
)

type slot struct {
	typ         *types.Type
	value       value.Value
	initialized bool
	readonly    bool
}

// Scope is one lexical level: a set of declared names plus a parent to walk
// when a lookup misses locally. Function literals capture the *Scope active
// at their definition point as their closure environment.
type Scope struct {
	parent *Scope
	vars   map[string]*slot
}

func NewRoot() *Scope {
	return &Scope{vars: make(map[string]*slot)}
}

func (s *Scope) Child() *Scope {
	return &Scope{parent: s, vars: make(map[string]*slot)}
}

// Declare introduces name in this scope, shadowing any outer binding of the
// same name. ok is false if name is already declared in this exact scope
// (shadowing an outer scope is fine; redeclaring within one block is not).
func (s *Scope) Declare(name string, typ *types.Type, v value.Value) bool {
	if _, exists := s.vars[name]; exists {
		return false
	}
	s.vars[name] = &slot{typ: typ, value: v, initialized: true}
	return true
}

// DeclareUninitialized introduces name in this scope with no value yet.
// Reading it before a Set reports uninitialized via GetInitialized's third
// result, the way a `var x: int;` with no initializer leaves x unreadable
// until assigned.
func (s *Scope) DeclareUninitialized(name string, typ *types.Type) bool {
	if _, exists := s.vars[name]; exists {
		return false
	}
	s.vars[name] = &slot{typ: typ, value: value.Null}
	return true
}

// DeclareBuiltin is Declare without the redeclaration guard, used once at
// root-scope construction time. Builtin bindings are read-only: user code
// may shadow them in an inner scope but never overwrite them.
func (s *Scope) DeclareBuiltin(name string, v value.Value) {
	s.vars[name] = &slot{typ: nil, value: v, initialized: true, readonly: true}
}

// IsReadOnly reports whether name's nearest binding refuses assignment.
func (s *Scope) IsReadOnly(name string) bool {
	sl, _ := s.lookup(name)
	return sl != nil && sl.readonly
}

func (s *Scope) lookup(name string) (*slot, *Scope) {
	for sc := s; sc != nil; sc = sc.parent {
		if sl, ok := sc.vars[name]; ok {
			return sl, sc
		}
	}
	return nil, nil
}

// Get returns name's current value and whether it is declared at all. A
// declared-but-never-assigned slot still reports ok=true here; callers that
// care about initialization use GetInitialized instead.
func (s *Scope) Get(name string) (value.Value, bool) {
	sl, _ := s.lookup(name)
	if sl == nil {
		return value.Void, false
	}
	return sl.value, true
}

// GetInitialized returns name's value, whether it is declared, and whether
// it has been assigned since declaration.
func (s *Scope) GetInitialized(name string) (v value.Value, declared, initialized bool) {
	sl, _ := s.lookup(name)
	if sl == nil {
		return value.Void, false, false
	}
	return sl.value, true, sl.initialized
}

func (s *Scope) Type(name string) (*types.Type, bool) {
	sl, _ := s.lookup(name)
	if sl == nil {
		return nil, false
	}
	return sl.typ, true
}

// Set mutates the nearest binding of name in the chain, returning the value
// it held beforehand so the executor can release its hard reference. ok is
// false if the name is undeclared anywhere in the chain or the binding is
// read-only (callers distinguish the two via IsReadOnly).
func (s *Scope) Set(name string, v value.Value) (old value.Value, ok bool) {
	sl, _ := s.lookup(name)
	if sl == nil || sl.readonly {
		return value.Void, false
	}
	old = sl.value
	sl.value = v
	sl.initialized = true
	return old, true
}

// Has reports local-or-outer declaration, used by the executor's
// shadowing diagnostic.
func (s *Scope) Has(name string) bool {
	sl, _ := s.lookup(name)
	return sl != nil
}

// HasLocal reports declaration in this exact scope only.
func (s *Scope) HasLocal(name string) bool {
	_, ok := s.vars[name]
	return ok
}

// LocalValues returns the current values of every name declared directly in
// this scope (not its ancestors), used by the executor to release the hard
// references a scope held once that scope is discarded.
func (s *Scope) LocalValues() []value.Value {
	vals := make([]value.Value, 0, len(s.vars))
	for _, sl := range s.vars {
		vals = append(vals, sl.value)
	}
	return vals
}

// SoftLinks collects the ids of every object-valued binding reachable from
// this scope outward, letting a captured Scope participate in basket
// tracing without the basket needing to know about scopes at all: the
// Function object exposes its CapturedScope's links through this.
func (s *Scope) SoftLinks(idOf func(value.Value) (int, bool)) []int {
	var ids []int
	for sc := s; sc != nil; sc = sc.parent {
		for _, sl := range sc.vars {
			if id, ok := idOf(sl.value); ok {
				ids = append(ids, id)
			}
		}
	}
	return ids
}

func NewGlobalScope(builtins map[string]value.Value) *Scope {
	root := NewRoot()
	for name, v := range builtins {
		root.DeclareBuiltin(name, v)
	}
	return root
}
