// Package object implements the polymorphic heap objects the runtime
// allocates (vanilla arrays/objects, user functions, iterators, the
// exception shape, and the curried builtins) plus the basket: the
// reference-counted, cycle-collecting allocator those objects live in.
//
// Per the design notes, collectables are identified by a stable index
// into an arena the basket owns rather than by raw pointer, so tracing
// never has to worry about an object being destroyed mid-trace; soft
// edges are index lists resolved back through the basket.
package object

import (
	"sync"

	"egg/internal/value"
)

// Collectable is anything the basket can track. ID is assigned by the
// basket on Add and is stable for the object's lifetime. SoftLinks
// returns the ids of every other collectable this object keeps alive for
// tracing purposes only (it does not pin them).
type Collectable interface {
	ID() int
	SetID(id int)
	SoftLinks() []int
}

type entry struct {
	obj  Collectable
	hard int32
	root bool
}

// Basket owns every collectable allocated by one interpreter instance.
// Collectables must not be shared across baskets.
type Basket struct {
	mu      sync.Mutex
	members map[int]*entry
	nextID  int
}

func NewBasket() *Basket {
	return &Basket{members: make(map[int]*entry)}
}

// Add places obj under the basket's management, optionally rooting it
// (giving it an initial hard reference) immediately.
func (b *Basket) Add(obj Collectable, root bool) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	obj.SetID(id)
	e := &entry{obj: obj}
	if root {
		e.hard = 1
		e.root = true
	}
	b.members[id] = e
	return id
}

// HardRetain increments an object's pinning reference count.
func (b *Basket) HardRetain(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if e, ok := b.members[id]; ok {
		e.hard++
		e.root = true
	}
}

// HardRelease decrements an object's pinning reference count. Dropping the
// last hard reference demotes it to unrooted; it is not destroyed until a
// VisitGarbage pass confirms it is unreachable from any remaining root.
func (b *Basket) HardRelease(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.members[id]
	if !ok {
		return
	}
	if e.hard > 0 {
		e.hard--
	}
	if e.hard == 0 {
		e.root = false
	}
}

// Disposer is implemented by collectables that hold a resource beyond plain
// memory (the Generator's background goroutine, notably). VisitGarbage and
// VisitPurge call Dispose on any reclaimed member that implements it, the
// way the teacher VM's own basket release hook finalizes file handles.
type Disposer interface {
	Dispose()
}

// asCollectable recovers the basket's view of a Value's object payload, for
// callers (the executor) that only ever see value.Object. Non-object values
// (ints, strings, null, ...) simply have nothing to retain.
func asCollectable(v value.Value) (Collectable, bool) {
	o := v.AsObject()
	if o == nil {
		return nil, false
	}
	c, ok := o.(Collectable)
	return c, ok
}

// Retain adds a hard reference to v's underlying object, if it has one. It
// is the executor's half of rooting: every value a scope slot, parameter
// binding, or in-flight expression result holds should be retained for as
// long as that holder is alive.
func (b *Basket) Retain(v value.Value) {
	if c, ok := asCollectable(v); ok {
		b.HardRetain(c.ID())
	}
}

// Release drops the hard reference Retain added. It never deletes anything
// itself; a value dropped to zero hard references is only actually reclaimed
// by a later VisitGarbage pass, which is what makes Retain/Release safe to
// call in any order relative to a concurrent generator goroutine.
func (b *Basket) Release(v value.Value) {
	if c, ok := asCollectable(v); ok {
		b.HardRelease(c.ID())
	}
}

// VisitGarbage traces from every rooted member via owned soft links,
// removes every unreachable member from the basket, and invokes visitor
// on each (typically to let it release its own soft-retained payloads).
func (b *Basket) VisitGarbage(visitor func(Collectable)) {
	b.mu.Lock()
	reachable := make(map[int]bool)
	var mark func(id int)
	mark = func(id int) {
		if reachable[id] {
			return
		}
		e, ok := b.members[id]
		if !ok {
			return
		}
		reachable[id] = true
		for _, link := range e.obj.SoftLinks() {
			mark(link)
		}
	}
	for id, e := range b.members {
		if e.root {
			mark(id)
		}
	}
	var dead []Collectable
	for id, e := range b.members {
		if !reachable[id] {
			dead = append(dead, e.obj)
			delete(b.members, id)
		}
	}
	b.mu.Unlock()
	for _, obj := range dead {
		if d, ok := obj.(Disposer); ok {
			d.Dispose()
		}
		visitor(obj)
	}
}

// VisitPurge unconditionally drops every member, used on interpreter
// shutdown.
func (b *Basket) VisitPurge(visitor func(Collectable)) {
	b.mu.Lock()
	all := make([]Collectable, 0, len(b.members))
	for _, e := range b.members {
		all = append(all, e.obj)
	}
	b.members = make(map[int]*entry)
	b.mu.Unlock()
	for _, obj := range all {
		if d, ok := obj.(Disposer); ok {
			d.Dispose()
		}
		visitor(obj)
	}
}

// Len reports how many collectables the basket currently owns, for tests
// and diagnostics.
func (b *Basket) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.members)
}

// collectableBase gives concrete object kinds their ID bookkeeping without
// repeating the same three lines on every type.
type collectableBase struct {
	id int
}

func (c *collectableBase) ID() int     { return c.id }
func (c *collectableBase) SetID(id int) { c.id = id }
