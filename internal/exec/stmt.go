package exec

import (
	"strings"

	"egg/internal/ast"
	"egg/internal/object"
	"egg/internal/types"
	"egg/internal/value"
)

func (c *Context) VisitBlock(n *ast.Block) value.Value {
	return c.withChildScope(func() value.Value {
		for _, stmt := range n.Stmts {
			r := c.execStmt(stmt)
			if isFlow(r) {
				return r
			}
		}
		return value.Void
	})
}

func (c *Context) VisitDeclare(n *ast.Declare) value.Value {
	if c.scope.Has(n.Name) && !c.scope.HasLocal(n.Name) {
		c.warnf("%s hides an outer declaration of the same name", n.Name)
	}
	if n.Init == nil {
		t := n.Type
		if t == nil {
			t = types.AnyQ
		}
		if !c.scope.DeclareUninitialized(n.Name, t) {
			c.loc = n.Loc()
			return c.Raise("%s is already declared in this scope", n.Name)
		}
		return value.Void
	}
	v := c.eval(n.Init)
	if isFlow(v) {
		return v
	}
	t := n.Type
	if t == nil {
		t = runtimeTypeOf(v)
	} else {
		coerced, ok := coerceAssign(t, v)
		if !ok {
			c.loc = n.Loc()
			return c.Raise("%s: cannot initialise %s with a value of type %s", n.Name, t.String(), runtimeTypeOf(v).String())
		}
		v = coerced
	}
	if !c.scope.Declare(n.Name, t, v) {
		c.loc = n.Loc()
		return c.Raise("%s is already declared in this scope", n.Name)
	}
	c.basket.Retain(v)
	return value.Void
}

// assignee is an addressable slot. Resolving an lvalue evaluates its
// subexpressions exactly once, before the right-hand side runs, keeping
// evaluation strictly left to right even for `a[f()] = g()`.
type assignee struct {
	get func() value.Value
	set func(v value.Value) value.Value
}

func (c *Context) resolveAssignee(target ast.Expr) (assignee, value.Value) {
	switch t := target.(type) {
	case *ast.Identifier:
		name := t.Name
		return assignee{
			get: func() value.Value {
				v, declared, initialized := c.scope.GetInitialized(name)
				if !declared {
					return c.Raise("undefined reference: %s", name)
				}
				if !initialized {
					return c.Raise("%s is used before being assigned a value", name)
				}
				return v
			},
			set: func(v value.Value) value.Value {
				if c.scope.IsReadOnly(name) {
					return c.Raise("%s: symbol is read-only", name)
				}
				if declType, ok := c.scope.Type(name); ok && declType != nil {
					coerced, ok := coerceAssign(declType, v)
					if !ok {
						return c.Raise("%s: cannot assign a value of type %s to %s", name, runtimeTypeOf(v).String(), declType.String())
					}
					v = coerced
				}
				old, ok := c.scope.Set(name, v)
				if !ok {
					return c.Raise("undefined reference: %s", name)
				}
				c.basket.Retain(v)
				c.basket.Release(old)
				return v
			},
		}, value.Void
	case *ast.Dot:
		obj := c.eval(t.Object)
		if isFlow(obj) {
			return assignee{}, obj
		}
		o := obj.AsObject()
		if o == nil {
			return assignee{}, c.Raise("value has no properties")
		}
		name := t.Name
		return assignee{
			get: func() value.Value {
				v, ok := o.GetProperty(name)
				if !ok {
					return c.Raise("no property named %s", name)
				}
				return v
			},
			set: func(v value.Value) value.Value {
				if !o.SetProperty(name, v) {
					return c.Raise("cannot set property %s", name)
				}
				return v
			},
		}, value.Void
	case *ast.Brackets:
		obj := c.eval(t.Object)
		if isFlow(obj) {
			return assignee{}, obj
		}
		idx := c.eval(t.Index)
		if isFlow(idx) {
			return assignee{}, idx
		}
		o := obj.AsObject()
		if o == nil {
			return assignee{}, c.Raise("value is not indexable")
		}
		return assignee{
			get: func() value.Value {
				v, ok := o.GetIndex(idx)
				if !ok {
					return c.Raise("index out of range")
				}
				return v
			},
			set: func(v value.Value) value.Value {
				if !o.SetIndex(idx, v) {
					return c.Raise("cannot set index")
				}
				return v
			},
		}, value.Void
	default:
		return assignee{}, c.Raise("invalid assignment target")
	}
}

func (c *Context) VisitAssign(n *ast.Assign) value.Value {
	slot, bad := c.resolveAssignee(n.Target)
	if isFlow(bad) {
		return bad
	}
	rv := c.eval(n.Value)
	if isFlow(rv) {
		return rv
	}
	if n.Operator != "=" {
		cur := slot.get()
		if isFlow(cur) {
			return cur
		}
		op := strings.TrimSuffix(n.Operator, "=")
		combined, ok := c.binaryOp(op, cur, rv)
		if !ok {
			c.loc = n.Loc()
			return c.Raise("%s: invalid operands", n.Operator)
		}
		rv = combined
	}
	return slot.set(rv)
}

func (c *Context) VisitMutate(n *ast.Mutate) value.Value {
	slot, bad := c.resolveAssignee(n.Target)
	if isFlow(bad) {
		return bad
	}
	cur := slot.get()
	if isFlow(cur) {
		return cur
	}
	if !cur.Is(types.Int) {
		c.loc = n.Loc()
		return c.Raise("%s: operand must be an int", n.Operator)
	}
	delta := int64(1)
	if n.Operator == "--" {
		delta = -1
	}
	return slot.set(value.Int(cur.AsInt() + delta))
}

// condBool raises unless v is a plain bool, the check every conditional
// construct applies to its condition before branching.
func (c *Context) condBool(what string, v value.Value) (bool, value.Value) {
	if !v.Is(types.Bool) {
		return false, c.Raise("%s: condition is not a bool value", what)
	}
	return v.AsBool(), value.Void
}

func (c *Context) VisitIf(n *ast.If) value.Value {
	return c.withChildScope(func() value.Value {
		cond := c.eval(n.Cond)
		if isFlow(cond) {
			return cond
		}
		c.loc = n.Loc()
		b, bad := c.condBool("if", cond)
		if isFlow(bad) {
			return bad
		}
		if b {
			return c.execStmt(n.Then)
		}
		if n.Else != nil {
			return c.execStmt(n.Else)
		}
		return value.Void
	})
}

func (c *Context) VisitWhile(n *ast.While) value.Value {
	for {
		saved := c.scope
		child := saved.Child()
		c.scope = child
		cond := c.eval(n.Cond)
		if isFlow(cond) {
			c.exitScope(child, saved, cond)
			return cond
		}
		b, bad := c.condBool("while", cond)
		if isFlow(bad) {
			c.exitScope(child, saved, bad)
			return bad
		}
		if !b {
			c.exitScope(child, saved, value.Void)
			return value.Void
		}
		r := c.execStmt(n.Body)
		c.exitScope(child, saved, r)
		if isFlow(r) {
			if brk, cont := loopSignal(r); brk {
				return value.Void
			} else if !cont {
				return r
			}
		}
	}
}

func (c *Context) VisitDo(n *ast.Do) value.Value {
	for {
		r := c.withChildScope(func() value.Value { return c.execStmt(n.Body) })
		if isFlow(r) {
			if brk, cont := loopSignal(r); brk {
				return value.Void
			} else if !cont {
				return r
			}
		}
		cond := c.eval(n.Cond)
		if isFlow(cond) {
			return cond
		}
		b, bad := c.condBool("do", cond)
		if isFlow(bad) {
			return bad
		}
		if !b {
			return value.Void
		}
	}
}

func (c *Context) VisitFor(n *ast.For) (result value.Value) {
	saved := c.scope
	child := saved.Child()
	c.scope = child
	defer func() { c.exitScope(child, saved, result) }()

	if n.Pre != nil {
		if r := c.execStmt(n.Pre); isFlow(r) {
			return r
		}
	}
	for {
		if n.Cond != nil {
			cond := c.eval(n.Cond)
			if isFlow(cond) {
				return cond
			}
			b, bad := c.condBool("for", cond)
			if isFlow(bad) {
				return bad
			}
			if !b {
				return value.Void
			}
		}
		r := c.execStmt(n.Body)
		if isFlow(r) {
			brk, cont := loopSignal(r)
			if brk {
				return value.Void
			}
			if !cont {
				return r
			}
		}
		if n.Post != nil {
			if r := c.execStmt(n.Post); isFlow(r) {
				return r
			}
		}
	}
}

func (c *Context) VisitForeach(n *ast.Foreach) value.Value {
	collV := c.eval(n.Coll)
	if isFlow(collV) {
		return collV
	}
	if collV.Tag&^types.FlowControl == types.Str {
		return c.foreachString(n, collV)
	}
	obj := collV.AsObject()
	if obj == nil {
		c.loc = n.Loc()
		return c.Raise("value is not iterable")
	}
	// collV and iterV live only in these Go locals for the loop's whole
	// run (a generator's iterator in particular must not be reclaimed, and
	// disposed, mid-iteration); retain both up front and release them via
	// one trailing collection pass on every exit path, including break.
	c.basket.Retain(collV)
	iterV := obj.Iterate(c)
	c.basket.Retain(iterV)
	defer func() {
		c.basket.Release(iterV)
		c.basket.Release(collV)
		c.basket.VisitGarbage(c.disposeCollectable)
	}()
	iterObj := iterV.AsObject()
	if iterObj == nil {
		return c.Raise("value is not iterable")
	}
	for {
		item := iterObj.Iterate(c)
		if isFlow(item) {
			return item
		}
		if item.IsVoid() {
			return value.Void
		}
		saved := c.scope
		child := saved.Child()
		c.scope = child
		typ := n.VarType
		if typ == nil {
			typ = runtimeTypeOf(item)
		}
		c.scope.Declare(n.VarName, typ, item)
		c.basket.Retain(item)
		r := c.execStmt(n.Body)
		c.exitScope(child, saved, r)
		if isFlow(r) {
			brk, cont := loopSignal(r)
			if brk {
				return value.Void
			}
			if !cont {
				return r
			}
		}
	}
}

// foreachString iterates a string's codepoints, yielding each as a
// single-codepoint string, the non-object half of Foreach's two collection
// kinds (the object half is handled by the main VisitForeach loop above).
func (c *Context) foreachString(n *ast.Foreach, s value.Value) value.Value {
	str := s.AsString()
	for i := 0; i < str.Length(); i++ {
		item := value.Str(str.Substring(i, i+1))
		saved := c.scope
		child := saved.Child()
		c.scope = child
		typ := n.VarType
		if typ == nil {
			typ = types.StringT
		}
		c.scope.Declare(n.VarName, typ, item)
		r := c.execStmt(n.Body)
		c.exitScope(child, saved, r)
		if isFlow(r) {
			brk, cont := loopSignal(r)
			if brk {
				return value.Void
			}
			if !cont {
				return r
			}
		}
	}
	return value.Void
}

// VisitSwitch scans cases in order for the first literal match, then runs
// blocks starting at that index onward, falling through to the next case on
// `continue` and stopping on `break`. A case with no values is the default;
// reaching the end of the case list with no break simply stops.
func (c *Context) VisitSwitch(n *ast.Switch) value.Value {
	subj := c.eval(n.Subject)
	if isFlow(subj) {
		return subj
	}
	matchIndex := -1
	defaultIndex := -1
	for i := range n.Cases {
		cs := &n.Cases[i]
		if len(cs.Values) == 0 {
			defaultIndex = i
			continue
		}
		if matchIndex != -1 {
			continue
		}
		for _, ve := range cs.Values {
			v := c.eval(ve)
			if isFlow(v) {
				return v
			}
			if value.Equals(subj, v) {
				matchIndex = i
				break
			}
		}
	}
	start := matchIndex
	if start == -1 {
		start = defaultIndex
	}
	if start == -1 {
		return value.Void
	}
	for i := start; i < len(n.Cases); i++ {
		r := c.withChildScope(func() value.Value { return c.execStmt(n.Cases[i].Block) })
		if isFlow(r) {
			brk, cont := loopSignal(r)
			if brk {
				return value.Void
			}
			if cont {
				continue
			}
			return r
		}
	}
	return value.Void
}

func (c *Context) VisitTry(n *ast.Try) value.Value {
	r := c.withChildScope(func() value.Value { return c.execStmt(n.Body) })
	if r.Tag&types.Exception != 0 {
		for _, cat := range n.Catches {
			payload := r.Payload()
			if cat.Type != nil && payload != nil {
				compat, _ := cat.Type.CanBeAssignedFrom(runtimeTypeOf(*payload))
				if compat == types.Never {
					continue
				}
			}
			r = c.withChildScope(func() value.Value {
				if cat.Name != "" && payload != nil {
					c.scope.Declare(cat.Name, cat.Type, *payload)
					c.basket.Retain(*payload)
				}
				savedExc := c.currentException
				c.currentException = payload
				res := c.execStmt(cat.Body)
				c.currentException = savedExc
				return res
			})
			break
		}
	}
	if n.Finally != nil {
		// finally runs on every exit path; a non-void result from it (a
		// return, a fresh exception, a break) supersedes whatever the try or
		// catch produced
		fr := c.withChildScope(func() value.Value { return c.execStmt(n.Finally) })
		if isFlow(fr) || !fr.IsVoid() {
			return fr
		}
	}
	return r
}

func (c *Context) VisitThrow(n *ast.Throw) value.Value {
	c.loc = n.Loc()
	if n.Expr == nil {
		if c.currentException == nil {
			return c.Raise("throw: no active exception to rethrow")
		}
		return c.currentException.AddFlowControl(types.Exception, *c.currentException)
	}
	v := c.eval(n.Expr)
	if isFlow(v) {
		return v
	}
	if v.IsVoid() {
		return c.Raise("throw: cannot throw a void value")
	}
	return v.AddFlowControl(types.Exception, v)
}

func (c *Context) VisitReturn(n *ast.Return) value.Value {
	if n.Expr == nil {
		return value.ReturnVoid
	}
	v := c.eval(n.Expr)
	if isFlow(v) {
		return v
	}
	return v.AddFlowControl(types.Return, v)
}

func (c *Context) VisitYield(n *ast.Yield) value.Value {
	v := c.eval(n.Expr)
	if isFlow(v) {
		return v
	}
	if c.yieldHook == nil {
		c.loc = n.Loc()
		return c.Raise("yield used outside a generator function")
	}
	c.yieldHook(v)
	return value.Void
}

func (c *Context) VisitBreak(n *ast.Break) value.Value       { return value.Break }
func (c *Context) VisitContinue(n *ast.Continue) value.Value { return value.Continue }

func (c *Context) VisitFunctionDef(n *ast.FunctionDef) value.Value {
	fn := object.NewFunction(n.Name, n.Params, n.ReturnType, n.Body, n.IsGenerator, c.scope)
	c.basket.Add(fn, false)
	fnVal := value.ObjVal(fn)
	if n.Name != "" {
		if !c.scope.Declare(n.Name, fn.RuntimeType(), fnVal) {
			c.loc = n.Loc()
			return c.Raise("%s is already declared in this scope", n.Name)
		}
		c.basket.Retain(fnVal)
	}
	return fnVal
}

// VisitExprStmt evaluates and discards; a value that is neither void nor a
// flow-control signal has nowhere to go, which is an error rather than a
// silent drop.
func (c *Context) VisitExprStmt(n *ast.ExprStmt) value.Value {
	v := c.eval(n.Expr)
	if isFlow(v) {
		return v
	}
	if !v.IsVoid() {
		c.loc = n.Loc()
		return c.Raise("expression statement: value of type %s is not used", runtimeTypeOf(v).String())
	}
	return value.Void
}
