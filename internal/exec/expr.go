package exec

import (
	"egg/internal/ast"
	"egg/internal/object"
	"egg/internal/types"
	"egg/internal/value"
)

func (c *Context) VisitLiteral(n *ast.Literal) value.Value { return n.Value }

func (c *Context) VisitIdentifier(n *ast.Identifier) value.Value {
	c.loc = n.Loc()
	v, declared, initialized := c.scope.GetInitialized(n.Name)
	if !declared {
		return c.Raise("undefined reference: %s", n.Name)
	}
	if !initialized {
		return c.Raise("%s is used before being assigned a value", n.Name)
	}
	return v
}

func (c *Context) VisitDot(n *ast.Dot) value.Value {
	c.loc = n.Loc()
	obj := c.eval(n.Object)
	if isFlow(obj) {
		return obj
	}
	if obj.Tag&^types.FlowControl == types.Str {
		if v, ok := object.StringMethod(obj.AsString(), n.Name); ok {
			return v
		}
		return c.Raise("string has no property %s", n.Name)
	}
	if o := obj.AsObject(); o != nil {
		if v, ok := o.GetProperty(n.Name); ok {
			return v
		}
		return c.Raise("no property named %s", n.Name)
	}
	return c.Raise("value has no properties")
}

func (c *Context) VisitBrackets(n *ast.Brackets) value.Value {
	c.loc = n.Loc()
	obj := c.eval(n.Object)
	if isFlow(obj) {
		return obj
	}
	idx := c.eval(n.Index)
	if isFlow(idx) {
		return idx
	}
	if obj.Tag&^types.FlowControl == types.Str {
		if idx.Tag&^types.FlowControl != types.Int {
			return c.Raise("string index must be int")
		}
		i := int(idx.AsInt())
		str := obj.AsString()
		if i < 0 || i >= str.Length() {
			return c.Raise("index out of range")
		}
		return value.Str(str.Substring(i, i+1))
	}
	o := obj.AsObject()
	if o == nil {
		return c.Raise("value is not indexable")
	}
	v, ok := o.GetIndex(idx)
	if !ok {
		return c.Raise("index out of range")
	}
	return v
}

func (c *Context) VisitCall(n *ast.Call) value.Value {
	if len(n.Args) == 1 {
		if bin, ok := n.Args[0].Value.(*ast.Binary); ok && bin.Predicate {
			return c.evalPredicateCall(n, bin)
		}
	}
	callee := c.eval(n.Callee)
	if isFlow(callee) {
		return callee
	}
	obj := callee.AsObject()
	if obj == nil {
		return c.Raise("value is not callable")
	}
	args := make([]value.Value, 0, len(n.Args))
	for _, a := range n.Args {
		if a.Name != "" {
			c.loc = n.Loc()
			return c.Raise("call: named parameters are not yet supported")
		}
		v := c.eval(a.Value)
		if isFlow(v) {
			c.releaseAll(args)
			return v
		}
		c.basket.Retain(v)
		args = append(args, v)
	}
	c.loc = n.Loc()
	result := obj.Call(c, args)
	c.releaseAll(args)
	if stripped, ok := result.StripFlowControl(types.Return); ok {
		return stripped
	}
	return result
}

// releaseAll drops the protective retain VisitCall/evalPredicateCall places
// on each evaluated-but-not-yet-bound argument, so a freshly constructed,
// still-unrooted argument object cannot be swept by a VisitGarbage pass a
// later argument's own evaluation (or the call itself) triggers.
func (c *Context) releaseAll(vs []value.Value) {
	for _, v := range vs {
		c.basket.Release(v)
	}
}

// evalPredicateCall handles `assert(left op right)`: it evaluates the
// operands itself (rather than letting the generic path reduce them to a
// single bool) so a failing assertion's exception can be annotated with
// `left`, `operator` and `right`, per the Predicate expression form.
func (c *Context) evalPredicateCall(n *ast.Call, bin *ast.Binary) value.Value {
	callee := c.eval(n.Callee)
	if isFlow(callee) {
		return callee
	}
	obj := callee.AsObject()
	if obj == nil {
		return c.Raise("value is not callable")
	}
	l := c.eval(bin.Left)
	if isFlow(l) {
		return l
	}
	r := c.eval(bin.Right)
	if isFlow(r) {
		return r
	}
	res, ok := c.binaryOp(bin.Operator, l, r)
	if !ok {
		c.loc = bin.Loc()
		return c.Raise("invalid operands to %s", bin.Operator)
	}
	c.loc = n.Loc()
	result := obj.Call(c, []value.Value{res})
	if result.Has(types.Exception) {
		if excObj, ok := result.AsObject().(*object.Exception); ok {
			excObj.SetProperty("left", l)
			excObj.SetProperty("operator", value.StrOf(bin.Operator))
			excObj.SetProperty("right", r)
		}
	}
	if stripped, ok := result.StripFlowControl(types.Return); ok {
		return stripped
	}
	return result
}

func (c *Context) VisitArrayLit(n *ast.ArrayLit) value.Value {
	elems := make([]value.Value, 0, len(n.Elements))
	for _, e := range n.Elements {
		v := c.eval(e)
		if isFlow(v) {
			c.releaseAll(elems)
			return v
		}
		c.basket.Retain(v)
		elems = append(elems, v)
	}
	arr := object.NewArray(elems)
	c.basket.Add(arr, false)
	// arr.SoftLinks now traces each element, so the per-element guard
	// retains taken above can drop once arr itself is rooted by whoever
	// binds this literal's value.
	c.releaseAll(elems)
	return value.ObjVal(arr)
}

func (c *Context) VisitObjectLit(n *ast.ObjectLit) value.Value {
	d := object.NewDict()
	c.basket.Add(d, false)
	dv := value.ObjVal(d)
	// d is still being assembled field by field; root it for the duration
	// so a nested call's GC pass cannot reclaim it before it has every
	// field (and thus every SoftLinks edge) in place.
	c.basket.Retain(dv)
	defer c.basket.Release(dv)
	for _, f := range n.Fields {
		v := c.eval(f.Value)
		if isFlow(v) {
			return v
		}
		d.SetProperty(f.Name, v)
	}
	return dv
}

func (c *Context) VisitUnary(n *ast.Unary) value.Value {
	v := c.eval(n.Operand)
	if isFlow(v) {
		return v
	}
	var res value.Value
	var ok bool
	switch n.Operator {
	case "-":
		res, ok = value.Negate(v)
	case "!":
		res, ok = value.Not(v)
	case "~":
		res, ok = value.BitwiseNot(v)
	case "&", "*":
		// pointer ref/deref parse but the runtime does not yet implement
		// pointer-typed values
		c.loc = n.Loc()
		return c.Raise("%s: pointer operations are not supported", n.Operator)
	}
	if !ok {
		c.loc = n.Loc()
		return c.Raise("invalid operand for unary %s", n.Operator)
	}
	return res
}

func (c *Context) binaryOp(op string, l, r value.Value) (value.Value, bool) {
	switch op {
	case "==":
		return value.Bool(value.Equals(l, r)), true
	case "!=":
		return value.Bool(!value.Equals(l, r)), true
	case "<", "<=", ">", ">=":
		return value.Compare(op, l, r)
	case "+":
		if l.Tag&^types.FlowControl == types.Str || r.Tag&^types.FlowControl == types.Str {
			return value.StrOf(l.ToUTF8() + r.ToUTF8()), true
		}
		return value.Arith(op, l, r)
	default:
		return value.Arith(op, l, r)
	}
}

func (c *Context) VisitBinary(n *ast.Binary) value.Value {
	l := c.eval(n.Left)
	if isFlow(l) {
		return l
	}
	r := c.eval(n.Right)
	if isFlow(r) {
		return r
	}
	result, ok := c.binaryOp(n.Operator, l, r)
	if !ok {
		c.loc = n.Loc()
		return c.Raise("invalid operands to %s", n.Operator)
	}
	return result
}

func (c *Context) VisitLogical(n *ast.Logical) value.Value {
	l := c.eval(n.Left)
	if isFlow(l) {
		return l
	}
	switch n.Operator {
	case "&&", "||":
		lb, bad := c.boolOperand(n, l, "left")
		if isFlow(bad) {
			return bad
		}
		// short-circuit: the left operand alone decides false-&& and true-||
		if n.Operator == "&&" && !lb {
			return value.False
		}
		if n.Operator == "||" && lb {
			return value.True
		}
		r := c.eval(n.Right)
		if isFlow(r) {
			return r
		}
		if _, bad := c.boolOperand(n, r, "right"); isFlow(bad) {
			return bad
		}
		return r
	case "??":
		if !l.IsNull() && !l.IsVoid() {
			return l
		}
		return c.eval(n.Right)
	}
	return c.Raise("unknown logical operator %s", n.Operator)
}

func (c *Context) boolOperand(n *ast.Logical, v value.Value, side string) (bool, value.Value) {
	if !v.Is(types.Bool) {
		c.loc = n.Loc()
		return false, c.Raise("%s: %s operand is not a bool value", n.Operator, side)
	}
	return v.AsBool(), value.Void
}

func (c *Context) VisitTernary(n *ast.Ternary) value.Value {
	cond := c.eval(n.Cond)
	if isFlow(cond) {
		return cond
	}
	c.loc = n.Loc()
	b, bad := c.condBool("?:", cond)
	if isFlow(bad) {
		return bad
	}
	if b {
		return c.eval(n.Then)
	}
	return c.eval(n.Else)
}

func (c *Context) VisitGuard(n *ast.Guard) value.Value {
	v := c.eval(n.Expr)
	if isFlow(v) {
		return v
	}
	if v.IsNull() || v.IsVoid() {
		return value.False
	}
	if n.Type != nil {
		compat, _ := n.Type.CanBeAssignedFrom(runtimeTypeOf(v))
		if compat == types.Never {
			return value.False
		}
	}
	c.scope.Declare(n.Name, n.Type, v)
	c.basket.Retain(v)
	return value.True
}
