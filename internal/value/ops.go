package value

import (
	"math"

	"egg/internal/types"
)

// Arith implements the binary-arithmetic table: int/float promotion,
// two's-complement wrapping int add/sub/mul, truncating int division,
// signed remainder, and IEEE remainder for floats. The executor is
// responsible for dispatching `&&`/`||` short-circuit before it ever
// calls here, and for raising on type mismatches this function can't
// itself express (it returns ok=false and leaves the message to the
// caller, which knows the source location).
func Arith(op string, a, b Value) (Value, bool) {
	af, bf, isFloat := a.Tag&^types.FlowControl, b.Tag&^types.FlowControl, false
	if af == types.Float || bf == types.Float {
		if af != types.Float && af != types.Int {
			return Void, false
		}
		if bf != types.Float && bf != types.Int {
			return Void, false
		}
		isFloat = true
	} else if af != types.Int || bf != types.Int {
		return Void, false
	}

	if isFloat {
		x, y := toFloat(a), toFloat(b)
		switch op {
		case "+":
			return Float(x + y), true
		case "-":
			return Float(x - y), true
		case "*":
			return Float(x * y), true
		case "/":
			return Float(x / y), true
		case "%":
			return Float(math.Remainder(x, y)), true
		}
		return Void, false
	}

	x, y := a.integer, b.integer
	switch op {
	case "+":
		return Int(int64(uint64(x) + uint64(y))), true
	case "-":
		return Int(int64(uint64(x) - uint64(y))), true
	case "*":
		return Int(int64(uint64(x) * uint64(y))), true
	case "/":
		if y == 0 {
			return Void, false
		}
		return Int(x / y), true
	case "%":
		if y == 0 {
			return Void, false
		}
		return Int(x % y), true
	case "&":
		return Int(x & y), true
	case "|":
		return Int(x | y), true
	case "^":
		return Int(x ^ y), true
	case "<<":
		return Int(x << uint64(y)), true
	case ">>":
		return Int(x >> uint64(y)), true
	case ">>>":
		return Int(int64(uint64(x) >> uint64(y))), true
	}
	return Void, false
}

func toFloat(v Value) float64 {
	if v.Tag&^types.FlowControl == types.Float {
		return v.float
	}
	return float64(v.integer)
}

// Compare implements <, <=, >, >= for int/float operands (with promotion)
// and lexicographic string comparison.
func Compare(op string, a, b Value) (Value, bool) {
	af, bf := a.Tag&^types.FlowControl, b.Tag&^types.FlowControl
	var cmp int
	switch {
	case af == types.Str && bf == types.Str:
		cmp = a.str.Compare(b.str)
	case af == types.Int && bf == types.Int:
		// compare exactly; going through float64 would lose precision on
		// magnitudes past 2^53
		switch {
		case a.integer < b.integer:
			cmp = -1
		case a.integer > b.integer:
			cmp = 1
		default:
			cmp = 0
		}
	case (af == types.Int || af == types.Float) && (bf == types.Int || bf == types.Float):
		x, y := toFloat(a), toFloat(b)
		switch {
		case x < y:
			cmp = -1
		case x > y:
			cmp = 1
		default:
			cmp = 0
		}
	default:
		return Void, false
	}
	switch op {
	case "<":
		return Bool(cmp < 0), true
	case "<=":
		return Bool(cmp <= 0), true
	case ">":
		return Bool(cmp > 0), true
	case ">=":
		return Bool(cmp >= 0), true
	}
	return Void, false
}

// Negate implements unary `-`.
func Negate(v Value) (Value, bool) {
	switch v.Tag &^ types.FlowControl {
	case types.Int:
		return Int(-v.integer), true
	case types.Float:
		return Float(-v.float), true
	default:
		return Void, false
	}
}

// BitwiseNot implements unary `~`.
func BitwiseNot(v Value) (Value, bool) {
	if v.Tag&^types.FlowControl != types.Int {
		return Void, false
	}
	return Int(^v.integer), true
}

// Not implements unary `!`.
func Not(v Value) (Value, bool) {
	if v.Tag&^types.FlowControl != types.Bool {
		return Void, false
	}
	return Bool(!v.boolean), true
}
