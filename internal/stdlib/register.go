package stdlib

import "egg/internal/value"

// Builtins returns the full set of stdlib globals this package
// contributes. Callers merge it with object.NewGlobalBuiltins() when
// seeding a fresh root scope.
func Builtins() map[string]value.Value {
	out := make(map[string]value.Value)
	dbBuiltins(out)
	netBuiltins(out)
	cryptoBuiltins(out)
	utilBuiltins(out)
	return out
}
