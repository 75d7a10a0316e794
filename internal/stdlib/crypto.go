package stdlib

import (
	"golang.org/x/crypto/bcrypt"

	"egg/internal/object"
	"egg/internal/types"
	"egg/internal/value"
)

// bcryptHash and bcryptVerify give egg scripts a password-hashing builtin
// grounded on the teacher's cryptoanalysis module's use of the same
// golang.org/x/crypto dependency, narrowed here to the one operation a
// scripting-language stdlib actually needs: salted hashing, not attacking
// ciphers.
func bcryptHash(ctx value.Execution, params []value.Value) value.Value {
	if len(params) != 1 {
		return ctx.Raise("bcryptHash: expects (password)")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(params[0].ToUTF8()), bcrypt.DefaultCost)
	if err != nil {
		return ctx.Raise("bcryptHash: %s", err)
	}
	return value.StrOf(string(hash))
}

func bcryptVerify(ctx value.Execution, params []value.Value) value.Value {
	if len(params) != 2 {
		return ctx.Raise("bcryptVerify: expects (hash, password)")
	}
	err := bcrypt.CompareHashAndPassword([]byte(params[0].ToUTF8()), []byte(params[1].ToUTF8()))
	return value.Bool(err == nil)
}

func cryptoBuiltins(out map[string]value.Value) {
	out["bcryptHash"] = value.ObjVal(object.NewNativeFunc("bcryptHash",
		types.Function(types.StringT, types.Param{Name: "password", Type: types.StringT, Required: true}),
		bcryptHash))
	out["bcryptVerify"] = value.ObjVal(object.NewNativeFunc("bcryptVerify",
		types.Function(types.BoolT,
			types.Param{Name: "hash", Type: types.StringT, Required: true},
			types.Param{Name: "password", Type: types.StringT, Required: true}),
		bcryptVerify))
}
