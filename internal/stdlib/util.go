package stdlib

import (
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"egg/internal/object"
	"egg/internal/types"
	"egg/internal/value"
)

func newUUID(ctx value.Execution, params []value.Value) value.Value {
	return value.StrOf(uuid.NewString())
}

// humanizeBytes renders an int byte count the way the teacher's reporting
// module formats file sizes for humans (e.g. "4.2 MB"), reusing the same
// dustin/go-humanize dependency.
func humanizeBytes(ctx value.Execution, params []value.Value) value.Value {
	if len(params) != 1 {
		return ctx.Raise("humanizeBytes: expects (count)")
	}
	return value.StrOf(humanize.Bytes(uint64(params[0].AsInt())))
}

func utilBuiltins(out map[string]value.Value) {
	out["uuid"] = value.ObjVal(object.NewNativeFunc("uuid", types.Function(types.StringT), newUUID))
	out["humanizeBytes"] = value.ObjVal(object.NewNativeFunc("humanizeBytes",
		types.Function(types.StringT, types.Param{Name: "count", Type: types.IntT, Required: true}),
		humanizeBytes))
}
