package object

import (
	"fmt"

	"egg/internal/source"
	"egg/internal/types"
	"egg/internal/value"
)

// Exception is a vanilla-object-shaped dictionary pre-populated with
// `message` and `location`, the payload every runtime-raised exception
// carries (a user `throw` carries the thrown value itself instead).
type Exception struct {
	Dict
}

func NewException(loc source.Location, message string) *Exception {
	e := &Exception{Dict: *NewDict()}
	e.SetProperty("message", value.StrOf(message))
	e.SetProperty("location", value.StrOf(loc.String()))
	return e
}

func (e *Exception) ToString() string {
	loc, _ := e.GetProperty("location")
	msg, _ := e.GetProperty("message")
	if loc.ToString() == "" {
		return msg.ToString()
	}
	return loc.ToString() + ": " + msg.ToString()
}

func (e *Exception) RuntimeType() *types.Type { return types.ObjectT }

// Raise builds an exception Value: a vanilla exception object wrapped in
// a Value with the exception flow-control bit set, carrying itself as the
// payload (a Value can simultaneously hold "object" and an exception bit).
func Raise(loc source.Location, format string, args ...interface{}) value.Value {
	exc := NewException(loc, fmt.Sprintf(format, args...))
	objVal := value.ObjVal(exc)
	return objVal.AddFlowControl(types.Exception, objVal)
}
