package stdlib

import (
	"fmt"
	"sync"

	"github.com/gorilla/websocket"

	"egg/internal/object"
	"egg/internal/types"
	"egg/internal/value"
)

// wsManager is the websocket counterpart of connManager: connections are
// named by the caller rather than returned as an opaque handle value,
// grounded on the teacher's WebSocketConn registry in
// internal/network/websocket.go.
type wsManager struct {
	mu    sync.Mutex
	conns map[string]*websocket.Conn
}

var sockets = &wsManager{conns: make(map[string]*websocket.Conn)}

func wsConnect(ctx value.Execution, params []value.Value) value.Value {
	if len(params) != 2 {
		return ctx.Raise("wsConnect: expects (id, url)")
	}
	id, url := params[0].ToUTF8(), params[1].ToUTF8()
	sockets.mu.Lock()
	if _, exists := sockets.conns[id]; exists {
		sockets.mu.Unlock()
		return ctx.Raise("wsConnect: connection %q already exists", id)
	}
	sockets.mu.Unlock()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return ctx.Raise("wsConnect: %s", err)
	}
	sockets.mu.Lock()
	sockets.conns[id] = conn
	sockets.mu.Unlock()
	return value.True
}

func wsSend(ctx value.Execution, params []value.Value) value.Value {
	if len(params) != 2 {
		return ctx.Raise("wsSend: expects (id, message)")
	}
	sockets.mu.Lock()
	conn, ok := sockets.conns[params[0].ToUTF8()]
	sockets.mu.Unlock()
	if !ok {
		return ctx.Raise("wsSend: no such connection %q", params[0].ToUTF8())
	}
	if err := conn.WriteMessage(websocket.TextMessage, []byte(params[1].ToUTF8())); err != nil {
		return ctx.Raise("wsSend: %s", err)
	}
	return value.True
}

func wsReceive(ctx value.Execution, params []value.Value) value.Value {
	if len(params) != 1 {
		return ctx.Raise("wsReceive: expects (id)")
	}
	sockets.mu.Lock()
	conn, ok := sockets.conns[params[0].ToUTF8()]
	sockets.mu.Unlock()
	if !ok {
		return ctx.Raise("wsReceive: no such connection %q", params[0].ToUTF8())
	}
	_, data, err := conn.ReadMessage()
	if err != nil {
		return ctx.Raise("wsReceive: %s", err)
	}
	return value.StrOf(string(data))
}

func wsClose(ctx value.Execution, params []value.Value) value.Value {
	if len(params) != 1 {
		return ctx.Raise("wsClose: expects (id)")
	}
	id := params[0].ToUTF8()
	sockets.mu.Lock()
	conn, ok := sockets.conns[id]
	if ok {
		delete(sockets.conns, id)
	}
	sockets.mu.Unlock()
	if !ok {
		return ctx.Raise("wsClose: no such connection %q", id)
	}
	if err := conn.Close(); err != nil {
		return ctx.Raise("wsClose: %s", fmt.Sprint(err))
	}
	return value.True
}

func netBuiltins(out map[string]value.Value) {
	out["wsConnect"] = value.ObjVal(object.NewNativeFunc("wsConnect",
		types.Function(types.BoolT,
			types.Param{Name: "id", Type: types.StringT, Required: true},
			types.Param{Name: "url", Type: types.StringT, Required: true}),
		wsConnect))
	out["wsSend"] = value.ObjVal(object.NewNativeFunc("wsSend",
		types.Function(types.BoolT,
			types.Param{Name: "id", Type: types.StringT, Required: true},
			types.Param{Name: "message", Type: types.StringT, Required: true}),
		wsSend))
	out["wsReceive"] = value.ObjVal(object.NewNativeFunc("wsReceive",
		types.Function(types.StringT, types.Param{Name: "id", Type: types.StringT, Required: true}),
		wsReceive))
	out["wsClose"] = value.ObjVal(object.NewNativeFunc("wsClose",
		types.Function(types.BoolT, types.Param{Name: "id", Type: types.StringT, Required: true}),
		wsClose))
}
