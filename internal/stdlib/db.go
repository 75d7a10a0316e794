// Package stdlib adapts a slice of the teacher VM's wider standard
// library into egg builtins: a handful of global functions, seeded into
// the root scope alongside print/assert/string/type, that give egg
// scripts access to SQL databases, websockets, hashing and a few small
// utility conversions. Each concern keeps using the driver the teacher
// registered it with; only the calling convention changes, from the
// teacher's `RegisterBuiltin(name, func(...interface{}) (interface{},
// error))` to egg's NativeFunc over value.Value.
package stdlib

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"egg/internal/object"
	"egg/internal/types"
	"egg/internal/value"
)

// connManager mirrors the teacher's DBManager: a registry of named open
// connections, so an egg script can `dbConnect("main", "sqlite3", path)`
// once and refer to it by id from then on instead of threading a handle
// value through every call.
type connManager struct {
	mu    sync.RWMutex
	conns map[string]*sql.DB
}

var dbManager = &connManager{conns: make(map[string]*sql.DB)}

func driverName(dbType string) (string, bool) {
	switch dbType {
	case "sqlite", "sqlite3":
		return "sqlite3", true
	case "postgres", "postgresql":
		return "postgres", true
	case "mysql":
		return "mysql", true
	case "mssql", "sqlserver":
		return "sqlserver", true
	default:
		return "", false
	}
}

func (m *connManager) connect(id, dbType, dsn string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.conns[id]; exists {
		return fmt.Errorf("connection %q already exists", id)
	}
	driver, ok := driverName(dbType)
	if !ok {
		return fmt.Errorf("unsupported database type %q", dbType)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	m.conns[id] = db
	return nil
}

func (m *connManager) get(id string) (*sql.DB, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	db, ok := m.conns[id]
	return db, ok
}

func (m *connManager) close(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	db, ok := m.conns[id]
	if !ok {
		return fmt.Errorf("no such connection %q", id)
	}
	delete(m.conns, id)
	return db.Close()
}

func sqlArgs(params []value.Value) []interface{} {
	out := make([]interface{}, len(params))
	for i, p := range params {
		out[i] = sqlArg(p)
	}
	return out
}

func sqlArg(v value.Value) interface{} {
	switch v.Tag &^ types.FlowControl {
	case types.Int:
		return v.AsInt()
	case types.Float:
		return v.AsFloat()
	case types.Bool:
		return v.AsBool()
	case types.Str:
		return v.AsString().Bytes()
	case types.Null, types.Void:
		return nil
	default:
		return v.ToUTF8()
	}
}

func dbConnect(ctx value.Execution, params []value.Value) value.Value {
	if len(params) != 3 {
		return ctx.Raise("dbConnect: expects (id, type, dsn)")
	}
	id, dbType, dsn := params[0].ToUTF8(), params[1].ToUTF8(), params[2].ToUTF8()
	if err := dbManager.connect(id, dbType, dsn); err != nil {
		return ctx.Raise("dbConnect: %s", err)
	}
	return value.True
}

func dbClose(ctx value.Execution, params []value.Value) value.Value {
	if len(params) != 1 {
		return ctx.Raise("dbClose: expects (id)")
	}
	if err := dbManager.close(params[0].ToUTF8()); err != nil {
		return ctx.Raise("dbClose: %s", err)
	}
	return value.True
}

// dbQuery runs a SELECT and returns a vanilla array of vanilla objects,
// one per row, keyed by column name.
func dbQuery(ctx value.Execution, params []value.Value) value.Value {
	if len(params) < 2 {
		return ctx.Raise("dbQuery: expects (id, sql, ...args)")
	}
	db, ok := dbManager.get(params[0].ToUTF8())
	if !ok {
		return ctx.Raise("dbQuery: no such connection %q", params[0].ToUTF8())
	}
	rows, err := db.Query(params[1].ToUTF8(), sqlArgs(params[2:])...)
	if err != nil {
		return ctx.Raise("dbQuery: %s", err)
	}
	defer rows.Close()
	cols, err := rows.Columns()
	if err != nil {
		return ctx.Raise("dbQuery: %s", err)
	}
	var out []value.Value
	for rows.Next() {
		scanTargets := make([]interface{}, len(cols))
		scanned := make([]interface{}, len(cols))
		for i := range scanTargets {
			scanTargets[i] = &scanned[i]
		}
		if err := rows.Scan(scanTargets...); err != nil {
			return ctx.Raise("dbQuery: %s", err)
		}
		row := object.NewDict()
		for i, col := range cols {
			row.SetProperty(col, sqlResultValue(scanned[i]))
		}
		out = append(out, value.ObjVal(row))
	}
	return value.ObjVal(object.NewArray(out))
}

func sqlResultValue(v interface{}) value.Value {
	switch t := v.(type) {
	case nil:
		return value.Null
	case int64:
		return value.Int(t)
	case float64:
		return value.Float(t)
	case bool:
		return value.Bool(t)
	case []byte:
		return value.StrOf(string(t))
	case string:
		return value.StrOf(t)
	case time.Time:
		return value.StrOf(t.Format(time.RFC3339))
	default:
		return value.StrOf(fmt.Sprint(t))
	}
}

// dbExecute runs an INSERT/UPDATE/DELETE and returns the affected row
// count as an int.
func dbExecute(ctx value.Execution, params []value.Value) value.Value {
	if len(params) < 2 {
		return ctx.Raise("dbExecute: expects (id, sql, ...args)")
	}
	db, ok := dbManager.get(params[0].ToUTF8())
	if !ok {
		return ctx.Raise("dbExecute: no such connection %q", params[0].ToUTF8())
	}
	res, err := db.Exec(params[1].ToUTF8(), sqlArgs(params[2:])...)
	if err != nil {
		return ctx.Raise("dbExecute: %s", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return ctx.Raise("dbExecute: %s", err)
	}
	return value.Int(n)
}

func dbBuiltins(out map[string]value.Value) {
	out["dbConnect"] = value.ObjVal(object.NewNativeFunc("dbConnect",
		types.Function(types.BoolT,
			types.Param{Name: "id", Type: types.StringT, Required: true},
			types.Param{Name: "type", Type: types.StringT, Required: true},
			types.Param{Name: "dsn", Type: types.StringT, Required: true}),
		dbConnect))
	out["dbClose"] = value.ObjVal(object.NewNativeFunc("dbClose",
		types.Function(types.BoolT, types.Param{Name: "id", Type: types.StringT, Required: true}),
		dbClose))
	out["dbQuery"] = value.ObjVal(object.NewNativeFunc("dbQuery",
		types.Function(types.ObjectT,
			types.Param{Name: "id", Type: types.StringT, Required: true},
			types.Param{Name: "sql", Type: types.StringT, Required: true},
			types.Param{Name: "args", Type: types.Any, Variadic: true}),
		dbQuery))
	out["dbExecute"] = value.ObjVal(object.NewNativeFunc("dbExecute",
		types.Function(types.IntT,
			types.Param{Name: "id", Type: types.StringT, Required: true},
			types.Param{Name: "sql", Type: types.StringT, Required: true},
			types.Param{Name: "args", Type: types.Any, Variadic: true}),
		dbExecute))
}
