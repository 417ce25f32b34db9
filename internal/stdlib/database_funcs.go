package stdlib

import (
	"nova/internal/database"
	"nova/internal/errors"
	"nova/internal/interp"
)

// RegisterDatabaseFunctions installs the db_* natives backed by a
// shared connection manager.
func RegisterDatabaseFunctions(i *interp.Interpreter) {
	manager := database.NewManager()
	register := func(name string, arity int, fn func(args []interp.Value) (interp.Value, error)) {
		i.Register(&interp.NativeFunction{Name: name, Arity: arity, Fn: fn})
	}

	register("db_connect", 3, func(args []interp.Value) (interp.Value, error) {
		id, ok1 := args[0].(string)
		dbType, ok2 := args[1].(string)
		dsn, ok3 := args[2].(string)
		if !ok1 || !ok2 || !ok3 {
			return nil, errors.New(errors.TypeError, "db_connect requires string id, type and dsn")
		}
		if err := manager.Connect(id, dbType, dsn); err != nil {
			return nil, errors.Newf(errors.RuntimeError, "db_connect: %v", err)
		}
		return true, nil
	})

	register("db_close", 1, func(args []interp.Value) (interp.Value, error) {
		id, ok := args[0].(string)
		if !ok {
			return nil, errors.New(errors.TypeError, "db_close requires a string id")
		}
		if err := manager.Close(id); err != nil {
			return nil, errors.Newf(errors.RuntimeError, "db_close: %v", err)
		}
		return true, nil
	})

	register("db_list", 0, func(args []interp.Value) (interp.Value, error) {
		conns := manager.List()
		out := &interp.Array{Elements: make([]interp.Value, 0, len(conns))}
		for _, conn := range conns {
			out.Elements = append(out.Elements, rowToObject(conn))
		}
		return out, nil
	})

	register("db_query", -1, func(args []interp.Value) (interp.Value, error) {
		id, query, params, err := queryArgs("db_query", args)
		if err != nil {
			return nil, err
		}
		rows, err := manager.Query(id, query, params...)
		if err != nil {
			return nil, errors.Newf(errors.RuntimeError, "db_query: %v", err)
		}
		out := &interp.Array{Elements: make([]interp.Value, 0, len(rows))}
		for _, row := range rows {
			out.Elements = append(out.Elements, rowToObject(row))
		}
		return out, nil
	})

	register("db_query_one", -1, func(args []interp.Value) (interp.Value, error) {
		id, query, params, err := queryArgs("db_query_one", args)
		if err != nil {
			return nil, err
		}
		row, err := manager.QueryOne(id, query, params...)
		if err != nil {
			return nil, errors.Newf(errors.RuntimeError, "db_query_one: %v", err)
		}
		return rowToObject(row), nil
	})

	register("db_execute", -1, func(args []interp.Value) (interp.Value, error) {
		id, query, params, err := queryArgs("db_execute", args)
		if err != nil {
			return nil, err
		}
		affected, err := manager.Execute(id, query, params...)
		if err != nil {
			return nil, errors.Newf(errors.RuntimeError, "db_execute: %v", err)
		}
		return float64(affected), nil
	})
}

// queryArgs validates the (id, query, params...) shape shared by the
// query natives.
func queryArgs(name string, args []interp.Value) (string, string, []interface{}, error) {
	if len(args) < 2 {
		return "", "", nil, errors.Newf(errors.RuntimeError, "%s requires at least id and query", name)
	}
	id, ok1 := args[0].(string)
	query, ok2 := args[1].(string)
	if !ok1 || !ok2 {
		return "", "", nil, errors.Newf(errors.TypeError, "%s requires string id and query", name)
	}
	params := make([]interface{}, len(args)-2)
	for i, arg := range args[2:] {
		params[i] = arg
	}
	return id, query, params, nil
}

// rowToObject converts a scanned row into a script object. Integral
// column values become numbers.
func rowToObject(row map[string]interface{}) *interp.Object {
	obj := &interp.Object{Fields: make(map[string]interp.Value, len(row))}
	for k, v := range row {
		obj.Fields[k] = sqlValue(v)
	}
	return obj
}

func sqlValue(v interface{}) interp.Value {
	switch val := v.(type) {
	case nil:
		return nil
	case bool:
		return val
	case int64:
		return float64(val)
	case float64:
		return val
	case string:
		return val
	case []byte:
		return string(val)
	default:
		return interp.FormatValue(val)
	}
}
