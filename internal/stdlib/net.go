package stdlib

import (
	"nova/internal/errors"
	"nova/internal/interp"
	"nova/internal/network"
)

// RegisterNetworkFunctions installs the http_* and ws_* natives.
func RegisterNetworkFunctions(i *interp.Interpreter) {
	client := network.NewClient()
	sockets := network.NewWSTable()
	register := func(name string, arity int, fn func(args []interp.Value) (interp.Value, error)) {
		i.Register(&interp.NativeFunction{Name: name, Arity: arity, Fn: fn})
	}

	urlArg := func(name string, v interp.Value) (string, error) {
		url, ok := v.(string)
		if !ok {
			return "", errors.Newf(errors.TypeError, "%s requires a URL string", name)
		}
		return url, nil
	}

	// Structured bodies go through json_stringify first.
	bodyBytes := func(name string, v interp.Value) ([]byte, error) {
		switch val := v.(type) {
		case string:
			return []byte(val), nil
		case nil:
			return nil, nil
		default:
			return nil, errors.Newf(errors.TypeError, "%s body must be a string, got %s", name, interp.TypeName(val))
		}
	}

	register("http_get", 1, func(args []interp.Value) (interp.Value, error) {
		url, err := urlArg("http_get", args[0])
		if err != nil {
			return nil, err
		}
		resp, err := client.Get(url)
		if err != nil {
			return nil, errors.Newf(errors.RuntimeError, "http_get: %v", err)
		}
		return responseObject(resp), nil
	})

	register("http_post", 2, func(args []interp.Value) (interp.Value, error) {
		url, err := urlArg("http_post", args[0])
		if err != nil {
			return nil, err
		}
		body, err := bodyBytes("http_post", args[1])
		if err != nil {
			return nil, err
		}
		resp, err := client.Post(url, body, nil)
		if err != nil {
			return nil, errors.Newf(errors.RuntimeError, "http_post: %v", err)
		}
		return responseObject(resp), nil
	})

	register("http_put", 2, func(args []interp.Value) (interp.Value, error) {
		url, err := urlArg("http_put", args[0])
		if err != nil {
			return nil, err
		}
		body, err := bodyBytes("http_put", args[1])
		if err != nil {
			return nil, err
		}
		resp, err := client.Put(url, body, nil)
		if err != nil {
			return nil, errors.Newf(errors.RuntimeError, "http_put: %v", err)
		}
		return responseObject(resp), nil
	})

	register("http_delete", 1, func(args []interp.Value) (interp.Value, error) {
		url, err := urlArg("http_delete", args[0])
		if err != nil {
			return nil, err
		}
		resp, err := client.Delete(url)
		if err != nil {
			return nil, errors.Newf(errors.RuntimeError, "http_delete: %v", err)
		}
		return responseObject(resp), nil
	})

	register("ws_connect", 1, func(args []interp.Value) (interp.Value, error) {
		url, err := urlArg("ws_connect", args[0])
		if err != nil {
			return nil, err
		}
		id, err := sockets.Connect(url)
		if err != nil {
			return nil, errors.Newf(errors.RuntimeError, "ws_connect: %v", err)
		}
		return id, nil
	})

	register("ws_send", 2, func(args []interp.Value) (interp.Value, error) {
		id, ok1 := args[0].(string)
		msg, ok2 := args[1].(string)
		if !ok1 || !ok2 {
			return nil, errors.New(errors.TypeError, "ws_send requires a handle and a string message")
		}
		if err := sockets.Send(id, msg); err != nil {
			return nil, errors.Newf(errors.RuntimeError, "ws_send: %v", err)
		}
		return true, nil
	})

	register("ws_recv", 1, func(args []interp.Value) (interp.Value, error) {
		id, ok := args[0].(string)
		if !ok {
			return nil, errors.New(errors.TypeError, "ws_recv requires a handle")
		}
		msg, err := sockets.Recv(id)
		if err != nil {
			return nil, errors.Newf(errors.RuntimeError, "ws_recv: %v", err)
		}
		return msg, nil
	})

	register("ws_close", 1, func(args []interp.Value) (interp.Value, error) {
		id, ok := args[0].(string)
		if !ok {
			return nil, errors.New(errors.TypeError, "ws_close requires a handle")
		}
		if err := sockets.Close(id); err != nil {
			return nil, errors.Newf(errors.RuntimeError, "ws_close: %v", err)
		}
		return true, nil
	})
}

func responseObject(resp *network.Response) *interp.Object {
	headers := &interp.Object{Fields: make(map[string]interp.Value, len(resp.Headers))}
	for k, v := range resp.Headers {
		headers.Fields[k] = v
	}
	return &interp.Object{Fields: map[string]interp.Value{
		"status_code": float64(resp.StatusCode),
		"status":      resp.Status,
		"body":        resp.Body,
		"headers":     headers,
	}}
}
