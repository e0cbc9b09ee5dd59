package mcp

import "encoding/json"

// JSONRPCRequest is a JSON-RPC 2.0 request message.
type JSONRPCRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      *int   `json:"id,omitempty"` // nil for notifications
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

// JSONRPCResponse is a JSON-RPC 2.0 response message.
type JSONRPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *JSONRPCError   `json:"error,omitempty"`
}

// JSONRPCError is the error object in a JSON-RPC 2.0 response.
type JSONRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *JSONRPCError) Error() string { return e.Message }

// newRequest creates a JSON-RPC 2.0 request with the given ID, method, and params.
func newRequest(id int, method string, params any) JSONRPCRequest {
	return JSONRPCRequest{
		JSONRPC: "2.0",
		ID:      &id,
		Method:  method,
		Params:  params,
	}
}

// newNotification creates a JSON-RPC 2.0 notification (no ID, no response expected).
func newNotification(method string, params any) JSONRPCRequest {
	return JSONRPCRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
	}
}

// jsonrpcEnvelope probes an incoming line for the fields that distinguish a
// server-initiated notification (method set, id absent) from a correlated
// response (id set, method absent) without committing to either shape.
type jsonrpcEnvelope struct {
	Method *string         `json:"method"`
	ID     *int            `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *JSONRPCError   `json:"error"`
	Params json.RawMessage `json:"params"`
}

// parseIncoming classifies a raw JSON-RPC line as either a notification
// (method, no id) or a response (id, no method), the two shapes a transport's
// read loop sees once a notification handler is registered. Lines that
// satisfy neither shape return ok=false so the caller can skip them as before.
func parseIncoming(data []byte) (notifyMethod string, notifyParams json.RawMessage, resp JSONRPCResponse, isNotify bool, ok bool) {
	var env jsonrpcEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", nil, JSONRPCResponse{}, false, false
	}
	if env.Method != nil && env.ID == nil {
		return *env.Method, env.Params, JSONRPCResponse{}, true, true
	}
	if env.ID != nil {
		return "", nil, JSONRPCResponse{JSONRPC: "2.0", ID: *env.ID, Result: env.Result, Error: env.Error}, false, true
	}
	return "", nil, JSONRPCResponse{}, false, false
}
