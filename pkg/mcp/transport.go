package mcp

import (
	"context"
	"encoding/json"
)

// Transport abstracts bidirectional JSON-RPC communication with an MCP server.
type Transport interface {
	// Send sends a JSON-RPC request and returns the correlated response.
	Send(ctx context.Context, req JSONRPCRequest) (JSONRPCResponse, error)
	// Notify sends a JSON-RPC notification (no response expected).
	Notify(ctx context.Context, method string, params any) error
	// SetNotificationHandler registers the callback invoked for server-initiated
	// notifications (e.g. "notifications/tools/list_changed") received outside
	// any pending Send. Passing nil clears the handler.
	SetNotificationHandler(handler func(method string, params json.RawMessage))
	// Close terminates the transport connection.
	Close() error
}
