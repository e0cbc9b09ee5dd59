package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"nhooyr.io/websocket"
)

// WebSocketTransport communicates with an MCP server over a persistent
// websocket connection, correlating JSON-RPC requests to responses the same
// way StdioTransport does over a pipe.
type WebSocketTransport struct {
	conn *websocket.Conn
	ctx  context.Context

	writeMu sync.Mutex

	pending map[int]chan JSONRPCResponse
	pendMu  sync.Mutex

	notifyMu      sync.Mutex
	notifyHandler func(method string, params json.RawMessage)

	done     chan struct{}
	closeErr error
	closeMu  sync.Mutex
}

// NewWebSocketTransport dials url and returns a transport that communicates via
// JSON-RPC over the resulting websocket connection.
func NewWebSocketTransport(ctx context.Context, url string, headers map[string]string) (*WebSocketTransport, error) {
	opts := &websocket.DialOptions{}
	if len(headers) > 0 {
		h := make(map[string][]string, len(headers))
		for k, v := range headers {
			h[k] = []string{v}
		}
		opts.HTTPHeader = h
	}

	conn, _, err := websocket.Dial(ctx, url, opts)
	if err != nil {
		return nil, fmt.Errorf("dial websocket: %w", err)
	}
	conn.SetReadLimit(16 * 1024 * 1024)

	t := &WebSocketTransport{
		conn:    conn,
		ctx:     ctx,
		pending: make(map[int]chan JSONRPCResponse),
		done:    make(chan struct{}),
	}

	go t.readLoop()

	return t, nil
}

// readLoop reads frames off the connection and dispatches notifications or
// correlated responses until the connection closes.
func (t *WebSocketTransport) readLoop() {
	defer close(t.done)

	for {
		_, data, err := t.conn.Read(t.ctx)
		if err != nil {
			t.closeMu.Lock()
			t.closeErr = err
			t.closeMu.Unlock()
			return
		}

		method, params, resp, isNotify, ok := parseIncoming(data)
		if !ok {
			continue
		}

		if isNotify {
			t.notifyMu.Lock()
			handler := t.notifyHandler
			t.notifyMu.Unlock()
			if handler != nil {
				handler(method, params)
			}
			continue
		}

		t.pendMu.Lock()
		ch, ok := t.pending[resp.ID]
		if ok {
			delete(t.pending, resp.ID)
		}
		t.pendMu.Unlock()

		if ok {
			ch <- resp
		}
	}
}

// Send writes a JSON-RPC request and waits for the correlated response.
func (t *WebSocketTransport) Send(ctx context.Context, req JSONRPCRequest) (JSONRPCResponse, error) {
	if req.ID == nil {
		return JSONRPCResponse{}, fmt.Errorf("Send requires a request with an ID; use Notify for notifications")
	}
	id := *req.ID

	ch := make(chan JSONRPCResponse, 1)
	t.pendMu.Lock()
	t.pending[id] = ch
	t.pendMu.Unlock()

	data, err := json.Marshal(req)
	if err != nil {
		t.pendMu.Lock()
		delete(t.pending, id)
		t.pendMu.Unlock()
		return JSONRPCResponse{}, fmt.Errorf("marshal request: %w", err)
	}

	t.writeMu.Lock()
	writeErr := t.conn.Write(ctx, websocket.MessageText, data)
	t.writeMu.Unlock()

	if writeErr != nil {
		t.pendMu.Lock()
		delete(t.pending, id)
		t.pendMu.Unlock()
		return JSONRPCResponse{}, fmt.Errorf("write request: %w", writeErr)
	}

	select {
	case resp := <-ch:
		return resp, nil
	case <-ctx.Done():
		t.pendMu.Lock()
		delete(t.pending, id)
		t.pendMu.Unlock()
		return JSONRPCResponse{}, ctx.Err()
	case <-t.done:
		t.pendMu.Lock()
		delete(t.pending, id)
		t.pendMu.Unlock()
		t.closeMu.Lock()
		cerr := t.closeErr
		t.closeMu.Unlock()
		return JSONRPCResponse{}, fmt.Errorf("transport closed: %v", cerr)
	}
}

// Notify writes a JSON-RPC notification; no response is awaited.
func (t *WebSocketTransport) Notify(ctx context.Context, method string, params any) error {
	n := newNotification(method, params)
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	if err := t.conn.Write(ctx, websocket.MessageText, data); err != nil {
		return fmt.Errorf("write notification: %w", err)
	}
	return nil
}

// SetNotificationHandler registers the callback for server-initiated notifications.
func (t *WebSocketTransport) SetNotificationHandler(handler func(method string, params json.RawMessage)) {
	t.notifyMu.Lock()
	defer t.notifyMu.Unlock()
	t.notifyHandler = handler
}

// Close terminates the websocket connection with a normal closure.
func (t *WebSocketTransport) Close() error {
	err := t.conn.Close(websocket.StatusNormalClosure, "")
	<-t.done
	return err
}
