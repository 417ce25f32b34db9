package network

import (
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	pkgerrors "github.com/pkg/errors"
)

// WSConn is one open websocket, owned by the table that issued its
// handle.
type WSConn struct {
	ID   string
	URL  string
	conn *websocket.Conn

	mu     sync.Mutex
	closed bool
}

// WSTable tracks open websockets by handle so scripts can refer to
// them across native calls.
type WSTable struct {
	mu    sync.RWMutex
	conns map[string]*WSConn
	next  int
}

func NewWSTable() *WSTable {
	return &WSTable{conns: make(map[string]*WSConn)}
}

// Connect dials url and returns the handle for the new connection.
func (t *WSTable) Connect(url string) (string, error) {
	dialer := *websocket.DefaultDialer
	dialer.HandshakeTimeout = 10 * time.Second

	conn, resp, err := dialer.Dial(url, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return "", pkgerrors.Wrap(err, "websocket dial failed")
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.next++
	id := fmt.Sprintf("ws_%d", t.next)
	t.conns[id] = &WSConn{ID: id, URL: url, conn: conn}
	return id, nil
}

// Send writes a text message on the connection behind id.
func (t *WSTable) Send(id, message string) error {
	c, err := t.get(id)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return pkgerrors.Errorf("websocket '%s' is closed", id)
	}
	return c.conn.WriteMessage(websocket.TextMessage, []byte(message))
}

// Recv blocks until the next message arrives and returns it as text.
func (t *WSTable) Recv(id string) (string, error) {
	c, err := t.get(id)
	if err != nil {
		return "", err
	}
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return "", pkgerrors.Wrap(err, "websocket read failed")
	}
	return string(data), nil
}

// Close sends a close frame and forgets the handle.
func (t *WSTable) Close(id string) error {
	c, err := t.get(id)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if !c.closed {
		c.closed = true
		c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.conn.Close()
	}
	c.mu.Unlock()

	t.mu.Lock()
	delete(t.conns, id)
	t.mu.Unlock()
	return nil
}

// CloseAll tears down every open connection.
func (t *WSTable) CloseAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, c := range t.conns {
		c.conn.Close()
	}
	t.conns = make(map[string]*WSConn)
}

func (t *WSTable) get(id string) (*WSConn, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	c, ok := t.conns[id]
	if !ok {
		return nil, pkgerrors.Errorf("websocket '%s' not found", id)
	}
	return c, nil
}
