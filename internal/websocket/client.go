package websocket

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Client serializes writes to a connection shared by the read loop and the
// pub/sub forwarder. Reads stay with a single goroutine.
type Client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// NewClient wraps an upgraded connection.
func NewClient(conn *websocket.Conn) *Client {
	conn.SetReadLimit(MaxMessageSize)
	return &Client{conn: conn}
}

func (c *Client) Send(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return WriteTyped(c.conn, v)
}

func (c *Client) SendRaw(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return WriteRaw(c.conn, payload)
}

func (c *Client) SendError(code, msg string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return WriteError(c.conn, code, msg)
}

// Read decodes the next client frame.
func (c *Client) Read(v interface{}) error {
	return ReadJSON(c.conn, v)
}

func (c *Client) Close() error {
	return c.conn.Close()
}
