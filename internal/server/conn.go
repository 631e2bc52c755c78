package server

import (
	"net"
	"sync"

	"github.com/spotcell-game/server/internal/protocol"
)

// conn wraps a client socket with a framed encoder. Sends are serialized by
// a mutex because broadcasts and direct replies race on the same socket.
type conn struct {
	id      string
	netConn net.Conn

	writeMu sync.Mutex
	enc     *protocol.Encoder
}

func newConn(id string, nc net.Conn) *conn {
	return &conn{
		id:      id,
		netConn: nc,
		enc:     protocol.NewEncoder(nc),
	}
}

// Send writes one framed message. Implements session.Sender.
func (c *conn) Send(msg protocol.Message) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.enc.Encode(msg)
}

func (c *conn) Close() error {
	return c.netConn.Close()
}

func (c *conn) RemoteAddr() string {
	return c.netConn.RemoteAddr().String()
}
