package cli

import (
	"fmt"
	"net"
	"time"

	"github.com/spotcell-game/server/internal/model"
	"github.com/spotcell-game/server/internal/protocol"
)

// Client is a wire-protocol client for manual testing against a running
// server. Not safe for concurrent Send/Recv from multiple goroutines beyond
// one reader plus one writer.
type Client struct {
	conn net.Conn
	enc  *protocol.Encoder
	dec  *protocol.Decoder

	player *model.Player
}

// Dial connects to the game server
func Dial(addr string) (*Client, error) {
	conn, err := net.DialTimeout("tcp", addr, 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", addr, err)
	}
	return &Client{
		conn: conn,
		enc:  protocol.NewEncoder(conn),
		dec:  protocol.NewDecoder(conn),
	}, nil
}

// Close tears the connection down
func (c *Client) Close() error {
	return c.conn.Close()
}

// Login authenticates the connection and remembers the issued player
func (c *Client) Login(username, password string) (*model.Player, error) {
	if err := c.Send(&protocol.AuthenticationRequest{
		Username: username,
		Password: password,
	}); err != nil {
		return nil, err
	}

	msg, err := c.Recv(10 * time.Second)
	if err != nil {
		return nil, err
	}
	resp, ok := msg.(*protocol.AuthenticationResponse)
	if !ok {
		return nil, fmt.Errorf("unexpected reply to login: tag %d", msg.WireTag())
	}
	if !resp.Success {
		return nil, fmt.Errorf("login rejected: %s", resp.Message)
	}

	c.player = resp.Player
	return resp.Player, nil
}

// Player returns the authenticated player, nil before Login
func (c *Client) Player() *model.Player {
	return c.player
}

// Send writes one framed message
func (c *Client) Send(msg protocol.Message) error {
	return c.enc.Encode(msg)
}

// Recv reads one framed message. A zero timeout blocks indefinitely.
func (c *Client) Recv(timeout time.Duration) (protocol.Message, error) {
	if timeout > 0 {
		if err := c.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
			return nil, err
		}
		defer func() { _ = c.conn.SetReadDeadline(time.Time{}) }()
	}
	return c.dec.Decode()
}
