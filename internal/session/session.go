package session

import (
	"sync"

	"github.com/spotcell-game/server/internal/model"
	"github.com/spotcell-game/server/internal/protocol"
)

// Sender writes a framed message to one client. Implementations must
// serialize writes to the underlying socket.
type Sender interface {
	Send(msg protocol.Message) error
}

// Session binds a live connection to an authenticated player and, optionally,
// the game the player currently occupies. Exactly one exists per open,
// authenticated connection.
//
// The session holds the player's identity; the game roster entry, not the
// session, is the authoritative copy of in-game state (ready flag, position).
type Session struct {
	// ID identifies the connection, not the player
	ID string

	mu     sync.Mutex
	player model.Player
	gameID *model.GameID

	sender Sender
}

// New creates a session for an authenticated player
func New(id string, player model.Player, sender Sender) *Session {
	return &Session{
		ID:     id,
		player: player,
		sender: sender,
	}
}

// Player returns a copy of the session's player identity
func (s *Session) Player() model.Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.player
}

// PlayerID returns the player's id
func (s *Session) PlayerID() model.PlayerID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.player.ID
}

// Game returns the id of the game the player occupies, if any
func (s *Session) Game() (model.GameID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gameID == nil {
		return "", false
	}
	return *s.gameID, true
}

// InGame reports whether the session occupies the given game
func (s *Session) InGame(id model.GameID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gameID != nil && *s.gameID == id
}

// SetGame records the game the player now occupies
func (s *Session) SetGame(id model.GameID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gameID = &id
}

// LeaveGame clears the session's game membership
func (s *Session) LeaveGame() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gameID = nil
}

// ResetPlayer restores the player's in-game state to defaults after a round
func (s *Session) ResetPlayer() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.player.Ready = false
	s.player.Position = model.PositionUnresolved
}

// Send writes a message to this session's client
func (s *Session) Send(msg protocol.Message) error {
	return s.sender.Send(msg)
}
