package session

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/spotcell-game/server/internal/model"
	"github.com/spotcell-game/server/internal/protocol"
)

// Registry is the single source of truth for who is connected. It maps
// connection ids to sessions and is safe for concurrent use from every
// connection handler.
type Registry struct {
	logger *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates an empty session registry
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

// Add registers a session under its connection id
func (r *Registry) Add(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
}

// Remove deletes the session for a connection id and returns it, or nil if
// the connection never authenticated
func (r *Registry) Remove(connID string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[connID]
	if !ok {
		return nil
	}
	delete(r.sessions, connID)
	return s
}

// Get returns the session for a connection id
func (r *Registry) Get(connID string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[connID]
	return s, ok
}

// Count returns the number of live authenticated sessions
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// NameInUse reports whether a display name already belongs to a connected
// session, ignoring case
func (r *Registry) NameInUse(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.sessions {
		if strings.EqualFold(s.Player().Name, name) {
			return true
		}
	}
	return false
}

// ForGame returns every session currently occupying the given game
func (r *Registry) ForGame(gameID model.GameID) []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Session
	for _, s := range r.sessions {
		if s.InGame(gameID) {
			out = append(out, s)
		}
	}
	return out
}

// Broadcast sends a message to every session in the given game, excluding
// the listed player ids. Send failures are logged and skipped; the failing
// connection's own read loop handles its teardown.
func (r *Registry) Broadcast(gameID model.GameID, msg protocol.Message, except ...model.PlayerID) {
	for _, s := range r.ForGame(gameID) {
		if containsPlayer(except, s.PlayerID()) {
			continue
		}
		if err := s.Send(msg); err != nil {
			r.logger.Warn("broadcast send failed",
				slog.String("game_id", string(gameID)),
				slog.String("player_id", string(s.PlayerID())),
				slog.String("error", err.Error()),
			)
		}
	}
}

func containsPlayer(ids []model.PlayerID, id model.PlayerID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
