package memory

import (
	"context"
	"sync"

	"github.com/spotcell-game/server/internal/model"
	"github.com/spotcell-game/server/internal/storage"
)

// Storage is an in-memory implementation of the storage interface. It is the
// default backend; nothing survives a process restart.
type Storage struct {
	mu    sync.RWMutex
	games map[model.GameID]*model.GameInfo
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		games: make(map[model.GameID]*model.GameInfo),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) SaveGame(ctx context.Context, game *model.GameInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[game.ID] = game.Clone()
	return nil
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.GameInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	game, ok := s.games[id]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	return game.Clone(), nil
}

func (s *Storage) DeleteGame(ctx context.Context, id model.GameID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.games, id)
	return nil
}

func (s *Storage) ListGames(ctx context.Context) ([]*model.GameInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.GameInfo, 0, len(s.games))
	for _, game := range s.games {
		out = append(out, game.Clone())
	}
	return out, nil
}
