package storage

import (
	"context"

	"github.com/spotcell-game/server/internal/model"
)

// Storage defines the persistence interface for the lobby directory. All
// implementations return and accept deep copies; callers never share a
// stored aggregate.
type Storage interface {
	SaveGame(ctx context.Context, game *model.GameInfo) error
	GetGame(ctx context.Context, id model.GameID) (*model.GameInfo, error)
	DeleteGame(ctx context.Context, id model.GameID) error
	ListGames(ctx context.Context) ([]*model.GameInfo, error)
}
