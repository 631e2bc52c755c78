package storage

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/spotcell-game/server/internal/model"
)

// lockShards is the size of the directory's lock table. Contention is per
// game, so a small fixed table is plenty.
const lockShards = 32

// Directory is the single source of truth for what games exist. It wraps a
// storage backend with a sharded lock table keyed by game id so that every
// read-modify-write cycle on a game is atomic, regardless of backend.
type Directory struct {
	store Storage
	locks [lockShards]sync.Mutex
}

// NewDirectory creates a Directory over the given backend
func NewDirectory(store Storage) *Directory {
	return &Directory{store: store}
}

func (d *Directory) lockFor(id model.GameID) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return &d.locks[h.Sum32()%lockShards]
}

// Create stores a new game
func (d *Directory) Create(ctx context.Context, game *model.GameInfo) error {
	mu := d.lockFor(game.ID)
	mu.Lock()
	defer mu.Unlock()
	return d.store.SaveGame(ctx, game)
}

// Get returns a copy of the game with the given id
func (d *Directory) Get(ctx context.Context, id model.GameID) (*model.GameInfo, error) {
	return d.store.GetGame(ctx, id)
}

// List returns copies of every known game
func (d *Directory) List(ctx context.Context) ([]*model.GameInfo, error) {
	return d.store.ListGames(ctx)
}

// Delete removes a game
func (d *Directory) Delete(ctx context.Context, id model.GameID) error {
	mu := d.lockFor(id)
	mu.Lock()
	defer mu.Unlock()
	return d.store.DeleteGame(ctx, id)
}

// Update runs fn on the stored game under the game's lock and saves the
// result. If fn returns an error the game is not saved and the error is
// propagated. A missing game returns model.ErrGameNotFound.
func (d *Directory) Update(ctx context.Context, id model.GameID, fn func(*model.GameInfo) error) error {
	mu := d.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	game, err := d.store.GetGame(ctx, id)
	if err != nil {
		return err
	}
	if err := fn(game); err != nil {
		return err
	}
	return d.store.SaveGame(ctx, game)
}
