package storage_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spotcell-game/server/internal/model"
	"github.com/spotcell-game/server/internal/storage"
	"github.com/spotcell-game/server/internal/storage/memory"
)

func newDirectory() *storage.Directory {
	return storage.NewDirectory(memory.New())
}

func sampleGame(id string) *model.GameInfo {
	creator := &model.Player{ID: "p1", Name: "alice"}
	return &model.GameInfo{
		ID:      model.GameID(id),
		Name:    "Test game",
		State:   model.GameStateWaiting,
		Creator: creator,
		Players: map[model.PlayerID]*model.Player{creator.ID: creator},
	}
}

func TestUpdateMutatesAndSaves(t *testing.T) {
	dir := newDirectory()
	ctx := context.Background()
	require.NoError(t, dir.Create(ctx, sampleGame("g1")))

	err := dir.Update(ctx, "g1", func(g *model.GameInfo) error {
		g.State = model.GameStateInProgress
		return nil
	})
	require.NoError(t, err)

	got, err := dir.Get(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, model.GameStateInProgress, got.State)
}

func TestUpdateMissingGame(t *testing.T) {
	dir := newDirectory()

	err := dir.Update(context.Background(), "missing", func(g *model.GameInfo) error {
		t.Fatal("fn should not run for a missing game")
		return nil
	})
	assert.ErrorIs(t, err, model.ErrGameNotFound)
}

func TestUpdateErrorDiscardsChanges(t *testing.T) {
	dir := newDirectory()
	ctx := context.Background()
	require.NoError(t, dir.Create(ctx, sampleGame("g1")))

	wantErr := errors.New("rejected")
	err := dir.Update(ctx, "g1", func(g *model.GameInfo) error {
		g.State = model.GameStateFinished
		return wantErr
	})
	assert.ErrorIs(t, err, wantErr)

	got, err := dir.Get(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, model.GameStateWaiting, got.State)
}

func TestConcurrentUpdatesAreSerialized(t *testing.T) {
	dir := newDirectory()
	ctx := context.Background()
	require.NoError(t, dir.Create(ctx, sampleGame("g1")))

	const workers = 32
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = dir.Update(ctx, "g1", func(g *model.GameInfo) error {
				g.Players["p1"].Position++
				return nil
			})
		}()
	}
	wg.Wait()

	got, err := dir.Get(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, workers, got.Players["p1"].Position)
}
