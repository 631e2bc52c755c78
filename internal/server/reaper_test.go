package server

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spotcell-game/server/internal/model"
	"github.com/spotcell-game/server/internal/storage"
	"github.com/spotcell-game/server/internal/storage/memory"
	"github.com/spotcell-game/server/internal/testutil"
)

func seedGame(t *testing.T, directory *storage.Directory, id model.GameID, state model.GameState, playerCount int) {
	t.Helper()
	players := map[model.PlayerID]*model.Player{}
	for i := 0; i < playerCount; i++ {
		pid := model.PlayerID(string(id) + "-p" + string(rune('a'+i)))
		players[pid] = &model.Player{ID: pid, Name: string(pid)}
	}
	require.NoError(t, directory.Create(context.Background(), &model.GameInfo{
		ID:      id,
		Name:    string(id),
		Width:   2,
		Height:  2,
		State:   state,
		Creator: &model.Player{ID: "creator"},
		Players: players,
	}))
}

func TestSweepRemovesFinishedAndEmptyGames(t *testing.T) {
	ctx := context.Background()
	directory := storage.NewDirectory(memory.New())
	reaper := NewReaper(directory, time.Minute, testutil.NopLogger())

	seedGame(t, directory, "live", model.GameStateInProgress, 2)
	seedGame(t, directory, "open", model.GameStateWaiting, 1)
	seedGame(t, directory, "done", model.GameStateFinished, 2)
	seedGame(t, directory, "abandoned", model.GameStateWaiting, 0)

	reaper.Sweep(ctx)

	games, err := directory.List(ctx)
	require.NoError(t, err)
	ids := make([]model.GameID, 0, len(games))
	for _, g := range games {
		ids = append(ids, g.ID)
	}
	assert.ElementsMatch(t, []model.GameID{"live", "open"}, ids)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	directory := storage.NewDirectory(memory.New())
	reaper := NewReaper(directory, time.Millisecond, testutil.NopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		reaper.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reaper did not stop after cancellation")
	}
}
