package ops

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spotcell-game/server/internal/model"
	"github.com/spotcell-game/server/internal/session"
	"github.com/spotcell-game/server/internal/storage"
	"github.com/spotcell-game/server/internal/storage/memory"
	"github.com/spotcell-game/server/internal/testutil"
)

func newTestServer(t *testing.T) (*Server, *storage.Directory, *session.Registry) {
	t.Helper()
	directory := storage.NewDirectory(memory.New())
	sessions := session.NewRegistry(testutil.NopLogger())
	return NewServer("127.0.0.1:0", directory, sessions, testutil.NopLogger()), directory, sessions
}

func TestHealthz(t *testing.T) {
	srv, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.server.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestStatusCountsSessionsAndGames(t *testing.T) {
	srv, directory, sessions := newTestServer(t)
	ctx := context.Background()

	sessions.Add(session.New("c1", model.Player{ID: "p1", Name: "alice"}, nil))
	sessions.Add(session.New("c2", model.Player{ID: "p2", Name: "bobby"}, nil))

	for i, state := range []model.GameState{
		model.GameStateWaiting,
		model.GameStateInProgress,
		model.GameStateInProgress,
		model.GameStateFinished,
	} {
		require.NoError(t, directory.Create(ctx, &model.GameInfo{
			ID:      model.GameID(string(rune('a' + i))),
			Name:    "g",
			Width:   2,
			Height:  2,
			State:   state,
			Creator: &model.Player{ID: "p1"},
			Players: map[model.PlayerID]*model.Player{},
		}))
	}

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	srv.server.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var status Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, 2, status.Sessions)
	assert.Equal(t, 1, status.Games[string(model.GameStateWaiting)])
	assert.Equal(t, 2, status.Games[string(model.GameStateInProgress)])
	assert.Equal(t, 1, status.Games[string(model.GameStateFinished)])
}

func TestStatusMethodNotAllowed(t *testing.T) {
	srv, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/status", nil)
	rec := httptest.NewRecorder()
	srv.server.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
