package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spotcell-game/server/internal/model"
	"github.com/spotcell-game/server/internal/protocol"
	"github.com/spotcell-game/server/internal/testutil"
)

type captureSender struct {
	sent []protocol.Message
}

func (c *captureSender) Send(msg protocol.Message) error {
	c.sent = append(c.sent, msg)
	return nil
}

func newTestSession(connID, playerID, name string) (*Session, *captureSender) {
	sender := &captureSender{}
	s := New(connID, model.Player{ID: model.PlayerID(playerID), Name: name}, sender)
	return s, sender
}

func TestAddGetRemove(t *testing.T) {
	r := NewRegistry(testutil.NopLogger())
	s, _ := newTestSession("c1", "p1", "alice")

	r.Add(s)
	got, ok := r.Get("c1")
	require.True(t, ok)
	assert.Equal(t, s, got)
	assert.Equal(t, 1, r.Count())

	removed := r.Remove("c1")
	assert.Equal(t, s, removed)
	assert.Equal(t, 0, r.Count())

	_, ok = r.Get("c1")
	assert.False(t, ok)
}

func TestRemoveUnknownConnection(t *testing.T) {
	r := NewRegistry(testutil.NopLogger())
	assert.Nil(t, r.Remove("never-authenticated"))
}

func TestNameInUseIsCaseInsensitive(t *testing.T) {
	r := NewRegistry(testutil.NopLogger())
	s, _ := newTestSession("c1", "p1", "Alice")
	r.Add(s)

	assert.True(t, r.NameInUse("alice"))
	assert.True(t, r.NameInUse("ALICE"))
	assert.False(t, r.NameInUse("bob"))
}

func TestGameMembership(t *testing.T) {
	s, _ := newTestSession("c1", "p1", "alice")

	_, ok := s.Game()
	assert.False(t, ok)

	s.SetGame("g1")
	id, ok := s.Game()
	require.True(t, ok)
	assert.Equal(t, model.GameID("g1"), id)
	assert.True(t, s.InGame("g1"))
	assert.False(t, s.InGame("g2"))

	s.LeaveGame()
	_, ok = s.Game()
	assert.False(t, ok)
}

func TestBroadcastTargetsGameMembers(t *testing.T) {
	r := NewRegistry(testutil.NopLogger())

	s1, sender1 := newTestSession("c1", "p1", "alice")
	s2, sender2 := newTestSession("c2", "p2", "bob")
	s3, sender3 := newTestSession("c3", "p3", "carol")
	r.Add(s1)
	r.Add(s2)
	r.Add(s3)

	s1.SetGame("g1")
	s2.SetGame("g1")
	s3.SetGame("g2")

	msg := &protocol.DisconnectNotice{GameID: "g1"}
	r.Broadcast("g1", msg)

	assert.Len(t, sender1.sent, 1)
	assert.Len(t, sender2.sent, 1)
	assert.Empty(t, sender3.sent)
}

func TestBroadcastExcludesListedPlayers(t *testing.T) {
	r := NewRegistry(testutil.NopLogger())

	s1, sender1 := newTestSession("c1", "p1", "alice")
	s2, sender2 := newTestSession("c2", "p2", "bob")
	r.Add(s1)
	r.Add(s2)
	s1.SetGame("g1")
	s2.SetGame("g1")

	r.Broadcast("g1", &protocol.CellSelectionBroadcast{GameID: "g1"}, "p1")

	assert.Empty(t, sender1.sent)
	assert.Len(t, sender2.sent, 1)
}

func TestResetPlayerClearsRoundState(t *testing.T) {
	sender := &captureSender{}
	s := New("c1", model.Player{ID: "p1", Name: "alice", Ready: true, Position: 3}, sender)

	s.ResetPlayer()

	p := s.Player()
	assert.False(t, p.Ready)
	assert.Equal(t, model.PositionUnresolved, p.Position)
}
