package server

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/spotcell-game/server/internal/dependencies/random"
	"github.com/spotcell-game/server/internal/model"
	"github.com/spotcell-game/server/internal/protocol"
	"github.com/spotcell-game/server/internal/services/auth"
	"github.com/spotcell-game/server/internal/services/lobby"
	"github.com/spotcell-game/server/internal/services/round"
	"github.com/spotcell-game/server/internal/session"
	"github.com/spotcell-game/server/internal/storage"
	"github.com/spotcell-game/server/internal/storage/memory"
	"github.com/spotcell-game/server/internal/testutil"
)

// downIdentity forces every login onto the local fallback policy
type downIdentity struct{}

func (downIdentity) Login(context.Context, string, string) (*auth.TokenPair, error) {
	return nil, errors.New("identity backend unreachable")
}

// testClient speaks the framed protocol over a real socket
type testClient struct {
	t    *testing.T
	conn net.Conn
	enc  *protocol.Encoder
	dec  *protocol.Decoder
}

func dialClient(t *testing.T, addr string) *testClient {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("dialing server: %v", err)
	}
	return &testClient{
		t:    t,
		conn: conn,
		enc:  protocol.NewEncoder(conn),
		dec:  protocol.NewDecoder(conn),
	}
}

func (c *testClient) send(msg protocol.Message) {
	c.t.Helper()
	if err := c.enc.Encode(msg); err != nil {
		c.t.Fatalf("sending %T: %v", msg, err)
	}
}

func (c *testClient) recv() protocol.Message {
	c.t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	msg, err := c.dec.Decode()
	if err != nil {
		c.t.Fatalf("receiving: %v", err)
	}
	return msg
}

func (c *testClient) close() {
	_ = c.conn.Close()
}

// login authenticates via the fallback policy and returns the player
func (c *testClient) login(username string) *model.Player {
	c.t.Helper()
	c.send(&protocol.AuthenticationRequest{Username: username, Password: "password"})
	resp, ok := c.recv().(*protocol.AuthenticationResponse)
	if !ok || !resp.Success {
		c.t.Fatalf("login as %s failed: %+v", username, resp)
	}
	return resp.Player
}

type ServerSuite struct {
	suite.Suite
	directory *storage.Directory
	sessions  *session.Registry
	server    *Server
	cancel    context.CancelFunc
	addr      string
}

func TestServerSuite(t *testing.T) {
	suite.Run(t, new(ServerSuite))
}

func (s *ServerSuite) SetupTest() {
	logger := testutil.NopLogger()
	s.directory = storage.NewDirectory(memory.New())
	s.sessions = session.NewRegistry(logger)

	gateway := auth.New(downIdentity{}, s.sessions, logger)
	lobbyController := lobby.NewController(s.directory, s.sessions, random.New(), logger)
	engine := round.NewEngineWithEligibility(s.directory, s.sessions,
		func(position int, _ string) bool { return position > 0 }, logger)
	dispatcher := NewDispatcher(gateway, lobbyController, engine, logger)

	s.server = New("127.0.0.1:0", dispatcher, lobbyController, s.sessions, logger)
	s.Require().NoError(s.server.Listen())
	s.addr = s.server.Addr()

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go func() { _ = s.server.Serve(ctx) }()
}

func (s *ServerSuite) TearDownTest() {
	s.cancel()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.Require().NoError(s.server.Shutdown(ctx))
}

func (s *ServerSuite) TestAuthentication() {
	client := dialClient(s.T(), s.addr)
	defer client.close()

	player := client.login("alice")
	s.Equal("alice", player.Name)
	s.NotEmpty(player.ID)
	s.Equal(1, s.sessions.Count())
}

func (s *ServerSuite) TestRejectedLoginKeepsConnectionOpen() {
	client := dialClient(s.T(), s.addr)
	defer client.close()

	client.send(&protocol.AuthenticationRequest{Username: "ab", Password: "password"})
	resp, ok := client.recv().(*protocol.AuthenticationResponse)
	s.Require().True(ok)
	s.False(resp.Success)

	// Retry on the same connection succeeds
	client.login("alice")
}

func (s *ServerSuite) TestDuplicateAuthenticationRejected() {
	client := dialClient(s.T(), s.addr)
	defer client.close()
	client.login("alice")

	client.send(&protocol.AuthenticationRequest{Username: "alice2", Password: "password"})
	resp, ok := client.recv().(*protocol.AuthenticationResponse)
	s.Require().True(ok)
	s.False(resp.Success)
}

func (s *ServerSuite) TestPreAuthRequestsDropped() {
	client := dialClient(s.T(), s.addr)
	defer client.close()

	// Dropped without a reply; the connection must survive
	client.send(&protocol.ServerListRequest{})
	client.login("alice")
}

func (s *ServerSuite) TestLobbyFlow() {
	creator := dialClient(s.T(), s.addr)
	defer creator.close()
	creatorPlayer := creator.login("alice")

	creator.send(&protocol.ServerListRequest{})
	list, ok := creator.recv().(*protocol.ServerListResponse)
	s.Require().True(ok)
	s.Empty(list.Servers)

	creator.send(&protocol.CreateGameRequest{Name: "Friday night", Width: 4, Height: 4})
	created, ok := creator.recv().(*protocol.CreateGameResponse)
	s.Require().True(ok)
	s.Require().True(created.Success)
	gameID := created.Game.ID
	_, ok = creator.recv().(*protocol.PlayerListResponse)
	s.Require().True(ok)

	joiner := dialClient(s.T(), s.addr)
	defer joiner.close()
	joinerPlayer := joiner.login("bobby")

	joiner.send(&protocol.JoinGameRequest{GameID: gameID})
	joined, ok := joiner.recv().(*protocol.JoinGameResponse)
	s.Require().True(ok)
	s.Require().True(joined.Success)
	_, ok = joiner.recv().(*protocol.PlayerListResponse)
	s.Require().True(ok)

	// The creator sees the roster grow
	roster, ok := creator.recv().(*protocol.PlayerListResponse)
	s.Require().True(ok)
	s.Len(roster.Players, 2)

	// All ready, then start
	joiner.send(&protocol.PlayerReadyRequest{GameID: gameID, PlayerID: joinerPlayer.ID})
	for _, c := range []*testClient{creator, joiner} {
		_, ok = c.recv().(*protocol.PlayerListResponse)
		s.Require().True(ok)
	}

	creator.send(&protocol.StartGameRequest{GameID: gameID, PlayerID: creatorPlayer.ID})
	for _, c := range []*testClient{creator, joiner} {
		started, ok := c.recv().(*protocol.StartGameResponse)
		s.Require().True(ok)
		s.Require().True(started.Success)
		s.Require().NotNil(started.Game)
		s.NotNil(started.Game.GameMaster)
	}
}

func (s *ServerSuite) TestFullRound() {
	creator := dialClient(s.T(), s.addr)
	defer creator.close()
	creatorPlayer := creator.login("alice")

	creator.send(&protocol.CreateGameRequest{Name: "Round", Width: 2, Height: 1})
	created := creator.recv().(*protocol.CreateGameResponse)
	s.Require().True(created.Success)
	gameID := created.Game.ID
	creator.recv() // roster push

	joiner := dialClient(s.T(), s.addr)
	defer joiner.close()
	joinerPlayer := joiner.login("bobby")
	joiner.send(&protocol.JoinGameRequest{GameID: gameID})
	joiner.recv() // join reply
	joiner.recv() // roster push
	creator.recv()

	joiner.send(&protocol.PlayerReadyRequest{GameID: gameID, PlayerID: joinerPlayer.ID})
	creator.recv()
	joiner.recv()

	creator.send(&protocol.StartGameRequest{GameID: gameID, PlayerID: creatorPlayer.ID})
	started := creator.recv().(*protocol.StartGameResponse)
	s.Require().True(started.Success)
	joiner.recv()

	// Work out which client plays master and which responds
	masterID := started.Game.GameMaster.ID
	master, responder := creator, joiner
	masterPlayer, respPlayer := creatorPlayer, joinerPlayer
	if masterID == joinerPlayer.ID {
		master, responder = joiner, creator
		masterPlayer, respPlayer = joinerPlayer, creatorPlayer
	}

	grid := model.GridData{Width: 2, Height: 1}
	grid.AddCell(0, 0, "red")
	grid.AddCell(1, 0, "blue")
	master.send(&protocol.BoardSubmissionRequest{GameID: gameID, PlayerID: masterPlayer.ID, Grid: grid})
	board, ok := responder.recv().(*protocol.BoardBroadcast)
	s.Require().True(ok)
	s.Len(board.Grid.Cells, 2)

	master.send(&protocol.CellSelectionRequest{GameID: gameID, PlayerID: masterPlayer.ID, Cell: model.Cell{X: 1, Y: 0}})
	target, ok := responder.recv().(*protocol.CellSelectionBroadcast)
	s.Require().True(ok)
	s.Equal(model.Cell{X: 1, Y: 0}, target.Cell)

	// The sole non-master response finishes the round
	responder.send(&protocol.PlayerResponseRequest{GameID: gameID, PlayerID: respPlayer.ID, ResponseTime: 420})
	for _, c := range []*testClient{master, responder} {
		results, ok := c.recv().(*protocol.FinishedGameResponse)
		s.Require().True(ok)
		s.Require().Len(results.Results, 1)
		s.Equal(respPlayer.ID, results.Results[0].PlayerID)
		s.Equal(1, results.Results[0].Position)
	}
}

func (s *ServerSuite) TestCreatorDropCascades() {
	creator := dialClient(s.T(), s.addr)
	creator.login("alice")

	creator.send(&protocol.CreateGameRequest{Name: "Doomed", Width: 2, Height: 2})
	created := creator.recv().(*protocol.CreateGameResponse)
	s.Require().True(created.Success)
	gameID := created.Game.ID
	creator.recv()

	joiner := dialClient(s.T(), s.addr)
	defer joiner.close()
	joiner.login("bobby")
	joiner.send(&protocol.JoinGameRequest{GameID: gameID})
	joiner.recv()
	joiner.recv()
	creator.recv()

	// Creator vanishes; the joiner is evicted with a notice
	creator.close()
	notice, ok := joiner.recv().(*protocol.DisconnectNotice)
	s.Require().True(ok)
	s.Equal(gameID, notice.GameID)

	// The emptied game lingers for the reaper
	game, err := s.directory.Get(context.Background(), gameID)
	s.Require().NoError(err)
	s.Empty(game.Players)
}

func (s *ServerSuite) TestExplicitDisconnectLeavesGame() {
	creator := dialClient(s.T(), s.addr)
	defer creator.close()
	creator.login("alice")

	creator.send(&protocol.CreateGameRequest{Name: "Short visit", Width: 2, Height: 2})
	created := creator.recv().(*protocol.CreateGameResponse)
	s.Require().True(created.Success)
	creator.recv()

	creator.send(&protocol.DisconnectNotice{GameID: created.Game.ID})

	// The server tears the connection down; the registry drains
	s.Eventually(func() bool { return s.sessions.Count() == 0 }, 5*time.Second, 10*time.Millisecond)
}
