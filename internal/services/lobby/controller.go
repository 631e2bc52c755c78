package lobby

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/spotcell-game/server/internal/dependencies/random"
	"github.com/spotcell-game/server/internal/model"
	"github.com/spotcell-game/server/internal/protocol"
	"github.com/spotcell-game/server/internal/session"
	"github.com/spotcell-game/server/internal/storage"
)

// Controller drives the game lifecycle state machine: creation, joining,
// readiness, and start. The round itself is owned by the round engine.
type Controller struct {
	directory *storage.Directory
	sessions  *session.Registry
	random    random.Random
	logger    *slog.Logger
}

// NewController creates a new lifecycle controller
func NewController(
	directory *storage.Directory,
	sessions *session.Registry,
	random random.Random,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		directory: directory,
		sessions:  sessions,
		random:    random,
		logger:    logger,
	}
}

// Create opens a new lobby with the requester as creator and sole, already
// ready, roster member
func (c *Controller) Create(ctx context.Context, sess *session.Session, req *protocol.CreateGameRequest) error {
	identity := sess.Player()
	creator := &model.Player{
		ID:    identity.ID,
		Name:  identity.Name,
		Token: identity.Token,
		Ready: true,
	}

	game := &model.GameInfo{
		ID:      model.GameID(uuid.NewString()),
		Name:    req.Name,
		Width:   req.Width,
		Height:  req.Height,
		State:   model.GameStateWaiting,
		Creator: creator,
		Players: map[model.PlayerID]*model.Player{creator.ID: creator},
	}

	if err := c.directory.Create(ctx, game); err != nil {
		return err
	}
	sess.SetGame(game.ID)

	c.logger.Info("game created",
		slog.String("game_id", string(game.ID)),
		slog.String("name", game.Name),
		slog.String("creator", string(creator.ID)),
	)

	if err := sess.Send(&protocol.CreateGameResponse{
		Success: true,
		Game:    game,
		Message: "Game created successfully",
	}); err != nil {
		return err
	}

	c.broadcastRoster(game.ID, game.Players)
	return nil
}

// List replies to the requester with summaries of every known game
func (c *Controller) List(ctx context.Context, sess *session.Session) error {
	games, err := c.directory.List(ctx)
	if err != nil {
		return err
	}

	servers := make([]*model.GameInfo, 0, len(games))
	for _, g := range games {
		servers = append(servers, g.Summary())
	}

	return sess.Send(&protocol.ServerListResponse{Servers: servers})
}

// Join adds the requester to an open lobby. A missing game is dropped
// silently; a game past the waiting state earns a typed rejection.
func (c *Controller) Join(ctx context.Context, sess *session.Session, req *protocol.JoinGameRequest) error {
	identity := sess.Player()
	var roster map[model.PlayerID]*model.Player

	err := c.directory.Update(ctx, req.GameID, func(g *model.GameInfo) error {
		if g.State != model.GameStateWaiting {
			return model.ErrGameNotJoinable
		}
		g.Players[identity.ID] = &model.Player{
			ID:    identity.ID,
			Name:  identity.Name,
			Token: identity.Token,
		}
		roster = g.Players
		return nil
	})

	switch {
	case errors.Is(err, model.ErrGameNotFound):
		c.logger.Warn("join for unknown game dropped", slog.String("game_id", string(req.GameID)))
		return nil
	case errors.Is(err, model.ErrGameNotJoinable):
		return sess.Send(&protocol.JoinGameResponse{
			Success: false,
			Message: "Game is not in a joinable state",
		})
	case err != nil:
		return err
	}

	sess.SetGame(req.GameID)

	c.logger.Info("player joined game",
		slog.String("game_id", string(req.GameID)),
		slog.String("player_id", string(identity.ID)),
	)

	if err := sess.Send(&protocol.JoinGameResponse{
		Success: true,
		Message: "Joined game successfully",
	}); err != nil {
		return err
	}

	c.broadcastRoster(req.GameID, roster)
	return nil
}

// Ready flags a roster member as ready and pushes the roster to the game's
// members. Unknown games and players are dropped silently.
func (c *Controller) Ready(ctx context.Context, req *protocol.PlayerReadyRequest) error {
	var roster map[model.PlayerID]*model.Player

	err := c.directory.Update(ctx, req.GameID, func(g *model.GameInfo) error {
		p := g.GetPlayer(req.PlayerID)
		if p == nil {
			return model.ErrPlayerNotFound
		}
		p.Ready = true
		roster = g.Players
		return nil
	})

	if errors.Is(err, model.ErrGameNotFound) || errors.Is(err, model.ErrPlayerNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	c.broadcastRoster(req.GameID, roster)
	return nil
}

// PlayerList replies to the requester with a game's current roster
func (c *Controller) PlayerList(ctx context.Context, sess *session.Session, req *protocol.PlayerListRequest) error {
	game, err := c.directory.Get(ctx, req.GameID)
	if errors.Is(err, model.ErrGameNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return sess.Send(&protocol.PlayerListResponse{Players: game.Players})
}

// Start transitions a game into progress. Creator only; every roster member
// must be ready. On failure nothing changes and only the requester is told;
// on success one member is picked as game master and the full aggregate is
// broadcast to every member.
func (c *Controller) Start(ctx context.Context, sess *session.Session, req *protocol.StartGameRequest) error {
	var started *model.GameInfo

	err := c.directory.Update(ctx, req.GameID, func(g *model.GameInfo) error {
		if !g.IsCreator(req.PlayerID) {
			return model.ErrNotCreator
		}
		if g.State != model.GameStateWaiting {
			return model.ErrGameNotWaiting
		}
		if !g.AllReady() {
			return model.ErrPlayersNotReady
		}

		g.GameMaster = c.pickMaster(g)
		g.State = model.GameStateInProgress
		started = g.Clone()
		return nil
	})

	switch {
	case errors.Is(err, model.ErrGameNotFound):
		return nil
	case errors.Is(err, model.ErrNotCreator):
		return sess.Send(&protocol.StartGameResponse{
			Success: false,
			Message: "Only the game creator can start the game",
		})
	case errors.Is(err, model.ErrGameNotWaiting):
		return sess.Send(&protocol.StartGameResponse{
			Success: false,
			Message: "Game has already started",
		})
	case errors.Is(err, model.ErrPlayersNotReady):
		return sess.Send(&protocol.StartGameResponse{
			Success: false,
			Message: "Not all players are ready",
		})
	case err != nil:
		return err
	}

	c.logger.Info("game started",
		slog.String("game_id", string(started.ID)),
		slog.String("game_master", string(started.GameMaster.ID)),
	)

	c.sessions.Broadcast(started.ID, &protocol.StartGameResponse{
		Success: true,
		Game:    started,
		Message: "Game started",
	})
	return nil
}

// pickMaster selects one roster member uniformly at random. Iteration over
// ids is sorted so a seeded Random yields a reproducible pick.
func (c *Controller) pickMaster(g *model.GameInfo) *model.Player {
	ids := make([]string, 0, len(g.Players))
	for id := range g.Players {
		ids = append(ids, string(id))
	}
	sort.Strings(ids)

	pick := ids[c.random.Intn(len(ids))]
	master := *g.Players[model.PlayerID(pick)]
	return &master
}

// HandleDisconnect removes a departing player from their game. If the
// departing player was the game master or the creator, every other member is
// evicted with a disconnect notice and the game is left empty for the reaper.
func (c *Controller) HandleDisconnect(ctx context.Context, sess *session.Session) {
	gameID, ok := sess.Game()
	if !ok {
		return
	}
	sess.LeaveGame()

	playerID := sess.PlayerID()
	var roster map[model.PlayerID]*model.Player
	var cascade bool

	err := c.directory.Update(ctx, gameID, func(g *model.GameInfo) error {
		delete(g.Players, playerID)
		cascade = g.IsCreator(playerID) || g.IsMaster(playerID)
		if cascade {
			for id := range g.Players {
				delete(g.Players, id)
			}
		}
		roster = g.Players
		return nil
	})
	if errors.Is(err, model.ErrGameNotFound) {
		return
	}
	if err != nil {
		c.logger.Error("disconnect cleanup failed",
			slog.String("game_id", string(gameID)),
			slog.String("error", err.Error()),
		)
		return
	}

	c.logger.Info("player removed from game",
		slog.String("game_id", string(gameID)),
		slog.String("player_id", string(playerID)),
		slog.Bool("cascade", cascade),
	)

	if !cascade {
		c.broadcastRoster(gameID, roster)
		return
	}

	// Creator or master left: evict everyone else and let the reaper
	// collect the empty game
	for _, other := range c.sessions.ForGame(gameID) {
		other.LeaveGame()
		if err := other.Send(&protocol.DisconnectNotice{GameID: gameID}); err != nil {
			c.logger.Warn("eviction notice failed",
				slog.String("player_id", string(other.PlayerID())),
				slog.String("error", err.Error()),
			)
		}
	}
}

func (c *Controller) broadcastRoster(gameID model.GameID, roster map[model.PlayerID]*model.Player) {
	c.sessions.Broadcast(gameID, &protocol.PlayerListResponse{Players: roster})
}
