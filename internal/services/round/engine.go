package round

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/spotcell-game/server/internal/model"
	"github.com/spotcell-game/server/internal/protocol"
	"github.com/spotcell-game/server/internal/session"
	"github.com/spotcell-game/server/internal/storage"
)

// Engine orchestrates the minigame round: board authoring by the game
// master, cell commitment, player responses, and final ranking.
type Engine struct {
	directory   *storage.Directory
	sessions    *session.Registry
	eligibility EligibilityFunc
	logger      *slog.Logger
}

// NewEngine creates a round engine using the production eligibility check
func NewEngine(directory *storage.Directory, sessions *session.Registry, logger *slog.Logger) *Engine {
	return &Engine{
		directory:   directory,
		sessions:    sessions,
		eligibility: CheckEligibility,
		logger:      logger,
	}
}

// NewEngineWithEligibility creates a round engine with a custom eligibility
// check (for tests)
func NewEngineWithEligibility(directory *storage.Directory, sessions *session.Registry, check EligibilityFunc, logger *slog.Logger) *Engine {
	e := NewEngine(directory, sessions, logger)
	e.eligibility = check
	return e
}

// SubmitBoard stores the game master's authored board and re-broadcasts it
// verbatim to every other member. Non-master submissions and structurally
// invalid boards are dropped.
func (e *Engine) SubmitBoard(ctx context.Context, req *protocol.BoardSubmissionRequest) error {
	err := e.directory.Update(ctx, req.GameID, func(g *model.GameInfo) error {
		if !g.IsMaster(req.PlayerID) {
			return model.ErrNotGameMaster
		}
		if err := req.Grid.Validate(g.Width, g.Height); err != nil {
			return err
		}
		grid := req.Grid
		g.Grid = &grid
		return nil
	})

	switch {
	case errors.Is(err, model.ErrGameNotFound), errors.Is(err, model.ErrNotGameMaster):
		return nil
	case errors.Is(err, model.ErrInvalidGrid):
		e.logger.Warn("malformed board submission dropped",
			slog.String("game_id", string(req.GameID)),
			slog.String("player_id", string(req.PlayerID)),
		)
		return nil
	case err != nil:
		return err
	}

	e.logger.Info("board submitted",
		slog.String("game_id", string(req.GameID)),
		slog.Int("cells", len(req.Grid.Cells)),
	)

	e.sessions.Broadcast(req.GameID, &protocol.BoardBroadcast{
		GameID: req.GameID,
		Grid:   req.Grid,
	}, req.PlayerID)
	return nil
}

// SelectCell records the game master's committed target cell and announces
// the coordinate (never the board) to every other member
func (e *Engine) SelectCell(ctx context.Context, req *protocol.CellSelectionRequest) error {
	err := e.directory.Update(ctx, req.GameID, func(g *model.GameInfo) error {
		if !g.IsMaster(req.PlayerID) {
			return model.ErrNotGameMaster
		}
		cell := req.Cell
		g.SelectedCell = &cell
		return nil
	})

	if errors.Is(err, model.ErrGameNotFound) || errors.Is(err, model.ErrNotGameMaster) {
		return nil
	}
	if err != nil {
		return err
	}

	e.logger.Info("target cell committed",
		slog.String("game_id", string(req.GameID)),
		slog.Int("x", req.Cell.X),
		slog.Int("y", req.Cell.Y),
	)

	e.sessions.Broadcast(req.GameID, &protocol.CellSelectionBroadcast{
		GameID: req.GameID,
		Cell:   req.Cell,
	}, req.PlayerID)
	return nil
}

// ProcessResponse assigns finishing positions by message arrival order. The
// reported response time is accepted as supplied; it never reorders
// placements. Once exactly one member remains unresolved, the round resolves.
func (e *Engine) ProcessResponse(ctx context.Context, req *protocol.PlayerResponseRequest) error {
	var snapshot *model.GameInfo
	resolved := false

	err := e.directory.Update(ctx, req.GameID, func(g *model.GameInfo) error {
		if g.State != model.GameStateInProgress {
			return model.ErrGameNotActive
		}
		p := g.GetPlayer(req.PlayerID)
		if p == nil {
			return model.ErrPlayerNotFound
		}

		if p.Position == model.PositionUnresolved {
			p.Position = g.MaxPosition() + 1
			e.logger.Info("position assigned",
				slog.String("game_id", string(g.ID)),
				slog.String("player_id", string(p.ID)),
				slog.Int("position", p.Position),
				slog.Float64("reported_ms", req.ResponseTime),
			)
		}

		if g.UnresolvedCount() == 1 {
			// Claim resolution inside the locked update so it fires once
			g.State = model.GameStateFinished
			resolved = true
		}
		snapshot = g.Clone()
		return nil
	})

	if errors.Is(err, model.ErrGameNotFound) ||
		errors.Is(err, model.ErrPlayerNotFound) ||
		errors.Is(err, model.ErrGameNotActive) {
		return nil
	}
	if err != nil {
		return err
	}

	if resolved {
		return e.resolve(ctx, snapshot)
	}
	return nil
}

// resolve runs the eligibility gate over every finisher, re-ranks the
// eligible ones densely, broadcasts the result, and resets the members'
// sessions. The game is already marked Finished by the caller.
func (e *Engine) resolve(ctx context.Context, game *model.GameInfo) error {
	var finishers []*model.Player
	for _, p := range game.Players {
		if p.Position != model.PositionUnresolved {
			finishers = append(finishers, p)
		}
	}

	// One concurrent check per finisher, off the dispatch path
	eligible := make(map[model.PlayerID]bool, len(finishers))
	var mu sync.Mutex
	grp, _ := errgroup.WithContext(ctx)
	for _, p := range finishers {
		grp.Go(func() error {
			ok := e.eligibility(p.Position, p.Name)
			mu.Lock()
			eligible[p.ID] = ok
			mu.Unlock()
			return nil
		})
	}
	_ = grp.Wait()

	for _, p := range finishers {
		if !eligible[p.ID] {
			p.Position = model.PositionDisqualified
		}
	}

	// Re-rank eligible finishers 1..K by ascending original position
	var ranked []*model.Player
	for _, p := range finishers {
		if p.Position != model.PositionDisqualified {
			ranked = append(ranked, p)
		}
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].Position < ranked[j].Position })
	for i, p := range ranked {
		p.Position = i + 1
	}

	results := make([]model.GameResult, 0, len(finishers))
	for _, p := range finishers {
		results = append(results, model.GameResult{
			PlayerID:   p.ID,
			PlayerName: p.Name,
			Position:   p.Position,
			IsEligible: eligible[p.ID],
		})
	}
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if (a.Position > 0) != (b.Position > 0) {
			return a.Position > 0
		}
		if a.Position != b.Position {
			return a.Position < b.Position
		}
		return a.PlayerName < b.PlayerName
	})

	e.logger.Info("round resolved",
		slog.String("game_id", string(game.ID)),
		slog.Int("finishers", len(finishers)),
		slog.Int("eligible", len(ranked)),
	)

	e.sessions.Broadcast(game.ID, &protocol.FinishedGameResponse{
		GameID:  game.ID,
		Results: results,
	})

	// Clear membership and reset per-session player state for every member
	for _, member := range e.sessions.ForGame(game.ID) {
		member.LeaveGame()
		member.ResetPlayer()
	}

	// Persist final standings; the game may already be reaped, which is fine
	err := e.directory.Update(ctx, game.ID, func(g *model.GameInfo) error {
		for _, p := range finishers {
			if rp := g.GetPlayer(p.ID); rp != nil {
				rp.Position = p.Position
			}
		}
		g.State = model.GameStateFinished
		return nil
	})
	if err != nil && !errors.Is(err, model.ErrGameNotFound) {
		return err
	}
	return nil
}
