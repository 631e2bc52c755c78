package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/spotcell-game/server/internal/model"
	"github.com/spotcell-game/server/internal/storage"
)

// Reaper is the single point of game removal: it periodically deletes games
// that are finished or whose roster has emptied out. Disconnect handling
// never deletes games inline, so an observer between cascade and sweep may
// still list the empty game.
type Reaper struct {
	directory *storage.Directory
	interval  time.Duration
	logger    *slog.Logger
}

func NewReaper(directory *storage.Directory, interval time.Duration, logger *slog.Logger) *Reaper {
	return &Reaper{
		directory: directory,
		interval:  interval,
		logger:    logger,
	}
}

// Run sweeps on the configured interval until the context is cancelled
func (r *Reaper) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep(ctx)
		}
	}
}

// Sweep removes every game that is finished or has no players left
func (r *Reaper) Sweep(ctx context.Context) {
	games, err := r.directory.List(ctx)
	if err != nil {
		r.logger.Error("reaper list failed", slog.String("error", err.Error()))
		return
	}

	for _, g := range games {
		if len(g.Players) > 0 && g.State != model.GameStateFinished {
			continue
		}
		if err := r.directory.Delete(ctx, g.ID); err != nil {
			r.logger.Warn("reaper delete failed",
				slog.String("game_id", string(g.ID)),
				slog.String("error", err.Error()),
			)
			continue
		}
		r.logger.Info("game reaped",
			slog.String("game_id", string(g.ID)),
			slog.String("state", string(g.State)),
			slog.Int("players", len(g.Players)),
		)
	}
}
