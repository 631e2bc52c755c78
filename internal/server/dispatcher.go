package server

import (
	"context"
	"errors"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/spotcell-game/server/internal/protocol"
	"github.com/spotcell-game/server/internal/services/auth"
	"github.com/spotcell-game/server/internal/services/lobby"
	"github.com/spotcell-game/server/internal/services/round"
	"github.com/spotcell-game/server/internal/session"
)

// errClientLeaving signals that the client announced its departure and the
// connection should be torn down through the normal disconnect path.
var errClientLeaving = errors.New("client requested disconnect")

// Dispatcher routes decoded messages to the owning service. One dispatcher
// serves every connection; all per-connection state lives in the session.
type Dispatcher struct {
	auth     *auth.Gateway
	lobby    *lobby.Controller
	round    *round.Engine
	validate *validator.Validate
	logger   *slog.Logger
}

func NewDispatcher(
	authGateway *auth.Gateway,
	lobbyController *lobby.Controller,
	roundEngine *round.Engine,
	logger *slog.Logger,
) *Dispatcher {
	return &Dispatcher{
		auth:     authGateway,
		lobby:    lobbyController,
		round:    roundEngine,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

// Handle processes one inbound message for a connection. The returned
// session replaces the caller's; it becomes non-nil once authentication
// succeeds. A returned error is connection-fatal.
func (d *Dispatcher) Handle(
	ctx context.Context,
	c *conn,
	sess *session.Session,
	msg protocol.Message,
) (*session.Session, error) {
	if err := d.validate.Struct(msg); err != nil {
		d.logger.Warn("malformed request dropped",
			slog.Int("tag", int(msg.WireTag())),
			slog.String("conn_id", c.id),
			slog.String("error", err.Error()),
		)
		return sess, nil
	}

	// Before authentication only tag 0 is served
	if sess == nil {
		req, ok := msg.(*protocol.AuthenticationRequest)
		if !ok {
			d.logger.Warn("request on unauthenticated connection dropped",
				slog.Int("tag", int(msg.WireTag())),
				slog.String("conn_id", c.id),
			)
			return nil, nil
		}
		newSess, resp := d.auth.Authenticate(ctx, c.id, c, req)
		return newSess, c.Send(resp)
	}

	switch req := msg.(type) {
	case *protocol.AuthenticationRequest:
		return sess, c.Send(&protocol.AuthenticationResponse{
			Success: false,
			Message: "Already authenticated",
		})
	case *protocol.ServerListRequest:
		return sess, d.lobby.List(ctx, sess)
	case *protocol.CreateGameRequest:
		return sess, d.lobby.Create(ctx, sess, req)
	case *protocol.JoinGameRequest:
		return sess, d.lobby.Join(ctx, sess, req)
	case *protocol.PlayerListRequest:
		return sess, d.lobby.PlayerList(ctx, sess, req)
	case *protocol.PlayerReadyRequest:
		return sess, d.lobby.Ready(ctx, req)
	case *protocol.StartGameRequest:
		return sess, d.lobby.Start(ctx, sess, req)
	case *protocol.CellSelectionRequest:
		return sess, d.round.SelectCell(ctx, req)
	case *protocol.PlayerResponseRequest:
		return sess, d.round.ProcessResponse(ctx, req)
	case *protocol.BoardSubmissionRequest:
		return sess, d.round.SubmitBoard(ctx, req)
	case *protocol.DisconnectNotice:
		return sess, errClientLeaving
	default:
		// Server-to-client variants arriving inbound
		d.logger.Warn("unexpected inbound message dropped",
			slog.Int("tag", int(msg.WireTag())),
			slog.String("conn_id", c.id),
		)
		return sess, nil
	}
}
