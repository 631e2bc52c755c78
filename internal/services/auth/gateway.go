package auth

import (
	"context"
	"log/slog"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/spotcell-game/server/internal/model"
	"github.com/spotcell-game/server/internal/protocol"
	"github.com/spotcell-game/server/internal/session"
)

const (
	// minCredentialLength applies to both the derived username and password
	minCredentialLength = 4

	// fallbackToken marks sessions authenticated without the identity service
	fallbackToken = "NoToken"
)

// Gateway validates submitted credentials and registers client sessions. It
// first delegates to the external identity service; when that service is
// unreachable or rejects the login, a local acceptance policy takes over so
// the game server stays usable on its own.
type Gateway struct {
	identity IdentityClient
	sessions *session.Registry
	logger   *slog.Logger
}

// New creates a new authentication gateway
func New(identity IdentityClient, sessions *session.Registry, logger *slog.Logger) *Gateway {
	return &Gateway{
		identity: identity,
		sessions: sessions,
		logger:   logger,
	}
}

// Authenticate handles one authentication request for a connection. On
// success it registers a new ClientSession keyed by the connection id and
// returns it alongside the response; on failure the session is nil.
func (g *Gateway) Authenticate(ctx context.Context, connID string, sender session.Sender, req *protocol.AuthenticationRequest) (*session.Session, *protocol.AuthenticationResponse) {
	// The portion before any '@' becomes the local username
	username := strings.SplitN(req.Username, "@", 2)[0]

	token := fallbackToken
	valid := false
	message := "Invalid username or password"

	tokens, err := g.identity.Login(ctx, req.Username, req.Password)
	if err == nil {
		valid = true
		token = tokens.AccessToken
	} else {
		g.logger.Info("delegated login failed, using local fallback policy",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)

		valid = validUsername(username) && validPassword(req.Password)
		if valid && g.sessions.NameInUse(username) {
			valid = false
			message = "User already logged in"
		}
	}

	if !valid {
		g.logger.Info("authentication failed", slog.String("username", username))
		return nil, &protocol.AuthenticationResponse{
			Success: false,
			Message: message,
		}
	}

	player := model.Player{
		ID:    model.PlayerID(uuid.NewString()),
		Name:  username,
		Token: token,
	}

	sess := session.New(connID, player, sender)
	g.sessions.Add(sess)

	g.logger.Info("authentication succeeded",
		slog.String("username", username),
		slog.String("player_id", string(player.ID)),
	)

	return sess, &protocol.AuthenticationResponse{
		Success: true,
		Player:  &player,
		Message: "Authentication successful",
	}
}

// validUsername applies the local fallback policy to a derived username:
// at least four characters, no whitespace, letters/digits/underscore/dot/dash
// only.
func validUsername(name string) bool {
	if len(name) < minCredentialLength {
		return false
	}
	for _, r := range name {
		if unicode.IsSpace(r) {
			return false
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '.' && r != '-' {
			return false
		}
	}
	return true
}

// validPassword requires at least four characters and no whitespace
func validPassword(password string) bool {
	if len(password) < minCredentialLength {
		return false
	}
	for _, r := range password {
		if unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
