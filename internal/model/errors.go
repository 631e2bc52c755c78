package model

import "errors"

// Common errors used across the application
var (
	// Game errors
	ErrGameNotFound    = errors.New("game not found")
	ErrGameNotJoinable = errors.New("game is not in a joinable state")
	ErrGameNotWaiting  = errors.New("game is not waiting for players")
	ErrGameNotActive   = errors.New("game is not in progress")
	ErrNotCreator      = errors.New("player is not the game creator")
	ErrNotGameMaster   = errors.New("player is not the game master")
	ErrNotInGame       = errors.New("player is not in this game")
	ErrPlayersNotReady = errors.New("not all players are ready")

	// Player errors
	ErrPlayerNotFound = errors.New("player not found")

	// Board errors
	ErrInvalidGrid = errors.New("grid does not match board dimensions")

	// Auth errors
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAlreadyLoggedIn    = errors.New("user already logged in")
)
