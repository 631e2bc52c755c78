package model

// PlayerID uniquely identifies a player for the lifetime of their connection
type PlayerID string

// Position values outside the 1..N finishing ranks
const (
	// PositionUnresolved marks a player who has not finished the round
	PositionUnresolved = 0
	// PositionDisqualified marks a player who failed the eligibility check
	PositionDisqualified = -1
)

// Player represents a participant in a game
type Player struct {
	ID       PlayerID `json:"id"`
	Name     string   `json:"name"`
	Token    string   `json:"token,omitempty"`
	Ready    bool     `json:"ready"`
	Position int      `json:"position"`
}
