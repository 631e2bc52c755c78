package model

// GameID uniquely identifies a game instance
type GameID string

// GameState represents the lifecycle state of a game.
// Transitions only move forward: WaitingForPlayers -> InProgress -> Finished.
type GameState string

const (
	GameStateWaiting    GameState = "waiting_for_players"
	GameStateInProgress GameState = "in_progress"
	GameStateFinished   GameState = "finished"
)

// Cell is a board coordinate
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// GameInfo is the lobby/match aggregate. The lobby directory exclusively owns
// every GameInfo and, through the roster, every Player inside it.
type GameInfo struct {
	ID     GameID    `json:"id"`
	Name   string    `json:"name"`
	Width  int       `json:"width"`
	Height int       `json:"height"`
	State  GameState `json:"state"`

	// Creator is fixed at creation; GameMaster is assigned at start and may
	// differ from the creator.
	Creator    *Player `json:"creator,omitempty"`
	GameMaster *Player `json:"game_master,omitempty"`

	// SelectedCell is the target committed by the game master, nil until the
	// cell-commitment phase.
	SelectedCell *Cell `json:"selected_cell,omitempty"`

	// Grid is the board authored by the game master, nil until submitted.
	Grid *GridData `json:"grid,omitempty"`

	Players map[PlayerID]*Player `json:"players"`
}

// GetPlayer returns the roster member with the given id, or nil
func (g *GameInfo) GetPlayer(id PlayerID) *Player {
	return g.Players[id]
}

// IsMaster reports whether the given player is the assigned game master
func (g *GameInfo) IsMaster(id PlayerID) bool {
	return g.GameMaster != nil && g.GameMaster.ID == id
}

// IsCreator reports whether the given player created this game
func (g *GameInfo) IsCreator(id PlayerID) bool {
	return g.Creator != nil && g.Creator.ID == id
}

// AllReady reports whether every roster member has flagged ready
func (g *GameInfo) AllReady() bool {
	for _, p := range g.Players {
		if !p.Ready {
			return false
		}
	}
	return true
}

// UnresolvedCount returns the number of roster members still at an
// unresolved position. The round resolves when this reaches one.
func (g *GameInfo) UnresolvedCount() int {
	n := 0
	for _, p := range g.Players {
		if p.Position == PositionUnresolved {
			n++
		}
	}
	return n
}

// MaxPosition returns the highest position currently assigned in the roster
func (g *GameInfo) MaxPosition() int {
	max := 0
	for _, p := range g.Players {
		if p.Position > max {
			max = p.Position
		}
	}
	return max
}

// Summary returns a copy suitable for lobby discovery: the roster and static
// metadata without the authored board, target cell, or master assignment.
func (g *GameInfo) Summary() *GameInfo {
	return &GameInfo{
		ID:      g.ID,
		Name:    g.Name,
		Width:   g.Width,
		Height:  g.Height,
		State:   g.State,
		Creator: g.Creator,
		Players: g.Players,
	}
}

// Clone returns a deep copy of the aggregate. Storage backends and services
// exchange copies so no caller ever aliases a stored roster.
func (g *GameInfo) Clone() *GameInfo {
	out := *g
	if g.Creator != nil {
		creator := *g.Creator
		out.Creator = &creator
	}
	if g.GameMaster != nil {
		master := *g.GameMaster
		out.GameMaster = &master
	}
	if g.SelectedCell != nil {
		cell := *g.SelectedCell
		out.SelectedCell = &cell
	}
	if g.Grid != nil {
		grid := *g.Grid
		grid.Cells = append([]CellData(nil), g.Grid.Cells...)
		out.Grid = &grid
	}
	if g.Players != nil {
		out.Players = make(map[PlayerID]*Player, len(g.Players))
		for id, p := range g.Players {
			player := *p
			out.Players[id] = &player
		}
	}
	return &out
}

// GameResult is the per-player outcome of a finished round
type GameResult struct {
	PlayerID   PlayerID `json:"player_id"`
	PlayerName string   `json:"player_name"`
	Position   int      `json:"position"`
	IsEligible bool     `json:"is_eligible"`
}
