package protocol

import (
	"github.com/spotcell-game/server/internal/model"
)

// Tag identifies a concrete message variant on the wire
type Tag uint8

// The wire union is closed: exactly these 21 variants, with fixed numeric
// tags. Adding a variant means adding a tag here, a type below, a case in
// newMessage, and a case in the server dispatcher.
const (
	TagAuthenticationRequest  Tag = 0
	TagAuthenticationResponse Tag = 1
	TagGameInfo               Tag = 2
	TagServerListRequest      Tag = 3
	TagServerListResponse     Tag = 4
	TagCreateGameRequest      Tag = 5
	TagCreateGameResponse     Tag = 6
	TagJoinGameRequest        Tag = 7
	TagJoinGameResponse       Tag = 8
	TagPlayerListRequest      Tag = 9
	TagPlayerListResponse     Tag = 10
	TagPlayerReadyRequest     Tag = 11
	TagStartGameRequest       Tag = 12
	TagStartGameResponse      Tag = 13
	TagCellSelectionRequest   Tag = 14
	TagCellSelectionBroadcast Tag = 15
	TagPlayerResponseRequest  Tag = 16
	TagFinishedGameResponse   Tag = 17
	TagDisconnectNotice       Tag = 18
	TagBoardBroadcast         Tag = 19
	TagBoardSubmissionRequest Tag = 20
)

// Message is one variant of the closed wire union
type Message interface {
	WireTag() Tag
	isMessage()
}

// AuthenticationRequest asks the server to authenticate a connection
type AuthenticationRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthenticationResponse is the direct reply to an AuthenticationRequest
type AuthenticationResponse struct {
	Success bool          `json:"success"`
	Player  *model.Player `json:"player,omitempty"`
	Message string        `json:"message"`
}

// GameInfoUpdate pushes a full game aggregate to a client
type GameInfoUpdate model.GameInfo

// ServerListRequest asks for the list of known games
type ServerListRequest struct{}

// ServerListResponse carries game summaries for lobby discovery
type ServerListResponse struct {
	Servers []*model.GameInfo `json:"servers"`
}

// CreateGameRequest opens a new lobby with the requester as creator
type CreateGameRequest struct {
	Name   string `json:"name" validate:"required,max=64"`
	Width  int    `json:"width" validate:"gte=1,lte=64"`
	Height int    `json:"height" validate:"gte=1,lte=64"`
}

// CreateGameResponse is the direct reply to a CreateGameRequest
type CreateGameResponse struct {
	Success bool            `json:"success"`
	Game    *model.GameInfo `json:"game,omitempty"`
	Message string          `json:"message"`
}

// JoinGameRequest asks to join an open lobby
type JoinGameRequest struct {
	GameID model.GameID `json:"game_id" validate:"required"`
}

// JoinGameResponse is the direct reply to a JoinGameRequest
type JoinGameResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// PlayerListRequest asks for a game's current roster
type PlayerListRequest struct {
	GameID model.GameID `json:"game_id" validate:"required"`
}

// PlayerListResponse pushes a game's roster; also broadcast on every roster
// change
type PlayerListResponse struct {
	Players map[model.PlayerID]*model.Player `json:"players"`
}

// PlayerReadyRequest flags the requesting player as ready
type PlayerReadyRequest struct {
	GameID   model.GameID   `json:"game_id" validate:"required"`
	PlayerID model.PlayerID `json:"player_id" validate:"required"`
}

// StartGameRequest asks to start the game; creator only
type StartGameRequest struct {
	GameID   model.GameID   `json:"game_id" validate:"required"`
	PlayerID model.PlayerID `json:"player_id" validate:"required"`
}

// StartGameResponse reports the start outcome. On success it is broadcast to
// every member with the full game aggregate; on failure only the requester
// receives it.
type StartGameResponse struct {
	Success bool            `json:"success"`
	Game    *model.GameInfo `json:"game,omitempty"`
	Message string          `json:"message"`
}

// CellSelectionRequest commits the game master's target cell
type CellSelectionRequest struct {
	GameID   model.GameID   `json:"game_id" validate:"required"`
	PlayerID model.PlayerID `json:"player_id" validate:"required"`
	Cell     model.Cell     `json:"cell"`
}

// CellSelectionBroadcast announces the committed target cell to the other
// members
type CellSelectionBroadcast struct {
	GameID model.GameID `json:"game_id"`
	Cell   model.Cell   `json:"cell"`
}

// PlayerResponseRequest reports that a player located the target cell.
// ResponseTime is client-reported and used for display and the eligibility
// check only; finishing order is resolved by message arrival.
type PlayerResponseRequest struct {
	GameID       model.GameID   `json:"game_id" validate:"required"`
	PlayerID     model.PlayerID `json:"player_id" validate:"required"`
	ResponseTime float64        `json:"response_time" validate:"gte=0"`
}

// FinishedGameResponse carries the final per-player results of a round
type FinishedGameResponse struct {
	GameID  model.GameID       `json:"game_id"`
	Results []model.GameResult `json:"results"`
}

// DisconnectNotice tells a client it has been evicted from a game; inbound,
// it announces the client is leaving
type DisconnectNotice struct {
	GameID model.GameID `json:"game_id"`
}

// BoardBroadcast pushes the authored board to the non-master members
type BoardBroadcast struct {
	GameID model.GameID   `json:"game_id"`
	Grid   model.GridData `json:"grid"`
}

// BoardSubmissionRequest submits the game master's authored board
type BoardSubmissionRequest struct {
	GameID   model.GameID   `json:"game_id" validate:"required"`
	PlayerID model.PlayerID `json:"player_id" validate:"required"`
	Grid     model.GridData `json:"grid" validate:"required"`
}

func (*AuthenticationRequest) WireTag() Tag  { return TagAuthenticationRequest }
func (*AuthenticationResponse) WireTag() Tag { return TagAuthenticationResponse }
func (*GameInfoUpdate) WireTag() Tag         { return TagGameInfo }
func (*ServerListRequest) WireTag() Tag      { return TagServerListRequest }
func (*ServerListResponse) WireTag() Tag     { return TagServerListResponse }
func (*CreateGameRequest) WireTag() Tag      { return TagCreateGameRequest }
func (*CreateGameResponse) WireTag() Tag     { return TagCreateGameResponse }
func (*JoinGameRequest) WireTag() Tag        { return TagJoinGameRequest }
func (*JoinGameResponse) WireTag() Tag       { return TagJoinGameResponse }
func (*PlayerListRequest) WireTag() Tag      { return TagPlayerListRequest }
func (*PlayerListResponse) WireTag() Tag     { return TagPlayerListResponse }
func (*PlayerReadyRequest) WireTag() Tag     { return TagPlayerReadyRequest }
func (*StartGameRequest) WireTag() Tag       { return TagStartGameRequest }
func (*StartGameResponse) WireTag() Tag      { return TagStartGameResponse }
func (*CellSelectionRequest) WireTag() Tag   { return TagCellSelectionRequest }
func (*CellSelectionBroadcast) WireTag() Tag { return TagCellSelectionBroadcast }
func (*PlayerResponseRequest) WireTag() Tag  { return TagPlayerResponseRequest }
func (*FinishedGameResponse) WireTag() Tag   { return TagFinishedGameResponse }
func (*DisconnectNotice) WireTag() Tag       { return TagDisconnectNotice }
func (*BoardBroadcast) WireTag() Tag         { return TagBoardBroadcast }
func (*BoardSubmissionRequest) WireTag() Tag { return TagBoardSubmissionRequest }

func (*AuthenticationRequest) isMessage()  {}
func (*AuthenticationResponse) isMessage() {}
func (*GameInfoUpdate) isMessage()         {}
func (*ServerListRequest) isMessage()      {}
func (*ServerListResponse) isMessage()     {}
func (*CreateGameRequest) isMessage()      {}
func (*CreateGameResponse) isMessage()     {}
func (*JoinGameRequest) isMessage()        {}
func (*JoinGameResponse) isMessage()       {}
func (*PlayerListRequest) isMessage()      {}
func (*PlayerListResponse) isMessage()     {}
func (*PlayerReadyRequest) isMessage()     {}
func (*StartGameRequest) isMessage()       {}
func (*StartGameResponse) isMessage()      {}
func (*CellSelectionRequest) isMessage()   {}
func (*CellSelectionBroadcast) isMessage() {}
func (*PlayerResponseRequest) isMessage()  {}
func (*FinishedGameResponse) isMessage()   {}
func (*DisconnectNotice) isMessage()       {}
func (*BoardBroadcast) isMessage()         {}
func (*BoardSubmissionRequest) isMessage() {}

// newMessage allocates the concrete variant for a wire tag, or nil for an
// unknown tag
func newMessage(tag Tag) Message {
	switch tag {
	case TagAuthenticationRequest:
		return &AuthenticationRequest{}
	case TagAuthenticationResponse:
		return &AuthenticationResponse{}
	case TagGameInfo:
		return &GameInfoUpdate{}
	case TagServerListRequest:
		return &ServerListRequest{}
	case TagServerListResponse:
		return &ServerListResponse{}
	case TagCreateGameRequest:
		return &CreateGameRequest{}
	case TagCreateGameResponse:
		return &CreateGameResponse{}
	case TagJoinGameRequest:
		return &JoinGameRequest{}
	case TagJoinGameResponse:
		return &JoinGameResponse{}
	case TagPlayerListRequest:
		return &PlayerListRequest{}
	case TagPlayerListResponse:
		return &PlayerListResponse{}
	case TagPlayerReadyRequest:
		return &PlayerReadyRequest{}
	case TagStartGameRequest:
		return &StartGameRequest{}
	case TagStartGameResponse:
		return &StartGameResponse{}
	case TagCellSelectionRequest:
		return &CellSelectionRequest{}
	case TagCellSelectionBroadcast:
		return &CellSelectionBroadcast{}
	case TagPlayerResponseRequest:
		return &PlayerResponseRequest{}
	case TagFinishedGameResponse:
		return &FinishedGameResponse{}
	case TagDisconnectNotice:
		return &DisconnectNotice{}
	case TagBoardBroadcast:
		return &BoardBroadcast{}
	case TagBoardSubmissionRequest:
		return &BoardSubmissionRequest{}
	default:
		return nil
	}
}
