package cli

import (
	"fmt"
	"os"
	"sort"

	"github.com/goccy/go-json"

	"github.com/spotcell-game/server/internal/model"
	"github.com/spotcell-game/server/internal/protocol"
)

// Output formats received messages for the terminal
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// PrintMessage renders one inbound message
func (o *Output) PrintMessage(msg protocol.Message) {
	if o.format == "json" {
		data, err := json.Marshal(map[string]any{
			"tag":  msg.WireTag(),
			"body": msg,
		})
		if err != nil {
			o.PrintError(err)
			return
		}
		fmt.Println(string(data))
		return
	}
	fmt.Println(describe(msg))
}

// PrintError renders an error to stderr
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"error": err.Error()})
		fmt.Fprintln(os.Stderr, string(data))
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %s\n", err)
}

func describe(msg protocol.Message) string {
	switch m := msg.(type) {
	case *protocol.AuthenticationResponse:
		if m.Success {
			return fmt.Sprintf("authenticated as %s (%s)", m.Player.Name, m.Player.ID)
		}
		return fmt.Sprintf("authentication failed: %s", m.Message)
	case *protocol.ServerListResponse:
		if len(m.Servers) == 0 {
			return "no games"
		}
		out := fmt.Sprintf("%d game(s):", len(m.Servers))
		for _, g := range m.Servers {
			out += fmt.Sprintf("\n  %s  %q  %dx%d  %s  %d player(s)",
				g.ID, g.Name, g.Width, g.Height, g.State, len(g.Players))
		}
		return out
	case *protocol.CreateGameResponse:
		if m.Success {
			return fmt.Sprintf("game created: %s", m.Game.ID)
		}
		return fmt.Sprintf("create failed: %s", m.Message)
	case *protocol.JoinGameResponse:
		if m.Success {
			return "joined game"
		}
		return fmt.Sprintf("join failed: %s", m.Message)
	case *protocol.PlayerListResponse:
		out := fmt.Sprintf("roster (%d):", len(m.Players))
		for _, p := range sortedRoster(m.Players) {
			ready := " "
			if p.Ready {
				ready = "*"
			}
			out += fmt.Sprintf("\n  [%s] %s (%s)", ready, p.Name, p.ID)
		}
		return out
	case *protocol.StartGameResponse:
		if m.Success {
			return fmt.Sprintf("game started, master is %s", m.Game.GameMaster.Name)
		}
		return fmt.Sprintf("start failed: %s", m.Message)
	case *protocol.BoardBroadcast:
		return fmt.Sprintf("board received: %dx%d, %d cells", m.Grid.Width, m.Grid.Height, len(m.Grid.Cells))
	case *protocol.CellSelectionBroadcast:
		return fmt.Sprintf("target cell: (%d, %d)", m.Cell.X, m.Cell.Y)
	case *protocol.FinishedGameResponse:
		out := "round finished:"
		for _, r := range m.Results {
			place := fmt.Sprintf("#%d", r.Position)
			if r.Position == model.PositionDisqualified {
				place = "DQ"
			}
			out += fmt.Sprintf("\n  %s  %s", place, r.PlayerName)
		}
		return out
	case *protocol.DisconnectNotice:
		return fmt.Sprintf("evicted from game %s", m.GameID)
	default:
		return fmt.Sprintf("message tag %d: %+v", msg.WireTag(), msg)
	}
}

func sortedRoster(players map[model.PlayerID]*model.Player) []*model.Player {
	out := make([]*model.Player, 0, len(players))
	for _, p := range players {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
