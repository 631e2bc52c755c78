package cli

import (
	"bufio"
	"fmt"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/spotcell-game/server/internal/model"
	"github.com/spotcell-game/server/internal/protocol"
)

const playHelp = `commands:
  list                      list games
  create <name> <w> <h>     create a game
  join <game-id>            join a game
  ready                     flag yourself ready
  start                     start the game (creator only)
  board                     submit a randomly colored board (master only)
  cell <x> <y>              commit the target cell (master only)
  respond <millis>          report that you spotted the cell
  leave                     announce disconnect and exit
  quit                      exit`

var boardColors = []string{"red", "blue", "green", "yellow", "purple", "orange"}

// playSession tracks what the interactive session has learned from the
// server's pushes: the current game and its dimensions
type playSession struct {
	client *Client
	out    *Output

	mu   sync.Mutex
	game *model.GameInfo
}

func newPlayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Open an interactive session for driving a round by hand",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, out, err := connect()
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			fmt.Printf("logged in as %s (%s)\n%s\n", client.Player().Name, client.Player().ID, playHelp)

			sess := &playSession{client: client, out: out}
			go sess.readLoop()
			return sess.inputLoop()
		},
	}
}

// readLoop prints every inbound frame and snoops game state off the ones
// that carry it
func (s *playSession) readLoop() {
	for {
		msg, err := s.client.Recv(0)
		if err != nil {
			fmt.Println("connection closed")
			return
		}
		s.note(msg)
		s.out.PrintMessage(msg)
	}
}

func (s *playSession) note(msg protocol.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch m := msg.(type) {
	case *protocol.CreateGameResponse:
		if m.Success {
			s.game = m.Game
		}
	case *protocol.StartGameResponse:
		if m.Success {
			s.game = m.Game
		}
	case *protocol.FinishedGameResponse, *protocol.DisconnectNotice:
		s.game = nil
	}
}

func (s *playSession) currentGame() (*model.GameInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.game == nil {
		return nil, fmt.Errorf("not in a game")
	}
	return s.game, nil
}

func (s *playSession) inputLoop() error {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		quit, err := s.run(fields[0], fields[1:])
		if err != nil {
			s.out.PrintError(err)
		}
		if quit {
			return nil
		}
	}
	return scanner.Err()
}

func (s *playSession) run(cmd string, args []string) (quit bool, err error) {
	playerID := s.client.Player().ID

	switch cmd {
	case "help":
		fmt.Println(playHelp)
		return false, nil

	case "list":
		return false, s.client.Send(&protocol.ServerListRequest{})

	case "create":
		if len(args) != 3 {
			return false, fmt.Errorf("usage: create <name> <w> <h>")
		}
		w, errW := strconv.Atoi(args[1])
		h, errH := strconv.Atoi(args[2])
		if errW != nil || errH != nil {
			return false, fmt.Errorf("width and height must be integers")
		}
		return false, s.client.Send(&protocol.CreateGameRequest{Name: args[0], Width: w, Height: h})

	case "join":
		if len(args) != 1 {
			return false, fmt.Errorf("usage: join <game-id>")
		}
		gameID := model.GameID(args[0])
		s.mu.Lock()
		s.game = &model.GameInfo{ID: gameID}
		s.mu.Unlock()
		return false, s.client.Send(&protocol.JoinGameRequest{GameID: gameID})

	case "ready":
		game, err := s.currentGame()
		if err != nil {
			return false, err
		}
		return false, s.client.Send(&protocol.PlayerReadyRequest{GameID: game.ID, PlayerID: playerID})

	case "start":
		game, err := s.currentGame()
		if err != nil {
			return false, err
		}
		return false, s.client.Send(&protocol.StartGameRequest{GameID: game.ID, PlayerID: playerID})

	case "board":
		game, err := s.currentGame()
		if err != nil {
			return false, err
		}
		if game.Width <= 0 || game.Height <= 0 {
			return false, fmt.Errorf("board dimensions unknown, wait for the start broadcast")
		}
		grid := model.GridData{Width: game.Width, Height: game.Height}
		for y := 0; y < game.Height; y++ {
			for x := 0; x < game.Width; x++ {
				grid.AddCell(x, y, boardColors[rand.IntN(len(boardColors))])
			}
		}
		return false, s.client.Send(&protocol.BoardSubmissionRequest{GameID: game.ID, PlayerID: playerID, Grid: grid})

	case "cell":
		if len(args) != 2 {
			return false, fmt.Errorf("usage: cell <x> <y>")
		}
		x, errX := strconv.Atoi(args[0])
		y, errY := strconv.Atoi(args[1])
		if errX != nil || errY != nil {
			return false, fmt.Errorf("coordinates must be integers")
		}
		game, err := s.currentGame()
		if err != nil {
			return false, err
		}
		return false, s.client.Send(&protocol.CellSelectionRequest{GameID: game.ID, PlayerID: playerID, Cell: model.Cell{X: x, Y: y}})

	case "respond":
		if len(args) != 1 {
			return false, fmt.Errorf("usage: respond <millis>")
		}
		ms, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return false, fmt.Errorf("millis must be a number")
		}
		game, err := s.currentGame()
		if err != nil {
			return false, err
		}
		return false, s.client.Send(&protocol.PlayerResponseRequest{GameID: game.ID, PlayerID: playerID, ResponseTime: ms})

	case "leave":
		game, err := s.currentGame()
		if err != nil {
			return true, s.client.Send(&protocol.DisconnectNotice{})
		}
		return true, s.client.Send(&protocol.DisconnectNotice{GameID: game.ID})

	case "quit", "exit":
		return true, nil

	default:
		return false, fmt.Errorf("unknown command %q, try help", cmd)
	}
}
