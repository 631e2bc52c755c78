package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/spotcell-game/server/internal/protocol"
)

func newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Check that the server accepts the configured credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, out, err := connect()
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			player := client.Player()
			out.PrintMessage(&protocol.AuthenticationResponse{
				Success: true,
				Player:  player,
				Message: "Authentication successful",
			})
			return nil
		},
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the games the server knows about",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, out, err := connect()
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			if err := client.Send(&protocol.ServerListRequest{}); err != nil {
				return err
			}
			msg, err := client.Recv(10 * time.Second)
			if err != nil {
				return err
			}
			list, ok := msg.(*protocol.ServerListResponse)
			if !ok {
				return fmt.Errorf("unexpected reply: tag %d", msg.WireTag())
			}
			out.PrintMessage(list)
			return nil
		},
	}
}
