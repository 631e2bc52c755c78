package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var cfg *Config

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "spotcell",
		Short: "Debug client for the spotcell game server",
		Long: `spotcell is a debug client that speaks the game server's framed TCP
protocol. One-shot commands open a session, act, and exit; the play command
keeps the session open for driving a full round by hand.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfg.ServerAddr, "server", cfg.ServerAddr, "Server address (env: SPOTCELL_SERVER)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Username, "username", "u", cfg.Username, "Login username (env: SPOTCELL_USERNAME)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Password, "password", "p", cfg.Password, "Login password (env: SPOTCELL_PASSWORD)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")

	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newPlayCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// connect dials and authenticates using the global configuration
func connect() (*Client, *Output, error) {
	out := NewOutput(cfg.Output)

	client, err := Dial(cfg.ServerAddr)
	if err != nil {
		return nil, out, err
	}
	if _, err := client.Login(cfg.Username, cfg.Password); err != nil {
		_ = client.Close()
		return nil, out, err
	}
	return client, out, nil
}
