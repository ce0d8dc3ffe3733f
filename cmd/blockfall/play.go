package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/blockfall/internal/games/blockfall"
	"github.com/vovakirdan/blockfall/internal/platform/tui"
	"github.com/vovakirdan/blockfall/internal/registry"
	"github.com/vovakirdan/blockfall/internal/spectate"
)

var flagSpectate string

var playCmd = &cobra.Command{
	Use:   "play [game]",
	Short: "Start a solo run",
	Long: `Start a solo run. The game defaults to blockfall.

Controls:
  Left/Right   - Move
  Down         - Soft drop
  Up           - Hard drop
  Space/Enter  - Rotate counterclockwise
  Tab/X        - Rotate clockwise
  Q/J/C        - Hold
  P/Esc        - Pause
  R            - Restart (after game over)
  Ctrl+S       - Screenshot to ~/.blockfall/screenshots
  Ctrl+C       - Quit

Examples:
  blockfall play
  blockfall play --seed 42
  blockfall play --spectate :8080`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagSpectate, "spectate", "", "Serve a spectator feed on this address (e.g. :8080)")
}

func runPlay(_ *cobra.Command, args []string) error {
	gameID := blockfall.ID
	if len(args) == 1 {
		gameID = args[0]
	}
	if !registry.Exists(gameID) {
		return fmt.Errorf("unknown game %q (run 'blockfall list' to see available games)", gameID)
	}

	game, err := registry.Create(gameID)
	if err != nil {
		return err
	}

	a, err := newApp("play")
	if err != nil {
		return err
	}
	defer a.Close()

	addr := a.cfg.Spectate.Addr
	if flagSpectate != "" {
		addr = flagSpectate
	}
	opts := a.options()
	stop, err := startSpectate(addr, a.logger, &opts, spectate.DefaultFeed)
	if err != nil {
		return err
	}
	defer stop()

	a.logger.Info("solo run", "game", gameID, "player", opts.Player)
	return tui.Run(game, opts, a.runtimeConfig())
}
