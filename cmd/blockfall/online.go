package main

import (
	"github.com/spf13/cobra"

	"github.com/vovakirdan/blockfall/internal/platform/tui"
)

var (
	flagPeer           string
	flagOnlineSpectate string
)

var onlineCmd = &cobra.Command{
	Use:   "online",
	Short: "Duel a peer over the network",
	Long: `Connect to another blockfall player and duel.

Both players run 'blockfall online' pointing at each other. The two
sides find each other over UDP on the configured ports (55755 and
55756 by default), so one machine can host both ends for testing.

Every line you clear is sent to your opponent as garbage. The first
player to top out loses. If the peer goes silent for two seconds the
match ends with "Connection Lost!".

Without --peer you are asked for the host.

Examples:
  blockfall online
  blockfall online --peer 192.168.1.20
  blockfall online --peer localhost`,
	Args: cobra.NoArgs,
	RunE: runOnline,
}

func init() {
	onlineCmd.Flags().StringVar(&flagPeer, "peer", "", "Opponent host or IP")
	onlineCmd.Flags().StringVar(&flagOnlineSpectate, "spectate", "", "Serve a spectator feed on this address (e.g. :8080)")
}

func runOnline(_ *cobra.Command, _ []string) error {
	a, err := newApp("online")
	if err != nil {
		return err
	}
	defer a.Close()

	if flagPeer != "" {
		a.cfg.Net.Peer = flagPeer
	}
	addr := a.cfg.Spectate.Addr
	if flagOnlineSpectate != "" {
		addr = flagOnlineSpectate
	}

	opts := a.options()
	stop, err := startSpectate(addr, a.logger, &opts, "online")
	if err != nil {
		return err
	}
	defer stop()

	return tui.RunOnline(opts, a.runtimeConfig())
}
