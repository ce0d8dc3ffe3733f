package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/blockfall/internal/logging"
	"github.com/vovakirdan/blockfall/internal/platform/tui"
	"github.com/vovakirdan/blockfall/internal/spectate"
	"github.com/vovakirdan/blockfall/internal/storage"
)

var (
	flagSSHAddr       string
	flagHostKey       string
	flagIdleTimeout   int
	flagServeSpectate string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Host solo sessions over SSH",
	Long: `Start an SSH server that lets users connect and play.

Each SSH connection gets its own menu and its own game. Scores are
stored per server (all users share the same leaderboard). Online
duels are not offered over SSH.

With --spectate, every session is also streamed read-only over
HTTP and WebSocket:
  GET /feeds            - live sessions
  GET /state?feed=NAME  - latest snapshot as JSON
  GET /ws?feed=NAME     - snapshot stream

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.blockfall/host_key

Examples:
  blockfall serve                           # Listen on :23234
  blockfall serve --ssh :2222               # Listen on port 2222
  blockfall serve --spectate :8080          # Also stream sessions
  blockfall serve --host-key ./my_host_key  # Use specific host key

Users can connect with:
  ssh localhost -p 23234`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", ":23234", "SSH server address (host:port)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
	serveCmd.Flags().StringVar(&flagServeSpectate, "spectate", "", "Serve spectator feeds on this address (e.g. :8080)")
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := logging.NewStderr(cfg.Log.Level, "blockfall-ssh")
	if err != nil {
		return err
	}

	store, err := storage.Open(cfg.Storage.DB)
	if err != nil {
		// Continue without storage
		logger.Warn("could not open scores database", "error", err)
		store = nil
	}
	defer func() {
		if store != nil {
			store.Close()
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := cfg.Spectate.Addr
	if flagServeSpectate != "" {
		addr = flagServeSpectate
	}
	var hub *spectate.Hub
	if addr != "" {
		hub = spectate.NewHub(ctx, logger.WithPrefix("spectate"))
		defer hub.Close()
	}

	sshCfg := tui.DefaultSSHServerConfig()
	sshCfg.Address = flagSSHAddr
	if flagHostKey != "" {
		sshCfg.HostKeyPath = flagHostKey
	}
	sshCfg.IdleTimeout = time.Duration(flagIdleTimeout) * time.Minute
	sshCfg.Game = cfg.Game

	server, err := tui.NewSSHServer(sshCfg, store, hub, logger)
	if err != nil {
		return err
	}

	fmt.Printf("Starting blockfall SSH server on %s\n", sshCfg.Address)
	if hub != nil {
		fmt.Printf("Spectator feed on %s\n", addr)
	}
	fmt.Println("Press Ctrl+C to stop")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.ListenAndServe(gctx)
	})
	if hub != nil {
		g.Go(func() error {
			return spectate.Serve(gctx, addr, hub, logger.WithPrefix("spectate"))
		})
	}
	return g.Wait()
}
