package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/blockfall/internal/config"
	"github.com/vovakirdan/blockfall/internal/core"
	"github.com/vovakirdan/blockfall/internal/spectate"
	"github.com/vovakirdan/blockfall/internal/storage"
)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23234").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.blockfall/host_key.
	HostKeyPath string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	Game config.GameConfig
}

// DefaultSSHServerConfig returns a config with sensible defaults.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:     ":23234",
		HostKeyPath: "~/.blockfall/host_key",
		IdleTimeout: 30 * time.Minute,
		Game:        config.DefaultConfig().Game,
	}
}

type feedKey struct{}

// SSHServer hosts solo sessions over SSH. Every session plays its own
// game; all of them share the leaderboard and, when a hub is set, get a
// spectator feed named after the user.
type SSHServer struct {
	config   SSHServerConfig
	server   *ssh.Server
	store    *storage.Store
	hub      *spectate.Hub
	logger   *log.Logger
	sessions atomic.Uint64
}

// NewSSHServer creates a new SSH server. store and hub may be nil.
func NewSSHServer(cfg SSHServerConfig, store *storage.Store, hub *spectate.Hub, logger *log.Logger) (*SSHServer, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	srv := &SSHServer{
		config: cfg,
		store:  store,
		hub:    hub,
		logger: logger,
	}

	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		hostKeyPath = DefaultSSHServerConfig().HostKeyPath
	}
	hostKeyPath = config.ExpandHome(hostKeyPath)

	if err := os.MkdirAll(filepath.Dir(hostKeyPath), 0o700); err != nil {
		return nil, fmt.Errorf("tui: create host key directory: %w", err)
	}

	// Middlewares run last to first: logging, then the feed name, then
	// the Bubble Tea program.
	opts := []ssh.Option{
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.feedMiddleware,
			srv.loggingMiddleware,
		),
	}

	server, err := wish.NewServer(opts...)
	if err != nil {
		return nil, fmt.Errorf("tui: create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// teaHandler creates a Bubble Tea program for each SSH session.
func (s *SSHServer) teaHandler(sess ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sess.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sess.User())
		return nil, nil
	}

	cfg := core.RuntimeConfig{
		ScreenW:  pty.Window.Width,
		ScreenH:  pty.Window.Height,
		TickRate: s.config.Game.TickRate,
		Preview:  s.config.Game.Preview,
	}

	opts := Options{
		Store:  s.store,
		Player: sess.User(),
		Game:   s.config.Game,
		Logger: s.logger.With("user", sess.User()),
	}
	if feed, ok := sess.Context().Value(feedKey{}).(string); ok && s.hub != nil {
		opts.Publish = s.hub.Publisher(feed)
	}

	return NewSessionModel(opts, cfg, false), []tea.ProgramOption{
		tea.WithAltScreen(),
	}
}

// feedMiddleware names the session's spectator feed and drops it when the
// session ends.
func (s *SSHServer) feedMiddleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		if s.hub == nil {
			next(sess)
			return
		}
		feed := fmt.Sprintf("%s-%d", sess.User(), s.sessions.Add(1))
		sess.Context().SetValue(feedKey{}, feed)
		next(sess)
		s.hub.RemoveFeed(feed)
	}
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		s.logger.Info("session started",
			"user", sess.User(),
			"remote", sess.RemoteAddr().String(),
		)
		next(sess)
		s.logger.Info("session ended",
			"user", sess.User(),
			"remote", sess.RemoteAddr().String(),
		)
	}
}

// ListenAndServe serves until ctx is cancelled, then shuts down.
func (s *SSHServer) ListenAndServe(ctx context.Context) error {
	s.logger.Info("starting SSH server", "address", s.config.Address)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, ssh.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("tui: ssh serve: %w", err)
	case <-ctx.Done():
		s.logger.Info("shutting down...")
		return s.Shutdown()
	}
}

// Shutdown gracefully stops the server.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}
