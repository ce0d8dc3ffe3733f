// blockfall is a falling-block puzzle game for the terminal, with a
// two-player online mode over UDP.
//
// Usage:
//
//	blockfall                     - Menu: solo, online duel, high scores
//	blockfall play [game]         - Start a solo run
//	blockfall online [--peer host] - Duel a peer
//	blockfall serve               - Host solo sessions over SSH
//	blockfall scores              - Show high scores and recent matches
//	blockfall list                - List available games
//
// Global flags:
//
//	--config <path>  - YAML config file
//	--fps <rate>     - Tick rate (default from config: 60)
//	--seed <value>   - RNG seed for reproducible runs
//	--db <path>      - Scores database (default: ~/.blockfall/scores.db)
package main

import (
	"fmt"
	"io"
	"os"
	"os/user"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/blockfall/internal/config"
	"github.com/vovakirdan/blockfall/internal/core"
	// Import games to register them
	_ "github.com/vovakirdan/blockfall/internal/games/blockfall"
	"github.com/vovakirdan/blockfall/internal/logging"
	"github.com/vovakirdan/blockfall/internal/platform/tui"
	"github.com/vovakirdan/blockfall/internal/storage"
)

var (
	// Global flags
	flagConfig   string
	flagFPS      int
	flagSeed     int64
	flagDBPath   string
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "blockfall",
	Short: "Blockfall - falling blocks in your terminal",
	Long: `Blockfall is a falling-block puzzle game for the terminal.

Play alone for score, or duel a friend over the network: every line
you clear lands as garbage at the bottom of their field.

Examples:
  blockfall
  blockfall play
  blockfall online --peer 192.168.1.20
  blockfall serve --ssh :2222 --spectate :8080
  blockfall scores`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runMenu,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 0, "Tick rate (frames per second, 0 = config)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to scores database (empty = config)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(onlineCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scoresCmd)
}

// loadConfig reads the config and applies the global flags.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}
	if flagFPS > 0 {
		cfg.Game.TickRate = flagFPS
	}
	if flagDBPath != "" {
		cfg.Storage.DB = flagDBPath
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	return cfg, nil
}

// app bundles what the interactive commands share.
type app struct {
	cfg    config.Config
	logger *log.Logger
	store  *storage.Store
	closer io.Closer
}

// newApp loads config, opens the log file and the score store. A store
// that cannot be opened is logged and play continues without it.
func newApp(prefix string) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger, closer, err := logging.NewFile(cfg.Log, prefix)
	if err != nil {
		return nil, err
	}

	store, err := storage.Open(cfg.Storage.DB)
	if err != nil {
		logger.Warn("could not open scores database", "error", err)
		fmt.Fprintf(os.Stderr, "Warning: could not open scores database: %v\n", err)
		store = nil
	}
	return &app{cfg: cfg, logger: logger, store: store, closer: closer}, nil
}

func (a *app) Close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("close store", "error", err)
		}
	}
	_ = a.closer.Close()
}

func (a *app) options() tui.Options {
	return tui.Options{
		Store:  a.store,
		Player: playerName(),
		Game:   a.cfg.Game,
		Net:    a.cfg.Net,
		Logger: a.logger,
	}
}

// runtimeConfig sizes the first frame from the terminal.
func (a *app) runtimeConfig() core.RuntimeConfig {
	width, height := 80, 24
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width, height = w, h
	}
	return core.RuntimeConfig{
		ScreenW:  width,
		ScreenH:  height,
		TickRate: a.cfg.Game.TickRate,
		Seed:     flagSeed,
		Preview:  a.cfg.Game.Preview,
	}
}

func playerName() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return os.Getenv("USER")
}

func runMenu(_ *cobra.Command, _ []string) error {
	a, err := newApp("blockfall")
	if err != nil {
		return err
	}
	defer a.Close()

	opts := a.options()
	stop, err := startSpectate(a.cfg.Spectate.Addr, a.logger, &opts, "local")
	if err != nil {
		return err
	}
	defer stop()

	return tui.RunSession(opts, a.runtimeConfig())
}
