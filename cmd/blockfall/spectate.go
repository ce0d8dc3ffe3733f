package main

import (
	"context"
	"fmt"
	"net"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/blockfall/internal/platform/tui"
	"github.com/vovakirdan/blockfall/internal/spectate"
)

// startSpectate serves the spectator feed on addr while a local program
// runs and points opts.Publish at it. An empty addr disables the feed.
// The returned stop func shuts the server down.
func startSpectate(addr string, logger *log.Logger, opts *tui.Options, feed string) (func(), error) {
	if addr == "" {
		return func() {}, nil
	}
	// Listen up front so a busy port fails before the TUI takes the terminal.
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("spectate: listen %s: %w", addr, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	hub := spectate.NewHub(ctx, logger)
	opts.Publish = hub.Publisher(feed)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := spectate.ServeListener(ctx, ln, hub, logger); err != nil {
			logger.Error("spectator feed stopped", "error", err)
		}
	}()

	return func() {
		cancel()
		<-done
		hub.Close()
	}, nil
}
