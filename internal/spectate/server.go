package spectate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Read-only feed; any origin may watch.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Routes returns the spectator HTTP handler.
func Routes(h *Hub, logger *log.Logger) http.Handler {
	logger = orDiscard(logger)
	r := chi.NewRouter()
	r.Get("/healthz", healthz)
	r.Get("/feeds", listFeeds(h))
	r.Get("/state", state(h))
	r.Get("/ws", stream(h, logger))
	return r
}

func orDiscard(logger *log.Logger) *log.Logger {
	if logger == nil {
		return log.New(io.Discard)
	}
	return logger
}

func feedName(r *http.Request) string {
	if f := r.URL.Query().Get("feed"); f != "" {
		return f
	}
	return DefaultFeed
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func listFeeds(h *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(h.Feeds())
	}
}

func state(h *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b := h.Latest(feedName(r))
		if b == nil {
			http.Error(w, "no such feed", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(b)
	}
}

func stream(h *Hub, logger *log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", "error", err)
			return
		}
		sub := h.Subscribe(feedName(r))
		if sub == nil {
			_ = conn.Close()
			return
		}
		logger.Debug("spectator joined", "feed", sub.Feed(), "remote", r.RemoteAddr)

		go writePump(conn, sub)
		readPump(conn)
		h.Unsubscribe(sub)
		logger.Debug("spectator left", "feed", sub.Feed(), "remote", r.RemoteAddr)
	}
}

// readPump discards client messages and returns when the peer goes away.
func readPump(conn *websocket.Conn) {
	defer conn.Close()
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func writePump(conn *websocket.Conn, sub *Subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()
	for {
		select {
		case frame := <-sub.Frames():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-sub.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "feed closed"),
				time.Now().Add(writeWait))
			return
		}
	}
}

// Serve listens on addr and serves the feed until ctx is cancelled.
func Serve(ctx context.Context, addr string, h *Hub, logger *log.Logger) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("spectate: listen %s: %w", addr, err)
	}
	return ServeListener(ctx, ln, h, logger)
}

// ServeListener serves on an existing listener until ctx is cancelled.
func ServeListener(ctx context.Context, ln net.Listener, h *Hub, logger *log.Logger) error {
	logger = orDiscard(logger)
	srv := &http.Server{
		Handler:           Routes(h, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("spectator feed listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("spectate: shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("spectate: serve: %w", err)
	}
}
