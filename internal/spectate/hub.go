// Package spectate serves a read-only live view of running games over HTTP
// and WebSocket.
package spectate

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/blockfall/internal/games/blockfall/core"
)

// DefaultFeed is the feed used by local play and by requests without ?feed.
const DefaultFeed = "local"

// Frame is one published state of a feed.
type Frame struct {
	Feed     string        `json:"feed"`
	Seq      uint64        `json:"seq"`
	At       time.Time     `json:"at"`
	Snapshot core.Snapshot `json:"snapshot"`
}

// FeedInfo describes a feed for the /feeds listing.
type FeedInfo struct {
	Name        string    `json:"name"`
	Subscribers int       `json:"subscribers"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type hubMsg interface{ isHubMsg() }

type publishMsg struct {
	feed  string
	frame []byte
	at    time.Time
}

type subscribeMsg struct {
	feed  string
	reply chan *Subscriber
}

type unsubscribeMsg struct {
	sub *Subscriber
}

type latestMsg struct {
	feed  string
	reply chan []byte
}

type feedsMsg struct {
	reply chan []FeedInfo
}

type removeFeedMsg struct {
	feed string
}

func (publishMsg) isHubMsg()     {}
func (subscribeMsg) isHubMsg()   {}
func (unsubscribeMsg) isHubMsg() {}
func (latestMsg) isHubMsg()      {}
func (feedsMsg) isHubMsg()       {}
func (removeFeedMsg) isHubMsg()  {}

type feed struct {
	latest    []byte
	updatedAt time.Time
	subs      map[*Subscriber]struct{}
}

// Hub owns every feed and its subscribers. All state lives in the loop
// goroutine; callers talk to it through the inbox.
type Hub struct {
	inbox  chan hubMsg
	feeds  map[string]*feed
	buffer int
	logger *log.Logger
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewHub starts a hub that runs until ctx is cancelled or Close is called.
func NewHub(parent context.Context, logger *log.Logger) *Hub {
	logger = orDiscard(logger)
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:  make(chan hubMsg, 64),
		feeds:  make(map[string]*feed),
		buffer: 8,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go h.loop()
	return h
}

// Publisher returns a function that publishes snapshots on the named feed.
// Sequence numbers are kept per feed by the publisher.
func (h *Hub) Publisher(name string) func(core.Snapshot) {
	var seq uint64
	return func(snap core.Snapshot) {
		seq++
		h.Publish(Frame{Feed: name, Seq: seq, At: time.Now(), Snapshot: snap})
	}
}

// Publish encodes the frame and hands it to the hub without blocking.
// Frames are dropped while the hub is backed up.
func (h *Hub) Publish(f Frame) {
	data, err := json.Marshal(f)
	if err != nil {
		h.logger.Warn("cannot encode frame", "feed", f.Feed, "error", err)
		return
	}
	select {
	case h.inbox <- publishMsg{feed: f.Feed, frame: data, at: f.At}:
	case <-h.ctx.Done():
	default:
		h.logger.Debug("hub busy, frame dropped", "feed", f.Feed)
	}
}

// Subscribe registers a subscriber on the named feed. The latest frame, if
// any, is delivered first. Returns nil once the hub is closed.
func (h *Hub) Subscribe(name string) *Subscriber {
	reply := make(chan *Subscriber, 1)
	if !h.request(subscribeMsg{feed: name, reply: reply}) {
		return nil
	}
	return h.await(reply)
}

// Unsubscribe removes the subscriber and closes it.
func (h *Hub) Unsubscribe(s *Subscriber) {
	h.request(unsubscribeMsg{sub: s})
}

// Latest returns the last frame of the feed, or nil.
func (h *Hub) Latest(name string) []byte {
	reply := make(chan []byte, 1)
	if !h.request(latestMsg{feed: name, reply: reply}) {
		return nil
	}
	select {
	case b := <-reply:
		return b
	case <-h.done:
		return nil
	}
}

// Feeds lists the known feeds sorted by name.
func (h *Hub) Feeds() []FeedInfo {
	reply := make(chan []FeedInfo, 1)
	if !h.request(feedsMsg{reply: reply}) {
		return nil
	}
	select {
	case f := <-reply:
		return f
	case <-h.done:
		return nil
	}
}

// RemoveFeed drops a feed and disconnects its subscribers.
func (h *Hub) RemoveFeed(name string) {
	h.request(removeFeedMsg{feed: name})
}

// Close stops the hub and closes every subscriber.
func (h *Hub) Close() {
	h.cancel()
	<-h.done
}

func (h *Hub) request(m hubMsg) bool {
	select {
	case h.inbox <- m:
		return true
	case <-h.ctx.Done():
		return false
	}
}

func (h *Hub) await(reply chan *Subscriber) *Subscriber {
	select {
	case s := <-reply:
		return s
	case <-h.done:
		return nil
	}
}

func (h *Hub) feed(name string) *feed {
	f := h.feeds[name]
	if f == nil {
		f = &feed{subs: make(map[*Subscriber]struct{})}
		h.feeds[name] = f
	}
	return f
}

func (h *Hub) loop() {
	defer close(h.done)
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case publishMsg:
				f := h.feed(msg.feed)
				f.latest = msg.frame
				f.updatedAt = msg.at
				for s := range f.subs {
					s.send(msg.frame)
				}

			case subscribeMsg:
				s := newSubscriber(msg.feed, h.buffer)
				f := h.feed(msg.feed)
				f.subs[s] = struct{}{}
				if f.latest != nil {
					s.send(f.latest)
				}
				msg.reply <- s

			case unsubscribeMsg:
				if f := h.feeds[msg.sub.feed]; f != nil {
					delete(f.subs, msg.sub)
				}
				msg.sub.close()

			case latestMsg:
				var b []byte
				if f := h.feeds[msg.feed]; f != nil {
					b = f.latest
				}
				msg.reply <- b

			case feedsMsg:
				out := make([]FeedInfo, 0, len(h.feeds))
				for name, f := range h.feeds {
					out = append(out, FeedInfo{Name: name, Subscribers: len(f.subs), UpdatedAt: f.updatedAt})
				}
				sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
				msg.reply <- out

			case removeFeedMsg:
				if f := h.feeds[msg.feed]; f != nil {
					for s := range f.subs {
						s.close()
					}
					delete(h.feeds, msg.feed)
				}
			}
		}
	}
}

func (h *Hub) shutdown() {
	for _, f := range h.feeds {
		for s := range f.subs {
			s.close()
		}
	}
	clear(h.feeds)
}
