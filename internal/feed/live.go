package feed

import (
	"context"
	"encoding/json"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	apperrors "github.com/abrezinsky/swishfeed/internal/errors"
	"github.com/abrezinsky/swishfeed/internal/logger"
)

const closeWriteWait = time.Second

// envelope is the live channel wire message
type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type handlerEntry struct {
	id uint64
	fn func(ShotRecord)
}

// LiveChannel is a Channel backed by a websocket connection to /ws.
// A single reader goroutine invokes handlers synchronously, so handlers
// observe events in arrival order.
type LiveChannel struct {
	log  logger.Logger
	conn *websocket.Conn

	mu       sync.Mutex
	handlers []handlerEntry
	nextID   uint64

	done        chan struct{}
	closeOnce   sync.Once
	err         error
	dispatching atomic.Bool
}

// LiveURL derives the websocket endpoint from a server base URL
func LiveURL(base string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", apperrors.InvalidInputf("invalid feed url %q", base)
	}
	switch u.Scheme {
	case "http", "ws", "":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", apperrors.InvalidInputf("unsupported feed url scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", apperrors.InvalidInputf("feed url %q has no host", base)
	}
	u.Path = "/ws"
	u.RawQuery = ""
	return u.String(), nil
}

// Dial connects to a live channel endpoint and starts reading events
func Dial(ctx context.Context, wsURL string, log logger.Logger) (*LiveChannel, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, apperrors.Unavailable("dial live channel", err)
	}

	c := &LiveChannel{
		log:  log,
		conn: conn,
		done: make(chan struct{}),
	}
	go c.readLoop()

	log.Debug("Live channel connected", "url", wsURL)
	return c, nil
}

// OnShot registers handler for "shot" events
func (c *LiveChannel) OnShot(handler func(ShotRecord)) Subscription {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	id := c.nextID
	c.handlers = append(c.handlers, handlerEntry{id: id, fn: handler})
	return &liveSubscription{channel: c, id: id}
}

func (c *LiveChannel) remove(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, h := range c.handlers {
		if h.id == id {
			c.handlers = append(c.handlers[:i:i], c.handlers[i+1:]...)
			return
		}
	}
}

func (c *LiveChannel) snapshot() []handlerEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]handlerEntry, len(c.handlers))
	copy(out, c.handlers)
	return out
}

func (c *LiveChannel) readLoop() {
	defer close(c.done)

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.log.Warn("Live channel closed", "error", err)
			}
			c.mu.Lock()
			c.err = err
			c.mu.Unlock()
			return
		}

		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			c.log.Debug("Ignoring malformed live message", "error", err)
			continue
		}
		if env.Type != EventShot {
			continue
		}

		rec := DecodeRecord(env.Payload)
		c.dispatching.Store(true)
		for _, h := range c.snapshot() {
			h.fn(rec)
		}
		c.dispatching.Store(false)
	}
}

// Done is closed when the connection has stopped reading
func (c *LiveChannel) Done() <-chan struct{} {
	return c.done
}

// Err returns the error that ended the read loop, if any
func (c *LiveChannel) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Close sends a close frame, closes the connection and waits for the reader.
// While a shot handler is running (including when the handler itself calls
// Close) it returns without waiting; the reader stops once the handler
// returns and Done reports it.
func (c *LiveChannel) Close() error {
	var err error
	c.closeOnce.Do(func() {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeWriteWait))
		err = c.conn.Close()
		if !c.dispatching.Load() {
			<-c.done
		}
	})
	return err
}

type liveSubscription struct {
	channel *LiveChannel
	id      uint64
	once    sync.Once
}

func (s *liveSubscription) Cancel() {
	s.once.Do(func() {
		s.channel.remove(s.id)
	})
}
