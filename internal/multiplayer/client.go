package multiplayer

import (
	"context"
	"errors"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/snakenet/internal/core"
	"github.com/vovakirdan/snakenet/internal/wire"
)

// ClientOption customises Dial.
type ClientOption func(*clientOptions)

type clientOptions struct {
	logger   *log.Logger
	maxFrame int
	queue    int
	events   *mailbox[SessionEvent]
}

// WithLogger sets the client logger.
func WithLogger(l *log.Logger) ClientOption {
	return func(o *clientOptions) { o.logger = l }
}

// WithMaxFrame bounds the size of accepted snapshot frames.
func WithMaxFrame(n int) ClientOption {
	return func(o *clientOptions) { o.maxFrame = n }
}

// WithQueue sets how many outgoing intents are queued before dropping.
func WithQueue(n int) ClientOption {
	return func(o *clientOptions) { o.queue = n }
}

func withEvents(box *mailbox[SessionEvent]) ClientOption {
	return func(o *clientOptions) { o.events = box }
}

// Client is the single connection from a player to a host. It keeps only the
// most recent snapshot and never simulates.
type Client struct {
	id     string
	color  core.Color
	conn   frameConn
	out    *connPeer
	events *mailbox[SessionEvent]
	logger *log.Logger

	mu        sync.RWMutex
	status    Status
	err       error
	latest    wire.Snapshot
	hasLatest bool
	closing   bool

	done chan struct{} // closed when the receive loop exits
}

// Dial connects to a host and performs the handshake. addr is host:port for
// TCP (the port defaults to DefaultPort) or a ws:// or wss:// URL.
func Dial(ctx context.Context, addr, id string, color core.Color, opts ...ClientOption) (*Client, error) {
	o := clientOptions{queue: 64}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.New(io.Discard)
	}
	if o.events == nil {
		o.events = newMailbox[SessionEvent](64)
	}

	hs := wire.Handshake{ClientID: id, Color: color.String()}
	if _, err := hs.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		id:     id,
		color:  color,
		events: o.events,
		logger: o.logger,
		done:   make(chan struct{}),
	}
	c.setStatus(StatusConnecting, nil)

	conn, err := dialConn(ctx, addr, o.maxFrame)
	if err != nil {
		terr := &TransportError{Op: "dial", Peer: addr, Err: err}
		c.setStatus(StatusErrored, terr)
		close(c.done)
		return nil, terr
	}
	if err := conn.WriteMessage(hs); err != nil {
		conn.Close()
		terr := &TransportError{Op: "write", Peer: addr, Err: err}
		c.setStatus(StatusErrored, terr)
		close(c.done)
		return nil, terr
	}

	c.conn = conn
	c.out = newConnPeer(addr, conn, o.queue)
	c.setStatus(StatusOpen, nil)
	c.logger.Info("connected", "addr", addr, "id", id)

	go c.out.writePump()
	go c.receive()
	return c, nil
}

func dialConn(ctx context.Context, addr string, maxFrame int) (frameConn, error) {
	if strings.HasPrefix(addr, "ws://") || strings.HasPrefix(addr, "wss://") {
		ws, _, err := websocket.DefaultDialer.DialContext(ctx, addr, nil)
		if err != nil {
			return nil, err
		}
		return newWSConn(ws, maxFrame), nil
	}

	if _, _, err := net.SplitHostPort(addr); err != nil {
		addr = net.JoinHostPort(addr, strconv.Itoa(DefaultPort))
	}
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	return newStreamConn(conn, maxFrame), nil
}

// receive replaces the mirror with every decoded snapshot until the
// connection ends.
func (c *Client) receive() {
	defer close(c.done)

	for {
		msg, err := c.conn.ReadMessage()
		if err != nil {
			if wire.IsSkippable(err) {
				c.logger.Debug("skipping bad frame", "err", err)
				continue
			}
			c.finish(err)
			return
		}

		snap, ok := msg.(wire.Snapshot)
		if !ok {
			c.logger.Debug("unexpected frame", "kind", msg.Kind())
			continue
		}

		c.mu.Lock()
		c.latest = snap
		c.hasLatest = true
		c.mu.Unlock()
		c.events.push(SnapshotEvent{Snapshot: snap})
	}
}

func (c *Client) finish(err error) {
	c.out.Close()

	c.mu.RLock()
	closing := c.closing
	c.mu.RUnlock()

	if writeErr := c.out.Err(); writeErr != nil {
		err = writeErr
	}

	switch {
	case closing:
		c.setStatus(StatusClosed, nil)
	case errors.Is(err, io.EOF) || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway):
		c.logger.Info("host closed the connection")
		c.setStatus(StatusClosed, nil)
	default:
		var terr *TransportError
		if !errors.As(err, &terr) {
			terr = &TransportError{Op: "read", Err: err}
		}
		c.logger.Warn("connection lost", "err", terr)
		c.setStatus(StatusErrored, terr)
	}
}

func (c *Client) setStatus(s Status, err error) {
	c.mu.Lock()
	c.status = s
	c.err = err
	c.mu.Unlock()
	c.events.push(StatusEvent{Status: s, Err: err})
}

// ID returns the local player id sent in the handshake.
func (c *Client) ID() string { return c.id }

// Color returns the local player colour sent in the handshake.
func (c *Client) Color() core.Color { return c.color }

// Send queues a direction intent for the host. It is a no-op unless the
// connection is open.
func (c *Client) Send(dir core.Direction) {
	if c.Status() != StatusOpen {
		return
	}
	if err := c.out.Send(wire.NewDirection(dir)); err != nil {
		c.logger.Debug("intent not sent", "err", err)
	}
}

// Status returns the connection status.
func (c *Client) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

// Err returns the failure behind StatusErrored.
func (c *Client) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

// Latest returns the most recently received snapshot.
func (c *Client) Latest() (wire.Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.latest, c.hasLatest
}

// Events returns the client's event channel.
func (c *Client) Events() <-chan SessionEvent {
	return c.events.items
}

// Done returns a channel that closes when the connection has ended.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Close closes the connection and waits for the receive loop to exit.
func (c *Client) Close() error {
	c.mu.Lock()
	c.closing = true
	c.mu.Unlock()

	err := c.out.Close()
	<-c.done
	if errors.Is(err, net.ErrClosed) {
		err = nil
	}
	return err
}
