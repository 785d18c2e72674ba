package multiplayer

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/snakenet/internal/core"
	"github.com/vovakirdan/snakenet/internal/games/snake"
	"github.com/vovakirdan/snakenet/internal/wire"
)

// HostConfig holds configuration for the host.
type HostConfig struct {
	OutboundQueue int // per-peer queued snapshots before dropping
	MaxFrame      int // largest accepted frame, 0 for wire.DefaultMaxFrame

	// Notify receives peer join/leave events. Optional. Called from
	// connection goroutines and must not block.
	Notify func(SessionEvent)
}

// DefaultHostConfig returns sensible defaults.
func DefaultHostConfig() HostConfig {
	return HostConfig{
		OutboundQueue: 64,
		MaxFrame:      wire.DefaultMaxFrame,
	}
}

// Host accepts client connections and fans snapshots out to them.
// It owns the connections and their receive loops; the World it forwards
// intents to is owned by the caller.
type Host struct {
	cfg    HostConfig
	world  World
	peers  *PeerRegistry
	logger *log.Logger

	mu        sync.Mutex
	closed    bool
	listeners []io.Closer
	conns     map[frameConn]struct{} // every accepted connection, handshaken or not
	reserved  map[string]struct{}    // ids of players not owned by any peer

	wg sync.WaitGroup
}

// NewHost creates a host that feeds intents into world.
func NewHost(cfg HostConfig, world World, logger *log.Logger) *Host {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if cfg.OutboundQueue < 1 {
		cfg.OutboundQueue = DefaultHostConfig().OutboundQueue
	}
	return &Host{
		cfg:      cfg,
		world:    world,
		peers:    NewPeerRegistry(),
		logger:   logger,
		conns:    make(map[frameConn]struct{}),
		reserved: make(map[string]struct{}),
	}
}

// Reserve keeps id for a player the host does not serve over a peer, such
// as the host's own local player. Peers presenting it are rejected.
func (h *Host) Reserve(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.reserved[id] = struct{}{}
}

// Listen binds a TCP listener on addr and starts accepting clients.
// The listener stops when ctx is cancelled or the host is closed.
func (h *Host) Listen(ctx context.Context, addr string) (net.Addr, error) {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, &TransportError{Op: "listen", Peer: addr, Err: err}
	}
	if !h.trackListener(ln) {
		ln.Close()
		return nil, ErrHostClosed
	}
	context.AfterFunc(ctx, func() { ln.Close() })

	h.logger.Info("listening", "transport", "tcp", "addr", ln.Addr().String())

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		h.acceptLoop(ln)
	}()
	return ln.Addr(), nil
}

// ServeWS serves WebSocket clients on addr at the /ws path.
func (h *Host) ServeWS(ctx context.Context, addr string) (net.Addr, error) {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, &TransportError{Op: "listen", Peer: addr, Err: err}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.handleWS)
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	if !h.trackListener(srv) {
		ln.Close()
		return nil, ErrHostClosed
	}
	context.AfterFunc(ctx, func() { srv.Close() })

	h.logger.Info("listening", "transport", "ws", "addr", ln.Addr().String())

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			h.logger.Warn("websocket server stopped", "err", err)
		}
	}()
	return ln.Addr(), nil
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Peers connect by typed-in address; there is no browser origin to check.
	CheckOrigin: func(*http.Request) bool { return true },
}

func (h *Host) handleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	h.serveConn(newWSConn(ws, h.cfg.MaxFrame))
}

func (h *Host) acceptLoop(ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			h.logger.Warn("accept failed", "err", err)
			time.Sleep(50 * time.Millisecond)
			continue
		}

		h.wg.Add(1)
		go func() {
			defer h.wg.Done()
			h.serveConn(newStreamConn(conn, h.cfg.MaxFrame))
		}()
	}
}

// serveConn runs one connection from handshake to close.
func (h *Host) serveConn(conn frameConn) {
	if !h.track(conn) {
		conn.Close()
		return
	}
	defer h.untrack(conn)

	hs, color, err := readHandshake(conn)
	if err != nil {
		// Silent close; the client learns from the closed socket.
		h.logger.Debug("handshake failed", "remote", conn.RemoteAddr(), "err", err)
		conn.Close()
		return
	}

	peer := newConnPeer(hs.ClientID, conn, h.cfg.OutboundQueue)
	if err := h.join(peer, color); err != nil {
		h.logger.Info("rejected peer", "id", hs.ClientID, "remote", conn.RemoteAddr(), "err", err)
		conn.Close()
		return
	}
	go peer.writePump()

	err = h.receive(peer, conn)
	if err == nil {
		err = peer.Err()
	}
	h.remove(peer, err)
}

// readHandshake expects the first frame to be a valid Handshake.
func readHandshake(conn frameConn) (wire.Handshake, core.Color, error) {
	msg, err := conn.ReadMessage()
	if err != nil {
		return wire.Handshake{}, 0, err
	}
	hs, ok := msg.(wire.Handshake)
	if !ok {
		return wire.Handshake{}, 0, &wire.HandshakeError{Reason: "first frame is " + msg.Kind().String()}
	}
	color, err := hs.Validate()
	if err != nil {
		return wire.Handshake{}, 0, err
	}
	return hs, color, nil
}

// receive forwards direction intents until the connection ends. A clean
// close returns nil.
func (h *Host) receive(peer Peer, conn frameConn) error {
	for {
		msg, err := conn.ReadMessage()
		if err != nil {
			if wire.IsSkippable(err) {
				h.logger.Debug("skipping bad frame", "id", peer.ID(), "err", err)
				continue
			}
			select {
			case <-peer.Done():
				return nil // closed locally
			default:
			}
			if errors.Is(err, io.EOF) || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return &TransportError{Op: "read", Peer: peer.ID(), Err: err}
		}

		switch m := msg.(type) {
		case wire.Direction:
			if err := h.world.ApplyIntent(peer.ID(), m.Dir()); err != nil {
				if snake.IsLogicViolation(err) {
					h.logger.Debug("intent discarded", "id", peer.ID(), "dir", m.Dir(), "err", err)
				} else {
					h.logger.Warn("intent failed", "id", peer.ID(), "err", err)
				}
			}
		default:
			h.logger.Debug("unexpected frame", "id", peer.ID(), "kind", msg.Kind())
		}
	}
}

// AddPeer joins an in-process peer, such as an SSH player, to the world and
// the fan-out set. The peer is removed once it is done.
func (h *Host) AddPeer(p Peer, color core.Color) error {
	if err := h.join(p, color); err != nil {
		return err
	}
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		<-p.Done()
		h.remove(p, nil)
	}()
	return nil
}

func (h *Host) join(p Peer, color core.Color) error {
	h.mu.Lock()
	closed := h.closed
	_, reserved := h.reserved[p.ID()]
	h.mu.Unlock()
	if closed {
		return ErrHostClosed
	}
	if reserved {
		return ErrDuplicatePeer
	}

	if err := h.peers.Register(p); err != nil {
		return err
	}
	if err := h.world.Rejoin(p.ID(), color); err != nil {
		h.peers.Unregister(p)
		return err
	}

	h.logger.Info("peer joined", "id", p.ID(), "color", color)
	h.notify(PeerJoinedEvent{ID: p.ID(), Color: color.String()})
	return nil
}

// remove takes p out of the fan-out set and marks its player dead.
// Only the first call for a given peer has any effect.
func (h *Host) remove(p Peer, reason error) {
	if !h.peers.Unregister(p) {
		return
	}
	_ = p.Close()
	if err := h.world.Kill(p.ID()); err != nil {
		h.logger.Debug("kill on leave", "id", p.ID(), "err", err)
	}

	if reason != nil {
		h.logger.Warn("peer dropped", "id", p.ID(), "err", reason)
	} else {
		h.logger.Info("peer left", "id", p.ID())
	}
	h.notify(PeerLeftEvent{ID: p.ID(), Err: reason})
}

// Broadcast sends msg to every connected peer and returns how many accepted
// it. A peer that fails is dropped; the others are unaffected.
func (h *Host) Broadcast(msg wire.Message) int {
	sent := 0
	for _, p := range h.peers.List() {
		if err := p.Send(msg); err != nil {
			h.remove(p, err)
			continue
		}
		sent++
	}
	return sent
}

// PeerCount returns the number of connected peers.
func (h *Host) PeerCount() int {
	return h.peers.Count()
}

// Close stops the listeners, closes every connection and waits for the
// connection goroutines to finish. Safe to call multiple times.
func (h *Host) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	listeners := h.listeners
	conns := make([]frameConn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, l := range listeners {
		_ = l.Close()
	}
	for _, c := range conns {
		_ = c.Close()
	}
	for _, p := range h.peers.List() {
		_ = p.Close()
	}

	h.wg.Wait()
	return nil
}

func (h *Host) track(conn frameConn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.conns[conn] = struct{}{}
	return true
}

func (h *Host) trackListener(l io.Closer) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.listeners = append(h.listeners, l)
	return true
}

func (h *Host) untrack(conn frameConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, conn)
}

func (h *Host) notify(evt SessionEvent) {
	if h.cfg.Notify != nil {
		h.cfg.Notify(evt)
	}
}
