// Package tui provides the terminal UI for snakenet sessions, including
// SSH play via Wish.
package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/snakenet/internal/core"
	"github.com/vovakirdan/snakenet/internal/games/snake"
	"github.com/vovakirdan/snakenet/internal/multiplayer"
	"github.com/vovakirdan/snakenet/internal/wire"
)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23234").
	Address string

	// HostKeyPath is the path to the host key file.
	// Wish generates the key on first start if it does not exist.
	HostKeyPath string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	// Queue bounds the snapshots buffered per SSH player.
	Queue int
}

// DefaultSSHServerConfig returns a config with sensible defaults.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:     ":23234",
		HostKeyPath: ".ssh/snakenet_ed25519",
		IdleTimeout: 30 * time.Minute,
		Queue:       16,
	}
}

// SSHServer lets players join a hosted session over SSH. Each SSH session
// becomes an in-process peer of the session's host.
type SSHServer struct {
	config  SSHServerConfig
	server  *ssh.Server
	session *multiplayer.Session
	logger  *log.Logger
	seq     atomic.Uint64
}

// NewSSHServer creates a new SSH server that attaches players to sess.
// sess must be a started host session.
func NewSSHServer(cfg SSHServerConfig, sess *multiplayer.Session, logger *log.Logger) (*SSHServer, error) {
	if sess.Role() != multiplayer.RoleHost {
		return nil, multiplayer.ErrNotHost
	}
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "snakenet-ssh",
		})
	}
	if cfg.Queue < 1 {
		cfg.Queue = DefaultSSHServerConfig().Queue
	}

	srv := &SSHServer{
		config:  cfg,
		session: sess,
		logger:  logger,
	}

	// Ensure host key directory exists
	if dir := filepath.Dir(cfg.HostKeyPath); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("cannot create host key directory: %w", err)
		}
	}

	server, err := wish.NewServer(
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(cfg.HostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.loggingMiddleware,
		),
	)
	if err != nil {
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// teaHandler joins the SSH user to the world and returns its model.
func (s *SSHServer) teaHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	if _, _, ok := sshSession.Pty(); !ok {
		s.logger.Warn("no PTY requested", "user", sshSession.User())
		return nil, nil
	}
	host := s.session.Host()
	if host == nil {
		s.logger.Warn("session not hosting", "user", sshSession.User())
		return nil, nil
	}

	n := s.seq.Add(1)
	id := playerID(sshSession.User(), n)
	color := core.Palette[int(n-1)%len(core.Palette)]

	peer := multiplayer.NewChannelPeer(id, s.config.Queue)
	if err := host.AddPeer(peer, color); err != nil {
		s.logger.Warn("ssh player rejected", "id", id, "error", err)
		return nil, nil
	}

	ctrl := newPeerController(peer, s.session.Engine())
	go func() {
		<-sshSession.Context().Done()
		//nolint:errcheck // Peer close cannot fail
		ctrl.Disconnect()
	}()

	width, height := s.session.Engine().Width(), s.session.Engine().Height()
	return NewModel(ctrl, width, height), []tea.ProgramOption{
		tea.WithAltScreen(),
	}
}

// playerID derives a unique world id from the SSH user name.
func playerID(user string, n uint64) string {
	if user == "" {
		user = "ssh"
	}
	suffix := fmt.Sprintf("-%d", n)
	if limit := wire.MaxClientIDLen - len(suffix); len(user) > limit {
		user = user[:limit]
	}
	return user + suffix
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		s.logger.Info("ssh session started",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
		next(sshSession)
		s.logger.Info("ssh session ended",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
	}
}

// ListenAndServe serves SSH until ctx is cancelled.
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
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down SSH server")
	return s.Shutdown()
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

// peerController drives the shared engine for one in-process peer.
// Host-only controls are refused.
type peerController struct {
	peer   *multiplayer.ChannelPeer
	engine *snake.Engine
	events chan multiplayer.SessionEvent
	once   sync.Once
}

func newPeerController(peer *multiplayer.ChannelPeer, engine *snake.Engine) *peerController {
	c := &peerController{
		peer:   peer,
		engine: engine,
		events: make(chan multiplayer.SessionEvent, 16),
	}
	go c.pump()
	return c
}

// pump turns broadcast snapshots into UI events, adding a DeathEvent when
// the peer's own snake dies.
func (c *peerController) pump() {
	alive := true
	for {
		select {
		case <-c.peer.Done():
			return
		case msg := <-c.peer.Messages():
			snap, ok := msg.(wire.Snapshot)
			if !ok {
				continue
			}
			c.push(multiplayer.SnapshotEvent{Snapshot: snap})
			if p, ok := snap.Player(c.peer.ID()); ok {
				if alive && !p.Alive {
					c.push(multiplayer.DeathEvent{ID: p.ID, Length: len(p.Body), Tick: snap.Tick})
				}
				alive = p.Alive
			}
		}
	}
}

func (c *peerController) push(evt multiplayer.SessionEvent) {
	select {
	case c.events <- evt:
	default:
		// UI is behind; it renders from Latest anyway.
	}
}

func (c *peerController) Begin() error { return multiplayer.ErrNotHost }

func (c *peerController) Reset() error { return multiplayer.ErrNotHost }

func (c *peerController) ReviveLocal() error { return c.engine.Revive(c.peer.ID()) }

func (c *peerController) Steer(dir core.Direction) error {
	return c.engine.ApplyIntent(c.peer.ID(), dir)
}

// Disconnect closes the peer; the host then marks the player dead.
func (c *peerController) Disconnect() error {
	var err error
	c.once.Do(func() {
		err = c.peer.Close()
	})
	return err
}

func (c *peerController) Events() <-chan multiplayer.SessionEvent { return c.events }

func (c *peerController) Done() <-chan struct{} { return c.peer.Done() }

func (c *peerController) Latest() (wire.Snapshot, bool) { return c.engine.Snapshot(), true }

func (c *peerController) Status() multiplayer.Status {
	select {
	case <-c.peer.Done():
		return multiplayer.StatusClosed
	default:
		return multiplayer.StatusOpen
	}
}

func (c *peerController) Role() multiplayer.Role { return multiplayer.RoleClient }

func (c *peerController) LocalID() string { return c.peer.ID() }
