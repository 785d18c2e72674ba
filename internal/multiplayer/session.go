package multiplayer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/vovakirdan/snakenet/internal/core"
	"github.com/vovakirdan/snakenet/internal/games/snake"
	"github.com/vovakirdan/snakenet/internal/wire"
)

// SessionConfig holds everything needed to start a session.
type SessionConfig struct {
	Role    Role
	Runtime core.RuntimeConfig

	// Local player. An empty LocalID runs a host with no local player.
	LocalID    string
	LocalColor core.Color

	// Addr is the TCP listen address (host) or the host address (client).
	Addr string
	// WSAddr optionally serves WebSocket clients too (host only).
	WSAddr string

	// AutoBegin starts running as soon as the session starts.
	AutoBegin bool

	Host   HostConfig
	Saver  ResultSaver // Optional
	Logger *log.Logger
}

// Session is one running game from the local player's point of view.
// Solo and host sessions own the engine and drive its ticks; client
// sessions mirror a host.
type Session struct {
	cfg    SessionConfig
	id     string
	logger *log.Logger
	events *mailbox[SessionEvent]

	engine *snake.Engine // nil for clients
	host   *Host         // host role only
	client *Client       // client role only

	mu        sync.Mutex
	started   bool
	startErr  error
	startedAt time.Time
	cancel    context.CancelFunc

	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewSession prepares a session. Nothing touches the network until Start.
func NewSession(cfg SessionConfig) (*Session, error) {
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}
	if cfg.Runtime.TickInterval <= 0 {
		cfg.Runtime.TickInterval = core.DefaultConfig().TickInterval
	}

	s := &Session{
		cfg:    cfg,
		id:     uuid.NewString(),
		logger: cfg.Logger.With("role", cfg.Role.String()),
		events: newMailbox[SessionEvent](128),
	}

	switch cfg.Role {
	case RoleSolo, RoleHost:
		s.engine = snake.New(cfg.Runtime)
		if cfg.LocalID != "" {
			if err := s.engine.Join(cfg.LocalID, cfg.LocalColor); err != nil {
				return nil, fmt.Errorf("multiplayer: join local player: %w", err)
			}
		} else if cfg.Role == RoleSolo {
			return nil, ErrNoLocalPlayer
		}
	case RoleClient:
		if cfg.Addr == "" {
			return nil, errors.New("multiplayer: client session needs a host address")
		}
	default:
		return nil, fmt.Errorf("multiplayer: unknown role %d", cfg.Role)
	}
	return s, nil
}

// Start brings the session up: a host starts listening, a client dials.
// Hosts and solo sessions start the tick driver, which runs until ctx is
// cancelled or Disconnect is called.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return ErrStarted
	}
	s.started = true
	s.startedAt = time.Now()
	ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	switch s.cfg.Role {
	case RoleClient:
		c, err := Dial(ctx, s.cfg.Addr, s.cfg.LocalID, s.cfg.LocalColor,
			WithLogger(s.logger), WithMaxFrame(s.cfg.Host.MaxFrame), withEvents(s.events))
		if err != nil {
			s.failStart(err)
			return err
		}
		s.client = c
		return nil

	case RoleHost:
		hostCfg := s.cfg.Host
		hostCfg.Notify = s.emit
		s.host = NewHost(hostCfg, s.engine, s.logger)
		if s.cfg.LocalID != "" {
			s.host.Reserve(s.cfg.LocalID)
		}
		if _, err := s.host.Listen(ctx, s.cfg.Addr); err != nil {
			s.failStart(err)
			return err
		}
		if s.cfg.WSAddr != "" {
			if _, err := s.host.ServeWS(ctx, s.cfg.WSAddr); err != nil {
				s.failStart(err)
				return err
			}
		}
		s.emit(StatusEvent{Status: StatusOpen})
	}

	if s.cfg.AutoBegin {
		s.engine.Begin()
		s.emit(StateChangedEvent{State: snake.StateRunning})
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(ctx)
	}()
	return nil
}

func (s *Session) failStart(err error) {
	if s.host != nil {
		s.host.Close()
	}
	s.mu.Lock()
	s.startErr = err
	s.mu.Unlock()
	if s.cfg.Role == RoleHost {
		s.emit(StatusEvent{Status: StatusErrored, Err: err})
	}
}

// run is the fixed-cadence tick driver.
func (s *Session) run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Runtime.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.step()
		case <-ctx.Done():
			return
		}
	}
}

// step advances the engine once and publishes the result. Idle cycles still
// publish the world so clients see joins and revives before the game runs.
func (s *Session) step() {
	res := s.engine.AdvanceTick()
	snap := s.engine.Snapshot()

	if s.host != nil {
		s.host.Broadcast(snap)
	}
	s.emit(SnapshotEvent{Snapshot: snap})

	for _, d := range res.Deaths {
		s.logger.Info("player died", "id", d.ID, "length", d.Length, "tick", res.Tick)
		s.emit(DeathEvent{ID: d.ID, Length: d.Length, Tick: res.Tick})
		s.saveDeath(d, res.Tick)
	}
}

// saveDeath records a death without holding up the tick.
func (s *Session) saveDeath(d snake.Death, tick uint64) {
	if s.cfg.Saver == nil {
		return
	}
	data := DeathData{
		SessionID: s.id,
		PlayerID:  d.ID,
		Color:     d.Color.String(),
		Length:    d.Length,
		Tick:      tick,
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.cfg.Saver.SaveDeath(data); err != nil {
			s.logger.Warn("failed to save score", "id", data.PlayerID, "err", err)
		}
	}()
}

func (s *Session) emit(evt SessionEvent) {
	s.events.push(evt)
}

// ID returns the session id used for persistence.
func (s *Session) ID() string { return s.id }

// Role returns the session role.
func (s *Session) Role() Role { return s.cfg.Role }

// LocalID returns the local player id.
func (s *Session) LocalID() string { return s.cfg.LocalID }

// Engine returns the authoritative engine, or nil for client sessions.
func (s *Session) Engine() *snake.Engine { return s.engine }

// Host returns the connection manager of a host session, or nil.
func (s *Session) Host() *Host { return s.host }

// Events returns the channel the local UI reads from.
func (s *Session) Events() <-chan SessionEvent {
	return s.events.items
}

// Done is closed once Disconnect has finished.
func (s *Session) Done() <-chan struct{} {
	return s.events.done
}

// Latest returns the world to render: the engine's own state for hosts and
// solo sessions, the last received snapshot for clients.
func (s *Session) Latest() (wire.Snapshot, bool) {
	if s.engine != nil {
		return s.engine.Snapshot(), true
	}
	if s.client == nil {
		return wire.Snapshot{}, false
	}
	return s.client.Latest()
}

// Status returns the connection status a UI should show.
func (s *Session) Status() Status {
	if s.client != nil {
		return s.client.Status()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case !s.started:
		return StatusIdle
	case s.startErr != nil:
		return StatusErrored
	case s.cancel == nil:
		return StatusClosed
	default:
		return StatusOpen
	}
}

// State returns the engine state. Clients always report idle since the
// host's state is not part of a snapshot.
func (s *Session) State() snake.State {
	if s.engine == nil {
		return snake.StateIdle
	}
	return s.engine.State()
}

// Begin starts ticking.
func (s *Session) Begin() error {
	if s.engine == nil {
		return ErrNotHost
	}
	s.engine.Begin()
	s.logger.Info("game started")
	s.emit(StateChangedEvent{State: snake.StateRunning})
	return nil
}

// Reset respawns everyone and returns to idle.
func (s *Session) Reset() error {
	if s.engine == nil {
		return ErrNotHost
	}
	s.engine.Reset()
	s.logger.Info("game reset")
	s.emit(StateChangedEvent{State: snake.StateIdle})
	return nil
}

// ReviveLocal gives the local player a fresh snake, joining it if needed.
func (s *Session) ReviveLocal() error {
	if s.engine == nil {
		return ErrNotHost
	}
	if s.cfg.LocalID == "" {
		return ErrNoLocalPlayer
	}
	err := s.engine.Revive(s.cfg.LocalID)
	if errors.Is(err, snake.ErrUnknownPlayer) {
		err = s.engine.Join(s.cfg.LocalID, s.cfg.LocalColor)
	}
	return err
}

// Steer requests a new heading for the local player. Clients send it to the
// host immediately; hosts and solo sessions buffer it for the next tick.
func (s *Session) Steer(dir core.Direction) error {
	if s.client != nil {
		s.client.Send(dir)
		return nil
	}
	if s.engine == nil {
		return nil
	}
	if s.cfg.LocalID == "" {
		return ErrNoLocalPlayer
	}
	return s.engine.ApplyIntent(s.cfg.LocalID, dir)
}

// Disconnect ends the session: the tick driver stops, connections close and
// the session is recorded. Safe to call multiple times.
func (s *Session) Disconnect() error {
	var err error
	s.stopOnce.Do(func() {
		s.mu.Lock()
		cancel := s.cancel
		s.cancel = nil
		startedAt := s.startedAt
		s.mu.Unlock()

		if cancel != nil {
			cancel()
		}
		if s.host != nil {
			err = s.host.Close()
		}
		if s.client != nil {
			err = s.client.Close()
		}
		s.wg.Wait()

		if s.engine != nil && !startedAt.IsZero() {
			s.saveSession(startedAt)
		}
		if s.client == nil {
			s.emit(StatusEvent{Status: StatusClosed})
		}
		s.logger.Info("session ended", "session", s.id)
		s.events.close()
	})
	return err
}

func (s *Session) saveSession(startedAt time.Time) {
	if s.cfg.Saver == nil {
		return
	}
	data := SessionData{
		SessionID: s.id,
		Role:      s.cfg.Role.String(),
		Ticks:     s.engine.Tick(),
		Players:   len(s.engine.Players()),
		StartedAt: startedAt.Unix(),
		EndedAt:   time.Now().Unix(),
	}
	if err := s.cfg.Saver.SaveSessionResult(data); err != nil {
		s.logger.Warn("failed to save session", "err", err)
	}
}
