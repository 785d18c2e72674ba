// Package snake implements the authoritative multiplayer snake simulation.
// The engine owns every player's body, heading and aliveness plus the single
// food cell. It is advanced one tick at a time by an external driver and is
// safe for concurrent use: intents from connection goroutines are buffered
// and only applied at the next tick boundary.
package snake

import (
	"math/rand/v2"
	"sync"

	"github.com/vovakirdan/snakenet/internal/core"
)

// State is the session-level state of the engine.
type State int

const (
	StateIdle    State = iota // players may join, no ticking
	StateRunning              // AdvanceTick moves snakes
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	default:
		return "unknown"
	}
}

// NoFood marks a board with no free cell left for food.
var NoFood = core.Point{X: -1, Y: -1}

// Death describes a player that died during a tick.
type Death struct {
	ID     string
	Color  core.Color
	Length int
}

// TickResult summarises one call to AdvanceTick.
type TickResult struct {
	Tick     uint64
	Advanced bool     // false when the engine is idle
	Deaths   []Death  // players that died this tick, in join order
	Ate      []string // players that ate the food this tick
}

// Engine is the authoritative world.
type Engine struct {
	mu sync.Mutex

	width  int
	height int
	rng    *rand.Rand

	state State
	tick  uint64

	order   []string // join order
	players map[string]*Player
	food    core.Point

	// One pending-direction slot per player, last write wins.
	pending map[string]core.Direction
}

// New creates an idle engine with an empty world.
func New(cfg core.RuntimeConfig) *Engine {
	e := &Engine{
		width:   cfg.Width,
		height:  cfg.Height,
		rng:     rand.New(rand.NewPCG(uint64(cfg.Seed), 0)), //nolint:gosec // gameplay randomness
		players: make(map[string]*Player),
		pending: make(map[string]core.Direction),
	}
	e.food = e.randomFreeCell()
	return e
}

// Width returns the grid width.
func (e *Engine) Width() int { return e.width }

// Height returns the grid height.
func (e *Engine) Height() int { return e.height }

// State returns the session state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Tick returns the number of ticks advanced since the last reset.
func (e *Engine) Tick() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tick
}

// Food returns the current food cell.
func (e *Engine) Food() core.Point {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.food
}

// Player returns a copy of the player with the given id.
func (e *Engine) Player(id string) (Player, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p, ok := e.players[id]
	if !ok {
		return Player{}, false
	}
	return p.clone(), true
}

// Players returns copies of all players in join order.
func (e *Engine) Players() []Player {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Player, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, e.players[id].clone())
	}
	return out
}

// Join adds a new alive player with a fresh body.
func (e *Engine) Join(id string, color core.Color) error {
	if id == "" {
		return ErrEmptyPlayerID
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.players[id]; exists {
		return ErrDuplicatePlayer
	}
	return e.add(&Player{ID: id, Color: color})
}

// Rejoin gives an existing player a new colour and a fresh body, or joins it
// if it is not yet in the world.
func (e *Engine) Rejoin(id string, color core.Color) error {
	if id == "" {
		return ErrEmptyPlayerID
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	p, exists := e.players[id]
	if !exists {
		return e.add(&Player{ID: id, Color: color})
	}
	p.Color = color
	p.Alive = false
	return e.spawn(p)
}

// Revive recreates a dead player with a fresh body and heading.
// Reviving an alive player is a no-op.
func (e *Engine) Revive(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, ok := e.players[id]
	if !ok {
		return ErrUnknownPlayer
	}
	if p.Alive {
		return nil
	}
	return e.spawn(p)
}

// Kill marks a player dead in place. Used when its connection goes away.
func (e *Engine) Kill(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, ok := e.players[id]
	if !ok {
		return ErrUnknownPlayer
	}
	p.Alive = false
	delete(e.pending, id)
	return nil
}

// ApplyIntent buffers a direction change for the next tick.
// Reverse headings, non-unit vectors and intents for unknown or dead
// players are rejected.
func (e *Engine) ApplyIntent(id string, dir core.Direction) error {
	if !dir.Valid() {
		return ErrInvalidDirection
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	p, ok := e.players[id]
	if !ok {
		return ErrUnknownPlayer
	}
	if !p.Alive {
		return ErrPlayerDead
	}
	if dir.IsOpposite(p.Direction) {
		return ErrReverseDirection
	}
	e.pending[id] = dir
	return nil
}

// Begin switches the engine to running.
func (e *Engine) Begin() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = StateRunning
}

// Reset respawns every player, relocates the food and returns to idle.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.state = StateIdle
	e.tick = 0
	e.pending = make(map[string]core.Direction)

	for _, id := range e.order {
		e.players[id].Alive = false
		e.players[id].Body = nil
	}
	for _, id := range e.order {
		// A full board leaves the player dead; nothing else to do.
		_ = e.spawn(e.players[id]) //nolint:errcheck // best effort
	}
	e.food = e.randomFreeCell()
}

// add registers p and spawns it. The player is only kept if it spawned.
// Must be called with the lock held.
func (e *Engine) add(p *Player) error {
	e.players[p.ID] = p
	e.order = append(e.order, p.ID)
	if err := e.spawn(p); err != nil {
		delete(e.players, p.ID)
		e.order = e.order[:len(e.order)-1]
		return err
	}
	return nil
}

// spawn places p on the first free lane and marks it alive.
// Must be called with the lock held.
func (e *Engine) spawn(p *Player) error {
	body, ok := e.findSpawn()
	if !ok {
		p.Alive = false
		return ErrNoSpawnAvailable
	}
	p.Body = body
	p.Direction = core.DirRight
	p.Alive = true
	delete(e.pending, p.ID)

	if p.occupies(e.food) {
		e.food = e.randomFreeCell()
	}
	return nil
}

// findSpawn looks for a horizontal lane holding a three segment snake plus
// the cell in front of its head, starting from the classic spawn.
func (e *Engine) findSpawn() ([]core.Point, bool) {
	base := spawnBody[0]

	// Rows fan out from the classic row: 8, 9, 7, 10, 6, ...
	rows := make([]int, 0, e.height)
	for d := 0; len(rows) < e.height && d < 2*e.height; d++ {
		for _, y := range []int{base.Y + d, base.Y - d} {
			if y >= 0 && y < e.height && !containsInt(rows, y) {
				rows = append(rows, y)
			}
		}
	}

	cols := []int{base.X}
	for x := 2; x < e.width-1; x++ {
		if x != base.X {
			cols = append(cols, x)
		}
	}

	for _, y := range rows {
		for _, hx := range cols {
			if e.laneFree(hx, y) {
				body := make([]core.Point, len(spawnBody))
				for i := range body {
					body[i] = core.Point{X: hx - i, Y: y}
				}
				return body, true
			}
		}
	}
	return nil, false
}

// laneFree checks cells hx-2 .. hx+1 on row y.
func (e *Engine) laneFree(hx, y int) bool {
	for x := hx - len(spawnBody) + 1; x <= hx+1; x++ {
		cell := core.Point{X: x, Y: y}
		if !cell.In(e.width, e.height) || e.occupiedByAlive(cell) {
			return false
		}
	}
	return true
}

func (e *Engine) occupiedByAlive(cell core.Point) bool {
	for _, id := range e.order {
		if p := e.players[id]; p.Alive && p.occupies(cell) {
			return true
		}
	}
	return false
}

// randomFreeCell picks uniformly among cells not covered by an alive body.
func (e *Engine) randomFreeCell() core.Point {
	occupied := make(map[core.Point]bool)
	for _, id := range e.order {
		if p := e.players[id]; p.Alive {
			for _, seg := range p.Body {
				occupied[seg] = true
			}
		}
	}

	free := make([]core.Point, 0, e.width*e.height-len(occupied))
	for y := 0; y < e.height; y++ {
		for x := 0; x < e.width; x++ {
			p := core.Point{X: x, Y: y}
			if !occupied[p] {
				free = append(free, p)
			}
		}
	}
	if len(free) == 0 {
		return NoFood
	}
	return free[e.rng.IntN(len(free))]
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}
