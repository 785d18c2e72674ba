package snake

import (
	"github.com/vovakirdan/snakenet/internal/core"
	"github.com/vovakirdan/snakenet/internal/wire"
)

// Snapshot projects the whole world, dead players included, into its wire form.
func (e *Engine) Snapshot() wire.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := wire.Snapshot{
		Tick:    e.tick,
		Players: make([]wire.PlayerState, 0, len(e.order)),
		Food:    e.food,
	}
	for _, id := range e.order {
		p := e.players[id]
		snap.Players = append(snap.Players, wire.PlayerState{
			ID:        p.ID,
			Color:     p.Color.String(),
			Body:      append([]core.Point(nil), p.Body...),
			Direction: p.Direction,
			Alive:     p.Alive,
		})
	}
	return snap
}
