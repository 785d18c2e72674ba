package snake

import "github.com/vovakirdan/snakenet/internal/core"

// AdvanceTick moves every alive player one cell and resolves collisions and
// food. It does nothing while the engine is idle.
//
// All deaths are decided against the pre-tick world: a new head dies when it
// leaves the grid, lands on any cell of any alive body as it was before the
// move (tails included), or lands on the same cell as another player's new
// head. The outcome does not depend on player order.
func (e *Engine) AdvanceTick() TickResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateRunning {
		return TickResult{Tick: e.tick}
	}

	e.applyPending()

	occupied := make(map[core.Point]bool)
	heads := make(map[string]core.Point)
	headCount := make(map[core.Point]int)
	for _, id := range e.order {
		p := e.players[id]
		if !p.Alive || len(p.Body) == 0 {
			continue
		}
		for _, seg := range p.Body {
			occupied[seg] = true
		}
		h := p.Head().Add(p.Direction)
		heads[id] = h
		headCount[h]++
	}

	e.tick++
	result := TickResult{Tick: e.tick, Advanced: true}
	food := e.food
	foodEaten := false

	// Decide first, mutate second.
	dying := make(map[string]bool)
	for id, h := range heads {
		if !h.In(e.width, e.height) || occupied[h] || headCount[h] > 1 {
			dying[id] = true
		}
	}

	for _, id := range e.order {
		h, moving := heads[id]
		if !moving {
			continue
		}
		p := e.players[id]
		if dying[id] {
			p.Alive = false
			result.Deaths = append(result.Deaths, Death{ID: id, Color: p.Color, Length: len(p.Body)})
			continue
		}

		p.Body = append(p.Body, core.Point{})
		copy(p.Body[1:], p.Body)
		p.Body[0] = h

		if h == food {
			foodEaten = true
			result.Ate = append(result.Ate, id)
		} else {
			p.Body = p.Body[:len(p.Body)-1]
		}
	}

	if foodEaten || e.food == NoFood {
		e.food = e.randomFreeCell()
	}
	return result
}

// applyPending turns buffered intents into headings. An intent is re-checked
// against the current heading since it may have been queued before a revive.
// Must be called with the lock held.
func (e *Engine) applyPending() {
	for id, dir := range e.pending {
		p, ok := e.players[id]
		if !ok || !p.Alive {
			continue
		}
		if !dir.IsOpposite(p.Direction) {
			p.Direction = dir
		}
	}
	clear(e.pending)
}
