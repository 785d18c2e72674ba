package snake

import "github.com/vovakirdan/snakenet/internal/core"

// spawnBody is the classic starting snake: head at (8,8) facing right.
var spawnBody = []core.Point{{X: 8, Y: 8}, {X: 7, Y: 8}, {X: 6, Y: 8}}

// Player is one snake in the world. Players are never removed: a collision
// marks them dead in place and a revive gives them a fresh body.
type Player struct {
	ID        string
	Color     core.Color
	Body      []core.Point // Head at index 0
	Direction core.Direction
	Alive     bool
}

// Head returns the first body segment.
func (p *Player) Head() core.Point {
	return p.Body[0]
}

// Len returns the number of body segments.
func (p *Player) Len() int {
	return len(p.Body)
}

// clone returns a deep copy safe to hand out of the engine lock.
func (p *Player) clone() Player {
	c := *p
	c.Body = append([]core.Point(nil), p.Body...)
	return c
}

// occupies reports whether any body segment is at cell.
func (p *Player) occupies(cell core.Point) bool {
	for _, seg := range p.Body {
		if seg == cell {
			return true
		}
	}
	return false
}
