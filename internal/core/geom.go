// Package core provides fundamental types shared by the simulation, the wire
// codec and the terminal front-end. It has no dependencies outside the
// standard library so the game logic stays pure and testable.
package core

import (
	"encoding/json"
	"fmt"
)

// Point is a grid cell. X grows to the right, Y grows upwards.
type Point struct {
	X, Y int
}

// Add returns the cell reached by moving one step in dir.
func (p Point) Add(dir Direction) Point {
	return Point{X: p.X + dir.DX, Y: p.Y + dir.DY}
}

// In reports whether p lies inside a width x height grid.
func (p Point) In(width, height int) bool {
	return p.X >= 0 && p.X < width && p.Y >= 0 && p.Y < height
}

// MarshalJSON encodes the point as a two element array [x, y].
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{p.X, p.Y})
}

// UnmarshalJSON decodes a two element array [x, y].
func (p *Point) UnmarshalJSON(data []byte) error {
	var xy []int
	if err := json.Unmarshal(data, &xy); err != nil {
		return err
	}
	if len(xy) != 2 {
		return fmt.Errorf("point: expected 2 coordinates, got %d", len(xy))
	}
	p.X, p.Y = xy[0], xy[1]
	return nil
}

// Direction is a unit step on the grid.
type Direction struct {
	DX, DY int
}

// The four legal headings. Up is +Y.
var (
	DirRight = Direction{DX: 1, DY: 0}
	DirLeft  = Direction{DX: -1, DY: 0}
	DirUp    = Direction{DX: 0, DY: 1}
	DirDown  = Direction{DX: 0, DY: -1}
)

// Directions lists every legal heading.
var Directions = []Direction{DirRight, DirLeft, DirUp, DirDown}

// Valid reports whether d is one of the four unit headings.
func (d Direction) Valid() bool {
	return Abs(d.DX)+Abs(d.DY) == 1
}

// Opposite returns the reverse heading.
func (d Direction) Opposite() Direction {
	return Direction{DX: -d.DX, DY: -d.DY}
}

// IsOpposite reports whether d is the exact reverse of other.
func (d Direction) IsOpposite(other Direction) bool {
	return d == other.Opposite()
}

// String returns a human-readable name for the heading.
func (d Direction) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	default:
		return fmt.Sprintf("(%d,%d)", d.DX, d.DY)
	}
}

// MarshalJSON encodes the heading as [dx, dy].
func (d Direction) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{d.DX, d.DY})
}

// UnmarshalJSON decodes [dx, dy].
func (d *Direction) UnmarshalJSON(data []byte) error {
	var p Point
	if err := p.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("direction: %w", err)
	}
	d.DX, d.DY = p.X, p.Y
	return nil
}

// Rect represents an axis-aligned rectangle on the screen buffer.
type Rect struct {
	X, Y int // Top-left corner position
	W, H int // Width and height
}

// NewRect creates a new rectangle with the given position and dimensions.
func NewRect(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Right returns the x-coordinate of the right edge.
func (r Rect) Right() int {
	return r.X + r.W
}

// Bottom returns the y-coordinate of the bottom edge.
func (r Rect) Bottom() int {
	return r.Y + r.H
}

// Abs returns the absolute value of an integer.
func Abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
