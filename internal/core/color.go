package core

import "strings"

// Color identifies a snake colour from the fixed palette.
type Color uint8

// Palette colours. ColorDefault is used for cells that are not a snake.
const (
	ColorDefault Color = iota
	ColorRed
	ColorGreen
	ColorBlue
	ColorPurple
	ColorOrange
	ColorCyan
	ColorWhite
	ColorYellow
	ColorGray
)

// Palette lists the colours a player may choose, in pick order.
var Palette = []Color{ColorRed, ColorGreen, ColorBlue, ColorPurple, ColorOrange, ColorCyan}

var colorNames = map[Color]string{
	ColorRed:    "red",
	ColorGreen:  "green",
	ColorBlue:   "blue",
	ColorPurple: "purple",
	ColorOrange: "orange",
	ColorCyan:   "cyan",
	ColorWhite:  "white",
	ColorYellow: "yellow",
	ColorGray:   "gray",
}

// String returns the wire name of the colour.
func (c Color) String() string {
	if name, ok := colorNames[c]; ok {
		return name
	}
	return "default"
}

// ParseColor resolves a palette colour name. Only palette colours are accepted.
func ParseColor(name string) (Color, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, c := range Palette {
		if colorNames[c] == name {
			return c, true
		}
	}
	return ColorDefault, false
}
