package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/snakenet/internal/core"
	"github.com/vovakirdan/snakenet/internal/wire"
)

// colorStyles maps core.Color to lipgloss styles.
var colorStyles = map[core.Color]lipgloss.Style{
	core.ColorDefault: lipgloss.NewStyle(),
	core.ColorRed:     lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	core.ColorGreen:   lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	core.ColorYellow:  lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	core.ColorBlue:    lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
	core.ColorPurple:  lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
	core.ColorCyan:    lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	core.ColorWhite:   lipgloss.NewStyle().Foreground(lipgloss.Color("15")),
	core.ColorOrange:  lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
	core.ColorGray:    lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
}

// Board runes. Each grid cell is two terminal columns wide so cells look square.
const (
	cellWidth = 2
	headRune  = '█'
	bodyRune  = '▓'
	deadRune  = '░'
	foodRune  = '●'
)

// RenderScreen converts a Screen buffer to a styled string for display.
// Groups adjacent cells with the same color to minimize ANSI escape sequences.
func RenderScreen(s *core.Screen) string {
	var sb strings.Builder
	// Pre-allocate with extra space for ANSI codes
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	for y := range s.Height() {
		if y > 0 {
			sb.WriteRune('\n')
		}

		x := 0
		for x < s.Width() {
			startColor := s.GetCell(x, y).Color

			var run strings.Builder
			for x < s.Width() {
				cell := s.GetCell(x, y)
				if cell.Color != startColor {
					break
				}
				run.WriteRune(cell.Rune)
				x++
			}

			style, ok := colorStyles[startColor]
			if !ok {
				style = colorStyles[core.ColorDefault]
			}
			sb.WriteString(style.Render(run.String()))
		}
	}
	return sb.String()
}

// BoardSize returns the screen size needed for a width x height grid.
func BoardSize(width, height int) (int, int) {
	return width*cellWidth + 2, height + 2
}

// DrawWorld draws the grid border, every player and the food into s.
// World y grows upwards, so row 0 is drawn at the bottom.
func DrawWorld(s *core.Screen, snap wire.Snapshot, width, height int) {
	s.Clear()
	w, h := BoardSize(width, height)
	s.DrawBox(core.NewRect(0, 0, w, h))

	plot := func(p core.Point, r rune, c core.Color) {
		if !p.In(width, height) {
			return
		}
		sx := 1 + p.X*cellWidth
		sy := 1 + (height - 1 - p.Y)
		for i := range cellWidth {
			s.SetColored(sx+i, sy, r, c)
		}
	}

	if snap.Food.In(width, height) {
		plot(snap.Food, foodRune, core.ColorYellow)
	}

	// Dead first so living snakes are drawn on top.
	for _, alive := range []bool{false, true} {
		for _, p := range snap.Players {
			if p.Alive != alive {
				continue
			}
			color, _ := core.ParseColor(p.Color)
			for i := len(p.Body) - 1; i >= 0; i-- {
				switch {
				case !p.Alive:
					plot(p.Body[i], deadRune, core.ColorGray)
				case i == 0:
					plot(p.Body[i], headRune, core.ColorWhite)
				default:
					plot(p.Body[i], bodyRune, color)
				}
			}
		}
	}
}

var (
	youStyle  = lipgloss.NewStyle().Bold(true)
	deadStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Strikethrough(true)
)

// Scoreline lists every player with its length, local player first.
func Scoreline(snap wire.Snapshot, localID string) string {
	parts := make([]string, 0, len(snap.Players))
	for _, p := range orderLocalFirst(snap.Players, localID) {
		color, _ := core.ParseColor(p.Color)
		label := fmt.Sprintf("%s %d", p.ID, len(p.Body))
		style := colorStyles[color]
		if p.ID == localID {
			style = style.Inherit(youStyle)
			label = "▶ " + label
		}
		if !p.Alive {
			style = deadStyle
		}
		parts = append(parts, style.Render(label))
	}
	return strings.Join(parts, "  ")
}

func orderLocalFirst(players []wire.PlayerState, localID string) []wire.PlayerState {
	out := make([]wire.PlayerState, 0, len(players))
	for _, p := range players {
		if p.ID == localID {
			out = append(out, p)
		}
	}
	for _, p := range players {
		if p.ID != localID {
			out = append(out, p)
		}
	}
	return out
}
