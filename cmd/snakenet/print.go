package main

import (
	"fmt"
	"io"

	"github.com/vovakirdan/snakenet/internal/platform/tui"
)

// printScores writes the plain-text leaderboard.
func printScores(w io.Writer, src tui.ScoreSource, playerID string, limit int) error {
	scores, err := src.TopScores(playerID, limit)
	if err != nil {
		return fmt.Errorf("retrieving scores: %w", err)
	}

	title := "Longest snakes"
	if playerID != "" {
		title += " - " + playerID
	}
	fmt.Fprintln(w, title)
	fmt.Fprintln(w)

	if len(scores) == 0 {
		fmt.Fprintln(w, "No scores recorded yet.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Play 'snakenet solo' to set the first one!")
		return nil
	}

	// Print header
	fmt.Fprintf(w, "  %-4s  %-16s  %-7s  %-6s  %s\n", "Rank", "Player", "Colour", "Length", "Date")
	fmt.Fprintf(w, "  %-4s  %-16s  %-7s  %-6s  %s\n", "----", "------", "------", "------", "----")

	for i, e := range scores {
		dateStr := e.CreatedAt.Format("2006-01-02 15:04")
		fmt.Fprintf(w, "  %-4d  %-16s  %-7s  %-6d  %s\n", i+1, e.PlayerID, e.Color, e.Length, dateStr)
	}

	sessions, err := src.RecentSessions(limit)
	if err != nil {
		return fmt.Errorf("retrieving sessions: %w", err)
	}
	if len(sessions) == 0 {
		return nil
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Recent sessions")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %-6s  %-7s  %-7s  %s\n", "Role", "Players", "Ticks", "Ended")
	fmt.Fprintf(w, "  %-6s  %-7s  %-7s  %s\n", "----", "-------", "-----", "-----")
	for _, s := range sessions {
		fmt.Fprintf(w, "  %-6s  %-7d  %-7d  %s\n", s.Role, s.Players, s.Ticks, s.EndedAt.Format("2006-01-02 15:04"))
	}
	return nil
}
