package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/snakenet/internal/platform/tui"
	"github.com/vovakirdan/snakenet/internal/storage"
)

var (
	flagScoresPlayer string
	flagScoresLimit  int
	flagScoresPlain  bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Show the leaderboard",
	Long: `Display the longest snakes recorded in the scores database and the most
recent sessions. In a terminal this opens an interactive scoreboard; when
piped, or with --plain, it prints a table.

Examples:
  snakenet scores
  snakenet scores --player alice
  snakenet scores --plain --limit 20`,
	Args: cobra.NoArgs,
	Run:  runScores,
}

func init() {
	scoresCmd.Flags().StringVar(&flagScoresPlayer, "player", "", "Only show this player's scores")
	scoresCmd.Flags().IntVar(&flagScoresLimit, "limit", 10, "Number of entries to print")
	scoresCmd.Flags().BoolVar(&flagScoresPlain, "plain", false, "Print instead of opening the scoreboard")
}

func runScores(_ *cobra.Command, _ []string) {
	cfg, err := loadConfig()
	if err != nil {
		fail("%v", err)
	}

	// Open score storage
	store, err := storage.Open(cfg.Storage.DB)
	if err != nil {
		fail("opening scores database: %v", err)
	}
	defer store.Close()

	fd := int(os.Stdout.Fd())
	if !flagScoresPlain && term.IsTerminal(fd) {
		width, height := 80, 24 // Defaults
		if w, h, termErr := term.GetSize(fd); termErr == nil {
			width, height = w, h
		}
		if err := tui.RunScoreboard(store, flagScoresPlayer, width, height); err != nil {
			fail("%v", err)
		}
		return
	}

	if err := printScores(os.Stdout, store, flagScoresPlayer, flagScoresLimit); err != nil {
		fail("%v", err)
	}
}
