package main

import (
	"github.com/spf13/cobra"

	"github.com/vovakirdan/snakenet/internal/multiplayer"
)

var soloCmd = &cobra.Command{
	Use:   "solo",
	Short: "Play alone",
	Long: `Play a local game with no network. The world is the same one a host
runs, so anything you learn here carries over to multiplayer.

Controls:
  Arrows/WASD/HJKL - Steer
  Enter/Space      - Start
  V                - Revive after dying
  R                - Reset everyone to the lobby
  Q/Ctrl+C         - Quit

Examples:
  snakenet solo
  snakenet solo --color cyan --seed 42`,
	Args: cobra.NoArgs,
	Run: func(_ *cobra.Command, _ []string) {
		runInteractive(multiplayer.RoleSolo, "")
	},
}

func init() {
	addPlayerFlags(soloCmd)
}

func addPlayerFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagPlayerID, "id", "", "Player id (random if empty)")
	cmd.Flags().StringVar(&flagColor, "color", "", "Snake colour: red, green, blue, purple, orange, cyan")
}
