package main

import (
	"github.com/spf13/cobra"

	"github.com/vovakirdan/snakenet/internal/multiplayer"
)

var joinCmd = &cobra.Command{
	Use:   "join <addr>",
	Short: "Join someone else's game",
	Long: `Connect to a host and play. The address is host or host:port for TCP
(port 54000 if omitted), or ws://host:port/ws for WebSocket.

The client only draws what the host sends, so the board size comes from
your config and should match the host's.

Examples:
  snakenet join 192.168.1.20
  snakenet join game.example.com:6000 --id bob --color blue
  snakenet join ws://game.example.com:8080/ws`,
	Args: cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		runInteractive(multiplayer.RoleClient, args[0])
	},
}

func init() {
	addPlayerFlags(joinCmd)
}
