package main

import (
	"github.com/spf13/cobra"

	"github.com/vovakirdan/snakenet/internal/multiplayer"
)

var flagHostAddr string

var hostCmd = &cobra.Command{
	Use:   "host",
	Short: "Host a game and play in it",
	Long: `Host an authoritative world on the configured port (default 54000) and
play in it. Other players join with 'snakenet join <your-address>'.

Only the host can start and reset the game. Set network.ws_addr in the
config to also accept WebSocket clients.

Examples:
  snakenet host
  snakenet host --id alice --color red
  snakenet host --listen 0.0.0.0:6000`,
	Args: cobra.NoArgs,
	Run: func(_ *cobra.Command, _ []string) {
		addr := flagHostAddr
		if addr == "" {
			cfg, err := loadConfig()
			if err != nil {
				fail("%v", err)
			}
			addr = listenAddr(cfg)
		}
		runInteractive(multiplayer.RoleHost, addr)
	},
}

func init() {
	addPlayerFlags(hostCmd)
	hostCmd.Flags().StringVar(&flagHostAddr, "listen", "", "TCP listen address (default :<network.port>)")
}
