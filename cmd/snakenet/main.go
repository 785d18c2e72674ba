// snakenet is a multiplayer terminal snake game with an authoritative host.
//
// Usage:
//
//	snakenet solo            - Play alone, no network
//	snakenet host            - Host a game and play in it
//	snakenet join <addr>     - Join a host (host:port or ws://host:port/ws)
//	snakenet serve           - Run a headless host, optionally with SSH players
//	snakenet scores          - Show the leaderboard
//
// Global flags:
//
//	--config <path>     - Config file (default search: ~/.snakenet/config.yaml, ./configs/snakenet.yaml)
//	--db <path>         - Scores database path
//	--log-level <level> - debug, info, warn or error
//	--seed <value>      - RNG seed for reproducible food placement
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	flagConfig   string
	flagDBPath   string
	flagLogLevel string
	flagSeed     int64
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "snakenet",
	Short: "snakenet - multiplayer snake in your terminal",
	Long: `snakenet is a real-time multiplayer snake game. One player hosts the
authoritative world and everyone else joins as a thin client that draws
whatever the host sends.

Available commands:
  solo     - Play alone
  host     - Host a game and play in it
  join     - Join someone else's game
  serve    - Headless host, with optional SSH players
  scores   - View the leaderboard

Examples:
  snakenet solo
  snakenet host --id alice --color red
  snakenet join 192.168.1.20 --id bob
  snakenet serve --ssh :23234
  snakenet scores`,
	SilenceUsage: true,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config YAML")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to scores database (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")

	// Add subcommands
	rootCmd.AddCommand(soloCmd)
	rootCmd.AddCommand(hostCmd)
	rootCmd.AddCommand(joinCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scoresCmd)
}

// fail prints an error and exits.
func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
