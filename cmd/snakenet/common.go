package main

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/term"

	"github.com/vovakirdan/snakenet/internal/config"
	"github.com/vovakirdan/snakenet/internal/core"
	"github.com/vovakirdan/snakenet/internal/logging"
	"github.com/vovakirdan/snakenet/internal/multiplayer"
	"github.com/vovakirdan/snakenet/internal/platform/tui"
	"github.com/vovakirdan/snakenet/internal/storage"
)

// Session flags shared by solo, host and join.
var (
	flagPlayerID string
	flagColor    string
)

// loadConfig loads the config file and applies global flag overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}
	if flagDBPath != "" {
		cfg.Storage.DB = flagDBPath
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	if flagSeed != 0 {
		cfg.Seed = flagSeed
	}
	if flagPlayerID != "" {
		cfg.Player.ID = flagPlayerID
	}
	if flagColor != "" {
		cfg.Player.Color = flagColor
	}
	return cfg, cfg.Validate()
}

// identity resolves the local player id and colour, filling blanks with a
// random uuid prefix and a random palette colour.
func identity(p config.PlayerConfig, rng *rand.Rand) (string, core.Color) {
	id := strings.TrimSpace(p.ID)
	if id == "" {
		id = "player-" + uuid.NewString()[:8]
	}
	color, ok := core.ParseColor(p.Color)
	if !ok {
		color = core.Palette[rng.IntN(len(core.Palette))]
	}
	return id, color
}

// openStore opens the scores database. A failure is logged and play
// continues without recording results.
func openStore(cfg config.Config, logger *log.Logger) *storage.Store {
	store, err := storage.Open(cfg.Storage.DB)
	if err != nil {
		logger.Warn("could not open scores database", "error", err)
		return nil
	}
	return store
}

// checkTerminal verifies stdout is a terminal large enough for the board.
func checkTerminal(width, height int) error {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return fmt.Errorf("stdout is not a terminal")
	}
	needW, needH := tui.BoardSize(width, height)
	needH += 5 // title, score line, notice and help
	w, h, err := term.GetSize(fd)
	if err != nil {
		return nil
	}
	if w < needW || h < needH {
		return fmt.Errorf("terminal is %dx%d, a %dx%d board needs at least %dx%d", w, h, width, height, needW, needH)
	}
	return nil
}

// runInteractive starts a session of the given role and hands the terminal
// to the TUI until the player quits.
func runInteractive(role multiplayer.Role, addr string) {
	cfg, err := loadConfig()
	if err != nil {
		fail("%v", err)
	}
	if err := checkTerminal(cfg.Grid.Width, cfg.Grid.Height); err != nil {
		fail("%v", err)
	}

	logger, closer, err := logging.New(cfg.Log, logging.SinkFile, "snakenet")
	if err != nil {
		fail("%v", err)
	}
	defer closer.Close()

	rt := cfg.Runtime()
	id, color := identity(cfg.Player, rand.New(rand.NewPCG(uint64(rt.Seed), 0)))

	sessCfg := multiplayer.SessionConfig{
		Role:       role,
		Runtime:    rt,
		LocalID:    id,
		LocalColor: color,
		Addr:       addr,
		Host:       hostConfig(cfg),
		Logger:     logger,
	}
	if role == multiplayer.RoleHost {
		sessCfg.WSAddr = cfg.Network.WSAddr
	}

	var saver io.Closer
	if role != multiplayer.RoleClient {
		if store := openStore(cfg, logger); store != nil {
			sessCfg.Saver = store
			saver = store
		}
	}

	sess, err := multiplayer.NewSession(sessCfg)
	if err != nil {
		fail("%v", err)
	}
	if err := sess.Start(context.Background()); err != nil {
		fail("%v", err)
	}
	logger.Info("session started", "role", role, "id", id, "color", color)

	runErr := tui.Run(sess, cfg.Grid.Width, cfg.Grid.Height)
	//nolint:errcheck // Already disconnected when the player quit
	sess.Disconnect()
	if saver != nil {
		saver.Close()
	}
	if runErr != nil {
		fail("%v", runErr)
	}
}

func hostConfig(cfg config.Config) multiplayer.HostConfig {
	hc := multiplayer.DefaultHostConfig()
	if cfg.Network.OutboundQueue > 0 {
		hc.OutboundQueue = cfg.Network.OutboundQueue
	}
	if cfg.Network.MaxFrame > 0 {
		hc.MaxFrame = cfg.Network.MaxFrame
	}
	return hc
}

// listenAddr is the TCP address a host binds.
func listenAddr(cfg config.Config) string {
	return fmt.Sprintf(":%d", cfg.Network.Port)
}
