package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/snakenet/internal/config"
	"github.com/vovakirdan/snakenet/internal/logging"
	"github.com/vovakirdan/snakenet/internal/multiplayer"
	"github.com/vovakirdan/snakenet/internal/platform/tui"
)

var (
	flagServeListen string
	flagServeWS     string
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a headless host",
	Long: `Run an authoritative world with no local player. The game starts
running immediately; players join with 'snakenet join' or, with --ssh,
over plain SSH.

Each SSH connection becomes its own snake in the shared world. Logs go to
stderr. Press Ctrl+C to stop.

Examples:
  snakenet serve
  snakenet serve --ws :8080
  snakenet serve --ssh                 # SSH players on :23234
  snakenet serve --ssh=:2222 --host-key ./host_ed25519

Users can connect with:
  snakenet join <server>
  ssh <server> -p 23234`,
	Args: cobra.NoArgs,
	Run:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagServeListen, "listen", "", "TCP listen address (default :<network.port>)")
	serveCmd.Flags().StringVar(&flagServeWS, "ws", "", "WebSocket listen address (default network.ws_addr)")
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "Also accept SSH players on this address")
	serveCmd.Flags().Lookup("ssh").NoOptDefVal = config.Default().Network.SSHAddr
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to SSH host key (default network.host_key)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "SSH idle timeout in minutes before disconnecting")
}

func runServe(_ *cobra.Command, _ []string) {
	cfg, err := loadConfig()
	if err != nil {
		fail("%v", err)
	}

	logger, closer, err := logging.New(cfg.Log, logging.SinkStderr, "snakenet")
	if err != nil {
		fail("%v", err)
	}
	defer closer.Close()

	addr := flagServeListen
	if addr == "" {
		addr = listenAddr(cfg)
	}
	wsAddr := flagServeWS
	if wsAddr == "" {
		wsAddr = cfg.Network.WSAddr
	}

	sessCfg := multiplayer.SessionConfig{
		Role:      multiplayer.RoleHost,
		Runtime:   cfg.Runtime(),
		Addr:      addr,
		WSAddr:    wsAddr,
		AutoBegin: true,
		Host:      hostConfig(cfg),
		Logger:    logger,
	}
	store := openStore(cfg, logger)
	if store != nil {
		sessCfg.Saver = store
		defer store.Close()
	}

	sess, err := multiplayer.NewSession(sessCfg)
	if err != nil {
		fail("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := sess.Start(ctx); err != nil {
		fail("%v", err)
	}
	logger.Info("serving", "addr", addr, "ws", wsAddr, "grid", cfg.Grid, "tick", cfg.TickInterval)

	sshDone := make(chan error, 1)
	if flagSSHAddr != "" {
		hostKey := flagHostKey
		if hostKey == "" {
			hostKey = cfg.Network.HostKey
		}
		if hostKey, err = config.ExpandHome(hostKey); err != nil {
			fail("%v", err)
		}
		srv, err := tui.NewSSHServer(tui.SSHServerConfig{
			Address:     flagSSHAddr,
			HostKeyPath: hostKey,
			IdleTimeout: time.Duration(flagIdleTimeout) * time.Minute,
			Queue:       cfg.Network.OutboundQueue,
		}, sess, logger.With("component", "ssh"))
		if err != nil {
			fail("%v", err)
		}
		go func() {
			sshDone <- srv.ListenAndServe(ctx)
		}()
	}

	select {
	case <-ctx.Done():
	case err := <-sshDone:
		if err != nil {
			logger.Error("ssh server stopped", "error", err)
		}
	}

	logger.Info("shutting down...")
	if err := sess.Disconnect(); err != nil {
		logger.Warn("disconnect", "error", err)
	}
}
