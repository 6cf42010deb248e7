// Command chordnode runs one Chord ring participant. It supports two
// startup modes: "init" starts a brand-new ring, "join" attaches to an
// existing one through a bootstrap peer. Built on cobra for the two
// subcommands instead of positional flags, with signal.Notify for
// graceful shutdown.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chordring/internal/bootstrap"
	"chordring/internal/chordnode"
	"chordring/internal/config"
	"chordring/internal/logger"
	zapadapter "chordring/internal/logger/zap"
	"chordring/internal/membership"
	"chordring/internal/store"
	"chordring/internal/telemetry"
	"chordring/internal/transport"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:   "chordnode",
		Short: "Run a Chord ring node",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")

	root.AddCommand(newInitCmd())
	root.AddCommand(newJoinCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newInitCmd() *cobra.Command {
	var host string
	var port int
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Start a brand-new ring",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(host, port, "")
		},
	}
	cmd.Flags().StringVar(&host, "host", "0.0.0.0", "address to listen on")
	cmd.Flags().IntVar(&port, "port", 9000, "port to listen on")
	return cmd
}

func newJoinCmd() *cobra.Command {
	var host string
	var port int
	var bootstrapAddr string
	cmd := &cobra.Command{
		Use:   "join",
		Short: "Join an existing ring through a bootstrap peer",
		RunE: func(cmd *cobra.Command, args []string) error {
			if bootstrapAddr == "" {
				return fmt.Errorf("--bootstrap is required for join")
			}
			return run(host, port, bootstrapAddr)
		},
	}
	cmd.Flags().StringVar(&host, "host", "0.0.0.0", "address to listen on")
	cmd.Flags().IntVar(&port, "port", 9001, "port to listen on")
	cmd.Flags().StringVar(&bootstrapAddr, "bootstrap", "", "address of an existing ring member, host:port")
	return cmd
}

func run(host string, port int, bootstrapAddr string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	cfg = config.ApplyEnvOverrides(cfg)
	cfg.Node.Host, cfg.Node.Port = host, port
	if bootstrapAddr != "" {
		cfg.DHT.Bootstrap.Mode = "static"
		cfg.DHT.Bootstrap.Peers = []string{bootstrapAddr}
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	zcfg := zapadapter.Config{Level: cfg.Logger.Level, Encoding: cfg.Logger.Encoding}
	if cfg.Logger.File.Enabled {
		zcfg.File = cfg.Logger.File.Path
		zcfg.MaxSizeMB = cfg.Logger.File.MaxSizeMB
		zcfg.MaxBackups = cfg.Logger.File.MaxBackups
		zcfg.MaxAgeDays = cfg.Logger.File.MaxAgeDays
	}
	zl, err := zapadapter.Build(zcfg)
	if err != nil {
		return err
	}
	defer zl.Sync()
	log := zapadapter.New(zl).With(logger.F("instance_id", uuid.NewString()))
	config.LogConfig(log, cfg)

	shutdownTracing, err := telemetry.Init(telemetry.Config{
		Enabled:     cfg.Telemetry.Tracing.Enabled,
		ServiceName: "chordnode",
	})
	if err != nil {
		return err
	}
	defer shutdownTracing(context.Background())

	ln, err := net.Listen("tcp", fmt.Sprintf("%s:%d", cfg.Node.Host, cfg.Node.Port))
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	defer ln.Close()

	self := chordnode.New(cfg.Node.Host, cfg.Node.Port, cfg.DHT.IDBits)
	client := transport.NewClient()
	node := membership.NewNode(self, cfg.DHT.IDBits, client, store.New(), log)

	server := transport.NewServer(ln, node, log)
	go func() {
		if err := server.Serve(); err != nil {
			log.Warn("transport server stopped", logger.F("err", err.Error()))
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go node.StartFailureDetector(ctx, cfg.DHT.KeepAliveInterval)

	if cfg.DHT.Bootstrap.Mode != "init" {
		peers, err := bootstrap.Resolve(ctx, cfg.DHT.Bootstrap, nil)
		if err != nil {
			return fmt.Errorf("resolve bootstrap peers: %w", err)
		}
		var joinErr error
		for _, peer := range peers {
			if joinErr = node.Join(peer); joinErr == nil {
				break
			}
			log.Warn("join via bootstrap peer failed, trying next", logger.F("peer", peer), logger.F("err", joinErr.Error()))
		}
		if joinErr != nil {
			return fmt.Errorf("join failed against every bootstrap peer: %w", joinErr)
		}
	} else if err := bootstrap.Register(ctx, cfg.DHT.Bootstrap, self.Addr()); err != nil {
		log.Warn("bootstrap self-registration failed", logger.F("err", err.Error()))
	}

	log.Info("node running", logger.F("addr", self.Addr()), logger.F("id", self.ID))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down")
	cancel()
	_ = server.Close()
	time.Sleep(50 * time.Millisecond)
	return nil
}
