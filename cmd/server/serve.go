package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Chrezm/TsuserverDR/internal/app"
	"github.com/Chrezm/TsuserverDR/internal/config"
	"github.com/Chrezm/TsuserverDR/internal/log"
)

func serveCmd() *cobra.Command {
	var (
		configPath string
		overrides  config.Config
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the TCP and WebSocket listeners",
		RunE: func(cmd *cobra.Command, args []string) error {
			bootstrap := log.New(config.Default().LogLevel, config.Default().LogFormat)

			cfg, path, err := config.Load(bootstrap, configPath)
			if err != nil {
				return err
			}
			// Flags win over the file and the environment.
			cfg.UpdateFrom(overrides)

			logger := log.New(cfg.LogLevel, cfg.LogFormat)
			logger.Info().Str("config", path).Msg("configuration loaded")

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			application, err := app.New(&cfg, logger)
			if err != nil {
				return err
			}

			logger.Info().Str("addr", cfg.Addr).Str("http_addr", cfg.HTTPAddr).Msg("starting tsuserver")
			if err := application.Run(ctx); err != nil {
				logger.Error().Err(err).Msg("server exited with error")
				return err
			}
			logger.Info().Msg("server stopped")
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&configPath, "config", "c", "", "path to config.yaml")
	f.StringVar(&overrides.Addr, "addr", "", "TCP listen address")
	f.StringVar(&overrides.HTTPAddr, "http-addr", "", "HTTP and WebSocket listen address")
	f.StringVar(&overrides.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	f.StringVar(&overrides.LogFormat, "log-format", "", "log format (console, json)")
	f.IntVar(&overrides.PlayerLimit, "player-limit", 0, "maximum number of connected clients")
	f.StringVar(&overrides.DatabasePath, "db", "", "sqlite database path")
	f.DurationVar(&overrides.ShutdownTimeout, "shutdown-timeout", 0, "graceful shutdown timeout")
	f.DurationVar(&overrides.IdleTimeout, "idle-timeout", 0, "disconnect clients silent for this long")

	return cmd
}
