package app

import (
	"context"
	"errors"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/Chrezm/TsuserverDR/internal/audit"
	"github.com/Chrezm/TsuserverDR/internal/auth"
	"github.com/Chrezm/TsuserverDR/internal/catalog"
	"github.com/Chrezm/TsuserverDR/internal/commands"
	"github.com/Chrezm/TsuserverDR/internal/config"
	"github.com/Chrezm/TsuserverDR/internal/core"
	"github.com/Chrezm/TsuserverDR/internal/metrics"
	"github.com/Chrezm/TsuserverDR/internal/session"
	"github.com/Chrezm/TsuserverDR/internal/store"
	"github.com/Chrezm/TsuserverDR/internal/store/sqlite"
	"github.com/Chrezm/TsuserverDR/internal/transport/tcp"
	transporthttp "github.com/Chrezm/TsuserverDR/internal/transport/http"
)

// Version is reported to clients in the ID record.
var Version = "4.3.0"

// App wires together core and transport layers.
type App struct {
	tcp             *tcp.Server
	http            *stdhttp.Server
	shutdownTimeout time.Duration
	hub             *core.Hub
	audit           *audit.Writer
	store           store.Store
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	cat, err := catalog.Load(catalog.Paths{
		Characters: cfg.CharactersPath,
		Music:      cfg.MusicPath,
		Areas:      cfg.AreasPath,
	})
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	logger.Info().
		Int("characters", len(cat.Characters)).
		Int("songs", cat.SongCount()).
		Int("areas", len(cat.Areas)).
		Msg("catalog loaded")

	st, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}
	logger.Info().Str("db_path", cfg.DatabasePath).Msg("database initialized")

	rec := metrics.New()
	writer := audit.NewWriter(st, 0, logger)

	hub, err := core.NewHub(cat, core.Options{
		Hostname:           cfg.Hostname,
		SpectatorName:      cfg.SpectatorName,
		BlackoutBackground: cfg.BlackoutBackground,
		PlayerLimit:        cfg.PlayerLimit,
		ICFloodInterval:    cfg.ICFloodInterval,
		Verifier: auth.NewVerifier(auth.Secrets{
			Moderator:        cfg.ModPassword,
			CommunityManager: cfg.CMPassword,
			GameMaster:       cfg.GMPassword,
		}),
		Audit:   writer,
		Metrics: rec,
		Logger:  logger,
	})
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("init hub: %w", err)
	}

	opts := session.Options{
		Software:       cfg.ServerName,
		Version:        Version,
		MaxRecordBytes: cfg.MaxRecordBytes,
		Commands:       commands.New(hub, logger),
		Metrics:        rec,
		Logger:         logger,
	}

	return &App{
		tcp:             tcp.NewServer(cfg.Addr, hub, opts, cfg.IdleTimeout, logger),
		http:            transporthttp.NewServer(hub, opts, rec, *cfg, logger),
		shutdownTimeout: cfg.ShutdownTimeout,
		hub:             hub,
		audit:           writer,
		store:           st,
		log:             logger,
	}, nil
}

// Hub exposes the routing core, mainly for tests.
func (a *App) Hub() *core.Hub {
	return a.hub
}

// Run starts both listeners and blocks until context cancellation or a fatal
// listener error.
func (a *App) Run(ctx context.Context) error {
	auditCtx, stopAudit := context.WithCancel(context.Background())
	defer stopAudit()
	go a.audit.Run(auditCtx)

	serverErr := make(chan error, 2)
	go func() {
		a.log.Info().Str("addr", a.http.Addr).Msg("http listener started")
		if err := a.http.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			serverErr <- fmt.Errorf("http: %w", err)
			return
		}
		serverErr <- nil
	}()
	go func() {
		if err := a.tcp.ListenAndServe(); err != nil {
			serverErr <- fmt.Errorf("tcp: %w", err)
			return
		}
		serverErr <- nil
	}()

	var runErr error
	select {
	case runErr = <-serverErr:
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer cancel()

	a.log.Info().Msg("shutting down listeners")
	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.log.Warn().Err(err).Msg("http shutdown")
	}
	if err := a.tcp.Shutdown(shutdownCtx); err != nil {
		a.log.Warn().Err(err).Msg("tcp shutdown")
	}

	a.cleanup()
	return runErr
}

// cleanup flushes the audit trail and closes the database.
func (a *App) cleanup() {
	a.audit.Close()
	a.audit.Wait()
	if n := a.audit.Dropped(); n > 0 {
		a.log.Warn().Int("dropped", n).Msg("audit events dropped")
	}

	if err := a.store.Close(); err != nil {
		a.log.Warn().Err(err).Msg("failed to close store")
	} else {
		a.log.Info().Msg("store closed")
	}
}
