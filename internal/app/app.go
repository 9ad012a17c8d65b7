package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/roomrelay-server/internal/config"
	"github.com/vovakirdan/roomrelay-server/internal/core"
	"github.com/vovakirdan/roomrelay-server/internal/store"
	"github.com/vovakirdan/roomrelay-server/internal/store/sqlite"
	transporthttp "github.com/vovakirdan/roomrelay-server/internal/transport/http"
)

// App wires together core and transport layers.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	hub             *core.Hub
	store           store.RoomStore
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg config.Config, logger *zerolog.Logger) (*App, error) {
	defaults := seedNames(cfg.SeedRooms)

	st, err := sqlite.New(cfg.DatabasePath, defaults)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}
	logger.Info().Str("db_path", cfg.DatabasePath).Msg("room snapshot store opened")

	loadCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	names, err := st.LoadRoomNames(loadCtx)
	if err != nil {
		logger.Warn().Err(err).Msg("room snapshot unreadable, starting with defaults")
	}

	sessions := core.NewSessionStore(cfg.AdminSecret)
	catalog := core.NewCatalog(sessions, core.FallbackRoom)
	catalog.Seed(defaults)
	catalog.Seed(names)
	logger.Info().Strs("rooms", catalog.Names()).Msg("room catalog ready")

	hub := core.NewHub(sessions, catalog, st, logger)
	server := transporthttp.NewServer(hub, cfg, logger)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		hub:             hub,
		store:           st,
		log:             logger,
	}, nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go a.hub.Run(hubCtx)

	serverErr := make(chan error, 1)
	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		a.cleanup()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.cleanup()
			return err
		}

		a.cleanup()
		return <-serverErr
	}
}

// cleanup closes the snapshot store.
func (a *App) cleanup() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
}

// seedNames is the default room set: the fallback room plus configured
// extras, deduplicated in order.
func seedNames(extra []string) []string {
	names := []string{core.FallbackRoom}
	seen := map[string]struct{}{core.FallbackRoom: {}}
	for _, name := range extra {
		if _, dup := seen[name]; dup || name == "" {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}
