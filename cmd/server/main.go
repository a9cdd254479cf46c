package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"tournament-tracker/internal/config"
	"tournament-tracker/internal/constants"
	fxmodules "tournament-tracker/internal/fx"
	"tournament-tracker/internal/logger"
	"tournament-tracker/internal/server"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(runServer),
	).Run()
}

func runServer(
	lc fx.Lifecycle,
	srv *server.Server,
	cfg *config.Config,
	db *sql.DB,
	log zerolog.Logger,
) {
	log = log.Level(logger.ParseLevel(cfg.LogLevel))

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: srv.Router(),
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info().Str("addr", httpServer.Addr).Msg("server starting")
				if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("server failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()

			return shutdown(shutdownCtx, httpServer, db, log)
		},
	})
}

// shutdown drains in-flight requests before the store goes away: handlers
// may still be reading the database until Shutdown returns.
func shutdown(ctx context.Context, httpServer *http.Server, db *sql.DB, log zerolog.Logger) error {
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
		return err
	}

	if err := db.Close(); err != nil {
		log.Warn().Err(err).Msg("error closing database connection")
	}
	log.Info().Msg("server stopped gracefully")
	return nil
}
