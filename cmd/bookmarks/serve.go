package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/joestump/bookmarks/internal/bookmark"
	"github.com/joestump/bookmarks/internal/build"
	"github.com/joestump/bookmarks/internal/config"
	"github.com/joestump/bookmarks/internal/db"
	"github.com/joestump/bookmarks/internal/handler"
	"github.com/joestump/bookmarks/internal/logger"
	"github.com/joestump/bookmarks/internal/store"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			log, err := logger.New(cfg.Log.Level, cfg.Log.Pretty)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			s, closer, err := openStore(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer func() { _ = closer.Close() }()

			log.Info("store ready", logger.String("driver", cfg.DB.Driver))

			router := handler.NewRouter(handler.Deps{
				Store:     s,
				Validator: bookmark.NewValidator(cfg.Validation.RevalidatePatch),
				Logger:    log,
				StartTime: time.Now(),
			})

			srv := &http.Server{
				Addr:              cfg.HTTP.Addr,
				Handler:           router,
				ReadHeaderTimeout: 5 * time.Second,
				ReadTimeout:       15 * time.Second,
				WriteTimeout:      30 * time.Second,
				IdleTimeout:       60 * time.Second,
				MaxHeaderBytes:    1 << 20,
			}

			errCh := make(chan error, 1)
			go func() {
				log.Info("listening",
					logger.String("addr", cfg.HTTP.Addr),
					logger.String("version", build.Version),
					logger.Bool("revalidate_patch", cfg.Validation.RevalidatePatch),
				)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("http server: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			log.Info("shutting down", logger.Duration("timeout", cfg.HTTP.ShutdownTimeout))
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			log.Info("server stopped")
			return nil
		},
	}
}

// openStore builds the Store selected by db.driver. SQL backends are migrated
// before use. The returned closer releases the underlying connection.
func openStore(ctx context.Context, cfg *config.Config, log logger.Logger) (store.Store, io.Closer, error) {
	switch cfg.DB.Driver {
	case config.DriverMemory:
		return store.NewMemoryStore(), nopCloser{}, nil
	case config.DriverRedis:
		client, err := db.NewRedis(ctx, db.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, nil, err
		}
		return store.NewRedisStore(client, cfg.Redis.KeyPrefix), client, nil
	default:
		database, err := db.New(cfg.DB.Driver, cfg.DB.DSN)
		if err != nil {
			return nil, nil, err
		}
		version, err := db.Migrate(ctx, database, cfg.DB.Driver, log)
		if err != nil {
			_ = database.Close()
			return nil, nil, err
		}
		log.Info("schema up to date", logger.Int("version", int(version)))
		return store.NewSQLStore(database), database, nil
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
