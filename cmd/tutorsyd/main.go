// tutorsyd serves the tutor tool-orchestration engine over HTTP.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/skosovsky/tutorsy"
	"github.com/skosovsky/tutorsy/adapters"
	"github.com/skosovsky/tutorsy/httpapi"
	"github.com/skosovsky/tutorsy/sqlitestore"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := loadConfig()
	if err != nil {
		zap.NewExample().Error("invalid configuration", zap.Error(err))
		return err
	}

	log, err := newLogger(cfg.LogMode)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	store, err := sqlitestore.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open profile store", zap.Error(err))
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			log.Error("failed to close profile store", zap.Error(closeErr))
		}
	}()
	if err := store.Ping(context.Background()); err != nil {
		log.Error("profile store health check failed", zap.Error(err))
		return err
	}

	schemas := tutorsy.NewSchemaRegistry()
	if cfg.SchemaFile != "" {
		if err := schemas.LoadFile(cfg.SchemaFile); err != nil {
			log.Error("failed to load schema file", zap.String("path", cfg.SchemaFile), zap.Error(err))
			return err
		}
		log.Info("schema overrides loaded", zap.String("path", cfg.SchemaFile))
	}

	registry := adapters.NewRegistry(
		adapters.WithTimeout(cfg.ToolTimeout),
		adapters.WithOnAfterInvoke(func(_ context.Context, tool string, err error, d time.Duration) {
			if err != nil {
				log.Warn("adapter call failed", zap.String("tool", tool), zap.Duration("duration", d), zap.Error(err))
				return
			}
			log.Debug("adapter call finished", zap.String("tool", tool), zap.Duration("duration", d))
		}),
	)
	registry.Register(adapters.NewNoteMaker())
	registry.Register(adapters.NewFlashcardGenerator())
	registry.Register(adapters.NewConceptExplainer())

	engine := tutorsy.NewEngine(store, registry,
		tutorsy.WithSchemaRegistry(schemas),
		tutorsy.WithLogger(log),
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpapi.New(engine, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := registry.Shutdown(shutdownCtx); err != nil {
			log.Warn("adapter registry shutdown incomplete", zap.Error(err))
		}
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited with error", zap.Error(err))
		return err
	}
	log.Info("server stopped")
	return nil
}

func newLogger(mode string) (*zap.Logger, error) {
	switch mode {
	case "prod", "production":
		return zap.NewProduction()
	default:
		return zap.NewDevelopment()
	}
}
