package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/sameboat/jobsheet/internal/api"
	"github.com/sameboat/jobsheet/internal/api/middleware"
	"github.com/sameboat/jobsheet/internal/api/view"
	"github.com/sameboat/jobsheet/internal/core/ports"
	"github.com/sameboat/jobsheet/internal/core/service"
	"github.com/sameboat/jobsheet/internal/infrastructure/backend"
	"github.com/sameboat/jobsheet/internal/infrastructure/db/memory"
	mongostore "github.com/sameboat/jobsheet/internal/infrastructure/db/mongo"
	redisstore "github.com/sameboat/jobsheet/internal/infrastructure/db/redis"
	"github.com/sameboat/jobsheet/internal/infrastructure/sealer"
	"github.com/sameboat/jobsheet/internal/pkg/config"
	"github.com/sameboat/jobsheet/pkg/logger"
)

const janitorInterval = time.Minute

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "jobsheet",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("jobsheet stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := context.WithCancel(ctx)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	var seal ports.Sealer
	if cfg.Session.Secret != "" {
		box, err := sealer.New(cfg.Session.Secret)
		if err != nil {
			return fmt.Errorf("session sealer: %w", err)
		}
		seal = box
	}

	renderer, err := view.NewRenderer()
	if err != nil {
		return err
	}

	// --- Backend ---
	client := backend.NewClient(cfg.Backend.BaseURL, &http.Client{Timeout: cfg.Backend.Timeout}, logger.Component("backend"))
	authAPI := backend.NewAuth(client)
	jobsAPI := backend.NewJobs(client)

	// --- Services ---
	forms := service.NewFormValidator()
	sessions := service.NewSessionFactory(store, seal, cfg.Session.TTL, logger.Component("session"))
	flashes := service.NewFlashStore(store, cfg.Session.TTL, logger.Component("flash"))
	authService := service.NewAuthService(authAPI, forms, logger.Component("auth_service"))
	jobService := service.NewJobService(jobsAPI, forms, logger.Component("job_service"))

	e := api.NewRouter(api.Deps{
		Sessions:    sessions,
		Flashes:     flashes,
		AuthService: authService,
		JobService:  jobService,
		Forms:       forms,
		Renderer:    renderer,
		Session: middleware.SessionOptions{
			CookieName: cfg.Session.CookieName,
			TTL:        cfg.Session.TTL,
			Secure:     cfg.Session.Secure,
		},
		Logger: log,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("backend", cfg.Backend.BaseURL).
			Str("session_store", cfg.Session.Store).
			Bool("sealed", seal != nil).
			Msg("jobsheet listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// openStore connects the configured session store. The returned func
// releases its connections; the in-memory store is swept until ctx ends.
func openStore(ctx context.Context, cfg *config.Config) (ports.KVStore, func(), error) {
	switch cfg.Session.Store {
	case config.StoreRedis:
		client, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, nil, err
		}
		return redisstore.NewStore(client), func() { _ = client.Close() }, nil

	case config.StoreMongo:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
		})
		if err != nil {
			return nil, nil, err
		}
		store := mongostore.NewStore(db)
		if err := store.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(ctx)
			return nil, nil, err
		}
		return store, func() { _ = client.Disconnect(context.Background()) }, nil
	}
	store := memory.NewStore()
	store.StartJanitor(ctx, janitorInterval, logger.Component("memory_store"))
	return store, func() {}, nil
}
