package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"comanda/backend/internal/config"
	"comanda/backend/internal/export"
	"comanda/backend/internal/httpapi"
	"comanda/backend/internal/service"
	"comanda/backend/internal/store"
	"comanda/backend/internal/store/memory"
	pgstore "comanda/backend/internal/store/postgres"
	redisstore "comanda/backend/internal/store/redis"
	"comanda/backend/internal/suggestion"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	setupLogger(cfg)
	if err := validateConfig(cfg); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	backend, err := openBackend(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("storage unavailable")
	}
	repo := store.NewRepository(backend)

	svc := service.New(repo, suggestion.NewEngine(suggestion.DefaultLimit), export.NewPDFExporter(cfg.ExportDir))
	api := httpapi.New(svc, cfg.AllowedOrigin)

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Address()).Str("env", cfg.Env).Msg("comanda backend listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
	if err := repo.Close(); err != nil {
		log.Error().Err(err).Msg("close error")
	}

	log.Info().Msg("server stopped")
}

func setupLogger(cfg config.Config) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if !cfg.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

// openBackend picks postgres when DATABASE_URL is set, then redis, then the
// in-memory store. A configured database that cannot be reached is fatal; an
// unreachable redis only degrades to memory.
func openBackend(ctx context.Context, cfg config.Config) (store.Backend, error) {
	if cfg.DatabaseURL != "" {
		pg, err := pgstore.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("postgres unavailable and DATABASE_URL is set; refusing to start with in-memory fallback: %w", err)
		}
		log.Info().Str("backend", "postgres").Msg("storage ready")
		return pg, nil
	}

	if cfg.RedisAddr != "" {
		rdb := redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisKeyPrefix)
		if err := rdb.Ping(ctx); err != nil {
			_ = rdb.Close()
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unavailable, using in-memory storage")
		} else {
			log.Info().Str("backend", "redis").Str("addr", cfg.RedisAddr).Msg("storage ready")
			return rdb, nil
		}
	}

	log.Info().Str("backend", "memory").Bool("seeded", cfg.SeedDemoData).Msg("storage ready")
	if cfg.SeedDemoData {
		return memory.NewSeeded(), nil
	}
	return memory.New(), nil
}

func validateConfig(cfg config.Config) error {
	port, err := strconv.Atoi(cfg.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("PORT must be a number between 1 and 65535, got %q", cfg.Port)
	}
	if strings.TrimSpace(cfg.AllowedOrigin) == "" {
		return fmt.Errorf("ALLOWED_ORIGIN must be set")
	}
	if cfg.IsProduction() && cfg.AllowedOrigin == "*" {
		return fmt.Errorf("ALLOWED_ORIGIN cannot be a wildcard in production")
	}
	if cfg.RedisDB < 0 {
		return fmt.Errorf("REDIS_DB must not be negative")
	}
	if strings.TrimSpace(cfg.ExportDir) == "" {
		return fmt.Errorf("EXPORT_DIR must be set")
	}
	return nil
}
