package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/orbitdesk/portal/internal/audit"
	"github.com/orbitdesk/portal/internal/config"
	"github.com/orbitdesk/portal/internal/erp"
	internalhttp "github.com/orbitdesk/portal/internal/http"
	"github.com/orbitdesk/portal/internal/notify"
	"github.com/orbitdesk/portal/internal/registry"
	"github.com/orbitdesk/portal/internal/service"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("api exited with error")
	}
}

func run() error {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx := context.Background()

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("redis parse: %w", err)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	directory, err := erp.New(erp.Config{
		BaseURL:   cfg.ERP.BaseURL,
		APIKey:    cfg.ERP.APIKey,
		APISecret: cfg.ERP.APISecret,
	})
	if err != nil {
		return fmt.Errorf("erp: %w", err)
	}

	var subscribers service.SubscriberSync
	if cfg.Notify.Enabled() {
		client, err := notify.New(notify.Config{
			BaseURL:   cfg.Notify.BaseURL,
			AppID:     cfg.Notify.AppID,
			APIKey:    cfg.Notify.APIKey,
			FCMAuthID: cfg.Notify.FCMAuthID,
		})
		if err != nil {
			return fmt.Errorf("notify: %w", err)
		}
		subscribers = client
	} else {
		log.Warn().Msg("notification service not configured, subscriber sync disabled")
	}

	var auditor service.AuditRecorder
	if cfg.DBDSN != "" {
		pool, err := pgxpool.New(ctx, cfg.DBDSN)
		if err != nil {
			return fmt.Errorf("db: %w", err)
		}
		defer pool.Close()
		auditor = audit.NewRepository(pool)
	}

	cachedDirectory := service.NewCachedDirectory(directory, redisClient, time.Minute)
	resolver := service.NewResolver(cachedDirectory, subscribers, auditor, cfg.OrgEmailDomain, cfg.CountryCallingCode)

	components, err := registry.NewTable(registry.Catalog())
	if err != nil {
		return fmt.Errorf("registry: %w", err)
	}

	handler := internalhttp.NewRouter(cfg, resolver, components)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Msgf("API listening on :%d", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("shutting down...")
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
