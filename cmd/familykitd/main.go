// Command familykitd serves the family task permission engine over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/fernandezvara/dbkit"
	"github.com/fernandezvara/familykit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/pflag"
)

const serviceName = "familykitd"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var configFile, envFile string

	flagSet := pflag.NewFlagSet(serviceName, pflag.ContinueOnError)
	flagSet.StringVarP(&configFile, "config", "c", "", "path to a YAML config file")
	flagSet.StringVar(&envFile, "env-file", ".env", "path to a .env file (ignored when missing)")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := LoadConfig(configFile, envFile)
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Log, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := dbkit.New(dbkit.Config{URL: cfg.Database.URL})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := familykit.ConfigurePool(db, cfg.Database.Pool, logger); err != nil {
		return err
	}

	if cfg.Database.Migrate {
		result, err := db.Migrate(ctx, familykit.Migrations())
		if err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		for _, migration := range result.Applied {
			logger.Info().Str("migration", migration.ID).Msg("applied migration")
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	guard := familykit.Initialize(nil,
		familykit.WithLogger(logger.With().Str("component", "checker").Logger()),
		familykit.WithMetrics(familykit.NewMetrics(registry)),
	)
	repos := familykit.TableRepositories(db.Bun())
	for rt, repo := range repos {
		guard.RegisterRepository(rt, repo)
	}

	srv := &server{
		guard:    guard,
		db:       db.Bun(),
		repos:    repos,
		health:   familykit.NewHealthService(db),
		gatherer: registry,
		logger:   logger.With().Str("component", "http").Logger(),
		cfg:      cfg.HTTP,
		metrics:  cfg.Metrics,
	}

	httpServer := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      srv.routes(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.HTTP.Addr).Msg("http server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}
	return nil
}
