package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/edvin/provisioner/internal/api"
	mw "github.com/edvin/provisioner/internal/api/middleware"
	"github.com/edvin/provisioner/internal/config"
	"github.com/edvin/provisioner/internal/core"
	"github.com/edvin/provisioner/internal/db"
	"github.com/edvin/provisioner/internal/frappe"
	"github.com/edvin/provisioner/internal/logging"
	"github.com/edvin/provisioner/internal/metrics"
	"github.com/edvin/provisioner/internal/runner"
)

func main() {
	migrateFlag := flag.Bool("migrate", false, "Run audit database migrations before starting")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg)
	if err := run(cfg, logger, *migrateFlag); err != nil {
		logger.Error().Err(err).Msg("provisioner exited")
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger zerolog.Logger, migrate bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	r, err := runner.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("create command runner: %w", err)
	}
	defer r.Close()

	scripts := frappe.NewExecutor(r, cfg.BenchPath, cfg.Timeouts, logger)
	svc := core.NewProvisionService(
		frappe.NewBench(r, cfg),
		frappe.NewDirectory(scripts, cfg.MasterSite),
		frappe.NewTenantSite(scripts),
		core.OptionsFromConfig(cfg),
		logger,
	)

	var auditLogger *mw.AuditLogger
	if cfg.DatabaseURL != "" {
		if migrate {
			logger.Info().Msg("running audit database migrations")
			if err := db.RunMigrations(cfg.DatabaseURL); err != nil {
				return err
			}
		}
		pool, err := db.NewAuditPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()
		metrics.RegisterAuditPoolMetrics(prometheus.DefaultRegisterer, pool)
		auditLogger = mw.NewAuditLogger(pool, logger)
		defer auditLogger.Close()
		logger.Info().Msg("audit log enabled")
	}

	srv := api.NewServer(logger, svc, cfg, auditLogger)

	httpServer := &http.Server{
		Addr:              cfg.HTTPListenAddr,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      config.ServerWriteTimeout,
		IdleTimeout:       60 * time.Second,
	}
	servers := []*http.Server{httpServer}
	if cfg.MetricsListenAddr != "" {
		servers = append(servers, metrics.NewServer(cfg.MetricsListenAddr))
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, s := range servers {
		g.Go(func() error {
			logger.Info().Str("addr", s.Addr).Msg("listening")
			if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve %s: %w", s.Addr, err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		for _, s := range servers {
			if err := s.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Str("addr", s.Addr).Msg("shutdown error")
			}
		}
		return nil
	})

	return g.Wait()
}
