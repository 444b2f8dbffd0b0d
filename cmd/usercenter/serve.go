// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 UserCenter Contributors

package main

import (
	"context"
	"log/slog"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/codeplanet/usercenter/internal/account"
	accountpg "github.com/codeplanet/usercenter/internal/account/postgres"
	"github.com/codeplanet/usercenter/internal/config"
	"github.com/codeplanet/usercenter/internal/logging"
	"github.com/codeplanet/usercenter/internal/observability"
	"github.com/codeplanet/usercenter/internal/session"
	"github.com/codeplanet/usercenter/internal/store"
	"github.com/codeplanet/usercenter/internal/web"
)

const shutdownTimeout = 15 * time.Second

type serveConfig struct {
	configFile string
}

// newServeCmd creates the serve subcommand.
func newServeCmd() *cobra.Command {
	cfg := &serveConfig{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the account service",
		Long:  `Start the HTTP API and observability servers.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.configFile, "config", "", "config file path")
	cmd.Flags().String("server.listen", "", "API listen address")
	cmd.Flags().String("observability.listen", "", "metrics/health listen address")
	cmd.Flags().String("database.url", "", "PostgreSQL connection URL")

	return cmd
}

func runServe(cmd *cobra.Command, sc *serveConfig) error {
	cfg, err := config.Load(sc.configFile, cmd.Flags())
	if err != nil {
		return err
	}
	if cfg.Database.URL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database.url must be set")
	}

	logging.SetDefault("usercenter", cmd.Root().Version, cfg.Log.Format, cfg.Log.Level)
	logger := slog.Default()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := store.ConnectWithLogger(ctx, cfg.Database.URL, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	hasher, err := account.NewHasher(cfg.Auth.Hasher, cfg.Auth.Salt)
	if err != nil {
		return err
	}

	accounts := accountpg.NewAccountRepository(pool)
	gate := account.NewGate(cfg.Auth.AdminRole, cfg.Auth.LoginStateKey)
	svc, err := account.NewServiceWithLogger(accounts, hasher, gate, cfg.Auth.LoginStateKey, logger)
	if err != nil {
		return err
	}

	sessions, err := session.NewStoreWithLogger(session.NewPostgresRepository(pool), cfg.Session.TTL, logger)
	if err != nil {
		return err
	}

	var ready atomic.Bool
	obsServer := observability.NewServer(cfg.Observability.Listen, ready.Load)
	obsErrCh, err := obsServer.Start()
	if err != nil {
		return err
	}

	webServer, err := web.NewServer(web.Config{
		Addr:          cfg.Server.Listen,
		LoginStateKey: cfg.Auth.LoginStateKey,
		AdminRole:     cfg.Auth.AdminRole,
		SessionTTL:    cfg.Session.TTL,
	}, svc, sessions, obsServer.Metrics(), logger)
	if err != nil {
		return err
	}

	webErrCh, err := webServer.Start()
	if err != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = obsServer.Stop(shutdownCtx)
		return err
	}

	ready.Store(true)

	// Periodic removal of expired sessions.
	go sweepSessions(ctx, sessions, obsServer.Metrics(), cfg.Session.SweepInterval, logger)

	logger.Info("usercenter started",
		"api_addr", webServer.Addr(),
		"observability_addr", obsServer.Addr())

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err = <-webErrCh:
		logger.Error("web server failed", "error", err)
	case err = <-obsErrCh:
		logger.Error("observability server failed", "error", err)
	}

	ready.Store(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if stopErr := webServer.Stop(shutdownCtx); stopErr != nil {
		logger.Error("web server shutdown failed", "error", stopErr)
	}
	if stopErr := obsServer.Stop(shutdownCtx); stopErr != nil {
		logger.Error("observability server shutdown failed", "error", stopErr)
	}

	return err
}

func sweepSessions(ctx context.Context, sessions *session.Store, metrics *observability.Metrics, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := sessions.Sweep(ctx)
			if err != nil {
				logger.Warn("session sweep failed", "error", err)
				continue
			}
			if n > 0 {
				logger.Info("expired sessions removed", "count", n)
				if metrics != nil {
					metrics.SessionsSweptTotal.Add(float64(n))
				}
			}
		}
	}
}
