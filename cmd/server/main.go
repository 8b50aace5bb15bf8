package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"skill-intake/internal/app"
	"skill-intake/internal/config"
	"skill-intake/internal/database/migration"
	"skill-intake/internal/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	startupTimeout  = 15 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	serve := newServeCmd()

	root := &cobra.Command{
		Use:           "skill-intake",
		Short:         "User skill intake service",
		Long:          "Accepts user skill submissions, reconciles them by email and serves the stored profiles.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}
	root.AddCommand(serve, newMigrateCmd(), newSeedCmd())
	return root
}

// appEnv bundles what every subcommand needs before doing its work.
type appEnv struct {
	cfg    config.Config
	logger *zap.Logger
}

func loadAppEnv() (appEnv, error) {
	cfg, err := config.Load()
	if err != nil {
		return appEnv{}, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return appEnv{}, fmt.Errorf("init logger: %w", err)
	}
	log = log.With(zap.String("app", cfg.App.AppName), zap.String("env", cfg.App.Environment))
	return appEnv{cfg: cfg, logger: log}, nil
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Apply migrations and start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := loadAppEnv()
			if err != nil {
				return err
			}
			defer func() { _ = rt.logger.Sync() }()
			return serve(cmd.Context(), rt)
		},
	}
}

func serve(parent context.Context, rt appEnv) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr, err := app.ListenAddr(rt.cfg.App.HTTPPort)
	if err != nil {
		return fmt.Errorf("invalid HTTP port: %w", err)
	}

	startCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	container, err := app.NewContainer(startCtx, rt.cfg, rt.logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := container.Close(); err != nil {
			rt.logger.Warn("cleanup error", zap.Error(err))
		}
	}()

	if err := (migration.Runner{Logger: rt.logger.Named("migration")}).Run(startCtx, container.DB.SQLDB()); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	go container.Hub.Run(ctx)

	server := app.New(rt.cfg, rt.logger, container.Registrars()...)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Fiber.Listen(addr)
	}()
	rt.logger.Info("http server listening", zap.String("addr", addr))

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	rt.logger.Info("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := server.Fiber.ShutdownWithContext(shutdownCtx); err != nil {
		rt.logger.Warn("shutdown error", zap.Error(err))
	}
	return nil
}
