package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/HerbHall/chatgate/internal/chat"
	"github.com/HerbHall/chatgate/internal/server"
	"github.com/HerbHall/chatgate/internal/version"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func newServeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return c.serve(ctx)
		},
	}
}

func (c *cli) serve(ctx context.Context) error {
	rt, err := c.load()
	if err != nil {
		return err
	}
	logger := rt.logger
	defer func() { _ = logger.Sync() }()

	logger.Info("chatgate server starting", zap.String("version", version.Short()))
	if f := rt.v.ConfigFileUsed(); f != "" {
		logger.Info("configuration loaded",
			zap.String("component", "config"),
			zap.String("source", f),
		)
	} else {
		logger.Warn("no configuration file found, using defaults",
			zap.String("component", "config"),
		)
	}
	logger.Info("secrets resolved", rt.secrets.LogFields()...)

	gw, err := rt.newGateway(prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}
	admin, err := rt.adminMiddleware()
	if err != nil {
		return err
	}

	handler := chat.NewHandler(gw, logger.Named("handler"), admin)
	srv := server.New(rt.settings.Server, logger.Named("server"), gw.Ready, handler)

	logger.Info("chat gateway ready",
		zap.Strings("candidates", gw.Config().Candidates()),
		zap.Bool("admin_routes", admin != nil),
	)

	return runServer(ctx, srv, rt.settings.Server, logger)
}

// runServer serves until ctx is cancelled or the listener fails, then shuts
// down within the configured grace period.
func runServer(ctx context.Context, srv *server.Server, cfg server.Config, logger *zap.Logger) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("chatgate stopped")
	return nil
}
