package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"devicemap/internal/handler"
	"devicemap/internal/hub"
	"devicemap/internal/observability"
)

func newServeCmd() *cobra.Command {
	var (
		addr     string
		dbPath   string
		assetDir string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := stateFrom(cmd.Context())
			cfg := s.cfg
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("db") {
				cfg.Database.Path = dbPath
			}
			if cmd.Flags().Changed("assets") {
				cfg.Assets.Dir = assetDir
			}

			ln, err := net.Listen("tcp", cfg.Server.Addr)
			if err != nil {
				return fmt.Errorf("listen %s: %w", cfg.Server.Addr, err)
			}
			return serve(cmd.Context(), s, ln)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (overrides config)")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (overrides config)")
	cmd.Flags().StringVar(&assetDir, "assets", "", "image directory (overrides config)")

	return cmd
}

// serve runs the server on ln until ctx is cancelled
func serve(ctx context.Context, s *state, ln net.Listener) error {
	cfg, logger := s.cfg, s.logger

	logger.Info("starting devicemap",
		zap.String("version", version),
		zap.String("config", s.cfgPath),
		zap.String("settings", cfg.Summary()))

	shutdownTracing, err := observability.InitTracing(ctx, cfg.Tracing, os.Stdout, logger)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdownTracing, logger)

	a, err := openApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()
	logger.Info("database opened", zap.String("path", cfg.Database.Path))

	if err := a.assets.Prepare(); err != nil {
		return err
	}
	logger.Info("asset directory ready", zap.String("dir", a.assets.Dir()))

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sseHub := hub.New(logger)
	go sseHub.Run(runCtx)
	go sseHub.Relay(runCtx, a.events)

	router := handler.NewRouter(handler.RouterOptions{
		Handler:      handler.New(a.svc, cfg.Server.MaxUploadBytes, logger),
		Assets:       a.assets,
		Events:       sseHub,
		Metrics:      a.metrics,
		Logger:       logger,
		Username:     cfg.Server.Auth.Username,
		PasswordHash: cfg.Server.Auth.PasswordHash,
		CORSOrigins:  cfg.Server.CORSOrigins,
	})

	server := &http.Server{
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout.Duration(),
		ReadHeaderTimeout: cfg.Server.ReadTimeout.Duration(),
		// No write timeout: /events streams indefinitely
		BaseContext: func(net.Listener) context.Context { return runCtx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", ln.Addr().String()))
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	// Ends SSE streams so Shutdown does not wait on them
	cancel()

	shutdownCtx, stop := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration())
	defer stop()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server shutdown error", zap.Error(err))
	}

	logger.Info("server stopped")
	return nil
}
