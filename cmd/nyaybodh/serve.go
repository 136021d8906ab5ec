package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	chiTransport "github.com/nyaybodh/nyaybodh/internal/transport/chi"
	"github.com/nyaybodh/nyaybodh/internal/version"
)

// ServeCommand creates the serve command.
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP search gateway",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "port",
				Usage: "Listen port (overrides http.port)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a, err := newApp(ctx, cmd, appOptions{verbose: true})
			if err != nil {
				return err
			}
			defer a.Close()
			if p := cmd.Int("port"); p > 0 {
				a.cfg.HTTP.Port = int(p)
			}
			return serve(ctx, a)
		},
	}
}

func serve(ctx context.Context, a *app) error {
	cfg, logger := a.cfg, a.logger

	logger.Info("Starting nyaybodh gateway",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", a.env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("api", cfg.API.BaseURL),
		zap.String("cache_driver", cfg.Cache.Driver),
	)

	server := chiTransport.NewServer(a.search, a.cases, a.health, logger)
	handler := chiTransport.NewRouter(server, chiTransport.AuthConfig{
		APIKeys:     cfg.Auth.APIKeys,
		PublicPaths: cfg.Auth.PublicPaths,
	}, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("Server stopped gracefully")
	return nil
}
