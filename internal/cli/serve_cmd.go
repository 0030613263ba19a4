package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	v1 "github.com/linapoint/resortagents/internal/api/rest/v1"
	"github.com/linapoint/resortagents/internal/config"
	"github.com/linapoint/resortagents/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(rt *Runtime) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := rt.Config
			if port != "" {
				cfg.Server.Port = port
			}

			router := v1.NewRouter(cfg.Server, rt.App.APIServices(), v1.OptionsFromConfig(cfg), rt.Log)
			srv := &http.Server{
				Addr:              ":" + cfg.Server.Port,
				Handler:           router,
				ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
			}

			if config.Watch(rt.Viper, func(c *config.Config) {
				logger.SetLevel(c.Logger.LogLevel)
				rt.Log.Info("config reloaded", zap.String("log_level", c.Logger.LogLevel))
			}, func(err error) {
				rt.Log.Warn("ignoring invalid config change", zap.Error(err))
			}) {
				rt.Log.Debug("watching config", zap.String("file", rt.Viper.ConfigFileUsed()))
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, srv, cfg.Server.ShutdownTimeout, rt.Log)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "Listen port (overrides config)")
	return cmd
}

// runServer serves until ctx is done, then drains in-flight requests for at
// most shutdownTimeout.
func runServer(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration, log logger.Logger) error {
	serverErrors := make(chan error, 1)
	go func() {
		log.Info("starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- fmt.Errorf("server failed to start: %w", err)
		}
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		log.Info("shutting down server")
	}

	if shutdownTimeout <= 0 {
		shutdownTimeout = 15 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info("server exited")
	return nil
}
