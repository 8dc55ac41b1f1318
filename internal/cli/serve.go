package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bramblewood/orgaccess/internal/config"
	"github.com/bramblewood/orgaccess/internal/di"
	"github.com/bramblewood/orgaccess/internal/server"
	"github.com/bramblewood/orgaccess/internal/version"
)

func cmdServe() *cobra.Command {
	var listenAddr string

	c := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			if listenAddr != "" {
				cfg.ListenAddr = listenAddr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			authorizer, err := di.ProvideAuthorizer(cfg)
			if err != nil {
				return fmt.Errorf("authorizer: %w", err)
			}
			deps, cleanup, err := di.ProvideDeps(ctx, cfg, authorizer)
			if err != nil {
				return fmt.Errorf("stores: %w", err)
			}
			defer cleanup()

			if !authorizer.Healthy(ctx) {
				slog.Warn("relationship store unreachable at startup; checks will deny until it recovers")
			}

			srv := &http.Server{
				Addr:    cfg.ListenAddr,
				Handler: server.BuildRouter(deps, server.Options{EnableCORS: true}),
			}

			errCh := make(chan error, 1)
			go func() {
				slog.Info("listening", "addr", cfg.ListenAddr, "version", version.Version,
					"store", cfg.Store, "fga_backend", cfg.FGA.Backend)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			}
		},
	}

	c.Flags().StringVar(&listenAddr, "listen", "", "listen address (overrides config)")
	return c
}
