package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/trustlens/trustlens/internal/app"
	"github.com/trustlens/trustlens/internal/logging"
	"github.com/trustlens/trustlens/internal/server"
)

func (r *root) newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and WebSocket API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := r.loadConfig()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, r.newLogger(cfg))
		},
	}
	cmd.Flags().String("listen", "", "listen address (default :8080)")
	_ = r.v.BindPFlag(joinKey("server", "listen_addr"), cmd.Flags().Lookup("listen"))
	return cmd
}

// serve blocks until ctx is done or the listener fails, then shuts down
// gracefully within cfg.Server.ShutdownTimeout.
func serve(ctx context.Context, cfg *app.Config, logger logging.Logger) error {
	svc, err := app.Open(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open service: %w", err)
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Warn("closing service", logging.Err(err))
		}
	}()

	srv, err := server.NewServer(server.ConfigFromApp(cfg.Server, logger), svc)
	if err != nil {
		return err
	}
	httpSrv := srv.HTTPServer()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", logging.F("addr", httpSrv.Addr))
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
