package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dukerupert/grocerylist/internal/feed"
	"github.com/dukerupert/grocerylist/internal/server"
)

const pruneInterval = 5 * time.Minute

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API and change feed",
		Long: `Serve the grocery list over HTTP.

Routes live under /api, change notifications under /ws, Prometheus metrics
under /metrics. The server stops cleanly on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rootOpts.openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if port == "" {
				port = s.cfg.Port
			}

			srv := server.New(s.db, server.Options{
				Feed:           feed.Config{URL: s.cfg.ImportURL, Timeout: s.cfg.ImportTimeout},
				AutoCategorize: s.cfg.AutoCategorize,
			}, s.logger)

			httpServer := &http.Server{
				Addr:         ":" + port,
				Handler:      srv.Router(),
				ReadTimeout:  5 * time.Second,
				WriteTimeout: 30 * time.Second,
				IdleTimeout:  120 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			go func() {
				ticker := time.NewTicker(pruneInterval)
				defer ticker.Stop()
				for {
					select {
					case <-ctx.Done():
						return
					case <-ticker.C:
						srv.Throttle().Prune()
					}
				}
			}()

			errCh := make(chan error, 1)
			go func() {
				s.logger.Info("grocerylist listening", "addr", "http://localhost:"+port, "db", s.cfg.DBPath)
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return fail(s.out, err)
				}
				return nil
			case <-ctx.Done():
			}

			s.logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				return fail(s.out, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "listen port (overrides port)")

	return cmd
}
