package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/tcpview/tcpview/internal/config"
	"github.com/tcpview/tcpview/internal/logging"
	"github.com/tcpview/tcpview/internal/pipeline"
	"github.com/tcpview/tcpview/internal/schedule"
	"github.com/tcpview/tcpview/internal/server"
)

func newServeCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the connection view as a read-only JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.New("serve", cfg.Verbose)

			c := pipeline.NewCollector(newSession(*cfg, newBuilder(*cfg)), schedule.TimeScheduler{}, cfg.RefreshInterval, cfg.PurgeAfter, logging.New("collector", cfg.Verbose))
			h := server.NewHandler(c, cfg.Filter, cfg.Sort())

			srv := &http.Server{
				Addr:              cfg.ListenAddr,
				Handler:           h.Router(),
				ReadHeaderTimeout: 5 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			c.Start(ctx)
			defer c.Stop()

			errc := make(chan error, 1)
			go func() {
				log.Infoln("HTTP listening on", srv.Addr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errc <- err
				}
				close(errc)
			}()

			select {
			case err := <-errc:
				if err != nil {
					return fmt.Errorf("listen %s: %w", srv.Addr, err)
				}
				return nil
			case <-ctx.Done():
			}

			log.Infoln("shutting down")
			ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(ctxShutdown)
		},
	}
	cmd.Flags().StringVarP(&cfg.ListenAddr, "listen", "l", cfg.ListenAddr, "address to serve the API on")
	return cmd
}
