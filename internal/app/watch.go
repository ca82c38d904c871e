package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tcpview/tcpview/internal/config"
	"github.com/tcpview/tcpview/internal/logging"
	"github.com/tcpview/tcpview/internal/output"
	"github.com/tcpview/tcpview/internal/pipeline"
	"github.com/tcpview/tcpview/internal/schedule"
)

func newWatchCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Poll continuously and print connections as they appear, change or go away",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.New("watch", cfg.Verbose)
			w := cmd.OutOrStdout()

			c := pipeline.NewCollector(newSession(*cfg, newBuilder(*cfg)), schedule.TimeScheduler{}, cfg.RefreshInterval, cfg.PurgeAfter, log)
			first := true
			c.Notify = func(set pipeline.DisplaySet) {
				if first {
					first = false
					log.Infoln("watching", set.Counts.Total, "sockets every", cfg.RefreshInterval)
					return
				}
				output.PrintChanges(w, set.Rows)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, c)
		},
	}
}

// run drives c until ctx is cancelled.
func run(ctx context.Context, c *pipeline.Collector) error {
	c.Start(ctx)
	<-ctx.Done()
	c.Stop()
	return nil
}
