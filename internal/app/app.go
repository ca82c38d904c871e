// Package app wires configuration, the snapshot pipeline and the front ends
// into the tcpview command line.
package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tcpview/tcpview/internal/config"
	"github.com/tcpview/tcpview/internal/resolve"
	"github.com/tcpview/tcpview/internal/snapshot"
	"github.com/tcpview/tcpview/internal/source"
	"github.com/tcpview/tcpview/internal/tui"
)

var (
	version   = ""
	commit    = ""
	buildDate = ""
)

// SetVersionBuildCommitString records the values injected at build time.
func SetVersionBuildCommitString(v, c, d string) {
	version = v
	commit = c
	buildDate = d
}

func versionString() string {
	v := version
	if v == "" {
		v = "dev"
	}
	if commit != "" {
		v += " (" + commit
		if buildDate != "" {
			v += ", " + buildDate
		}
		v += ")"
	}
	return v
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := config.Default()
	cfg, envErr := config.FromEnv(cfg)

	root := &cobra.Command{
		Use:          "tcpview",
		Short:        "Live view of TCP and UDP sockets and the processes that own them",
		Version:      versionString(),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if envErr != nil {
				return fmt.Errorf("environment: %w", envErr)
			}
			return cfg.Validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return tui.Start(tui.Options{
				Source:      newBuilder(cfg),
				Interval:    cfg.RefreshInterval,
				PurgeAfter:  cfg.PurgeAfter,
				AutoRefresh: cfg.AutoRefresh,
				Filter:      cfg.Filter,
				Sort:        cfg.Sort(),
				Version:     version,
			})
		},
	}
	cfg.BindFlags(root.PersistentFlags())

	root.AddCommand(
		newListCmd(&cfg),
		newWatchCmd(&cfg),
		newServeCmd(&cfg),
		newVersionCmd(),
	)
	return root
}

// newBuilder assembles the snapshot builder for this host.
func newBuilder(cfg config.Config) *snapshot.Builder {
	b := &snapshot.Builder{Source: source.OS{}, Names: source.OS{}}
	if cfg.Resolve {
		b.Hosts = resolve.New(cfg.ResolverOptions()...)
	}
	return b
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "tcpview", versionString())
		},
	}
}
