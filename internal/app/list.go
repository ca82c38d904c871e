package app

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tcpview/tcpview/internal/config"
	"github.com/tcpview/tcpview/internal/output"
	"github.com/tcpview/tcpview/internal/pipeline"
)

func newListCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the current connections once and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session := newSession(*cfg, newBuilder(*cfg))
			session.Refresh(cmd.Context())
			return printSet(cmd, *cfg, session.View())
		},
	}
	cmd.Flags().BoolVar(&cfg.JSON, "json", cfg.JSON, "print JSON")
	cmd.Flags().BoolVarP(&cfg.Tree, "tree", "t", cfg.Tree, "group connections by process")
	return cmd
}

func newSession(cfg config.Config, src pipeline.Snapshotter) *pipeline.Session {
	s := pipeline.NewSession(src)
	s.SetFilter(cfg.Filter)
	s.SetSort(cfg.Sort())
	return s
}

func printSet(cmd *cobra.Command, cfg config.Config, set pipeline.DisplaySet) error {
	w := cmd.OutOrStdout()
	switch {
	case cfg.JSON:
		out, err := output.ToJSON(set)
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		fmt.Fprintln(w, out)
	case cfg.Tree:
		output.PrintTree(w, set.Rows, !cfg.NoColor)
		fmt.Fprintln(w, output.Summary(set))
	default:
		if err := output.RenderTable(w, set, !cfg.NoColor); err != nil {
			return err
		}
	}
	if set.Err != nil {
		return set.Err
	}
	return nil
}
