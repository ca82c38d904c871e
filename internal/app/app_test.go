package app

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/tcpview/tcpview/internal/config"
	"github.com/tcpview/tcpview/internal/snapshot"
	"github.com/tcpview/tcpview/internal/source"
	"github.com/tcpview/tcpview/pkg/model"
)

func TestVersionCommand(t *testing.T) {
	SetVersionBuildCommitString("v1.2.3", "abc123", "2026-01-02")
	t.Cleanup(func() { SetVersionBuildCommitString("", "", "") })

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	if err := root.Execute(); err != nil {
		t.Fatalf("version: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "tcpview v1.2.3 (abc123, 2026-01-02)" {
		t.Fatalf("version output = %q", got)
	}
}

func TestInvalidEnvironmentFailsCommands(t *testing.T) {
	t.Setenv("TCPVIEW_REFRESH", "often")
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"version"})
	if err := root.Execute(); err == nil || !strings.Contains(err.Error(), "TCPVIEW_REFRESH") {
		t.Fatalf("Execute = %v, want an environment error", err)
	}
}

func TestInvalidSortFlag(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"version", "--sort", "latency"})
	if err := root.Execute(); err == nil || !strings.Contains(err.Error(), "unknown sort column") {
		t.Fatalf("Execute = %v, want a sort column error", err)
	}
}

func staticBuilder() *snapshot.Builder {
	src := source.Static{
		Conns: []model.RawConnection{
			{Local: &model.Addr{IP: "0.0.0.0", Port: 22}, PID: 10, Status: "LISTEN"},
			{Local: &model.Addr{IP: "127.0.0.1", Port: 5432}, PID: 20, Status: "LISTEN"},
		},
		Names: map[int]string{10: "sshd", 20: "postgres"},
	}
	return &snapshot.Builder{Source: src, Names: src}
}

func TestPrintSet(t *testing.T) {
	tests := map[string]struct {
		cfg  func(*config.Config)
		want []string
	}{
		"table": {cfg: func(c *config.Config) {}, want: []string{"Process", "postgres", "2 shown"}},
		"json":  {cfg: func(c *config.Config) { c.JSON = true }, want: []string{`"process_name": "sshd"`, `"class": "unchanged"`}},
		"tree":  {cfg: func(c *config.Config) { c.Tree = true }, want: []string{"sshd (pid 10)", "└─"}},
		"filter": {
			cfg:  func(c *config.Config) { c.Filter = "name:postgres"; c.JSON = true },
			want: []string{`"filter": "name:postgres"`, "5432"},
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := config.Default()
			cfg.NoColor = true
			tt.cfg(&cfg)

			s := newSession(cfg, staticBuilder())
			s.Refresh(context.Background())

			var out bytes.Buffer
			cmd := &cobra.Command{}
			cmd.SetOut(&out)
			if err := printSet(cmd, cfg, s.View()); err != nil {
				t.Fatalf("printSet: %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(out.String(), want) {
					t.Fatalf("output missing %q:\n%s", want, out.String())
				}
			}
		})
	}
}
