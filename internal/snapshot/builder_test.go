//go:build !windows

package snapshot

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/tcpview/tcpview/internal/source"
	"github.com/tcpview/tcpview/pkg/model"
	"golang.org/x/sys/unix"
)

type fakeHosts struct {
	names map[string]string
	asked [][]string
}

func (f *fakeHosts) ResolveAll(_ context.Context, ips []string) map[string]string {
	f.asked = append(f.asked, ips)
	out := make(map[string]string)
	for _, ip := range ips {
		if name, ok := f.names[ip]; ok {
			out[ip] = name
		}
	}
	return out
}

type countingNames struct {
	calls   map[int]int
	results map[int]model.ProcessLookup
}

func (c *countingNames) ProcessName(pid int) model.ProcessLookup {
	c.calls[pid]++
	if r, ok := c.results[pid]; ok {
		return r
	}
	return model.NotFound
}

// tableNames lists processes in bulk; err makes the listing fail so the
// builder falls back to per-pid lookups.
type tableNames struct {
	countingNames
	table map[int]string
	err   error
}

func (t *tableNames) ProcessNames(context.Context) (map[int]string, error) {
	return t.table, t.err
}

func rawConns() []model.RawConnection {
	return []model.RawConnection{
		{Local: &model.Addr{IP: "0.0.0.0", Port: 22}, PID: 10, Status: "LISTEN", Family: unix.AF_INET, Type: unix.SOCK_STREAM},
		{Local: nil, PID: 10, Status: "LISTEN", Family: unix.AF_INET, Type: unix.SOCK_STREAM},
		{Local: &model.Addr{IP: "192.168.1.10", Port: 50000}, Remote: &model.Addr{IP: "142.250.74.14", Port: 443}, PID: 20, Status: "ESTABLISHED", Family: unix.AF_INET, Type: unix.SOCK_STREAM},
		{Local: &model.Addr{IP: "::", Port: 5353}, PID: 0, Status: "NONE", Family: unix.AF_INET6, Type: unix.SOCK_DGRAM},
		{Local: &model.Addr{IP: "", Port: 1}, PID: 30},
		{Local: &model.Addr{IP: "10.0.0.1", Port: 9}, PID: 99, Family: 4242, Type: 77},
	}
}

func TestFromRaw(t *testing.T) {
	hosts := &fakeHosts{names: map[string]string{"142.250.74.14": "fra24s06-in-f14.1e100.net"}}
	b := &Builder{
		Names: source.Static{Names: map[int]string{10: "sshd", 20: "chrome"}},
		Hosts: hosts,
	}

	got := b.FromRaw(context.Background(), rawConns())
	want := []model.ConnectionRow{
		{ProcessName: "sshd", PID: 10, LocalIP: "0.0.0.0", LocalPort: 22, Status: "LISTEN", Family: "AF_INET", Type: "SOCK_STREAM"},
		{ProcessName: "chrome", PID: 20, LocalIP: "192.168.1.10", LocalPort: 50000, RemoteIP: "142.250.74.14", RemotePort: 443, Hostname: "fra24s06-in-f14.1e100.net", Status: "ESTABLISHED", Family: "AF_INET", Type: "SOCK_STREAM"},
		{LocalIP: "::", LocalPort: 5353, Status: "-", Family: "AF_INET6", Type: "SOCK_DGRAM"},
		{PID: 99, LocalIP: "10.0.0.1", LocalPort: 9, Status: "-", Family: "4242", Type: "77"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("FromRaw =\n%+v\nwant\n%+v", got, want)
	}
	if len(hosts.asked) != 1 || !reflect.DeepEqual(hosts.asked[0], []string{"142.250.74.14"}) {
		t.Fatalf("resolver asked %v, want one batch with the remote ip", hosts.asked)
	}
}

func TestFromRawDropsRecordsWithoutLocalAddress(t *testing.T) {
	b := &Builder{}
	raws := []model.RawConnection{
		{Remote: &model.Addr{IP: "1.1.1.1", Port: 53}},
		{Local: &model.Addr{}},
	}
	if got := b.FromRaw(context.Background(), raws); len(got) != 0 {
		t.Fatalf("FromRaw kept %d rows without a local address", len(got))
	}
}

func TestFromRawIsDeterministic(t *testing.T) {
	b := &Builder{
		Names: source.Static{Names: map[int]string{10: "sshd", 20: "chrome"}},
		Hosts: &fakeHosts{names: map[string]string{"142.250.74.14": "example"}},
	}
	first := b.FromRaw(context.Background(), rawConns())
	second := b.FromRaw(context.Background(), rawConns())
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("two builds differ:\n%+v\n%+v", first, second)
	}
}

func TestProcessLookupOutcomes(t *testing.T) {
	names := &countingNames{
		calls: map[int]int{},
		results: map[int]model.ProcessLookup{
			1: model.Found("init"),
			2: model.Denied,
		},
	}
	b := &Builder{Names: names}
	raws := []model.RawConnection{
		{Local: &model.Addr{IP: "0.0.0.0", Port: 1}, PID: 1},
		{Local: &model.Addr{IP: "0.0.0.0", Port: 2}, PID: 1},
		{Local: &model.Addr{IP: "0.0.0.0", Port: 3}, PID: 2},
		{Local: &model.Addr{IP: "0.0.0.0", Port: 4}, PID: 3},
	}
	rows := b.FromRaw(context.Background(), raws)
	for i, want := range []string{"init", "init", "", ""} {
		if rows[i].ProcessName != want {
			t.Fatalf("row %d name = %q, want %q", i, rows[i].ProcessName, want)
		}
	}
	if names.calls[1] != 1 {
		t.Fatalf("pid 1 looked up %d times, want 1", names.calls[1])
	}
}

func TestProcessTable(t *testing.T) {
	raws := []model.RawConnection{
		{Local: &model.Addr{IP: "0.0.0.0", Port: 1}, PID: 1},
		{Local: &model.Addr{IP: "0.0.0.0", Port: 2}, PID: 2},
	}

	t.Run("bulk", func(t *testing.T) {
		names := &tableNames{
			countingNames: countingNames{calls: map[int]int{}, results: map[int]model.ProcessLookup{2: model.Found("late")}},
			table:         map[int]string{1: "init"},
		}
		rows := (&Builder{Names: names}).FromRaw(context.Background(), raws)
		if rows[0].ProcessName != "init" || rows[1].ProcessName != "" {
			t.Fatalf("names = %q, %q, want init and empty", rows[0].ProcessName, rows[1].ProcessName)
		}
		if len(names.calls) != 0 {
			t.Fatalf("per-pid lookups made: %v", names.calls)
		}
	})

	t.Run("fallback", func(t *testing.T) {
		names := &tableNames{
			countingNames: countingNames{calls: map[int]int{}, results: map[int]model.ProcessLookup{2: model.Found("late")}},
			err:           errors.New("ps failed"),
		}
		rows := (&Builder{Names: names}).FromRaw(context.Background(), raws)
		if rows[1].ProcessName != "late" || names.calls[1] != 1 || names.calls[2] != 1 {
			t.Fatalf("fallback rows = %+v, calls = %v", rows, names.calls)
		}
	})
}

func TestBuildSourceFailure(t *testing.T) {
	b := &Builder{Source: source.Static{Err: errors.New("permission denied")}}
	snap := b.Build(context.Background())
	if !errors.Is(snap.Err, ErrSourceUnavailable) {
		t.Fatalf("Build err = %v, want ErrSourceUnavailable", snap.Err)
	}
	if len(snap.Rows) != 1 || snap.Rows[0].ProcessName != "Error" {
		t.Fatalf("Build rows = %+v, want a single error row", snap.Rows)
	}
	if snap.Taken.IsZero() {
		t.Fatalf("Build did not stamp the snapshot")
	}
}

func TestBuild(t *testing.T) {
	b := &Builder{Source: source.Static{Conns: rawConns()}}
	snap := b.Build(context.Background())
	if snap.Err != nil || len(snap.Rows) != 4 {
		t.Fatalf("Build = %+v", snap)
	}
}

func TestNormalizeStatus(t *testing.T) {
	for in, want := range map[string]string{"": "-", "NONE": "-", "none": "-", " None ": "-", "LISTEN": "LISTEN", "-": "-"} {
		if got := NormalizeStatus(in); got != want {
			t.Fatalf("NormalizeStatus(%q) = %q, want %q", in, got, want)
		}
	}
}
