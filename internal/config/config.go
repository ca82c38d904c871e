// Package config holds the runtime settings shared by every command.
// Values come from Default, then TCPVIEW_* environment variables, then flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/tcpview/tcpview/internal/resolve"
	"github.com/tcpview/tcpview/internal/sorting"
	"github.com/tcpview/tcpview/pkg/model"
)

type Config struct {
	RefreshInterval time.Duration
	PurgeAfter      time.Duration
	AutoRefresh     bool

	Resolve        bool
	ResolveTimeout time.Duration
	ResolveWorkers int
	ResolveRate    int

	Filter   string
	SortKey  string
	SortDesc bool

	ListenAddr string
	JSON       bool
	Tree       bool
	NoColor    bool
	Verbose    bool
}

func Default() Config {
	return Config{
		RefreshInterval: 5 * time.Second,
		PurgeAfter:      5 * time.Second,
		AutoRefresh:     true,
		Resolve:         true,
		ResolveTimeout:  resolve.DefaultTimeout,
		ResolveWorkers:  resolve.DefaultWorkers,
		ResolveRate:     resolve.DefaultRate,
		ListenAddr:      "127.0.0.1:8787",
	}
}

// FromEnv overrides c with any TCPVIEW_* variables set in the environment.
// Malformed values are reported rather than silently ignored.
func FromEnv(c Config) (Config, error) {
	return fromLookup(c, os.LookupEnv)
}

func fromLookup(c Config, lookup func(string) (string, bool)) (Config, error) {
	var errs []error
	duration := func(key string, dst *time.Duration) {
		if v, ok := lookup(key); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(key); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}

	duration("TCPVIEW_REFRESH", &c.RefreshInterval)
	duration("TCPVIEW_PURGE_AFTER", &c.PurgeAfter)
	boolean("TCPVIEW_AUTO_REFRESH", &c.AutoRefresh)
	boolean("TCPVIEW_RESOLVE", &c.Resolve)
	duration("TCPVIEW_RESOLVE_TIMEOUT", &c.ResolveTimeout)
	integer("TCPVIEW_RESOLVE_WORKERS", &c.ResolveWorkers)
	integer("TCPVIEW_RESOLVE_RATE", &c.ResolveRate)
	str("TCPVIEW_FILTER", &c.Filter)
	str("TCPVIEW_SORT", &c.SortKey)
	boolean("TCPVIEW_SORT_DESC", &c.SortDesc)
	str("TCPVIEW_LISTEN", &c.ListenAddr)
	boolean("TCPVIEW_NO_COLOR", &c.NoColor)
	boolean("TCPVIEW_VERBOSE", &c.Verbose)

	return c, errors.Join(errs...)
}

// BindFlags registers the shared flags on fs, using the current values of c
// as defaults.
func (c *Config) BindFlags(fs *pflag.FlagSet) {
	fs.DurationVarP(&c.RefreshInterval, "interval", "i", c.RefreshInterval, "refresh interval")
	fs.DurationVar(&c.PurgeAfter, "purge-after", c.PurgeAfter, "how long change highlighting stays visible")
	fs.BoolVar(&c.AutoRefresh, "auto-refresh", c.AutoRefresh, "refresh automatically")
	fs.BoolVar(&c.Resolve, "resolve", c.Resolve, "resolve remote addresses to hostnames")
	fs.DurationVar(&c.ResolveTimeout, "resolve-timeout", c.ResolveTimeout, "per-lookup reverse DNS timeout")
	fs.IntVar(&c.ResolveWorkers, "resolve-workers", c.ResolveWorkers, "concurrent reverse DNS lookups")
	fs.IntVar(&c.ResolveRate, "resolve-rate", c.ResolveRate, "reverse DNS lookups per second, 0 for unlimited")
	fs.StringVarP(&c.Filter, "filter", "f", c.Filter, "initial filter, e.g. \"status:listen rport:443\"")
	fs.StringVarP(&c.SortKey, "sort", "s", c.SortKey, "sort column: "+columnList())
	fs.BoolVar(&c.SortDesc, "desc", c.SortDesc, "sort descending")
	fs.BoolVar(&c.NoColor, "no-color", c.NoColor, "disable colored output")
	fs.BoolVarP(&c.Verbose, "verbose", "v", c.Verbose, "log debug details")
}

func (c Config) Validate() error {
	var errs []error
	if c.RefreshInterval <= 0 {
		errs = append(errs, fmt.Errorf("refresh interval must be positive, got %v", c.RefreshInterval))
	}
	if c.PurgeAfter <= 0 {
		errs = append(errs, fmt.Errorf("purge-after must be positive, got %v", c.PurgeAfter))
	}
	if c.ResolveTimeout <= 0 {
		errs = append(errs, fmt.Errorf("resolve timeout must be positive, got %v", c.ResolveTimeout))
	}
	if c.ResolveWorkers <= 0 {
		errs = append(errs, fmt.Errorf("resolve workers must be positive, got %d", c.ResolveWorkers))
	}
	if c.ResolveRate < 0 {
		errs = append(errs, fmt.Errorf("resolve rate must not be negative, got %d", c.ResolveRate))
	}
	if c.SortKey != "" {
		if _, ok := sorting.ParseColumn(c.SortKey); !ok {
			errs = append(errs, fmt.Errorf("unknown sort column %q (want one of %s)", c.SortKey, columnList()))
		}
	}
	return errors.Join(errs...)
}

// Sort is the initial sort state, inactive when no column is configured.
func (c Config) Sort() sorting.State {
	col, ok := sorting.ParseColumn(c.SortKey)
	if !ok {
		return sorting.State{}
	}
	return sorting.By(col, c.SortDesc)
}

// ResolverOptions translates the resolve settings.
func (c Config) ResolverOptions() []resolve.Option {
	return []resolve.Option{
		resolve.WithTimeout(c.ResolveTimeout),
		resolve.WithWorkers(c.ResolveWorkers),
		resolve.WithRate(c.ResolveRate),
	}
}

func columnList() string {
	return strings.Join(model.ColumnKeys(), ", ")
}
