// Package resolve performs reverse DNS lookups for remote endpoints with a
// bounded timeout and a process-lifetime cache.
package resolve

import (
	"context"
	"net"
	"net/netip"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	DefaultTimeout = 500 * time.Millisecond
	DefaultWorkers = 8
	DefaultRate    = 50
)

// Lookuper is satisfied by *net.Resolver.
type Lookuper interface {
	LookupAddr(ctx context.Context, addr string) ([]string, error)
}

type Resolver struct {
	lookup  Lookuper
	timeout time.Duration
	workers int
	limiter *rate.Limiter

	mu    sync.RWMutex
	cache map[string]string
}

type Option func(*Resolver)

func WithLookuper(l Lookuper) Option { return func(r *Resolver) { r.lookup = l } }

func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.timeout = d
		}
	}
}

func WithWorkers(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithRate limits lookups per second. Zero or less disables pacing.
func WithRate(perSecond int) Option {
	return func(r *Resolver) {
		if perSecond <= 0 {
			r.limiter = nil
			return
		}
		r.limiter = rate.NewLimiter(rate.Limit(perSecond), perSecond)
	}
}

func New(opts ...Option) *Resolver {
	r := &Resolver{
		lookup:  net.DefaultResolver,
		timeout: DefaultTimeout,
		workers: DefaultWorkers,
		limiter: rate.NewLimiter(rate.Limit(DefaultRate), DefaultRate),
		cache:   make(map[string]string),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the hostname for ip, or "" when there is none. Failures are
// cached as "" for the lifetime of the Resolver.
func (r *Resolver) Resolve(ctx context.Context, ip string) string {
	if Skip(ip) {
		return ""
	}
	if name, ok := r.Cached(ip); ok {
		return name
	}

	name, ok := r.lookupOne(ctx, ip)
	if !ok {
		return ""
	}
	r.mu.Lock()
	r.cache[ip] = name
	r.mu.Unlock()
	return name
}

// ResolveAll resolves the distinct addresses in ips concurrently and waits for
// every lookup to finish or time out. Skipped addresses are absent from the result.
func (r *Resolver) ResolveAll(ctx context.Context, ips []string) map[string]string {
	out := make(map[string]string, len(ips))
	var pending []string
	seen := make(map[string]bool, len(ips))
	for _, ip := range ips {
		if seen[ip] || Skip(ip) {
			continue
		}
		seen[ip] = true
		if name, ok := r.Cached(ip); ok {
			out[ip] = name
			continue
		}
		pending = append(pending, ip)
	}
	if len(pending) == 0 {
		return out
	}

	var mu sync.Mutex
	g := new(errgroup.Group)
	g.SetLimit(r.workers)
	for _, ip := range pending {
		ip := ip
		g.Go(func() error {
			name := r.Resolve(ctx, ip)
			mu.Lock()
			out[ip] = name
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// Cached reports the cached hostname for ip. A cached "" is a negative result.
func (r *Resolver) Cached(ip string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.cache[ip]
	return name, ok
}

// lookupOne returns ok=false when the lookup never ran to completion because
// the caller's context ended, so it is not cached as a negative result.
func (r *Resolver) lookupOne(ctx context.Context, ip string) (string, bool) {
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return "", false
		}
	}

	lctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	names, err := r.lookup.LookupAddr(lctx, ip)
	if ctx.Err() != nil {
		return "", false
	}
	if err != nil || len(names) == 0 {
		return "", true
	}
	return strings.TrimSuffix(names[0], "."), true
}

// Skip reports whether ip is never looked up: empty, localhost, loopback,
// unspecified and private or link-local ranges.
func Skip(ip string) bool {
	if ip == "" || ip == "localhost" {
		return true
	}
	for _, prefix := range []string{"10.", "172.", "192.168.", "169.254.", "127."} {
		if strings.HasPrefix(ip, prefix) {
			return true
		}
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	return addr.IsLoopback() || addr.IsUnspecified() || addr.IsPrivate() ||
		addr.IsLinkLocalUnicast() || addr.IsLinkLocalMulticast()
}
