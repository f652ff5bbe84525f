// Package geo resolves request IPs to best-effort locations through an
// ordered chain of providers. Resolution never fails outward: when every
// stage exhausts, the caller gets the all-unknown location.
package geo

import (
	"context"
	"net"
	"time"

	"github.com/ignite/mailtrace/internal/domain"
	"github.com/ignite/mailtrace/internal/pkg/logger"
)

// Provider is one stage of the fallback chain. Lookup returns false when
// the stage yielded no usable result (transport error, bad status,
// malformed payload, no data); the chain then falls through. Providers
// must not retry within a single Lookup call.
type Provider interface {
	Name() string
	Lookup(ctx context.Context, ip string) (domain.Location, bool)
}

// ProxyChecker flags IPs belonging to mail-provider image proxies.
type ProxyChecker interface {
	ProxyProvider(ip string) (string, bool)
}

// StageObserver receives the outcome ("hit" or "miss") of each attempted
// provider stage. Optional; used for metrics.
type StageObserver func(provider, outcome string)

// Resolver runs the provider chain with a hard per-stage timeout.
type Resolver struct {
	providers []Provider
	proxies   ProxyChecker
	timeout   time.Duration
	observe   StageObserver
	log       *logger.Logger
}

// NewResolver creates a Resolver. providers are tried in order; proxies
// may be nil to disable the proxy short-circuit; stageTimeout bounds each
// provider attempt (defaults to 2500ms when non-positive).
func NewResolver(providers []Provider, proxies ProxyChecker, stageTimeout time.Duration, log *logger.Logger) *Resolver {
	if stageTimeout <= 0 {
		stageTimeout = 2500 * time.Millisecond
	}
	if log == nil {
		log = logger.Default()
	}
	return &Resolver{providers: providers, proxies: proxies, timeout: stageTimeout, log: log}
}

// SetObserver installs a stage outcome observer.
func (r *Resolver) SetObserver(fn StageObserver) { r.observe = fn }

// Resolve maps ip to a Location. Private and loopback addresses short-
// circuit to a synthetic local location; known proxy IPs short-circuit to
// a synthetic proxy location (the infrastructure's location would mislead,
// so no lookup is attempted). Otherwise providers run in order until one
// yields a result.
func (r *Resolver) Resolve(ctx context.Context, ip string) domain.Location {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return domain.UnknownLocation()
	}

	if parsed.IsLoopback() || parsed.IsPrivate() || parsed.IsLinkLocalUnicast() || parsed.IsUnspecified() {
		return domain.Location{
			Country: domain.Unknown,
			Region:  domain.Unknown,
			City:    "Local Network",
			Source:  "local",
		}
	}

	if r.proxies != nil {
		if provider, ok := r.proxies.ProxyProvider(ip); ok {
			return domain.Location{
				Country:         domain.Unknown,
				Region:          provider,
				City:            "Email Proxy",
				IsProxyInferred: true,
				Source:          "proxy-table",
			}
		}
	}

	for _, p := range r.providers {
		stageCtx, cancel := context.WithTimeout(ctx, r.timeout)
		loc, ok := p.Lookup(stageCtx, ip)
		cancel()
		if ok {
			r.stage(p.Name(), "hit")
			return normalize(loc, p.Name())
		}
		r.stage(p.Name(), "miss")
		r.log.Debug("geo stage miss", "provider", p.Name(), "ip", ip)
	}

	return domain.UnknownLocation()
}

func (r *Resolver) stage(provider, outcome string) {
	if r.observe != nil {
		r.observe(provider, outcome)
	}
}

// normalize fills empty text fields with the Unknown placeholder and
// stamps the producing stage, so every accepted result has the full shape.
func normalize(loc domain.Location, source string) domain.Location {
	if loc.Country == "" {
		loc.Country = domain.Unknown
	}
	if loc.Region == "" {
		loc.Region = domain.Unknown
	}
	if loc.City == "" {
		loc.City = domain.Unknown
	}
	if loc.Source == "" {
		loc.Source = source
	}
	return loc
}
