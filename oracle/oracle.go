// Package oracle produces the current HAC/USDT exchange rate from a chain of
// upstream ticker sources with ordered fallback and a short-lived cache.
package oracle

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/D-DEV-JSS/HPAY/logger"
	"github.com/D-DEV-JSS/HPAY/metrics"
	"github.com/D-DEV-JSS/HPAY/types"
)

// Oracle fetches and caches an exchange rate. Sources are tried in priority
// order; the first strictly positive rate wins. A stale cache entry is served
// as a degraded result when every source is down.
type Oracle struct {
	sources []Source
	ttl     time.Duration
	timeout time.Duration
	log     logger.Logger
	rec     metrics.Recorder
	now     func() time.Time

	mu     sync.RWMutex
	cached *types.PriceQuote

	// Coalesces concurrent refreshes into a single upstream fetch.
	flight singleflight.Group

	pollMu     sync.Mutex
	pollCancel context.CancelFunc
	pollDone   chan struct{}
}

type Option func(*Oracle)

func WithLogger(l logger.Logger) Option {
	return func(o *Oracle) {
		o.log = l
	}
}

func WithMetrics(r metrics.Recorder) Option {
	return func(o *Oracle) {
		o.rec = r
	}
}

func WithCacheTTL(d time.Duration) Option {
	return func(o *Oracle) {
		if d > 0 {
			o.ttl = d
		}
	}
}

func WithSourceTimeout(d time.Duration) Option {
	return func(o *Oracle) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// New creates an oracle over the given fallback chain. Sources are queried
// in slice order.
func New(sources []Source, opts ...Option) *Oracle {
	o := &Oracle{
		sources: sources,
		ttl:     types.DefaultCacheTTL,
		timeout: types.DefaultSourceTimeout,
		log:     logger.NoopLogger{},
		rec:     metrics.NoopRecorder{},
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// GetRate returns the current exchange rate, served from cache while fresh.
// On a cache miss the fallback chain is queried; concurrent misses share a
// single upstream fetch. When every source fails, a stale cached quote is
// returned as a degraded result; with no cache at all the call fails with
// NO_RATE_AVAILABLE.
func (o *Oracle) GetRate(ctx context.Context) (*types.PriceQuote, error) {
	if quote := o.freshQuote(); quote != nil {
		o.rec.IncCounter("price_cache_hit", nil)
		return quote, nil
	}

	v, err, _ := o.flight.Do("rate", func() (interface{}, error) {
		// A coalesced caller may arrive after the winner already
		// refreshed the cache.
		if quote := o.freshQuote(); quote != nil {
			return quote, nil
		}
		return o.refresh(ctx)
	})
	if err != nil {
		return nil, err
	}

	return v.(*types.PriceQuote), nil
}

// refresh walks the fallback chain. Each source gets its own bounded
// timeout; any failure moves on to the next source.
func (o *Oracle) refresh(ctx context.Context) (*types.PriceQuote, error) {
	for _, src := range o.sources {
		start := o.now()
		fetchCtx, cancel := context.WithTimeout(ctx, o.timeout)
		rate, err := src.Fetch(fetchCtx)
		cancel()
		o.rec.ObserveLatency("price_fetch", o.now().Sub(start), map[string]string{"source": src.Name()})

		if err != nil {
			o.log.Warn("price source unavailable", map[string]any{
				"source": src.Name(),
				"error":  err.Error(),
			})
			o.rec.IncCounter("price_source_failure", map[string]string{"source": src.Name()})
			continue
		}

		quote := &types.PriceQuote{
			Value:      rate,
			Source:     src.Name(),
			ObservedAt: o.now(),
		}

		o.mu.Lock()
		o.cached = quote
		o.mu.Unlock()

		o.log.Debug("price refreshed", map[string]any{
			"source": src.Name(),
			"rate":   rate.String(),
		})
		return quote, nil
	}

	// Every source failed; fall back to whatever we still have.
	o.mu.RLock()
	cached := o.cached
	o.mu.RUnlock()

	if cached != nil {
		o.log.Warn("all price sources failed, serving stale quote", map[string]any{
			"source":     cached.Source,
			"observedAt": cached.ObservedAt,
		})
		o.rec.IncCounter("price_cache_stale", map[string]string{"source": cached.Source})
		return cached, nil
	}

	return nil, &types.Error{
		Code:    types.ErrNoRateAvailable,
		Message: "all price sources failed and no cached quote exists",
	}
}

// freshQuote returns the cached quote if it is still within the TTL.
func (o *Oracle) freshQuote() *types.PriceQuote {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if o.cached != nil && o.now().Sub(o.cached.ObservedAt) < o.ttl {
		return o.cached
	}
	return nil
}

// CachedQuote returns the last stored quote regardless of freshness, or nil.
func (o *Oracle) CachedQuote() *types.PriceQuote {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.cached
}
