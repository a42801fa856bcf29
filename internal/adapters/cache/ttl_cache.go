package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/singleflight"
)

const instrumentationName = "github.com/beaesthetic/analytics/internal/adapters/cache"

// maxInvalidationHistory bounds the invalidations remembered for in-flight
// computations. A computation older than the history is never stored.
const maxInvalidationHistory = 64

// Config holds the cache bounds and the two TTL policies
type Config struct {
	MaxEntries int
	// TTLClosed applies to periods that ended before the insert
	TTLClosed time.Duration
	// TTLOpen applies to periods still accruing data
	TTLOpen time.Duration
}

// DefaultConfig returns the bounds used when nothing is configured
func DefaultConfig() Config {
	return Config{
		MaxEntries: 512,
		TTLClosed:  24 * time.Hour,
		TTLOpen:    5 * time.Minute,
	}
}

// Stats is a diagnostic snapshot of the cache
type Stats struct {
	Entries          int     `json:"entries"`
	MaxEntries       int     `json:"max_entries"`
	Hits             int64   `json:"hits"`
	Misses           int64   `json:"misses"`
	Evictions        int64   `json:"evictions"`
	TTLClosedSeconds float64 `json:"ttl_closed_seconds"`
	TTLOpenSeconds   float64 `json:"ttl_open_seconds"`
}

type invalidation struct {
	epoch uint64
	after time.Time
}

type entry struct {
	value     any
	periodEnd time.Time
	expiresAt time.Time
}

// TTLCache is a bounded LRU whose entries expire after a TTL chosen at
// insert time from the end of the period they describe. It is safe for
// concurrent use.
type TTLCache struct {
	cfg   Config
	now   func() time.Time
	lru   *lru.Cache[Key, *entry]
	group singleflight.Group

	// mu orders invalidations against stores of in-flight results
	mu            sync.Mutex
	epoch         uint64
	invalidations []invalidation

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64

	meter        metric.Meter
	hitCounter   metric.Int64Counter
	missCounter  metric.Int64Counter
	evictCounter metric.Int64Counter
}

// Option configures a TTLCache
type Option func(*TTLCache)

// WithClock replaces time.Now. Clocks used in production should carry a
// monotonic reading, as time.Now does.
func WithClock(now func() time.Time) Option {
	return func(c *TTLCache) {
		c.now = now
	}
}

// WithMeter records hit, miss and eviction counters on meter
func WithMeter(meter metric.Meter) Option {
	return func(c *TTLCache) {
		c.meter = meter
	}
}

// New creates a cache
func New(cfg Config, opts ...Option) (*TTLCache, error) {
	if cfg.MaxEntries <= 0 {
		return nil, fmt.Errorf("cache size must be positive, got %d", cfg.MaxEntries)
	}
	if cfg.TTLClosed <= 0 || cfg.TTLOpen <= 0 {
		return nil, fmt.Errorf("cache TTLs must be positive")
	}

	c := &TTLCache{cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	if c.meter == nil {
		c.meter = otel.Meter(instrumentationName)
	}

	store, err := lru.New[Key, *entry](cfg.MaxEntries)
	if err != nil {
		return nil, fmt.Errorf("failed to create LRU: %w", err)
	}
	c.lru = store

	if c.hitCounter, err = c.meter.Int64Counter("cache.hit.count",
		metric.WithDescription("Analytics cache hits")); err != nil {
		return nil, err
	}
	if c.missCounter, err = c.meter.Int64Counter("cache.miss.count",
		metric.WithDescription("Analytics cache misses")); err != nil {
		return nil, err
	}
	if c.evictCounter, err = c.meter.Int64Counter("cache.eviction.count",
		metric.WithDescription("Analytics cache LRU evictions")); err != nil {
		return nil, err
	}

	return c, nil
}

// TTLFor returns the TTL an entry for a period ending at periodEnd gets now
func (c *TTLCache) TTLFor(periodEnd time.Time) time.Duration {
	if periodEnd.Before(c.now()) {
		return c.cfg.TTLClosed
	}
	return c.cfg.TTLOpen
}

// Get returns a live entry. Expired entries are dropped on lookup.
func (c *TTLCache) Get(key Key) (any, bool) {
	e, ok := c.lru.Get(key)
	if !ok {
		return nil, false
	}
	if !c.now().Before(e.expiresAt) {
		c.lru.Remove(key)
		return nil, false
	}
	return e.value, true
}

// Set stores value, replacing any previous entry for key, and returns the
// TTL it was given. A zero periodEnd means the period ends now.
func (c *TTLCache) Set(key Key, value any, periodEnd time.Time) time.Duration {
	now := c.now()
	if periodEnd.IsZero() {
		periodEnd = now
	}
	ttl := c.cfg.TTLOpen
	if periodEnd.Before(now) {
		ttl = c.cfg.TTLClosed
	}

	if evicted := c.lru.Add(key, &entry{value: value, periodEnd: periodEnd, expiresAt: now.Add(ttl)}); evicted {
		c.evictions.Add(1)
		c.evictCounter.Add(context.Background(), 1, metric.WithAttributes(attribute.String("cache.method", key.Method)))
	}
	return ttl
}

// InvalidateAfter drops entries whose period ends after t and returns how
// many were dropped. Periods that ended at or before t are unaffected by
// data created at t. Computations in flight when it runs are not stored if
// their period ends after t.
func (c *TTLCache) InvalidateAfter(t time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.epoch++
	c.invalidations = append(c.invalidations, invalidation{epoch: c.epoch, after: t})
	if n := len(c.invalidations); n > maxInvalidationHistory {
		c.invalidations = append(c.invalidations[:0], c.invalidations[n-maxInvalidationHistory:]...)
	}

	dropped := 0
	for _, key := range c.lru.Keys() {
		e, ok := c.lru.Peek(key)
		if ok && e.periodEnd.After(t) {
			if c.lru.Remove(key) {
				dropped++
			}
		}
	}
	return dropped
}

func (c *TTLCache) currentEpoch() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epoch
}

// storeComputed stores a value computed since epoch unless an invalidation
// that covers its period ran meanwhile. It reports whether it stored.
func (c *TTLCache) storeComputed(key Key, value any, periodEnd time.Time, epoch uint64) (time.Duration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if periodEnd.IsZero() {
		periodEnd = c.now()
	}
	if c.invalidatedSince(epoch, periodEnd) {
		return 0, false
	}
	return c.Set(key, value, periodEnd), true
}

// invalidatedSince must be called with mu held
func (c *TTLCache) invalidatedSince(epoch uint64, periodEnd time.Time) bool {
	if c.epoch == epoch {
		return false
	}
	// Part of the history was trimmed; the skipped invalidations are unknown.
	if len(c.invalidations) == 0 || c.invalidations[0].epoch > epoch+1 {
		return true
	}
	for _, inv := range c.invalidations {
		if inv.epoch > epoch && periodEnd.After(inv.after) {
			return true
		}
	}
	return false
}

// Purge drops every entry
func (c *TTLCache) Purge() {
	c.lru.Purge()
}

// Len returns the number of stored entries, expired ones included
func (c *TTLCache) Len() int {
	return c.lru.Len()
}

// Stats returns a diagnostic snapshot
func (c *TTLCache) Stats() Stats {
	return Stats{
		Entries:          c.lru.Len(),
		MaxEntries:       c.cfg.MaxEntries,
		Hits:             c.hits.Load(),
		Misses:           c.misses.Load(),
		Evictions:        c.evictions.Load(),
		TTLClosedSeconds: c.cfg.TTLClosed.Seconds(),
		TTLOpenSeconds:   c.cfg.TTLOpen.Seconds(),
	}
}

func (c *TTLCache) recordHit(ctx context.Context, key Key) {
	c.hits.Add(1)
	c.hitCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("cache.method", key.Method)))
	log.Debug().Str("key", key.String()).Msg("cache hit")
}

func (c *TTLCache) recordMiss(ctx context.Context, key Key) {
	c.misses.Add(1)
	c.missCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("cache.method", key.Method)))
	log.Debug().Str("key", key.String()).Msg("cache miss")
}

// Fetch returns the cached value for key or computes and stores it.
// Concurrent misses for the same key share one computation, which runs to
// completion even if every caller gives up waiting. Errors are not cached.
func Fetch[T any](ctx context.Context, c *TTLCache, key Key, periodEnd time.Time, compute func(context.Context) (T, error)) (T, error) {
	var zero T

	if v, ok := c.Get(key); ok {
		if typed, ok := v.(T); ok {
			c.recordHit(ctx, key)
			return typed, nil
		}
		return zero, fmt.Errorf("cache entry %s holds %T", key, v)
	}
	c.recordMiss(ctx, key)

	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key.String(), func() (any, error) {
		epoch := c.currentEpoch()
		v, err := compute(detached)
		if err != nil {
			return nil, err
		}
		if ttl, stored := c.storeComputed(key, v, periodEnd, epoch); stored {
			log.Debug().Str("key", key.String()).Dur("ttl", ttl).Msg("cache store")
		} else {
			log.Debug().Str("key", key.String()).Msg("cache store skipped after invalidation")
		}
		return v, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		typed, ok := res.Val.(T)
		if !ok {
			return zero, errors.New("cache: shared computation returned a different type")
		}
		return typed, nil
	}
}
