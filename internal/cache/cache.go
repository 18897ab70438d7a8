// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"time"

	"github.com/apex/log"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DefaultTTL is how long a populated entry stays live.
const DefaultTTL = 5 * time.Minute

// Cache is a keyed TTL cache. Each entry lives for TTL from the moment it was
// last Set; Invalidate drops it immediately. It is safe for concurrent use and
// holds no cross-call locks, so an Invalidate racing a Set only ever removes a
// value that was about to be stale.
//
// Liveness is decided against the cache's clock. The LRU's own expiry only
// reaps memory.
type Cache[V any] struct {
	name    string
	ttl     time.Duration
	clock   clockwork.Clock
	entries *expirable.LRU[string, entry[V]]

	hits          *prometheus.CounterVec
	misses        *prometheus.CounterVec
	invalidations *prometheus.CounterVec
}

type entry[V any] struct {
	value   V
	expires time.Time
}

type options struct {
	ttl   time.Duration
	size  int
	reg   prometheus.Registerer
	clock clockwork.Clock
}

// Option customizes a Cache.
type Option func(*options)

// WithTTL overrides DefaultTTL. Non-positive values are ignored.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) {
		if ttl > 0 {
			o.ttl = ttl
		}
	}
}

// WithSize caps the number of keys. Zero (the default) means unbounded.
func WithSize(size int) Option {
	return func(o *options) { o.size = size }
}

// WithRegisterer registers the cache counters on reg. Without it the counters
// are still maintained but not exported.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) { o.reg = reg }
}

// WithClock replaces the wall clock used to expire entries.
func WithClock(clock clockwork.Clock) Option {
	return func(o *options) { o.clock = clock }
}

// New builds an empty cache. name labels the exported counters.
func New[V any](name string, opts ...Option) *Cache[V] {
	o := options{ttl: DefaultTTL, clock: clockwork.NewRealClock()}
	for _, opt := range opts {
		opt(&o)
	}

	factory := promauto.With(o.reg)
	labels := prometheus.Labels{"cache": name}

	return &Cache[V]{
		name:    name,
		ttl:     o.ttl,
		clock:   o.clock,
		entries: expirable.NewLRU[string, entry[V]](o.size, nil, o.ttl),
		hits: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "itemctl",
			Name:        "cache_hits_total",
			Help:        "Lookups answered from a live cache entry.",
			ConstLabels: labels,
		}, []string{"key"}),
		misses: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "itemctl",
			Name:        "cache_misses_total",
			Help:        "Lookups that found no live cache entry.",
			ConstLabels: labels,
		}, []string{"key"}),
		invalidations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "itemctl",
			Name:        "cache_invalidations_total",
			Help:        "Explicit cache invalidations.",
			ConstLabels: labels,
		}, []string{"key"}),
	}
}

// TTL returns the entry lifetime.
func (c *Cache[V]) TTL() time.Duration {
	return c.ttl
}

// Get returns the live value for key. Expired entries are reported as absent.
func (c *Cache[V]) Get(key string) (V, bool) {
	e, ok := c.entries.Get(key)
	if ok && !c.clock.Now().Before(e.expires) {
		c.entries.Remove(key)
		ok = false
	}
	if !ok {
		c.misses.WithLabelValues(key).Inc()
		log.Debugf("cache %s: miss %s", c.name, key)
		var zero V
		return zero, false
	}
	c.hits.WithLabelValues(key).Inc()
	log.Debugf("cache %s: hit %s", c.name, key)
	return e.value, true
}

// Set stores value under key and restarts its TTL.
func (c *Cache[V]) Set(key string, value V) {
	c.entries.Add(key, entry[V]{value: value, expires: c.clock.Now().Add(c.ttl)})
}

// Invalidate drops key. Invalidating an absent key is a no-op.
func (c *Cache[V]) Invalidate(key string) {
	c.entries.Remove(key)
	c.invalidations.WithLabelValues(key).Inc()
	log.Debugf("cache %s: invalidated %s", c.name, key)
}

// Len reports the number of stored entries, including any expired ones not
// yet reaped.
func (c *Cache[V]) Len() int {
	return c.entries.Len()
}

// Purge drops every entry.
func (c *Cache[V]) Purge() {
	c.entries.Purge()
}
