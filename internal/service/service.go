// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strconv"
	"sync"

	"github.com/apex/log"
	"golang.org/x/sync/singleflight"

	"github.com/staranto/itemctl/internal/cache"
	"github.com/staranto/itemctl/internal/item"
	"github.com/staranto/itemctl/internal/stats"
	"github.com/staranto/itemctl/internal/store"
)

// StatsKey is the cache key of the stats aggregate.
const StatsKey = "stats"

// Query narrows a List call. Q is a case-insensitive substring of the name.
// A non-nil Limit keeps only the first *Limit matches; zero keeps none.
type Query struct {
	Q     string
	Limit *int
}

// Service runs every item operation as one read-modify-write cycle against a
// store and keeps the stats cache consistent with it.
type Service struct {
	store store.Store
	cache *cache.Cache[item.Stats]

	// mu serializes this service's write cycles; the store lock covers other
	// writers. nextID is only touched under mu.
	mu     sync.Mutex
	nextID int64

	// statsMu orders cache population against invalidation; gen counts
	// invalidations so a rebuild that raced a commit never gets cached.
	statsMu sync.Mutex
	gen     uint64
	flight  singleflight.Group
}

// New wires a service to its store and stats cache. A nil cache gets a
// private one with the default TTL.
func New(st store.Store, c *cache.Cache[item.Stats]) *Service {
	if c == nil {
		c = cache.New[item.Stats](StatsKey)
	}
	return &Service{store: st, cache: c}
}

// Store returns the backing record store.
func (s *Service) Store() store.Store {
	return s.store
}

// load reads the committed set. A store that has never been written holds no
// records.
func (s *Service) load(ctx context.Context) ([]item.Item, error) {
	items, err := s.store.Load(ctx)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Debugf("store %s does not exist yet, treating as empty", s.store)
			return []item.Item{}, nil
		}
		return nil, err
	}
	return items, nil
}

// List returns the records matching q, in stored order.
func (s *Service) List(ctx context.Context, q Query) ([]item.Item, error) {
	items, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]item.Item, 0, len(items))
	for _, it := range items {
		if it.Matches(q.Q) {
			results = append(results, it)
		}
	}

	if q.Limit != nil {
		results = results[:min(max(*q.Limit, 0), len(results))]
	}
	log.Debugf("list q=%q: %d of %d records", q.Q, len(results), len(items))
	return results, nil
}

// Get returns the first record with id.
func (s *Service) Get(ctx context.Context, id int64) (item.Item, error) {
	items, err := s.load(ctx)
	if err != nil {
		return item.Item{}, err
	}

	idx := item.IndexOf(items, id)
	if idx < 0 {
		return item.Item{}, fmt.Errorf("item %d: %w", id, item.ErrNotFound)
	}
	return items[idx], nil
}

// Create appends a record built from in under a fresh id. The input is
// stored as given; no field is validated here.
func (s *Service) Create(ctx context.Context, in item.Input) (item.Item, error) {
	var created item.Item
	err := s.cycle(ctx, func(items []item.Item) ([]item.Item, error) {
		created = in.With(s.allocateID(items))
		return append(items, created), nil
	})
	if err != nil {
		return item.Item{}, err
	}

	log.WithFields(log.Fields{"id": created.ID, "name": created.Name}).Info("item created")
	return created, nil
}

// Update overwrites the fields of record id with in. The stored id is kept
// whatever the client sent.
func (s *Service) Update(ctx context.Context, id int64, in item.Input) (item.Item, error) {
	_, updated, err := s.Patch(ctx, id, func(item.Item) item.Input { return in })
	return updated, err
}

// Patch rewrites record id with the fields fn derives from its committed
// value. fn runs inside the write cycle, so nothing can land between the read
// it sees and the commit. It returns the record before and after.
func (s *Service) Patch(ctx context.Context, id int64, fn func(current item.Item) item.Input) (before, after item.Item, err error) {
	err = s.cycle(ctx, func(items []item.Item) ([]item.Item, error) {
		idx := item.IndexOf(items, id)
		if idx < 0 {
			return nil, fmt.Errorf("item %d: %w", id, item.ErrNotFound)
		}
		before = items[idx]
		after = fn(before).With(id)
		items[idx] = after
		return items, nil
	})
	if err != nil {
		return item.Item{}, item.Item{}, err
	}

	log.WithFields(log.Fields{"id": id, "name": after.Name}).Info("item updated")
	return before, after, nil
}

// Delete removes record id and returns it as it was before removal.
func (s *Service) Delete(ctx context.Context, id int64) (item.Item, error) {
	var removed item.Item
	err := s.cycle(ctx, func(items []item.Item) ([]item.Item, error) {
		idx := item.IndexOf(items, id)
		if idx < 0 {
			return nil, fmt.Errorf("item %d: %w", id, item.ErrNotFound)
		}
		removed = items[idx]
		return slices.Delete(items, idx, idx+1), nil
	})
	if err != nil {
		return item.Item{}, err
	}

	log.WithFields(log.Fields{"id": id, "name": removed.Name}).Info("item deleted")
	return removed, nil
}

// cycle runs one read-modify-write against the store. It holds mu against
// other callers of this service and the store lock against every other
// writer of the backing object. fn gets the committed set and returns the
// set to commit; an fn error aborts the cycle without writing.
func (s *Service) cycle(ctx context.Context, fn func([]item.Item) ([]item.Item, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := s.store.Lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	items, err := s.load(ctx)
	if err != nil {
		return err
	}

	next, err := fn(items)
	if err != nil {
		return err
	}
	return s.commit(ctx, next)
}

// Stats returns the cached aggregate while it is live and rebuilds it from
// the store otherwise. Concurrent misses share one rebuild.
func (s *Service) Stats(ctx context.Context) (item.Stats, error) {
	if agg, ok := s.cache.Get(StatsKey); ok {
		return agg, nil
	}

	s.statsMu.Lock()
	gen := s.gen
	s.statsMu.Unlock()

	// Keying the flight by generation keeps a caller that arrives after a
	// commit from joining a rebuild that read the pre-commit set.
	v, err, shared := s.flight.Do(StatsKey+"@"+strconv.FormatUint(gen, 10), func() (any, error) {
		items, err := s.load(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		agg := stats.Build(items)

		s.statsMu.Lock()
		if s.gen == gen {
			s.cache.Set(StatsKey, agg)
		} else {
			log.Debug("stats rebuild raced a commit, not caching")
		}
		s.statsMu.Unlock()

		return agg, nil
	})
	if err != nil {
		return item.Stats{}, err
	}

	log.Debugf("stats rebuilt (shared=%v)", shared)
	return v.(item.Stats), nil //nolint:forcetypeassert
}

// commit replaces the set and, only once that succeeded, invalidates the
// stats aggregate. Must be called from cycle.
func (s *Service) commit(ctx context.Context, items []item.Item) error {
	if err := s.store.Replace(ctx, items); err != nil {
		log.WithError(err).Errorf("commit to %s failed", s.store)
		return err
	}
	s.invalidateStats()
	return nil
}

func (s *Service) invalidateStats() {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	s.gen++
	s.cache.Invalidate(StatsKey)
}

// allocateID returns an id that is unique within items and larger than every
// id handed out before. The counter follows the store's max id so records
// added behind our back can't collide. Must be called from cycle.
func (s *Service) allocateID(items []item.Item) int64 {
	if max := item.MaxID(items); max > s.nextID {
		s.nextID = max
	}
	for {
		s.nextID++
		if item.IndexOf(items, s.nextID) < 0 {
			return s.nextID
		}
	}
}
