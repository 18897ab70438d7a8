// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/itemctl/internal/cache"
	"github.com/staranto/itemctl/internal/item"
	"github.com/staranto/itemctl/internal/store"
)

var fixture = []item.Item{
	{ID: 1, Name: "Laptop Pro", Category: "Electronics", Price: 2499},
	{ID: 2, Name: "Ergonomic Chair", Category: "Furniture", Price: 799},
}

// flakyStore wraps a real store and can be told to fail its next Replace.
type flakyStore struct {
	store.Store

	mu       sync.Mutex
	failNext error
	replaces int
	loads    int
}

func (f *flakyStore) Load(ctx context.Context) ([]item.Item, error) {
	f.mu.Lock()
	f.loads++
	f.mu.Unlock()
	return f.Store.Load(ctx)
}

func (f *flakyStore) Replace(ctx context.Context, items []item.Item) error {
	f.mu.Lock()
	err := f.failNext
	f.failNext = nil
	f.replaces++
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.Store.Replace(ctx, items)
}

func (f *flakyStore) loadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loads
}

func newService(t *testing.T, seed []item.Item) (*Service, *flakyStore) {
	t.Helper()
	fs := store.NewFileStore(filepath.Join(t.TempDir(), "items.json"))
	if seed != nil {
		require.NoError(t, fs.Replace(context.Background(), seed))
	}
	flaky := &flakyStore{Store: fs}
	return New(flaky, cache.New[item.Stats]("test")), flaky
}

func TestList(t *testing.T) {
	tests := []struct {
		name  string
		query Query
		want  []int64
	}{
		{"all", Query{}, []int64{1, 2}},
		{"substring", Query{Q: "lap"}, []int64{1}},
		{"case insensitive", Query{Q: "CHAIR"}, []int64{2}},
		{"no match", Query{Q: "desk"}, []int64{}},
		{"limit", Query{Limit: limit(1)}, []int64{1}},
		{"limit zero", Query{Limit: limit(0)}, []int64{}},
		{"negative limit", Query{Limit: limit(-1)}, []int64{}},
		{"limit larger than set", Query{Limit: limit(10)}, []int64{1, 2}},
		{"filter then limit", Query{Q: "r", Limit: limit(1)}, []int64{1}},
	}

	svc, _ := newService(t, fixture)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.List(context.Background(), tt.query)
			require.NoError(t, err)
			ids := make([]int64, 0, len(got))
			for _, it := range got {
				ids = append(ids, it.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestList_MissingStoreIsEmpty(t *testing.T) {
	svc, _ := newService(t, nil)

	got, err := svc.List(context.Background(), Query{})
	require.NoError(t, err)
	assert.Empty(t, got)

	agg, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, item.Stats{}, agg)
}

func TestGet(t *testing.T) {
	svc, _ := newService(t, fixture)

	got, err := svc.Get(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, fixture[1], got)

	_, err = svc.Get(context.Background(), 999)
	assert.ErrorIs(t, err, item.ErrNotFound)
}

func TestGet_DuplicateIDsReturnFirst(t *testing.T) {
	dupes := []item.Item{
		{ID: 7, Name: "first"},
		{ID: 7, Name: "second"},
	}
	svc, _ := newService(t, dupes)

	got, err := svc.Get(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "first", got.Name)
}

func TestCreate(t *testing.T) {
	svc, _ := newService(t, fixture)
	ctx := context.Background()

	created, err := svc.Create(ctx, item.Input{Name: "Desk Lamp", Category: "Home", Price: 45})
	require.NoError(t, err)
	assert.Greater(t, created.ID, int64(2))
	assert.Equal(t, "Desk Lamp", created.Name)

	all, err := svc.List(ctx, Query{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, created, all[2])

	second, err := svc.Create(ctx, item.Input{Name: "Rug"})
	require.NoError(t, err)
	assert.Greater(t, second.ID, created.ID)
}

func TestCreate_EmptyStore(t *testing.T) {
	svc, _ := newService(t, nil)

	created, err := svc.Create(context.Background(), item.Input{Name: "first"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
}

func TestCreate_StoresInputAsGiven(t *testing.T) {
	svc, _ := newService(t, fixture)

	created, err := svc.Create(context.Background(), item.Input{})
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, item.Item{ID: created.ID}, got)
}

func TestCreate_IDNeverReused(t *testing.T) {
	svc, _ := newService(t, fixture)
	ctx := context.Background()

	created, err := svc.Create(ctx, item.Input{Name: "temp"})
	require.NoError(t, err)
	_, err = svc.Delete(ctx, created.ID)
	require.NoError(t, err)

	next, err := svc.Create(ctx, item.Input{Name: "next"})
	require.NoError(t, err)
	assert.Greater(t, next.ID, created.ID)
}

func TestCreate_FollowsExternalWrites(t *testing.T) {
	svc, flaky := newService(t, fixture)
	ctx := context.Background()

	_, err := svc.Create(ctx, item.Input{Name: "a"})
	require.NoError(t, err)

	// Someone else appends a record with a large id behind the service.
	current, err := flaky.Store.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, flaky.Store.Replace(ctx, append(current, item.Item{ID: 500, Name: "external"})))

	created, err := svc.Create(ctx, item.Input{Name: "b"})
	require.NoError(t, err)
	assert.Equal(t, int64(501), created.ID)
}

func TestUpdate(t *testing.T) {
	svc, _ := newService(t, fixture)
	ctx := context.Background()

	updated, err := svc.Update(ctx, 2, item.Input{Name: "Standing Desk", Category: "Furniture", Price: 1200})
	require.NoError(t, err)
	assert.Equal(t, item.Item{ID: 2, Name: "Standing Desk", Category: "Furniture", Price: 1200}, updated)

	got, err := svc.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, updated, got)

	all, err := svc.List(ctx, Query{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, fixture[0], all[0])
}

func TestDelete(t *testing.T) {
	svc, _ := newService(t, fixture)
	ctx := context.Background()

	removed, err := svc.Delete(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, fixture[0], removed)

	_, err = svc.Get(ctx, 1)
	assert.ErrorIs(t, err, item.ErrNotFound)

	all, err := svc.List(ctx, Query{})
	require.NoError(t, err)
	assert.Equal(t, fixture[1:], all)
}

func TestMutations_NotFound(t *testing.T) {
	svc, flaky := newService(t, fixture)
	ctx := context.Background()

	_, err := svc.Update(ctx, 999, item.Input{Name: "x"})
	assert.ErrorIs(t, err, item.ErrNotFound)

	_, err = svc.Delete(ctx, 999)
	assert.ErrorIs(t, err, item.ErrNotFound)

	assert.Zero(t, flaky.replaces, "a miss must not rewrite the store")
}

func TestMutations_PropagateLoadErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "items.json")
	require.NoError(t, writeFile(path, "{not json"))
	svc := New(store.NewFileStore(path), nil)
	ctx := context.Background()

	_, err := svc.List(ctx, Query{})
	assert.ErrorIs(t, err, item.ErrParse)

	_, err = svc.Create(ctx, item.Input{Name: "x"})
	assert.ErrorIs(t, err, item.ErrParse)

	_, err = svc.Stats(ctx)
	assert.ErrorIs(t, err, item.ErrParse)
}

func TestStats(t *testing.T) {
	svc, _ := newService(t, fixture)

	agg, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, agg.Total)
	assert.InDelta(t, 1649.0, agg.AveragePrice, 1e-9)
}

func TestStats_ServedFromCache(t *testing.T) {
	svc, flaky := newService(t, fixture)
	ctx := context.Background()

	_, err := svc.Stats(ctx)
	require.NoError(t, err)
	loads := flaky.loadCount()

	for range 5 {
		_, err := svc.Stats(ctx)
		require.NoError(t, err)
	}
	assert.Equal(t, loads, flaky.loadCount())
}

func TestStats_InvalidatedByMutations(t *testing.T) {
	svc, _ := newService(t, fixture)
	ctx := context.Background()

	stats := func() item.Stats {
		t.Helper()
		agg, err := svc.Stats(ctx)
		require.NoError(t, err)
		return agg
	}

	assert.Equal(t, 2, stats().Total)

	created, err := svc.Create(ctx, item.Input{Name: "Lamp", Price: 102})
	require.NoError(t, err)
	assert.Equal(t, item.Stats{Total: 3, AveragePrice: 1133.3333333333333}, stats())

	_, err = svc.Update(ctx, created.ID, item.Input{Name: "Lamp", Price: 702})
	require.NoError(t, err)
	assert.Equal(t, item.Stats{Total: 3, AveragePrice: 1333.3333333333333}, stats())

	_, err = svc.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, item.Stats{Total: 2, AveragePrice: 1649}, stats())
}

func TestStats_FailedCommitKeepsCache(t *testing.T) {
	svc, flaky := newService(t, fixture)
	ctx := context.Background()

	before, err := svc.Stats(ctx)
	require.NoError(t, err)

	flaky.failNext = errors.New("disk full")
	_, err = svc.Create(ctx, item.Input{Name: "never", Price: 1})
	require.Error(t, err)

	cached, ok := svc.cache.Get(StatsKey)
	require.True(t, ok, "failed commit must not invalidate")
	assert.Equal(t, before, cached)

	all, err := svc.List(ctx, Query{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestConcurrentCreates(t *testing.T) {
	svc, _ := newService(t, fixture)
	ctx := context.Background()

	const writers = 20
	var wg sync.WaitGroup
	ids := make(chan int64, writers)
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			created, err := svc.Create(ctx, item.Input{Name: "w", Price: float64(i)})
			assert.NoError(t, err)
			ids <- created.ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[int64]bool{}
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}

	all, err := svc.List(ctx, Query{})
	require.NoError(t, err)
	assert.Len(t, all, len(fixture)+writers, "no update may be lost")

	agg, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(fixture)+writers, agg.Total)
}

func TestConcurrentStatsAndMutations(t *testing.T) {
	svc, _ := newService(t, fixture)
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := svc.Create(ctx, item.Input{Name: "x", Price: 1})
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := svc.Stats(ctx)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	agg, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(fixture)+10, agg.Total)
}

func TestPatch(t *testing.T) {
	svc, _ := newService(t, fixture)
	ctx := context.Background()

	before, after, err := svc.Patch(ctx, 2, func(cur item.Item) item.Input {
		return item.Input{Name: cur.Name, Category: cur.Category, Price: 650}
	})
	require.NoError(t, err)
	assert.Equal(t, fixture[1], before)
	assert.Equal(t, item.Item{ID: 2, Name: "Ergonomic Chair", Category: "Furniture", Price: 650}, after)

	_, _, err = svc.Patch(ctx, 999, func(item.Item) item.Input {
		t.Error("fn must not run for a missing record")
		return item.Input{}
	})
	assert.ErrorIs(t, err, item.ErrNotFound)
}

// Two services on one file stand in for a server and a CLI invocation.
func newSharedServices(t *testing.T) (*Service, *Service) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "items.json")
	require.NoError(t, store.NewFileStore(path).Replace(context.Background(), fixture))
	return New(store.NewFileStore(path), nil), New(store.NewFileStore(path), nil)
}

func TestCreate_TwoServicesOneFile(t *testing.T) {
	a, b := newSharedServices(t)
	ctx := context.Background()

	const perService = 25
	var wg sync.WaitGroup
	ids := make(chan int64, 2*perService)
	for _, svc := range []*Service{a, b} {
		for range perService {
			wg.Add(1)
			go func() {
				defer wg.Done()
				created, err := svc.Create(ctx, item.Input{Name: "w"})
				assert.NoError(t, err)
				ids <- created.ID
			}()
		}
	}
	wg.Wait()
	close(ids)

	seen := map[int64]bool{}
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}

	all, err := a.List(ctx, Query{})
	require.NoError(t, err)
	assert.Len(t, all, len(fixture)+2*perService, "no create may be lost")
}

// A patch from a second service that starts while the first is mid-cycle
// must wait, then merge onto the first one's committed record.
func TestPatch_WritesBetweenReadAndCommitAreNotLost(t *testing.T) {
	a, b := newSharedServices(t)
	ctx := context.Background()

	inCycle := make(chan struct{})
	release := make(chan struct{})
	aDone := make(chan error, 1)
	go func() {
		_, _, err := a.Patch(ctx, 1, func(cur item.Item) item.Input {
			close(inCycle)
			<-release
			return item.Input{Name: cur.Name, Category: cur.Category, Price: 1999}
		})
		aDone <- err
	}()
	<-inCycle

	bDone := make(chan error, 1)
	go func() {
		_, _, err := b.Patch(ctx, 1, func(cur item.Item) item.Input {
			return item.Input{Name: "Laptop Air", Category: cur.Category, Price: cur.Price}
		})
		bDone <- err
	}()

	select {
	case <-bDone:
		t.Fatal("second patch committed while the first held the cycle")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	require.NoError(t, <-aDone)
	require.NoError(t, <-bDone)

	got, err := a.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, item.Item{ID: 1, Name: "Laptop Air", Category: "Electronics", Price: 1999}, got)
}

func TestMutations_CanceledContext(t *testing.T) {
	svc, flaky := newService(t, fixture)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Create(ctx, item.Input{Name: "x"})
	assert.ErrorIs(t, err, item.ErrIO)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, flaky.replaces)
}
