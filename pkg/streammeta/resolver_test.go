/*
 * Copyright (C) 2024, Vizaxe
 *
 * This file is part of streammeta.
 *
 * streammeta is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * streammeta is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 */

package streammeta

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now int64
}

func (c *fakeClock) Now() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d int64) {
	c.mu.Lock()
	c.now += d
	c.mu.Unlock()
}

type fakeBackend struct {
	mu    sync.Mutex
	data  map[string]StreamMetadata
	err   error
	calls [][]string
}

func (b *fakeBackend) FetchMetadata(_ context.Context, streams []string) (map[string]StreamMetadata, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	req := append([]string(nil), streams...)
	sort.Strings(req)
	b.calls = append(b.calls, req)
	if b.err != nil {
		return nil, b.err
	}
	out := make(map[string]StreamMetadata, len(streams))
	for _, name := range streams {
		if md, ok := b.data[name]; ok {
			out[name] = md
		}
	}
	return out, nil
}

func (b *fakeBackend) callCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.calls)
}

func newTestResolver(t *testing.T, reg Registry, clock Clock) *Resolver {
	t.Helper()
	r, err := NewResolver(ResolverOpts{
		Registry: reg,
		TTL:      time.Millisecond * 5000,
		Clock:    clock,
	})
	require.NoError(t, err)
	return r
}

func TestResolver_FreshHitSkipsBackend(t *testing.T) {
	clock := &fakeClock{now: 1000}
	kafka := &fakeBackend{data: map[string]StreamMetadata{"orders": StreamMetadata("m1")}}
	r := newTestResolver(t, Registry{"kafka": kafka}, clock)

	id := StreamIdentity{Backend: "kafka", Stream: "orders"}
	got, err := r.GetStreamMetadata(context.Background(), []StreamIdentity{id})
	require.NoError(t, err)
	require.Equal(t, StreamMetadata("m1"), got[id])
	require.Equal(t, 1, kafka.callCount())

	clock.Advance(4999)
	got, err = r.GetStreamMetadata(context.Background(), []StreamIdentity{id})
	require.NoError(t, err)
	require.Equal(t, StreamMetadata("m1"), got[id])
	require.Equal(t, 1, kafka.callCount())
}

func TestResolver_ExpiryTriggersRefetch(t *testing.T) {
	clock := &fakeClock{now: 1000}
	kafka := &fakeBackend{data: map[string]StreamMetadata{"orders": StreamMetadata("m1")}}
	r := newTestResolver(t, Registry{"kafka": kafka}, clock)

	id := StreamIdentity{Backend: "kafka", Stream: "orders"}
	_, err := r.GetStreamMetadata(context.Background(), []StreamIdentity{id})
	require.NoError(t, err)

	clock.Advance(5001)
	kafka.mu.Lock()
	kafka.data["orders"] = StreamMetadata("m2")
	kafka.mu.Unlock()

	got, err := r.GetStreamMetadata(context.Background(), []StreamIdentity{id})
	require.NoError(t, err)
	require.Equal(t, StreamMetadata("m2"), got[id])
	require.Equal(t, 2, kafka.callCount())

	// The refreshed entry got the new clock reading: still fresh later on.
	clock.Advance(4000)
	_, err = r.GetStreamMetadata(context.Background(), []StreamIdentity{id})
	require.NoError(t, err)
	require.Equal(t, 2, kafka.callCount())
}

func TestResolver_BatchesByBackend(t *testing.T) {
	clock := &fakeClock{now: 0}
	kafka := &fakeBackend{data: map[string]StreamMetadata{
		"a": StreamMetadata("ka"), "b": StreamMetadata("kb"), "c": StreamMetadata("kc"),
	}}
	pulsar := &fakeBackend{data: map[string]StreamMetadata{
		"d": StreamMetadata("pd"), "e": StreamMetadata("pe"),
	}}
	r := newTestResolver(t, Registry{"kafka": kafka, "pulsar": pulsar}, clock)

	req := []StreamIdentity{
		{Backend: "kafka", Stream: "a"},
		{Backend: "kafka", Stream: "b"},
		{Backend: "kafka", Stream: "c"},
		{Backend: "pulsar", Stream: "d"},
		{Backend: "pulsar", Stream: "e"},
	}
	got, err := r.GetStreamMetadata(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, got, 5)

	require.Equal(t, [][]string{{"a", "b", "c"}}, kafka.calls)
	require.Equal(t, [][]string{{"d", "e"}}, pulsar.calls)
}

func TestResolver_UnknownBackendFailsWholeCall(t *testing.T) {
	clock := &fakeClock{now: 0}
	kafka := &fakeBackend{data: map[string]StreamMetadata{"a": StreamMetadata("ka")}}
	r := newTestResolver(t, Registry{"kafka": kafka}, clock)

	// Warm the cache so "a" would be a hit.
	_, err := r.GetStreamMetadata(context.Background(), []StreamIdentity{{Backend: "kafka", Stream: "a"}})
	require.NoError(t, err)

	got, err := r.GetStreamMetadata(context.Background(), []StreamIdentity{
		{Backend: "kafka", Stream: "a"},
		{Backend: "nats", Stream: "x"},
	})
	require.Nil(t, got)
	ube := new(UnknownBackendError)
	require.ErrorAs(t, err, &ube)
	require.Equal(t, "nats", ube.Backend)
	require.Equal(t, 1, kafka.callCount())
}

func TestResolver_IncompleteResultNamesMissing(t *testing.T) {
	clock := &fakeClock{now: 0}
	kafka := &fakeBackend{data: map[string]StreamMetadata{"a": StreamMetadata("ka")}}
	r := newTestResolver(t, Registry{"kafka": kafka}, clock)

	got, err := r.GetStreamMetadata(context.Background(), []StreamIdentity{
		{Backend: "kafka", Stream: "a"},
		{Backend: "kafka", Stream: "ghost"},
	})
	require.Nil(t, got)
	ire := new(IncompleteResultError)
	require.ErrorAs(t, err, &ire)
	require.Equal(t, []StreamIdentity{{Backend: "kafka", Stream: "ghost"}}, ire.Missing)

	// The resolved stream was still cached: a follow-up for it alone is a hit.
	_, err = r.GetStreamMetadata(context.Background(), []StreamIdentity{{Backend: "kafka", Stream: "a"}})
	require.NoError(t, err)
	require.Equal(t, 1, kafka.callCount())
}

func TestResolver_BackendErrorPropagates(t *testing.T) {
	clock := &fakeClock{now: 0}
	boom := errors.New("connection refused")
	kafka := &fakeBackend{err: boom}
	r := newTestResolver(t, Registry{"kafka": kafka}, clock)

	got, err := r.GetStreamMetadata(context.Background(), []StreamIdentity{{Backend: "kafka", Stream: "a"}})
	require.Nil(t, got)
	require.ErrorIs(t, err, boom)
}

func TestResolver_IdempotentHit(t *testing.T) {
	clock := &fakeClock{now: 0}
	kafka := &fakeBackend{data: map[string]StreamMetadata{"a": StreamMetadata("ka")}}
	r := newTestResolver(t, Registry{"kafka": kafka}, clock)

	req := []StreamIdentity{{Backend: "kafka", Stream: "a"}}
	first, err := r.GetStreamMetadata(context.Background(), req)
	require.NoError(t, err)
	second, err := r.GetStreamMetadata(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, kafka.callCount())
}

func TestResolver_DuplicateIdentitiesCollapse(t *testing.T) {
	clock := &fakeClock{now: 0}
	kafka := &fakeBackend{data: map[string]StreamMetadata{"a": StreamMetadata("ka")}}
	r := newTestResolver(t, Registry{"kafka": kafka}, clock)

	got, err := r.GetStreamMetadata(context.Background(), []StreamIdentity{
		{Backend: "kafka", Stream: "a"},
		{Backend: "kafka", Stream: "a"},
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, [][]string{{"a"}}, kafka.calls)
}

func TestResolver_ConcurrentCalls(t *testing.T) {
	clock := &fakeClock{now: 0}
	kafka := &fakeBackend{data: map[string]StreamMetadata{
		"a": StreamMetadata("ka"), "b": StreamMetadata("kb"),
	}}
	r := newTestResolver(t, Registry{"kafka": kafka}, clock)

	errs := make(chan error, 16)
	wg := sync.WaitGroup{}
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.GetStreamMetadata(context.Background(), []StreamIdentity{
				{Backend: "kafka", Stream: "a"},
				{Backend: "kafka", Stream: "b"},
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
	// No single-flight: overlapping misses may each hit the backend, but
	// every entry settled into the store.
	require.Equal(t, 2, r.Store().Len())
}

func TestResolver_EmptyRegistryRejected(t *testing.T) {
	_, err := NewResolver(ResolverOpts{})
	require.Error(t, err)
}
