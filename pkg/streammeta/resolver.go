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
	"fmt"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/vizaxe/streammeta/pkg/utils"
	"go.uber.org/zap"
)

const (
	defaultTTL = time.Millisecond * 5000
)

var nopLogger = zap.NewNop()

type ResolverOpts struct {
	// Registry cannot be empty. It is not mutated after construction.
	Registry Registry

	// TTL applies uniformly to all entries. Default is 5000ms.
	TTL time.Duration

	// Clock is the time source for freshness decisions.
	// Default is SystemClock.
	Clock Clock

	// MetricsTag labels this resolver's metrics.
	MetricsTag string

	// Logger is the *zap.Logger for this Resolver.
	// A nil Logger will disable logging.
	Logger *zap.Logger
}

func (opts *ResolverOpts) init() error {
	if len(opts.Registry) == 0 {
		return fmt.Errorf("empty backend registry")
	}
	utils.SetDefaultNum(&opts.TTL, defaultTTL)
	if opts.Clock == nil {
		opts.Clock = SystemClock
	}
	if opts.Logger == nil {
		opts.Logger = nopLogger
	}
	return nil
}

// Resolver answers batched stream metadata requests out of a Store and
// contacts a backend only for entries that are missing or stale. Misses are
// grouped by backend so that each backend sees at most one bulk call per
// request, whatever the batch size. It is stateless across calls except
// through the Store.
type Resolver struct {
	opts ResolverOpts

	logger *zap.Logger
	store  *Store

	queryTotal prometheus.Counter
	hitTotal   prometheus.Counter
	missTotal  prometheus.Counter
	fetchTotal *prometheus.CounterVec
	size       prometheus.GaugeFunc
}

// NewResolver initializes a Resolver with an empty Store.
func NewResolver(opts ResolverOpts) (*Resolver, error) {
	if err := opts.init(); err != nil {
		return nil, err
	}
	store := NewStore(opts.TTL)
	lb := map[string]string{"tag": opts.MetricsTag}
	r := &Resolver{
		opts: opts,

		logger: opts.Logger,
		store:  store,

		queryTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "query_total",
			Help:        "The total number of requested stream identities",
			ConstLabels: lb,
		}),
		hitTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "hit_total",
			Help:        "The total number of requests that hit the cache",
			ConstLabels: lb,
		}),
		missTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "miss_total",
			Help:        "The total number of requests that missed the cache",
			ConstLabels: lb,
		}),
		fetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "backend_fetch_total",
			Help:        "The total number of bulk fetch calls per backend",
			ConstLabels: lb,
		}, []string{"backend"}),
		size: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name:        "size_current",
			Help:        "Current cache size in entries",
			ConstLabels: lb,
		}, func() float64 {
			return float64(store.Len())
		}),
	}
	return r, nil
}

// Store returns the resolver's cache store.
func (r *Resolver) Store() *Store {
	return r.store
}

// RegisterMetrics registers the resolver's collectors with reg.
func (r *Resolver) RegisterMetrics(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{r.queryTotal, r.hitTotal, r.missTotal, r.fetchTotal, r.size} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// GetStreamMetadata resolves metadata for every requested stream, serving
// fresh entries from the cache and fetching the rest with one bulk call per
// distinct backend. The call is all-or-nothing: an unknown backend name, a
// backend error, or a stream left unresolved after all fetches fails the
// whole call and no results are returned. Freshness for the whole batch is
// judged against a single clock reading taken at entry.
//
// Entries fetched from a backend are stored with that clock reading as their
// refresh time. Cache hits are not re-stored, so their ttl keeps counting
// down from the original fetch. Concurrent calls that miss the same stream
// may each call its backend; the last insert wins.
func (r *Resolver) GetStreamMetadata(ctx context.Context, streams []StreamIdentity) (map[StreamIdentity]StreamMetadata, error) {
	now := r.opts.Clock.Now()

	results := make(map[StreamIdentity]StreamMetadata, len(streams))
	missGroups := make(map[string][]string)
	seen := make(map[StreamIdentity]struct{}, len(streams))
	for _, id := range streams {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		r.queryTotal.Inc()
		if md, ok := r.store.Lookup(id, now); ok {
			r.hitTotal.Inc()
			results[id] = md
			continue
		}
		r.missTotal.Inc()
		missGroups[id.Backend] = append(missGroups[id.Backend], id.Stream)
	}

	// Resolve every miss group to a backend before any fetch. An unknown
	// backend fails the call even for streams that were cache hits.
	backends := make(map[string]Backend, len(missGroups))
	for name := range missGroups {
		b, ok := r.opts.Registry[name]
		if !ok {
			return nil, &UnknownBackendError{Backend: name}
		}
		backends[name] = b
	}

	for name, names := range missGroups {
		r.fetchTotal.WithLabelValues(name).Inc()
		fetched, err := backends[name].FetchMetadata(ctx, names)
		if err != nil {
			return nil, fmt.Errorf("backend %s fetch: %w", name, err)
		}
		r.logger.Debug("fetched from backend",
			zap.String("backend", name),
			zap.Int("requested", len(names)),
			zap.Int("resolved", len(fetched)))
		for stream, md := range fetched {
			id := StreamIdentity{Backend: name, Stream: stream}
			r.store.Insert(id, md, now)
			results[id] = md
		}
	}

	var missing []StreamIdentity
	for id := range seen {
		if _, ok := results[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		sort.Slice(missing, func(i, j int) bool {
			return missing[i].String() < missing[j].String()
		})
		return nil, &IncompleteResultError{Missing: missing}
	}
	return results, nil
}
