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
	"sync"
	"time"
)

type entry struct {
	metadata StreamMetadata

	// Millis of the fetch that produced metadata, never of a mere
	// validation. Entries are replaced wholesale, not mutated.
	lastRefresh int64
}

// Store holds the current cache entries. It is safe for concurrent use:
// lookups take a shared lock, inserts an exclusive one. There is no
// eviction; entries are replaced on refresh and otherwise only go stale.
type Store struct {
	ttl int64

	mu sync.RWMutex
	m  map[StreamIdentity]entry
}

// NewStore initializes an empty Store with the given entry ttl.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		ttl: ttl.Milliseconds(),
		m:   make(map[StreamIdentity]entry),
	}
}

// Lookup returns the cached metadata for id if an entry exists and is no
// older than the ttl as of now. Staleness and absence are indistinguishable
// to the caller.
func (s *Store) Lookup(id StreamIdentity, now int64) (StreamMetadata, bool) {
	s.mu.RLock()
	e, ok := s.m[id]
	s.mu.RUnlock()
	if !ok || now-e.lastRefresh > s.ttl {
		return nil, false
	}
	return e.metadata, true
}

// Insert creates or replaces the entry for id with refresh time now.
// Concurrent inserts on the same key are last-writer-wins.
func (s *Store) Insert(id StreamIdentity, metadata StreamMetadata, now int64) {
	s.mu.Lock()
	s.m[id] = entry{metadata: metadata, lastRefresh: now}
	s.mu.Unlock()
}

// Len returns the current number of entries, stale ones included.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}

// Flush removes all stored entries.
func (s *Store) Flush() {
	s.mu.Lock()
	s.m = make(map[StreamIdentity]entry)
	s.mu.Unlock()
}
