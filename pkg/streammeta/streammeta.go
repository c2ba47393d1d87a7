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
	"time"
)

// StreamIdentity identifies a logical stream: the name of the backend that
// owns it plus the stream name within that backend. Comparable by value and
// used as the cache key.
type StreamIdentity struct {
	Backend string
	Stream  string
}

func (id StreamIdentity) String() string {
	return id.Backend + "/" + id.Stream
}

// StreamMetadata is an opaque blob describing a stream's offsets/partitions.
// It is produced and owned by a backend. The cache stores and returns it
// verbatim and never inspects it.
type StreamMetadata []byte

// Backend answers bulk metadata queries for the streams it owns.
// A backend call may block on network I/O.
type Backend interface {
	// FetchMetadata returns metadata for the requested stream names keyed by
	// stream name. Names the backend cannot resolve are omitted from the
	// result, not reported as errors.
	FetchMetadata(ctx context.Context, streams []string) (map[string]StreamMetadata, error)
}

// Registry maps backend names to backends. It is fixed at construction and
// must not be mutated afterwards.
type Registry map[string]Backend

// Clock is the time source for freshness decisions, in milliseconds since
// an arbitrary fixed epoch. Replaceable for deterministic tests.
type Clock interface {
	Now() int64
}

type systemClock struct{}

func (systemClock) Now() int64 {
	return time.Now().UnixMilli()
}

// SystemClock is the default wall clock.
var SystemClock Clock = systemClock{}
