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

package static_backend

import (
	"context"

	"github.com/vizaxe/streammeta/pkg/streammeta"
)

// StaticBackend serves metadata from a fixed in-memory table. Useful for
// seeding well-known streams from config and in tests.
type StaticBackend struct {
	m map[string]streammeta.StreamMetadata
}

var _ streammeta.Backend = (*StaticBackend)(nil)

// New initializes a StaticBackend from a stream name to metadata table.
// The table is copied.
func New(streams map[string]string) *StaticBackend {
	m := make(map[string]streammeta.StreamMetadata, len(streams))
	for name, md := range streams {
		m[name] = streammeta.StreamMetadata(md)
	}
	return &StaticBackend{m: m}
}

func (b *StaticBackend) FetchMetadata(_ context.Context, streams []string) (map[string]streammeta.StreamMetadata, error) {
	out := make(map[string]streammeta.StreamMetadata, len(streams))
	for _, name := range streams {
		if md, ok := b.m[name]; ok {
			out[name] = md
		}
	}
	return out, nil
}
