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

package redis_backend

import (
	"context"
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/vizaxe/streammeta/pkg/streammeta"
)

type fakeCmdable struct {
	redis.Cmdable

	data map[string]string
	err  error
}

func (f *fakeCmdable) MGet(ctx context.Context, keys ...string) *redis.SliceCmd {
	cmd := redis.NewSliceCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	vals := make([]interface{}, 0, len(keys))
	for _, k := range keys {
		if v, ok := f.data[k]; ok {
			vals = append(vals, v)
		} else {
			vals = append(vals, nil)
		}
	}
	cmd.SetVal(vals)
	return cmd
}

func TestRedisBackend_FetchMetadata(t *testing.T) {
	client := &fakeCmdable{data: map[string]string{
		"meta:orders":   "m-orders",
		"meta:payments": "m-payments",
	}}
	b, err := New(Opts{Client: client, Prefix: "meta"})
	require.NoError(t, err)

	got, err := b.FetchMetadata(context.Background(), []string{"orders", "payments", "ghost"})
	require.NoError(t, err)
	require.Equal(t, map[string]streammeta.StreamMetadata{
		"orders":   streammeta.StreamMetadata("m-orders"),
		"payments": streammeta.StreamMetadata("m-payments"),
	}, got)
}

func TestRedisBackend_TransportErrorPropagates(t *testing.T) {
	boom := errors.New("io timeout")
	b, err := New(Opts{Client: &fakeCmdable{err: boom}})
	require.NoError(t, err)

	_, err = b.FetchMetadata(context.Background(), []string{"orders"})
	require.ErrorIs(t, err, boom)
}

func TestRedisBackend_Key(t *testing.T) {
	b, err := New(Opts{Client: &fakeCmdable{}})
	require.NoError(t, err)
	require.Equal(t, "orders", b.key("orders"))

	b, err = New(Opts{Client: &fakeCmdable{}, Prefix: "test_prefix", Separator: "/"})
	require.NoError(t, err)
	require.Equal(t, "test_prefix/orders", b.key("orders"))
}

func TestRedisBackend_NilClientRejected(t *testing.T) {
	_, err := New(Opts{})
	require.Error(t, err)
}
