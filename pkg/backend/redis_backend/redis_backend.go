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
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vizaxe/streammeta/pkg/streammeta"
	"github.com/vizaxe/streammeta/pkg/utils"
	"go.uber.org/zap"
)

var nopLogger = zap.NewNop()

type Opts struct {
	// Client cannot be nil.
	Client redis.Cmdable

	// ClientCloser closes Client when RedisBackend.Close is called.
	// Optional.
	ClientCloser io.Closer

	// ClientTimeout specifies the timeout for fetch operations.
	// Default is 1s.
	ClientTimeout time.Duration

	// Prefix and Separator build the redis key for a stream name:
	// <Prefix><Separator><stream>. Separator defaults to ":".
	Prefix    string
	Separator string

	// Logger is the *zap.Logger for this RedisBackend.
	// A nil Logger will disable logging.
	Logger *zap.Logger
}

func (opts *Opts) init() error {
	if opts.Client == nil {
		return fmt.Errorf("nil client")
	}
	utils.SetDefaultNum(&opts.ClientTimeout, time.Second)
	utils.SetDefaultString(&opts.Separator, ":")
	if opts.Logger == nil {
		opts.Logger = nopLogger
	}
	return nil
}

// RedisBackend serves stream metadata blobs stored in redis, one value per
// stream name. A bulk fetch is a single MGET.
type RedisBackend struct {
	opts Opts
}

var _ streammeta.Backend = (*RedisBackend)(nil)

func New(opts Opts) (*RedisBackend, error) {
	if err := opts.init(); err != nil {
		return nil, err
	}
	return &RedisBackend{opts: opts}, nil
}

// NewFromURL initializes a RedisBackend with its own client dialed from a
// redis url.
func NewFromURL(url string, logger *zap.Logger) (*RedisBackend, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url, %w", err)
	}
	opt.MaxRetries = -1
	client := redis.NewClient(opt)
	return New(Opts{
		Client:       client,
		ClientCloser: client,
		Logger:       logger,
	})
}

// Close closes the client this backend owns, if any.
func (b *RedisBackend) Close() error {
	if f := b.opts.ClientCloser; f != nil {
		return f.Close()
	}
	return nil
}

// FetchMetadata looks up every stream with one MGET. Keys redis has no value
// for are omitted from the result. Transport errors propagate.
func (b *RedisBackend) FetchMetadata(ctx context.Context, streams []string) (map[string]streammeta.StreamMetadata, error) {
	keys := make([]string, 0, len(streams))
	for _, name := range streams {
		keys = append(keys, b.key(name))
	}
	ctx, cancel := context.WithTimeout(ctx, b.opts.ClientTimeout)
	defer cancel()
	vals, err := b.opts.Client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis mget: %w", err)
	}
	out := make(map[string]streammeta.StreamMetadata, len(streams))
	for i, v := range vals {
		if v == nil {
			continue
		}
		s, ok := v.(string)
		if !ok {
			b.opts.Logger.Warn("unexpected redis value type", zap.String("key", keys[i]))
			continue
		}
		out[streams[i]] = streammeta.StreamMetadata(s)
	}
	return out, nil
}

func (b *RedisBackend) key(stream string) string {
	if len(b.opts.Prefix) == 0 {
		return stream
	}
	return b.opts.Prefix + b.opts.Separator + stream
}
