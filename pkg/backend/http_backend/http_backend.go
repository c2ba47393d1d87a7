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

package http_backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vizaxe/streammeta/pkg/streammeta"
	"github.com/vizaxe/streammeta/pkg/utils"
	"go.uber.org/zap"
)

var nopLogger = zap.NewNop()

type Opts struct {
	// URL is the bulk lookup endpoint. Cannot be empty.
	URL string

	// Client performs the requests. Default is a client with ClientTimeout.
	Client *http.Client

	// ClientTimeout applies when Client is nil. Default is 5s.
	ClientTimeout time.Duration

	// Logger is the *zap.Logger for this HttpBackend.
	// A nil Logger will disable logging.
	Logger *zap.Logger
}

func (opts *Opts) init() error {
	if len(opts.URL) == 0 {
		return fmt.Errorf("empty url")
	}
	utils.SetDefaultNum(&opts.ClientTimeout, time.Second*5)
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: opts.ClientTimeout}
	}
	if opts.Logger == nil {
		opts.Logger = nopLogger
	}
	return nil
}

type fetchRequest struct {
	Streams []string `json:"streams"`
}

// HttpBackend fetches stream metadata from a remote http endpoint with one
// bulk POST per call. The endpoint answers with a json object mapping stream
// names to metadata strings; names it cannot resolve are simply absent.
type HttpBackend struct {
	opts Opts
}

var _ streammeta.Backend = (*HttpBackend)(nil)

func New(opts Opts) (*HttpBackend, error) {
	if err := opts.init(); err != nil {
		return nil, err
	}
	return &HttpBackend{opts: opts}, nil
}

func (b *HttpBackend) FetchMetadata(ctx context.Context, streams []string) (map[string]streammeta.StreamMetadata, error) {
	body, err := json.Marshal(fetchRequest{Streams: streams})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.opts.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.opts.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("http fetch: unexpected status %d", resp.StatusCode)
	}

	raw := make(map[string]string)
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	out := make(map[string]streammeta.StreamMetadata, len(raw))
	for name, md := range raw {
		out[name] = streammeta.StreamMetadata(md)
	}
	return out, nil
}
