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

package admin

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vizaxe/streammeta/pkg/streammeta"
	"go.uber.org/zap"
)

var nopLogger = zap.NewNop()

type Opts struct {
	// Store cannot be nil.
	Store *streammeta.Store

	// Metrics serves /metrics. Optional.
	Metrics prometheus.Gatherer

	// Logger is the *zap.Logger for the admin api.
	// A nil Logger will disable logging.
	Logger *zap.Logger
}

// NewRouter builds the admin http api: prometheus metrics plus cache
// inspection and flush endpoints.
func NewRouter(opts Opts) *chi.Mux {
	logger := opts.Logger
	if logger == nil {
		logger = nopLogger
	}

	r := chi.NewRouter()
	if opts.Metrics != nil {
		r.Get("/metrics", promhttp.HandlerFor(opts.Metrics, promhttp.HandlerOpts{}).ServeHTTP)
	}
	r.Get("/cache/len", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]int{"len": opts.Store.Len()})
	})
	r.Post("/cache/flush", func(w http.ResponseWriter, req *http.Request) {
		opts.Store.Flush()
		logger.Info("cache flushed via admin api")
		w.WriteHeader(http.StatusNoContent)
	})
	return r
}
