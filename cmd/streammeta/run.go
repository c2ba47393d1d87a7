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

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/vizaxe/streammeta/pkg/admin"
	"github.com/vizaxe/streammeta/pkg/backend/http_backend"
	"github.com/vizaxe/streammeta/pkg/backend/redis_backend"
	"github.com/vizaxe/streammeta/pkg/backend/static_backend"
	"github.com/vizaxe/streammeta/pkg/streammeta"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func buildRegistry(cfg *Config, logger *zap.Logger) (streammeta.Registry, []io.Closer, error) {
	reg := make(streammeta.Registry, len(cfg.Backends))
	var closers []io.Closer
	for _, bc := range cfg.Backends {
		if _, dup := reg[bc.Tag]; dup {
			return nil, closers, fmt.Errorf("duplicated backend tag %q", bc.Tag)
		}
		switch bc.Type {
		case "redis":
			b, err := redis_backend.NewFromURL(bc.URL, logger.Named(bc.Tag))
			if err != nil {
				return nil, closers, fmt.Errorf("init redis backend %s: %w", bc.Tag, err)
			}
			closers = append(closers, b)
			reg[bc.Tag] = b
		case "http":
			b, err := http_backend.New(http_backend.Opts{URL: bc.URL, Logger: logger.Named(bc.Tag)})
			if err != nil {
				return nil, closers, fmt.Errorf("init http backend %s: %w", bc.Tag, err)
			}
			reg[bc.Tag] = b
		case "static":
			reg[bc.Tag] = static_backend.New(bc.Streams)
		default:
			return nil, closers, fmt.Errorf("unknown backend type %q", bc.Type)
		}
	}
	return reg, closers, nil
}

func run(cfgPath string, debug bool) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}
	logger, err := newLogger(debug)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	registry, closers, err := buildRegistry(cfg, logger)
	defer func() {
		for _, c := range closers {
			c.Close()
		}
	}()
	if err != nil {
		return err
	}

	resolver, err := streammeta.NewResolver(streammeta.ResolverOpts{
		Registry:   registry,
		TTL:        time.Duration(cfg.TTLMillis) * time.Millisecond,
		MetricsTag: cfg.Tag,
		Logger:     logger.Named("resolver"),
	})
	if err != nil {
		return fmt.Errorf("init resolver: %w", err)
	}

	metricsReg := prometheus.NewRegistry()
	if err := resolver.RegisterMetrics(prometheus.WrapRegistererWithPrefix("streammeta_", metricsReg)); err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	srv := &http.Server{
		Addr: cfg.Admin.Listen,
		Handler: admin.NewRouter(admin.Opts{
			Store:   resolver.Store(),
			Metrics: metricsReg,
			Logger:  logger.Named("admin"),
		}),
	}
	logger.Info("starting admin api",
		zap.String("listen", cfg.Admin.Listen),
		zap.Int("backends", len(registry)),
		zap.Int("ttl_millis", cfg.TTLMillis))

	g, ctx := errgroup.WithContext(context.Background())
	g.Go(func() error {
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		select {
		case <-ctx.Done():
			return nil
		case s := <-sig:
			logger.Info("exiting", zap.Stringer("signal", s))
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
