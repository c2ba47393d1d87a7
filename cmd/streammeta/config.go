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
	"fmt"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"github.com/vizaxe/streammeta/pkg/utils"
)

type Config struct {
	// Tag labels this instance's metrics.
	Tag string `mapstructure:"tag"`

	// TTLMillis applies uniformly to all cache entries. Default is 5000.
	TTLMillis int `mapstructure:"ttl_millis"`

	Admin    AdminConfig     `mapstructure:"admin"`
	Backends []BackendConfig `mapstructure:"backends"`
}

type AdminConfig struct {
	Listen string `mapstructure:"listen"`
}

type BackendConfig struct {
	// Tag is the backend name streams are requested under.
	Tag string `mapstructure:"tag"`

	// Type is one of "redis", "http", "static".
	Type string `mapstructure:"type"`

	// URL is the redis url or http endpoint, depending on Type.
	URL string `mapstructure:"url"`

	// Streams is the fixed table for static backends.
	Streams map[string]string `mapstructure:"streams"`
}

func loadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("streammeta")
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := new(Config)
	if err := v.Unmarshal(cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	utils.SetDefaultNum(&cfg.TTLMillis, 5000)
	utils.SetDefaultString(&cfg.Admin.Listen, "127.0.0.1:8355")
	if len(cfg.Backends) == 0 {
		return nil, fmt.Errorf("no backends configured")
	}
	for i, bc := range cfg.Backends {
		if len(bc.Tag) == 0 {
			return nil, fmt.Errorf("backend #%d has no tag", i)
		}
	}
	return cfg, nil
}
