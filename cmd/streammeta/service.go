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
	"os"
	"path/filepath"

	"github.com/kardianos/service"
	"github.com/spf13/cobra"
)

type program struct{}

func (p *program) Start(s service.Service) error {
	go func() {
		if err := run("config.yaml", false); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}()
	return nil
}

func (p *program) Stop(s service.Service) error {
	return nil
}

func newService() (service.Service, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("cannot get the executable path: %w", err)
	}
	svcCfg := &service.Config{
		Name:             "streammeta",
		DisplayName:      "streammeta",
		Description:      "Stream metadata cache.",
		WorkingDirectory: filepath.Dir(execPath),
		Arguments:        []string{"start"},
	}
	return service.New(&program{}, svcCfg)
}

func newServiceCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "service",
		Short: "Manage streammeta as a system service.",
	}
	for _, action := range []string{"install", "uninstall", "start", "stop", "restart"} {
		action := action
		c.AddCommand(&cobra.Command{
			Use:          action,
			Short:        fmt.Sprintf("%s the system service.", action),
			SilenceUsage: true,
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := newService()
				if err != nil {
					return err
				}
				if err := service.Control(s, action); err != nil {
					return fmt.Errorf("service %s: %w", action, err)
				}
				return nil
			},
		})
	}
	return c
}
