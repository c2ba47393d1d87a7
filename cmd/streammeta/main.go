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

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use: "streammeta",
}

func init() {
	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Start the stream metadata cache.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			debug, _ := cmd.Flags().GetBool("debug")
			return run(cfgPath, debug)
		},
		SilenceUsage: true,
	}
	startCmd.Flags().StringP("config", "c", "config.yaml", "config file path")
	startCmd.Flags().Bool("debug", false, "debug logging")
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(newServiceCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
