// Copyright 2024 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cmd implements furumi's command-line entrypoint: flag and config
// file parsing, startup validation, and the mount lifecycle.
package cmd

import (
	"fmt"
	"os"

	"github.com/house-of-vanity/furumi/cfg"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "furumi",
	Short: "Mount a remote directory-listing HTTP endpoint as a read-only file system",
	Long: `furumi is a FUSE adapter that exposes a remote HTTP directory-listing
server as a locally mounted, read-only file system.`,
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "conf", cfg.DefaultConfigPath, "Path to the YAML config file")
	rootCmd.AddCommand(mountCmd)

	if err := bindFlags(mountCmd.Flags()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		viper.SetConfigType("yaml")
	}
}

// Execute runs the root command, translating any returned error into the
// process's exit code via exitError.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}
