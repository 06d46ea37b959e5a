// Copyright 2015 Google Inc. All Rights Reserved.
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

// Package cfg holds the configuration consumed by the mount command: the
// remote server to expose, the mountpoint, optional credentials, and the
// ambient logging/metrics knobs. It is deliberately small; the filesystem
// core in fs/ knows nothing about how it was populated.
package cfg

import (
	"fmt"
	"net/url"
	"os"
)

// DefaultConfigPath mirrors the original implementation's default, so
// existing deployments' /etc/furumi.yml keeps working unmodified.
const DefaultConfigPath = "/etc/furumi.yml"

type Config struct {
	Server     url.URL      `yaml:"server" mapstructure:"server"`
	MountPoint ResolvedPath `yaml:"mountpoint" mapstructure:"mountpoint"`
	Username   string       `yaml:"username" mapstructure:"username"`
	Password   string       `yaml:"password" mapstructure:"password"`

	// Foreground, when true, skips the daemonize re-exec and runs the mount
	// loop in the calling process.
	Foreground bool `yaml:"foreground" mapstructure:"foreground"`

	// RequestsPerSecond throttles outgoing LIST/READ-RANGE calls. Zero means
	// unlimited.
	RequestsPerSecond float64 `yaml:"requests-per-second" mapstructure:"requests-per-second"`

	// MetricsAddress, when non-empty, is the address a Prometheus /metrics
	// endpoint is served on (e.g. "127.0.0.1:9100").
	MetricsAddress string `yaml:"metrics-address" mapstructure:"metrics-address"`

	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
}

type LoggingConfig struct {
	Severity LogSeverity  `yaml:"severity" mapstructure:"severity"`
	Format   string       `yaml:"format" mapstructure:"format"`
	FilePath ResolvedPath `yaml:"file-path" mapstructure:"file-path"`
	LogRotateConfig
}

type LogRotateConfig struct {
	MaxFileSizeMB   int  `yaml:"max-file-size-mb" mapstructure:"max-file-size-mb"`
	BackupFileCount int  `yaml:"backup-file-count" mapstructure:"backup-file-count"`
	Compress        bool `yaml:"compress" mapstructure:"compress"`
}

// DefaultLogRotateConfig matches the rotation defaults used by the rest of
// the pack's lumberjack-backed loggers: modest file size, a handful of
// backups, compressed.
func DefaultLogRotateConfig() LogRotateConfig {
	return LogRotateConfig{
		MaxFileSizeMB:   512,
		BackupFileCount: 10,
		Compress:        true,
	}
}

func DefaultConfig() Config {
	return Config{
		Foreground: false,
		Logging: LoggingConfig{
			Severity:        INFO,
			Format:          "json",
			LogRotateConfig: DefaultLogRotateConfig(),
		},
	}
}

// Validate checks the fields that cmd's exit-code contract (spec.md §6)
// depends on. It does not check MountPoint's existence as a directory; that
// check requires a stat call and is left to the caller so this function stays
// a pure validator.
func (c *Config) Validate() error {
	if c.Server.Host == "" {
		return fmt.Errorf("server is not set")
	}

	if c.MountPoint == "" {
		return fmt.Errorf("mountpoint is not set")
	}

	return nil
}

// MountPointIsDir reports whether c.MountPoint exists and is a directory,
// corresponding to exit code 4 in spec.md §6.
func (c *Config) MountPointIsDir() bool {
	info, err := os.Stat(string(c.MountPoint))
	return err == nil && info.IsDir()
}

// HasCredentials reports whether both Username and Password are set, the
// condition under which the remote client attaches a Basic auth header.
func (c *Config) HasCredentials() bool {
	return c.Username != "" && c.Password != ""
}
