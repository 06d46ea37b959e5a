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

package cmd

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/house-of-vanity/furumi/cfg"
	"github.com/house-of-vanity/furumi/fs"
	"github.com/house-of-vanity/furumi/internal/logger"
	"github.com/house-of-vanity/furumi/internal/metrics"
	"github.com/house-of-vanity/furumi/internal/remote"
	"github.com/jacobsa/daemonize"
	"github.com/jacobsa/fuse"
	"github.com/jacobsa/fuse/fuseutil"
	"github.com/kardianos/osext"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const fsName = "furumi"

var mountCmd = &cobra.Command{
	Use:   "mount",
	Short: "Mount the configured remote server at the configured mountpoint",
	RunE:  runMount,
}

// exitError carries the exit code spec.md §6's validation contract assigns
// to a particular startup failure. Execute unwraps it; any other error
// exits 1.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func exitCodeFor(err error) int {
	if ee, ok := err.(*exitError); ok {
		return ee.code
	}
	return 1
}

func loadConfig() (*cfg.Config, error) {
	result := cfg.DefaultConfig()

	if cfgFile != "" {
		if err := viper.ReadInConfig(); err != nil {
			_, notFound := err.(viper.ConfigFileNotFoundError)
			notFound = notFound || os.IsNotExist(err)
			if !notFound || cfgFile != cfg.DefaultConfigPath {
				return nil, &exitError{1, fmt.Errorf("reading config file %q: %w", cfgFile, err)}
			}
		}
	}

	if err := viper.Unmarshal(&result, viper.DecodeHook(cfg.DecodeHook())); err != nil {
		return nil, &exitError{1, fmt.Errorf("decoding config: %w", err)}
	}

	return &result, nil
}

func runMount(cmd *cobra.Command, args []string) error {
	config, err := loadConfig()
	if err != nil {
		return err
	}

	if config.Server.Host == "" {
		return &exitError{2, fmt.Errorf("server is not set")}
	}
	if config.MountPoint == "" {
		return &exitError{3, fmt.Errorf("mountpoint is not set")}
	}
	if !config.MountPointIsDir() {
		return &exitError{4, fmt.Errorf("mountpoint %q is not a directory", config.MountPoint)}
	}

	if err := logger.InitLogFile(config.Logging); err != nil {
		return &exitError{1, fmt.Errorf("initializing logger: %w", err)}
	}

	username, password := "", ""
	if config.HasCredentials() {
		username, password = config.Username, config.Password
	}
	client := remote.New(config.Server, username, password, config.RequestsPerSecond)

	logger.Infof("furumi: fetching root listing from %s", config.Server.String())
	rootEntries, err := client.List(context.Background(), "/")
	if err != nil {
		return &exitError{5, fmt.Errorf("initial listing of %s failed: %w", config.Server.String(), err)}
	}

	fsys := fs.NewFileSystem(client, fs.Config{DirMode: 0o555, FileMode: 0o444}, rootEntries)
	server := fuseutil.NewFileSystemServer(fsys)

	if !config.Foreground {
		if err := daemonizeSelf(); err != nil {
			return &exitError{1, err}
		}
		return nil
	}

	mfs, err := mountAndServe(config, server)
	if err != nil {
		callDaemonizeSignalOutcome(err)
		return &exitError{1, err}
	}
	callDaemonizeSignalOutcome(nil)

	registerSignalHandler(string(config.MountPoint))

	if config.MetricsAddress != "" {
		go func() {
			if err := metrics.Serve(context.Background(), config.MetricsAddress); err != nil {
				logger.Errorf("furumi: metrics server stopped: %v", err)
			}
		}()
	}

	if err := mfs.Join(context.Background()); err != nil {
		return fmt.Errorf("file system unmounted with error: %w", err)
	}

	return nil
}

// daemonizeSelf re-execs the current binary with --foreground set, letting
// the child do the actual mounting and signalling success or failure back
// through daemonize's pipe. It forwards every original argument — including
// persistent flags like --conf given before the "mount" subcommand — rather
// than assuming os.Args[1] is always "mount", stripping any --foreground the
// caller already passed and appending a fresh one last so it always wins
// regardless of pflag's last-occurrence-wins parsing order.
func daemonizeSelf() error {
	path, err := osext.Executable()
	if err != nil {
		return fmt.Errorf("osext.Executable: %w", err)
	}

	args := make([]string, 0, len(os.Args))
	for _, a := range os.Args[1:] {
		if a == "--foreground" || strings.HasPrefix(a, "--foreground=") {
			continue
		}
		args = append(args, a)
	}
	args = append(args, "--foreground")

	env := []string{fmt.Sprintf("PATH=%s", os.Getenv("PATH"))}

	if err := daemonize.Run(path, args, env, os.Stdout); err != nil {
		return fmt.Errorf("daemonize.Run: %w", err)
	}

	logger.Infof("furumi: mounted successfully")
	return nil
}

func callDaemonizeSignalOutcome(err error) {
	if err2 := daemonize.SignalOutcome(err); err2 != nil {
		logger.Errorf("furumi: failed to signal outcome to parent process: %v", err2)
	}
}

func mountAndServe(config *cfg.Config, server fuse.Server) (*fuse.MountedFileSystem, error) {
	mountCfg := &fuse.MountConfig{
		FSName:     fsName,
		Subtype:    "furumi",
		VolumeName: volumeNameFor(config.Server),
		Options: map[string]string{
			"ro":           "",
			"auto_unmount": "",
			"allow_other":  "",
		},
	}

	logger.Infof("furumi: mounting %s at %s", config.Server.String(), config.MountPoint)
	mfs, err := fuse.Mount(string(config.MountPoint), server, mountCfg)
	if err != nil {
		return nil, fmt.Errorf("fuse.Mount: %w", err)
	}

	return mfs, nil
}

func volumeNameFor(server url.URL) string {
	if server.Host == "" {
		return "furumi"
	}
	return server.Host
}

// registerSignalHandler lets the user unmount with Ctrl-C or SIGTERM,
// matching the convention every mount-style CLI in the pack follows.
func registerSignalHandler(mountPoint string) {
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		for {
			<-signalChan
			logger.Infof("furumi: received signal, attempting to unmount %s...", mountPoint)

			if err := fuse.Unmount(mountPoint); err != nil {
				logger.Errorf("furumi: failed to unmount in response to signal: %v", err)
				continue
			}

			logger.Infof("furumi: successfully unmounted %s", mountPoint)
			return
		}
	}()
}
