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
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// bindFlags registers the flags mount accepts directly, on top of whatever
// a --conf file supplies. Flags always win over the config file, matching
// the precedence every pflag/viper CLI in the pack uses.
func bindFlags(flags *pflag.FlagSet) error {
	flags.String("server", "", "Base URL of the remote directory-listing server")
	flags.String("mountpoint", "", "Local directory to mount the file system at")
	flags.String("username", "", "Basic auth username for the remote server")
	flags.String("password", "", "Basic auth password for the remote server")
	flags.Bool("foreground", false, "Run in the foreground instead of daemonizing")
	flags.Float64("requests-per-second", 0, "Throttle outgoing LIST/read-range calls (0 = unlimited)")
	flags.String("metrics-address", "", "Address to serve Prometheus metrics on (empty disables it)")
	flags.String("log-severity", "", "TRACE, DEBUG, INFO, WARNING, ERROR, or OFF")
	flags.String("log-format", "", "text or json")
	flags.String("log-file-path", "", "Path to the log file (empty logs to stderr)")

	bindings := map[string]string{
		"server":              "server",
		"mountpoint":          "mountpoint",
		"username":            "username",
		"password":            "password",
		"foreground":          "foreground",
		"requests-per-second": "requests-per-second",
		"metrics-address":     "metrics-address",
		"log-severity":        "logging.severity",
		"log-format":          "logging.format",
		"log-file-path":       "logging.file-path",
	}

	for flagName, viperKey := range bindings {
		if err := viper.BindPFlag(viperKey, flags.Lookup(flagName)); err != nil {
			return err
		}
	}

	return nil
}
