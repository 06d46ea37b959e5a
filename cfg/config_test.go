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

package cfg

import (
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "furumi.yml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoad_MinimalConfig(t *testing.T) {
	path := writeTempConfig(t, `
server: "http://origin.example.com"
mountpoint: "/mnt/furumi"
`)

	c, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "origin.example.com", c.Server.Host)
	assert.Equal(t, "http", c.Server.Scheme)
	assert.Equal(t, ResolvedPath(filepath.Clean("/mnt/furumi")), c.MountPoint)
	assert.False(t, c.HasCredentials())
}

func TestLoad_CredentialsAndLogging(t *testing.T) {
	path := writeTempConfig(t, `
server: "https://origin.example.com"
mountpoint: "/mnt/furumi"
username: "alice"
password: "hunter2"
logging:
  severity: "debug"
  format: "text"
`)

	c, err := Load(path)

	require.NoError(t, err)
	assert.True(t, c.HasCredentials())
	assert.Equal(t, DEBUG, c.Logging.Severity)
	assert.Equal(t, "text", c.Logging.Format)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yml"))

	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"missing server", Config{MountPoint: "/mnt"}, true},
		{"missing mountpoint", Config{Server: url.URL{Host: "example.com"}}, true},
		{"valid", Config{Server: url.URL{Host: "example.com"}, MountPoint: "/mnt"}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLogSeverity_UnmarshalText_Invalid(t *testing.T) {
	var s LogSeverity
	err := s.UnmarshalText([]byte("bogus"))
	assert.Error(t, err)
}

func TestResolvedPath_UnmarshalText_Empty(t *testing.T) {
	var p ResolvedPath
	require.NoError(t, p.UnmarshalText([]byte("")))
	assert.Equal(t, ResolvedPath(""), p)
}
