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

package cfg

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

// LogSeverity is the datatype for the logging.severity config field. It only
// accepts the values below, case-insensitively.
type LogSeverity string

const (
	TRACE   LogSeverity = "TRACE"
	DEBUG   LogSeverity = "DEBUG"
	INFO    LogSeverity = "INFO"
	WARNING LogSeverity = "WARNING"
	ERROR   LogSeverity = "ERROR"
	OFF     LogSeverity = "OFF"
)

var validSeverities = []string{"TRACE", "DEBUG", "INFO", "WARNING", "ERROR", "OFF"}

func (s *LogSeverity) UnmarshalText(text []byte) error {
	v := strings.ToUpper(string(text))
	if !slices.Contains(validSeverities, v) {
		return fmt.Errorf("invalid log severity: %q", text)
	}

	*s = LogSeverity(v)
	return nil
}

// ResolvedPath is a filesystem path that has been made absolute relative to
// the current working directory at decode time.
type ResolvedPath string

func (p *ResolvedPath) UnmarshalText(text []byte) error {
	s := string(text)
	if s == "" {
		*p = ""
		return nil
	}

	abs, err := filepath.Abs(s)
	if err != nil {
		return fmt.Errorf("resolving path %q: %w", s, err)
	}

	*p = ResolvedPath(abs)
	return nil
}

func (p ResolvedPath) String() string {
	return string(p)
}
