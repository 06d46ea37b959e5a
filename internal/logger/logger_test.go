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

package logger

import (
	"bytes"
	"log/slog"
	"regexp"
	"testing"

	"github.com/house-of-vanity/furumi/cfg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

const (
	textTraceString = `^time="[0-9/:. ]{26}" severity=TRACE message="furumi: mounting /srv/archive"`
	textDebugString = `^time="[0-9/:. ]{26}" severity=DEBUG message="furumi: mounting /srv/archive"`
	textInfoString  = `^time="[0-9/:. ]{26}" severity=INFO message="furumi: mounting /srv/archive"`
	textWarnString  = `^time="[0-9/:. ]{26}" severity=WARNING message="furumi: mounting /srv/archive"`
	textErrorString = `^time="[0-9/:. ]{26}" severity=ERROR message="furumi: mounting /srv/archive"`

	jsonTraceString = `^{"timestamp":{"seconds":\d{10},"nanos":\d{1,9}},"severity":"TRACE","message":"furumi: mounting /srv/archive"}`
	jsonDebugString = `^{"timestamp":{"seconds":\d{10},"nanos":\d{1,9}},"severity":"DEBUG","message":"furumi: mounting /srv/archive"}`
	jsonInfoString  = `^{"timestamp":{"seconds":\d{10},"nanos":\d{1,9}},"severity":"INFO","message":"furumi: mounting /srv/archive"}`
	jsonWarnString  = `^{"timestamp":{"seconds":\d{10},"nanos":\d{1,9}},"severity":"WARNING","message":"furumi: mounting /srv/archive"}`
	jsonErrorString = `^{"timestamp":{"seconds":\d{10},"nanos":\d{1,9}},"severity":"ERROR","message":"furumi: mounting /srv/archive"}`
)

type LoggerSuite struct {
	suite.Suite
}

func TestLoggerSuite(t *testing.T) {
	suite.Run(t, new(LoggerSuite))
}

func redirectLogsToBuffer(buf *bytes.Buffer, level cfg.LogSeverity) {
	v := new(slog.LevelVar)
	defaultLogger = slog.New(defaultLoggerFactory.createJsonOrTextHandler(buf, v, ""))
	setLoggingLevel(string(level), v)
}

func loggingFuncs() []func() {
	return []func(){
		func() { Tracef("furumi: mounting %s", "/srv/archive") },
		func() { Debugf("furumi: mounting %s", "/srv/archive") },
		func() { Infof("furumi: mounting %s", "/srv/archive") },
		func() { Warnf("furumi: mounting %s", "/srv/archive") },
		func() { Errorf("furumi: mounting %s", "/srv/archive") },
	}
}

func capture(format string, level cfg.LogSeverity) []string {
	defaultLoggerFactory.format = format

	var buf bytes.Buffer
	redirectLogsToBuffer(&buf, level)

	var out []string
	for _, f := range loggingFuncs() {
		f()
		out = append(out, buf.String())
		buf.Reset()
	}
	return out
}

func assertOutput(t *testing.T, expected, actual []string) {
	for i := range actual {
		if expected[i] == "" {
			assert.Equal(t, "", actual[i])
			continue
		}
		assert.Regexp(t, regexp.MustCompile(expected[i]), actual[i])
	}
}

func (s *LoggerSuite) TestText_LevelOff() {
	assertOutput(s.T(), []string{"", "", "", "", ""}, capture("text", cfg.OFF))
}

func (s *LoggerSuite) TestText_LevelError() {
	assertOutput(s.T(), []string{"", "", "", "", textErrorString}, capture("text", cfg.ERROR))
}

func (s *LoggerSuite) TestText_LevelWarning() {
	assertOutput(s.T(), []string{"", "", "", textWarnString, textErrorString}, capture("text", cfg.WARNING))
}

func (s *LoggerSuite) TestText_LevelInfo() {
	assertOutput(s.T(), []string{"", "", textInfoString, textWarnString, textErrorString}, capture("text", cfg.INFO))
}

func (s *LoggerSuite) TestText_LevelDebug() {
	assertOutput(s.T(), []string{"", textDebugString, textInfoString, textWarnString, textErrorString}, capture("text", cfg.DEBUG))
}

func (s *LoggerSuite) TestText_LevelTrace() {
	assertOutput(s.T(), []string{textTraceString, textDebugString, textInfoString, textWarnString, textErrorString}, capture("text", cfg.TRACE))
}

func (s *LoggerSuite) TestJSON_LevelOff() {
	assertOutput(s.T(), []string{"", "", "", "", ""}, capture("json", cfg.OFF))
}

func (s *LoggerSuite) TestJSON_LevelError() {
	assertOutput(s.T(), []string{"", "", "", "", jsonErrorString}, capture("json", cfg.ERROR))
}

func (s *LoggerSuite) TestJSON_LevelTrace() {
	assertOutput(s.T(), []string{jsonTraceString, jsonDebugString, jsonInfoString, jsonWarnString, jsonErrorString}, capture("json", cfg.TRACE))
}

func (s *LoggerSuite) TestSetLoggingLevel() {
	cases := []struct {
		in   cfg.LogSeverity
		want slog.Level
	}{
		{cfg.TRACE, LevelTrace},
		{cfg.DEBUG, LevelDebug},
		{cfg.INFO, LevelInfo},
		{cfg.WARNING, LevelWarn},
		{cfg.ERROR, LevelError},
		{cfg.OFF, LevelOff},
	}

	for _, tc := range cases {
		v := new(slog.LevelVar)
		setLoggingLevel(string(tc.in), v)
		s.Equal(tc.want, v.Level())
	}
}
