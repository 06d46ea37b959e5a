// Copyright 2023 Google Inc. All Rights Reserved.
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
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// jsonHandler and textHandler are thin slog.Handler implementations, since
// neither of slog's stock handlers produces the line shapes furumi's callers
// expect: a single `time="..." severity=LEVEL message="..."` line for text,
// and a flat `{"timestamp":{...},"severity":"...","message":"..."}` object
// for JSON.

type jsonHandler struct {
	mu     sync.Mutex
	w      io.Writer
	opts   *slog.HandlerOptions
	level  *slog.LevelVar
	attrs  []slog.Attr
	prefix string
}

func (h *jsonHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *jsonHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	fmt.Fprintf(&b, `{"timestamp":{"seconds":%d,"nanos":%d},"severity":%q,"message":%q`,
		r.Time.Unix(), r.Time.Nanosecond(), levelString(r.Level), h.prefix+r.Message)

	for _, a := range h.attrs {
		fmt.Fprintf(&b, ",%q:%q", a.Key, fmt.Sprint(a.Value.Any()))
	}
	r.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(&b, ",%q:%q", a.Key, fmt.Sprint(a.Value.Any()))
		return true
	})
	b.WriteString("}\n")

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

func (h *jsonHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &jsonHandler{
		w:      h.w,
		opts:   h.opts,
		level:  h.level,
		prefix: h.prefix,
		attrs:  append(append([]slog.Attr{}, h.attrs...), attrs...),
	}
}

func (h *jsonHandler) WithGroup(_ string) slog.Handler {
	return h
}

type textHandler struct {
	mu     sync.Mutex
	w      io.Writer
	opts   *slog.HandlerOptions
	level  *slog.LevelVar
	attrs  []slog.Attr
	prefix string
}

func (h *textHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *textHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	fmt.Fprintf(&b, "time=%q severity=%s message=%q", r.Time.Format("2006/01/02 15:04:05.000000"), levelString(r.Level), h.prefix+r.Message)

	for _, a := range h.attrs {
		fmt.Fprintf(&b, " %s=%v", a.Key, a.Value.Any())
	}
	r.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(&b, " %s=%v", a.Key, a.Value.Any())
		return true
	})
	b.WriteString("\n")

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

func (h *textHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &textHandler{
		w:      h.w,
		opts:   h.opts,
		level:  h.level,
		prefix: h.prefix,
		attrs:  append(append([]slog.Attr{}, h.attrs...), attrs...),
	}
}

func (h *textHandler) WithGroup(_ string) slog.Handler {
	return h
}

func levelString(l slog.Level) string {
	switch {
	case l < LevelDebug:
		return "TRACE"
	case l < LevelInfo:
		return "DEBUG"
	case l < LevelWarn:
		return "INFO"
	case l < LevelError:
		return "WARNING"
	default:
		return "ERROR"
	}
}
