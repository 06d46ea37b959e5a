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
	"io"
	"sync"
)

// AsyncLogger buffers writes through a bounded channel and flushes them to
// the underlying writer (typically a lumberjack.Logger) from a single
// background goroutine, so that a slow disk or rotation pause never blocks
// a FUSE op handler's call to Infof/Errorf/etc.
//
// When the buffer fills, Write drops the record rather than blocking the
// caller; dropped records are counted but not themselves logged, to avoid a
// feedback loop under sustained backpressure.
type AsyncLogger struct {
	w       io.Writer
	entries chan []byte

	closeOnce sync.Once
	done      chan struct{}

	mu      sync.Mutex
	dropped uint64
}

// NewAsyncLogger starts the background flush goroutine and returns a ready
// to use AsyncLogger. bufferSize is the number of pending log lines that may
// queue before Write starts dropping.
func NewAsyncLogger(w io.Writer, bufferSize int) *AsyncLogger {
	if bufferSize <= 0 {
		bufferSize = 1
	}

	l := &AsyncLogger{
		w:       w,
		entries: make(chan []byte, bufferSize),
		done:    make(chan struct{}),
	}

	go l.run()
	return l
}

func (l *AsyncLogger) run() {
	defer close(l.done)
	for entry := range l.entries {
		_, _ = l.w.Write(entry)
	}
}

// Write implements io.Writer. It copies p, since the caller (slog's
// handler) may reuse its buffer after Write returns.
func (l *AsyncLogger) Write(p []byte) (int, error) {
	cp := make([]byte, len(p))
	copy(cp, p)

	select {
	case l.entries <- cp:
	default:
		l.mu.Lock()
		l.dropped++
		l.mu.Unlock()
	}

	return len(p), nil
}

// Dropped returns the number of log lines discarded so far because the
// internal buffer was full.
func (l *AsyncLogger) Dropped() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dropped
}

// Close stops accepting new writes and blocks until the background
// goroutine has flushed everything already queued.
func (l *AsyncLogger) Close() error {
	l.closeOnce.Do(func() {
		close(l.entries)
	})
	<-l.done

	if c, ok := l.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
