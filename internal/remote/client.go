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

package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"

	"github.com/house-of-vanity/furumi/internal/logger"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// TransportError wraps a non-2xx HTTP response or a network failure talking
// to the remote server, carrying enough detail for callers to decide
// whether it maps to ENOENT, EIO, or something else.
type TransportError struct {
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("remote: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("remote: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Temporary reports whether a retry might succeed: server-side errors and
// network failures are temporary, 4xx client errors are not.
func (e *TransportError) Temporary() bool {
	if e.StatusCode == 0 {
		return true
	}
	return e.StatusCode >= 500
}

// Client talks to a single remote directory listing server.
type Client struct {
	server   url.URL
	username string
	password string

	httpClient *http.Client
	limiter    *rate.Limiter
	group      singleflight.Group
}

// New returns a Client for server. requestsPerSecond <= 0 disables
// throttling.
func New(server url.URL, username, password string, requestsPerSecond float64) *Client {
	var limiter *rate.Limiter
	if requestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	}

	return &Client{
		server:     server,
		username:   username,
		password:   password,
		httpClient: &http.Client{},
		limiter:    limiter,
	}
}

func (c *Client) url(remotePath string) string {
	u := c.server
	u.Path = path.Join(u.Path, remotePath)
	return u.String()
}

func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

// userAgent is sent on every request to the remote server.
const userAgent = "furumi"

func (c *Client) do(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", userAgent)
	if c.username != "" && c.password != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	return resp, nil
}

// List fetches the directory listing for remotePath, deduplicating
// concurrent calls for the same path via singleflight so that a burst of
// LookUpInode calls against an unpopulated directory triggers exactly one
// LIST.
func (c *Client) List(ctx context.Context, remotePath string) ([]Entry, error) {
	v, err, _ := c.group.Do(remotePath, func() (interface{}, error) {
		return c.list(ctx, remotePath)
	})
	if err != nil {
		return nil, err
	}
	return v.([]Entry), nil
}

func (c *Client) list(ctx context.Context, remotePath string) ([]Entry, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(remotePath), nil)
	if err != nil {
		return nil, err
	}

	logger.Debugf("remote: listing %s", remotePath)

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, &TransportError{StatusCode: resp.StatusCode}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &TransportError{StatusCode: resp.StatusCode}
	}

	var wire []wireEntry
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("decoding listing for %s: %w", remotePath, err)
	}

	entries := make([]Entry, 0, len(wire))
	for _, w := range wire {
		if w.Type == "file" && w.Size == nil {
			logger.Warnf("remote: entry %q in %s has no size; treating it as 0", w.Name, remotePath)
		}
		e, err := w.toEntry()
		if err != nil {
			logger.Warnf("remote: skipping entry %q in %s: %v", w.Name, remotePath, err)
			continue
		}
		entries = append(entries, e)
	}

	logger.Infof("remote: found %d entries in %s", len(entries), remotePath)
	return entries, nil
}

// ReadRange fetches size bytes starting at offset from remotePath via a
// ranged GET.
func (c *Client) ReadRange(ctx context.Context, remotePath string, offset int64, size int) ([]byte, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(remotePath), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", offset, offset+int64(size)-1))

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusPartialContent, http.StatusOK:
	case http.StatusNotFound:
		return nil, &TransportError{StatusCode: resp.StatusCode}
	case http.StatusRequestedRangeNotSatisfiable:
		return []byte{}, nil
	default:
		return nil, &TransportError{StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, int64(size)))
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	return data, nil
}
