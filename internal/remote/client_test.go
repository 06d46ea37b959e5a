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
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustURL(t *testing.T, s string) url.URL {
	t.Helper()
	u, err := url.Parse(s)
	require.NoError(t, err)
	return *u
}

func TestList_DecodesEntries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/movies", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"name":"reel.mkv","type":"file","mtime":"Mon, 02 Jan 2006 15:04:05 +0000","size":1024},
			{"name":"trailers","type":"dir","mtime":"Mon, 02 Jan 2006 15:04:05 +0000"}
		]`))
	}))
	defer srv.Close()

	c := New(mustURL(t, srv.URL), "", "", 0)
	entries, err := c.List(context.Background(), "/movies")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "reel.mkv", entries[0].Name)
	assert.False(t, entries[0].IsDir)
	assert.Equal(t, uint64(1024), entries[0].Size)

	assert.Equal(t, "trailers", entries[1].Name)
	assert.True(t, entries[1].IsDir)
}

func TestList_NotFoundReturnsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(mustURL(t, srv.URL), "", "", 0)
	_, err := c.List(context.Background(), "/missing")
	require.Error(t, err)

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, http.StatusNotFound, te.StatusCode)
	assert.False(t, te.Temporary())
}

func TestList_ServerErrorIsTemporary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New(mustURL(t, srv.URL), "", "", 0)
	_, err := c.List(context.Background(), "/")
	require.Error(t, err)

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.True(t, te.Temporary())
}

func TestList_SendsBasicAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "alice", user)
		assert.Equal(t, "hunter2", pass)
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := New(mustURL(t, srv.URL), "alice", "hunter2", 0)
	_, err := c.List(context.Background(), "/")
	require.NoError(t, err)
}

func TestReadRange_SetsRangeHeaderAndTrimsBody(t *testing.T) {
	const full = "0123456789abcdef"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "bytes=4-7", r.Header.Get("Range"))
		w.WriteHeader(http.StatusPartialContent)
		w.Write([]byte(full[4:]))
	}))
	defer srv.Close()

	c := New(mustURL(t, srv.URL), "", "", 0)
	data, err := c.ReadRange(context.Background(), "/movies/reel.mkv", 4, 4)
	require.NoError(t, err)
	assert.Equal(t, "4567", string(data))
}

func TestReadRange_UnsatisfiableRangeReturnsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusRequestedRangeNotSatisfiable)
	}))
	defer srv.Close()

	c := New(mustURL(t, srv.URL), "", "", 0)
	data, err := c.ReadRange(context.Background(), "/movies/reel.mkv", 100, 10)
	require.NoError(t, err)
	assert.Empty(t, data)
}
