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

// Package remote is furumi's client for the upstream HTTP directory
// listing service: a LIST call that returns a JSON array describing one
// directory's children, and a ranged GET used to read a slice of a file's
// bytes.
package remote

import "time"

// wireEntry is the JSON shape returned by a LIST call, one per child of the
// listed directory.
type wireEntry struct {
	Name  string  `json:"name"`
	Type  string  `json:"type"`
	Mtime string  `json:"mtime"`
	Size  *uint64 `json:"size"`
}

// Entry is one child of a remote directory, with the wire format's string
// fields converted into their Go equivalents.
type Entry struct {
	Name  string
	IsDir bool
	// Recognized reports whether Type named a directory or a file. An
	// entry whose wire type was absent or held some other value (e.g. a
	// symlink) is not recognized; callers must skip it rather than mint it
	// as a regular file.
	Recognized bool
	Mtime      time.Time
	Size       uint64
}

func (w wireEntry) toEntry() (Entry, error) {
	e := Entry{Name: w.Name}

	switch w.Type {
	case "dir", "directory":
		e.IsDir = true
		e.Recognized = true
	case "file":
		e.Recognized = true
	}

	if w.Size != nil {
		e.Size = *w.Size
	}

	if w.Mtime != "" {
		t, err := time.Parse(time.RFC1123Z, w.Mtime)
		if err != nil {
			t, err = time.Parse(time.RFC1123, w.Mtime)
		}
		if err != nil {
			return Entry{}, err
		}
		e.Mtime = t
	}

	return e, nil
}
