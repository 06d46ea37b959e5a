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

package fs

import (
	"path"
	"sync"

	"github.com/jacobsa/fuse/fuseops"
)

// joinRemotePath joins a directory's remote path with a child's base name,
// producing the path furumi hands to the remote client for a LIST or
// READ-RANGE call. The root directory's path is "/", so its children don't
// get a doubled slash.
func joinRemotePath(dir, name string) string {
	if dir == "/" {
		return "/" + name
	}
	return path.Join(dir, name)
}

// fileIndexEntry records the remote path a file inode was minted for.
type fileIndexEntry struct {
	Parent fuseops.InodeID
	Ino    fuseops.InodeID
	Path   string
}

// fileIndex is an append-only record of every file inode furumi has ever
// minted, scanned linearly by ReadFile to recover a path from an inode ID.
// Nothing is ever removed from it: furumi does not implement Forget, so a
// file inode and its entry here last for the whole mount.
type fileIndex struct {
	mu      sync.Mutex
	entries []fileIndexEntry
}

func (fi *fileIndex) add(parent, ino fuseops.InodeID, path string) {
	fi.mu.Lock()
	defer fi.mu.Unlock()
	fi.entries = append(fi.entries, fileIndexEntry{Parent: parent, Ino: ino, Path: path})
}

// pathFor scans the index for ino, returning its remote path. The scan is
// linear by design, not merely by oversight.
func (fi *fileIndex) pathFor(ino fuseops.InodeID) (string, bool) {
	fi.mu.Lock()
	defer fi.mu.Unlock()

	for i := range fi.entries {
		if fi.entries[i].Ino == ino {
			return fi.entries[i].Path, true
		}
	}
	return "", false
}
