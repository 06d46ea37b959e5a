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
	"sync"

	"github.com/house-of-vanity/furumi/fs/inode"
	"github.com/jacobsa/fuse/fuseops"
	"github.com/jacobsa/fuse/fuseutil"
)

// dirHandle is the state kept for a single Opendir/Readdir/Releasedir
// lifecycle. furumi takes a full snapshot of the directory's children, in
// the order the remote LIST response returned them, at Opendir time and
// serves every subsequent ReadDir from it; since a directory's remote
// listing is never repopulated mid-mount, there is no way for the snapshot
// to go stale during the handle's life.
type dirHandle struct {
	mu sync.Mutex

	// GUARDED_BY(mu)
	entries []fuseops.Dirent
}

// newDirHandle snapshots in's children, resolving each child's kind via
// table so the Dirent Type field is accurate.
// LOCKS_EXCLUDED(table)
func newDirHandle(table *inode.Table, in *inode.Inode) *dirHandle {
	in.Lock()
	raw := in.Dir.Entries()
	parent := in.Dir.Parent
	selfID := in.ID()
	in.Unlock()

	entries := make([]fuseops.Dirent, 0, len(raw)+2)
	entries = append(entries,
		fuseops.Dirent{Offset: 1, Inode: selfID, Name: ".", Type: fuseops.DT_Directory},
		fuseops.Dirent{Offset: 2, Inode: parent, Name: "..", Type: fuseops.DT_Directory},
	)

	for i, e := range raw {
		dt := fuseops.DT_File
		if child, ok := table.Get(e.ID); ok && child.IsDir() {
			dt = fuseops.DT_Directory
		}
		entries = append(entries, fuseops.Dirent{
			Offset: fuseops.DirOffset(i + 3),
			Inode:  e.ID,
			Name:   e.Name,
			Type:   dt,
		})
	}

	return &dirHandle{entries: entries}
}

// ReadDir serves a ReadDirOp from the handle's snapshot, matching the
// offset/size contract documented on fuseops.ReadDirOp: op.Offset indexes
// into the logical entry stream (not a byte count), and a caller that seeks
// past the end simply sees an empty result.
func (dh *dirHandle) ReadDir(op *fuseops.ReadDirOp) error {
	dh.mu.Lock()
	defer dh.mu.Unlock()

	index := int(op.Offset)
	if index > len(dh.entries) {
		index = len(dh.entries)
	}

	for i := index; i < len(dh.entries); i++ {
		grown := appendDirent(op.Data, dh.entries[i])
		if len(grown) > op.Size {
			break
		}
		op.Data = grown
	}

	return nil
}

// appendDirent writes d into a scratch buffer sized generously enough that
// fuseutil.WriteDirent never refuses for lack of room, then appends the
// result onto buf.
func appendDirent(buf []byte, d fuseops.Dirent) []byte {
	scratch := make([]byte, 64+len(d.Name))
	n := fuseutil.WriteDirent(scratch, d)
	if n == 0 {
		return buf
	}
	return append(buf, scratch[:n]...)
}
