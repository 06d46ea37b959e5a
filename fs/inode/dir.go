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

package inode

import "github.com/jacobsa/fuse/fuseops"

// Directory holds the children furumi has discovered for a directory
// inode, along with the parent link needed to reconstruct this directory's
// remote path. It is embedded in Inode rather than a separate map keyed by
// ID, since every access to it already happens under the owning Inode's
// lock.
type Directory struct {
	// Parent is the inode ID of this directory's parent, or
	// fuseops.RootInodeID for the root itself (whose parent is itself).
	Parent fuseops.InodeID

	// Populated reports whether children has been filled in from a remote
	// listing yet. False for every directory inode between the moment it is
	// minted from its parent's listing and the moment an OpenDir or a
	// LookUpInode first triggers a remote list against its path.
	//
	// There is deliberately no invalidation: once true, it stays true for the
	// lifetime of the inode. furumi mounts read-only, and the remote
	// endpoint's directory listings are treated as immutable for the
	// duration of a mount.
	Populated bool

	// children maps a child's base name to the inode ID furumi minted for
	// it. Populated by the first remote list of this directory's path.
	children map[string]fuseops.InodeID

	// order records the names in children in the order they were added,
	// i.e. the order the remote LIST response returned them in. Readdir
	// must reproduce that order rather than the map's own iteration order.
	order []string
}

func newDirectory() *Directory {
	return &Directory{
		children: make(map[string]fuseops.InodeID),
	}
}

// Child returns the inode ID of the named child, if any.
// LOCKS_REQUIRED(owning Inode)
func (d *Directory) Child(name string) (fuseops.InodeID, bool) {
	id, ok := d.children[name]
	return id, ok
}

// AddChild records a freshly minted child under name. It is a caller error
// to add a name that already exists.
// LOCKS_REQUIRED(owning Inode)
func (d *Directory) AddChild(name string, id fuseops.InodeID) {
	d.children[name] = id
	d.order = append(d.order, name)
}

// Entries returns a stable snapshot of this directory's children in
// insertion order (the order the remote LIST response returned them in),
// suitable for handing to a dirHandle at Opendir time. The snapshot does
// not observe later AddChild calls, matching the fact that furumi never
// repopulates a directory once Populated is true.
// LOCKS_REQUIRED(owning Inode)
func (d *Directory) Entries() []DirEntry {
	entries := make([]DirEntry, 0, len(d.order))
	for _, name := range d.order {
		entries = append(entries, DirEntry{Name: name, ID: d.children[name]})
	}
	return entries
}

// DirEntry is one child in a Directory snapshot.
type DirEntry struct {
	Name string
	ID   fuseops.InodeID
}
