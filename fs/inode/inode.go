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

// Package inode holds the in-memory representation of the remote
// directory tree furumi has discovered so far: one Inode per directory or
// file the kernel has been told about, addressed by fuseops.InodeID and
// guarded by a coarse Table lock plus a per-inode lock (see Table for the
// locking discipline).
package inode

import (
	"math"
	"os"
	"sync"
	"time"

	"github.com/jacobsa/fuse/fuseops"
)

// Kind distinguishes the two node types furumi ever mints. There is no
// symlink or special-file kind: the remote listing endpoint only describes
// directories and regular files.
type Kind int

const (
	KindDirectory Kind = iota
	KindRegularFile
)

// Attr is the subset of fuseops.InodeAttributes furumi actually tracks.
// Populated lazily from the remote listing's RemoteEntry for file inodes,
// and synthesized for directories.
type Attr struct {
	Size  uint64
	Mtime time.Time
	Mode  uint32 // permission bits only; Kind supplies the type bits
}

// Inode is a single node in furumi's view of the remote tree. All mutable
// fields are guarded by the embedded Mutex; callers must hold it for any
// read or write of Attr, Dir, or the lookup count.
type Inode struct {
	sync.Mutex

	id   fuseops.InodeID
	kind Kind

	// GUARDED_BY(Mutex)
	attr Attr

	// GUARDED_BY(Mutex)
	lookupCount uint64

	// Dir is non-nil iff kind == KindDirectory.
	//
	// GUARDED_BY(Mutex)
	Dir *Directory

	// Path is the remote path this inode was minted for (e.g. "/movies" or
	// "/movies/reel.mkv"). It never changes after the inode is created:
	// furumi has no rename operation, so an inode's identity and its
	// position in the tree are fixed for its lifetime.
	Path string
}

// forgottenLookupCount seeds a directory's lookup count at mint time,
// matching the original implementation's u64::max_value() / 2. furumi
// doesn't implement Forget at all, so nothing ever reads this back down,
// but it documents the same fidelity choice the original made.
const forgottenLookupCount = math.MaxUint64 / 2

// New creates a file or directory inode. Callers must assign the returned
// Inode's ID immediately via a Table reservation; New itself does not talk
// to the Table.
func New(id fuseops.InodeID, path string, kind Kind, attr Attr) *Inode {
	in := &Inode{
		id:   id,
		kind: kind,
		attr: attr,
		Path: path,
	}

	if kind == KindDirectory {
		in.Dir = newDirectory()
		in.lookupCount = forgottenLookupCount
	}

	return in
}

func (in *Inode) ID() fuseops.InodeID { return in.id }
func (in *Inode) Kind() Kind          { return in.kind }

// IsDir reports whether this inode is a directory. Safe to call without
// holding the lock since Kind never changes after New.
func (in *Inode) IsDir() bool { return in.kind == KindDirectory }

// Attributes returns the fuseops-ready attribute struct for this inode.
// LOCKS_REQUIRED(in)
func (in *Inode) Attributes() fuseops.InodeAttributes {
	var mode os.FileMode
	var nlink uint64 = 1

	if in.kind == KindDirectory {
		mode = os.ModeDir | os.FileMode(in.attr.Mode)
		nlink = 2
	} else {
		mode = os.FileMode(in.attr.Mode)
	}

	return fuseops.InodeAttributes{
		Size:  in.attr.Size,
		Nlink: nlink,
		Mode:  mode,
		Mtime: in.attr.Mtime,
		Atime: in.attr.Mtime,
		Ctime: in.attr.Mtime,
	}
}

// IncrementLookupCount bumps the kernel's reference count on this inode.
// There is no corresponding decrement: furumi does not implement Forget, so
// the count is tracked for fidelity with the kernel contract but never
// drives destruction.
// LOCKS_REQUIRED(in)
func (in *Inode) IncrementLookupCount() {
	in.lookupCount++
}

