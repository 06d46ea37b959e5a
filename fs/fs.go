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

// Package fs implements the FUSE operation dispatcher that exposes a
// remote directory listing server as a read-only file system, on top of
// the inode table in fs/inode and the remote client in internal/remote.
//
// Lock ordering: the table's own lock always goes before any individual
// inode's lock. fs itself holds no lock of its own beyond a small one
// guarding the directory handle map, which is never held while acquiring
// an inode lock.
package fs

import (
	"os"
	"sync"
	"syscall"

	"github.com/house-of-vanity/furumi/fs/inode"
	"github.com/house-of-vanity/furumi/internal/logger"
	"github.com/house-of-vanity/furumi/internal/metrics"
	"github.com/house-of-vanity/furumi/internal/remote"
	"github.com/jacobsa/fuse"
	"github.com/jacobsa/fuse/fuseops"
	"github.com/jacobsa/fuse/fuseutil"
)

// Config carries the knobs NewFileSystem needs that don't belong to the
// remote client: the permission bits to report for directories and files,
// since the remote listing endpoint has no notion of a POSIX mode.
type Config struct {
	DirMode  os.FileMode
	FileMode os.FileMode
}

type fileSystem struct {
	fuseutil.NotImplementedFileSystem

	client *remote.Client
	table  *inode.Table

	dirMode  uint32
	fileMode uint32

	fileIndex fileIndex

	handlesMu    sync.Mutex
	handles      map[fuseops.HandleID]*dirHandle
	nextHandleID fuseops.HandleID
}

// NewFileSystem builds the dispatcher and seeds the root inode. rootEntries
// is the listing of "/" the caller already fetched at startup (a nil slice
// means none was fetched, and the root is left unpopulated the same as any
// other directory, to be lazily listed on the first LookUpInode or
// OpenDir against it).
func NewFileSystem(client *remote.Client, cfg Config, rootEntries []remote.Entry) fuseutil.FileSystem {
	fs := &fileSystem{
		client:   client,
		table:    inode.NewTable(),
		dirMode:  uint32(cfg.DirMode),
		fileMode: uint32(cfg.FileMode),
		handles:  make(map[fuseops.HandleID]*dirHandle),
	}

	slot := fs.table.Reserve()
	root := inode.New(slot.Ino(), "/", inode.KindDirectory, inode.Attr{Mode: fs.dirMode})
	root.Dir.Parent = fuseops.RootInodeID
	slot.Commit(root)

	if rootEntries != nil {
		fs.populateFromEntries(root, rootEntries)
	}

	return fs
}

func (fs *fileSystem) Init(op *fuseops.InitOp) error {
	return nil
}

// LookUpInode resolves op.Name within op.Parent, populating the parent
// directory from a remote LIST first if it hasn't been listed yet (e.g. the
// kernel never opened it for reading), then, if the resolved child is
// itself a directory, eagerly populates the child too. That second LIST is
// what lets a subsequent Lookup into the child proceed without a
// remote call of its own: combined with the eager listing of the root at
// mount time, every directory a Lookup can ever resolve to arrives
// pre-populated for the next step down the path.
//
// LOCKS_EXCLUDED(fs.table)
func (fs *fileSystem) LookUpInode(op *fuseops.LookUpInodeOp) error {
	defer metrics.Timer("lookup")()

	parent, ok := fs.table.Get(op.Parent)
	if !ok {
		return fuse.ENOENT
	}
	if !parent.IsDir() {
		return fuse.ENOTDIR
	}

	if err := fs.populate(op.Context(), parent); err != nil {
		logger.Errorf("fs: lookup %s in parent %d: %v", op.Name, op.Parent, err)
		return syscall.ENODATA
	}

	parent.Lock()
	childID, ok := parent.Dir.Child(op.Name)
	parent.Unlock()
	if !ok {
		return fuse.ENOENT
	}

	child, ok := fs.table.Get(childID)
	if !ok {
		return fuse.ENOENT
	}

	if child.IsDir() {
		if err := fs.populate(op.Context(), child); err != nil {
			logger.Errorf("fs: lookup %s: populating %d: %v", op.Name, childID, err)
			return syscall.ENODATA
		}
	}

	child.Lock()
	defer child.Unlock()
	child.IncrementLookupCount()

	op.Entry.Child = child.ID()
	op.Entry.Attributes = child.Attributes()

	return nil
}

// GetInodeAttributes returns the current attributes for op.Inode.
func (fs *fileSystem) GetInodeAttributes(op *fuseops.GetInodeAttributesOp) error {
	in, ok := fs.table.Get(op.Inode)
	if !ok {
		return fuse.ENOENT
	}

	in.Lock()
	defer in.Unlock()
	op.Attributes = in.Attributes()

	return nil
}

// ForgetInode is not implemented: it falls through to the embedded
// fuseutil.NotImplementedFileSystem, which returns ENOSYS. The kernel
// tolerates that for Forget, and furumi's inodes are never destroyed
// mid-mount: lookup counts are tracked for fidelity with the kernel
// contract but nothing in this package ever reads them back down.

// OpenDir verifies op.Inode is a directory and allocates a handle snapshot
// of its children.
func (fs *fileSystem) OpenDir(op *fuseops.OpenDirOp) error {
	in, ok := fs.table.Get(op.Inode)
	if !ok {
		return fuse.ENOENT
	}
	if !in.IsDir() {
		return fuse.ENOTDIR
	}

	if err := fs.populate(op.Context(), in); err != nil {
		logger.Errorf("fs: opendir %d: %v", op.Inode, err)
		return fuse.EIO
	}

	dh := newDirHandle(fs.table, in)

	fs.handlesMu.Lock()
	defer fs.handlesMu.Unlock()
	handleID := fs.nextHandleID
	fs.nextHandleID++
	fs.handles[handleID] = dh
	op.Handle = handleID

	return nil
}

// ReadDir serves a page of directory entries from the handle allocated by
// OpenDir.
func (fs *fileSystem) ReadDir(op *fuseops.ReadDirOp) error {
	fs.handlesMu.Lock()
	dh, ok := fs.handles[op.Handle]
	fs.handlesMu.Unlock()
	if !ok {
		return fuse.EIO
	}

	return dh.ReadDir(op)
}

// ReleaseDirHandle discards the handle allocated by OpenDir.
func (fs *fileSystem) ReleaseDirHandle(op *fuseops.ReleaseDirHandleOp) error {
	fs.handlesMu.Lock()
	defer fs.handlesMu.Unlock()
	delete(fs.handles, op.Handle)

	return nil
}

// OpenFile verifies op.Inode is a regular file. furumi has no per-open
// state for files: every ReadFile goes straight to the remote client.
func (fs *fileSystem) OpenFile(op *fuseops.OpenFileOp) error {
	in, ok := fs.table.Get(op.Inode)
	if !ok || in.IsDir() {
		return fuse.ENOENT
	}

	return nil
}

// ReadFile serves a byte range of op.Inode via the remote client's ranged
// GET, recovering the inode's remote path from the file index rather than
// from the inode itself. If the index has no entry for this inode — which
// the file-index invariant makes practically unreachable, since every file
// inode is added to it at the moment it's minted — the request proceeds
// with an empty path rather than failing locally; the remote simply fails
// the request itself.
func (fs *fileSystem) ReadFile(op *fuseops.ReadFileOp) error {
	defer metrics.Timer("read")()

	path, _ := fs.fileIndex.pathFor(op.Inode)

	metrics.ReadRequestsTotal.Inc()
	data, err := fs.client.ReadRange(op.Context(), path, op.Offset, op.Size)
	if err != nil {
		metrics.ReadErrorsTotal.Inc()
		logger.Errorf("fs: read %s at %d: %v", path, op.Offset, err)
		return fuse.EIO
	}

	metrics.ReadBytesTotal.Add(float64(len(data)))
	op.Data = data

	return nil
}
