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
	"context"
	"fmt"

	"github.com/house-of-vanity/furumi/internal/logger"
	"github.com/house-of-vanity/furumi/internal/metrics"
	"github.com/house-of-vanity/furumi/internal/remote"
	"github.com/house-of-vanity/furumi/fs/inode"
)

// populate fills in dir's children from a remote LIST, if it hasn't been
// done already. It is safe to call concurrently for the same directory:
// the remote client's own singleflight dedup collapses concurrent LISTs
// against the same path down to one, and populateFromEntries re-checks
// Populated after reacquiring dir's lock so only the first caller's
// children are attached to the directory.
//
// LOCKS_EXCLUDED(dir)
func (fs *fileSystem) populate(ctx context.Context, dirIno *inode.Inode) error {
	dirIno.Lock()
	already := dirIno.Dir.Populated
	dirPath := dirIno.Path
	dirIno.Unlock()

	if already {
		return nil
	}

	metrics.ListRequestsTotal.Inc()
	entries, err := fs.client.List(ctx, dirPath)
	if err != nil {
		metrics.ListErrorsTotal.Inc()
		return fmt.Errorf("listing %s: %w", dirPath, err)
	}

	fs.populateFromEntries(dirIno, entries)
	return nil
}

// populateFromEntries mints child inodes for dirIno from an already-fetched
// listing, without itself talking to the remote. Used both by populate,
// after its own LIST call, and by NewFileSystem to seed the root directory
// from the listing the caller fetched at mount startup, so that listing
// isn't thrown away and re-fetched lazily on the first real operation
// against root.
//
// A caller racing another population of the same directory is handled by
// re-checking Populated after reacquiring dir's lock: only the first caller
// attaches its children. A caller that loses that race has already reserved
// and committed its own child inodes; they stay in the table, attached to
// no directory. The table.Reserve/Commit calls that do the minting happen with dirIno's lock released: fs.go and
// inode/table.go both document table-then-inode as the only safe lock
// order, so nothing here may hold dirIno's lock while also acquiring the
// table's.
//
// LOCKS_EXCLUDED(dir)
func (fs *fileSystem) populateFromEntries(dirIno *inode.Inode, entries []remote.Entry) {
	dirIno.Lock()
	already := dirIno.Dir.Populated
	dirPath := dirIno.Path
	dirIno.Unlock()

	if already {
		return
	}

	type minted struct {
		name  string
		child *inode.Inode
	}
	children := make([]minted, 0, len(entries))

	for _, e := range entries {
		if !e.Recognized {
			logger.Warnf("fs: skipping %s/%s: unrecognized entry type", dirPath, e.Name)
			continue
		}

		childPath := joinRemotePath(dirPath, e.Name)
		slot := fs.table.Reserve()

		kind := inode.KindRegularFile
		attr := inode.Attr{Size: e.Size, Mtime: e.Mtime, Mode: fs.fileMode}
		if e.IsDir {
			kind = inode.KindDirectory
			attr = inode.Attr{Mtime: e.Mtime, Mode: fs.dirMode}
		}

		child := inode.New(slot.Ino(), childPath, kind, attr)
		if kind == inode.KindDirectory {
			child.Dir.Parent = dirIno.ID()
		} else {
			fs.fileIndex.add(dirIno.ID(), slot.Ino(), childPath)
		}

		slot.Commit(child)
		children = append(children, minted{name: e.Name, child: child})
	}

	dirIno.Lock()
	defer dirIno.Unlock()

	if dirIno.Dir.Populated {
		// Lost the race: another caller already populated this directory
		// while entries above were being minted. The inodes committed
		// above stay in the table but are never attached to this directory.
		return
	}

	for _, m := range children {
		if _, exists := dirIno.Dir.Child(m.name); !exists {
			dirIno.Dir.AddChild(m.name, m.child.ID())
		}
	}

	dirIno.Dir.Populated = true
	metrics.InodeCount.Set(float64(fs.table.Len()))

	logger.Debugf("fs: populated %s with %d children", dirPath, len(entries))
}
