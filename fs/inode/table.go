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

import (
	"fmt"

	"github.com/jacobsa/fuse/fuseops"
	"github.com/jacobsa/syncutil"
)

// Table is the single source of truth for every inode furumi has minted
// during a mount. It owns one coarse lock guarding the ID counter and the
// map itself; callers then acquire the individual Inode's own lock for any
// read or write of its fields. Lock ordering is always table first, then
// inode - acquiring them in the other order risks deadlock against a
// concurrent operation going table -> inode on a different ID.
type Table struct {
	mu syncutil.InvariantMutex

	// GUARDED_BY(mu)
	nextID fuseops.InodeID

	// INVARIANT: for all keys k, fuseops.RootInodeID <= k < nextID
	// INVARIANT: for all k/v, v.ID() == k
	//
	// GUARDED_BY(mu)
	byID map[fuseops.InodeID]*Inode
}

// NewTable returns an empty Table. The root inode is not created here;
// the caller mints it with Reserve/Commit like any other inode; by
// convention furumi always reserves fuseops.RootInodeID first so the
// invariant above holds from the start.
func NewTable() *Table {
	t := &Table{
		nextID: fuseops.RootInodeID,
		byID:   make(map[fuseops.InodeID]*Inode),
	}
	t.mu = syncutil.NewInvariantMutex(t.checkInvariants)
	return t
}

func (t *Table) checkInvariants() {
	for id, in := range t.byID {
		if id < fuseops.RootInodeID || id >= t.nextID {
			panic(fmt.Sprintf("illegal inode ID: %v", id))
		}
		if in.ID() != id {
			panic(fmt.Sprintf("ID mismatch: %v vs %v", in.ID(), id))
		}
	}
}

// VacantSlot is an inode ID the Table has reserved but not yet committed.
// Reserving before doing any I/O or remote listing means the monotonic ID
// counter advances even if the caller ultimately decides not to create the
// inode (e.g. because a concurrent LookUpInode won the race) -- an ID is
// simply burned, never reused.
type VacantSlot struct {
	ino fuseops.InodeID
	t   *Table
}

// Ino returns the ID this slot was reserved for.
func (v VacantSlot) Ino() fuseops.InodeID { return v.ino }

// Commit records in as the inode for this slot's ID and returns it. in.ID()
// must equal v.Ino(). Commit must be called at most once per slot.
func (v VacantSlot) Commit(in *Inode) *Inode {
	if in.ID() != v.ino {
		panic(fmt.Sprintf("committing inode %v into slot %v", in.ID(), v.ino))
	}

	v.t.mu.Lock()
	defer v.t.mu.Unlock()
	v.t.byID[v.ino] = in
	return in
}

// Reserve hands out the next inode ID without creating anything yet.
func (t *Table) Reserve() VacantSlot {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.nextID
	t.nextID++
	return VacantSlot{ino: id, t: t}
}

// Get returns the inode for id, if it is still live.
func (t *Table) Get(id fuseops.InodeID) (*Inode, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	in, ok := t.byID[id]
	return in, ok
}

// Len reports the number of live inodes, for the metrics gauge.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.byID)
}
