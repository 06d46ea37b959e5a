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

package inode

import (
	"testing"

	"github.com/jacobsa/fuse/fuseops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_ReserveAssignsMonotonicIDs(t *testing.T) {
	tbl := NewTable()

	s1 := tbl.Reserve()
	s2 := tbl.Reserve()

	assert.Equal(t, fuseops.RootInodeID, s1.Ino())
	assert.Equal(t, fuseops.RootInodeID+1, s2.Ino())
}

func TestTable_CommitThenGet(t *testing.T) {
	tbl := NewTable()
	slot := tbl.Reserve()

	in := New(slot.Ino(), "/", KindDirectory, Attr{})
	slot.Commit(in)

	got, ok := tbl.Get(slot.Ino())
	require.True(t, ok)
	assert.Same(t, in, got)
}

func TestTable_ReserveBurnsIDOnAbandonedSlot(t *testing.T) {
	tbl := NewTable()

	abandoned := tbl.Reserve()
	next := tbl.Reserve()

	assert.Equal(t, abandoned.Ino()+1, next.Ino())
	_, ok := tbl.Get(abandoned.Ino())
	assert.False(t, ok)
}

func TestVacantSlot_CommitWrongIDPanics(t *testing.T) {
	tbl := NewTable()
	slot := tbl.Reserve()
	other := tbl.Reserve()

	in := New(other.Ino(), "/x", KindRegularFile, Attr{})
	assert.Panics(t, func() { slot.Commit(in) })
}
