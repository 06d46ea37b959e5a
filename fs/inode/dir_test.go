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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectory_AddAndLookupChild(t *testing.T) {
	d := newDirectory()
	d.AddChild("movies", 5)

	id, ok := d.Child("movies")
	require.True(t, ok)
	assert.Equal(t, uint64(5), uint64(id))

	_, ok = d.Child("missing")
	assert.False(t, ok)
}

func TestDirectory_EntriesSnapshot(t *testing.T) {
	d := newDirectory()
	d.AddChild("a", 2)
	d.AddChild("b", 3)

	entries := d.Entries()
	assert.Len(t, entries, 2)

	d.AddChild("c", 4)
	assert.Len(t, entries, 2, "snapshot must not observe later AddChild calls")
}

func TestDirectory_EntriesPreservesInsertionOrder(t *testing.T) {
	d := newDirectory()
	d.AddChild("zebra", 5)
	d.AddChild("apple", 6)
	d.AddChild("mango", 7)

	entries := d.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, []string{"zebra", "apple", "mango"},
		[]string{entries[0].Name, entries[1].Name, entries[2].Name})
}
