// Copyright 2023 Matrix Origin
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sparse

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matrixorigin/arraykit/pkg/common/akerr"
	"github.com/matrixorigin/arraykit/pkg/common/mempool"
)

func item32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func get32(t *testing.T, s *Sparse, index int) uint32 {
	t.Helper()
	b, err := s.Get(index)
	require.NoError(t, err)
	return binary.LittleEndian.Uint32(b)
}

func TestAddGrowsByOne(t *testing.T) {
	mp := mempool.MustNew(t.Name())
	s, err := New(4)
	require.NoError(t, err)
	defer s.Free(mp)

	for i := uint32(0); i < 10; i++ {
		idx, err := s.Add(item32(100+i), mp)
		require.NoError(t, err)
		require.Equal(t, int(i), idx)
		require.Equal(t, int(i)+1, s.Len())
	}
	require.Equal(t, 10, s.UsedCount())
	for i := 0; i < 10; i++ {
		require.Equal(t, uint32(100+i), get32(t, s, i))
	}
}

func TestAddBadItem(t *testing.T) {
	mp := mempool.MustNew(t.Name())
	s, err := New(4)
	require.NoError(t, err)
	_, err = s.Add([]byte{1, 2}, mp)
	require.True(t, akerr.IsInvalidArg(err))
	_, err = s.Add(nil, mp)
	require.True(t, akerr.IsInvalidArg(err))
}

func TestRemoveLeavesHole(t *testing.T) {
	mp := mempool.MustNew(t.Name())
	s, err := New(4)
	require.NoError(t, err)
	defer s.Free(mp)

	for i := uint32(0); i < 5; i++ {
		_, err := s.Add(item32(i), mp)
		require.NoError(t, err)
	}
	require.NoError(t, s.Remove(2))
	// Other indices must be untouched.
	require.Equal(t, 5, s.Len())
	require.Equal(t, 4, s.UsedCount())
	require.Equal(t, uint32(3), get32(t, s, 3))

	_, err = s.Get(2)
	require.True(t, akerr.IsNoEntry(err))

	// Removing a hole is fine.
	require.NoError(t, s.Remove(2))
	require.Equal(t, 4, s.UsedCount())

	// Out of range is not.
	require.True(t, akerr.IsInvalidArg(s.Remove(-1)))
	require.True(t, akerr.IsInvalidArg(s.Remove(5)))
}

func TestAddReusesFirstHole(t *testing.T) {
	mp := mempool.MustNew(t.Name())
	s, err := New(4)
	require.NoError(t, err)
	defer s.Free(mp)

	for i := uint32(0); i < 5; i++ {
		_, err := s.Add(item32(i), mp)
		require.NoError(t, err)
	}
	require.NoError(t, s.Remove(3))
	require.NoError(t, s.Remove(1))

	idx, err := s.Add(item32(77), mp)
	require.NoError(t, err)
	require.Equal(t, 1, idx)
	idx, err = s.Add(item32(88), mp)
	require.NoError(t, err)
	require.Equal(t, 3, idx)
	// No growth happened while holes were available.
	require.Equal(t, 5, s.Len())
}

func TestGetErrors(t *testing.T) {
	mp := mempool.MustNew(t.Name())
	s, err := New(4)
	require.NoError(t, err)
	defer s.Free(mp)

	_, err = s.Get(0)
	require.True(t, akerr.IsInvalidArg(err))
	_, err = s.Get(-1)
	require.True(t, akerr.IsInvalidArg(err))

	_, err = s.Add(item32(1), mp)
	require.NoError(t, err)
	_, err = s.Get(1)
	require.True(t, akerr.IsInvalidArg(err))
}

func TestTruncate(t *testing.T) {
	mp := mempool.MustNew(t.Name())
	s, err := New(4)
	require.NoError(t, err)
	defer s.Free(mp)

	for i := uint32(0); i < 10; i++ {
		_, err := s.Add(item32(i), mp)
		require.NoError(t, err)
	}

	// Growing adds free slots at the end.
	require.NoError(t, s.Truncate(15, mp))
	require.Equal(t, 15, s.Len())
	require.Equal(t, 10, s.UsedCount())
	_, err = s.Get(12)
	require.True(t, akerr.IsNoEntry(err))

	// Shrinking discards dropped items, live ones survive.
	require.NoError(t, s.Truncate(4, mp))
	require.Equal(t, 4, s.Len())
	require.Equal(t, 4, s.UsedCount())
	require.Equal(t, uint32(3), get32(t, s, 3))

	// Truncate to zero clears everything.
	require.NoError(t, s.Truncate(0, mp))
	require.Equal(t, 0, s.Len())
	require.Equal(t, 0, s.UsedCount())

	require.True(t, akerr.IsInvalidArg(s.Truncate(-1, mp)))
}

func TestSetMinLen(t *testing.T) {
	mp := mempool.MustNew(t.Name())
	s, err := New(4)
	require.NoError(t, err)
	defer s.Free(mp)

	// Growing to the minimum.
	require.NoError(t, s.SetMinLen(8, mp))
	require.Equal(t, 8, s.Len())
	require.Equal(t, 8, s.MinLen())
	require.Equal(t, 0, s.UsedCount())

	// Truncating below the minimum is rejected.
	require.True(t, akerr.IsInvalidArg(s.Truncate(4, mp)))

	// Lowering the minimum re-enables it.
	require.NoError(t, s.SetMinLen(2, mp))
	require.NoError(t, s.Truncate(4, mp))
	require.Equal(t, 4, s.Len())

	require.True(t, akerr.IsInvalidArg(s.SetMinLen(-1, mp)))
}

func TestCompact(t *testing.T) {
	mp := mempool.MustNew(t.Name())
	s, err := New(4)
	require.NoError(t, err)
	defer s.Free(mp)

	for i := uint32(0); i < 20; i++ {
		_, err := s.Add(item32(i), mp)
		require.NoError(t, err)
	}
	// Punch holes at even indices.
	for i := 0; i < 20; i += 2 {
		require.NoError(t, s.Remove(i))
	}

	require.NoError(t, s.Compact(false, mp))
	require.Equal(t, 10, s.Len())
	require.Equal(t, 10, s.UsedCount())
	// Order of the survivors is preserved.
	for i := 0; i < 10; i++ {
		require.Equal(t, uint32(2*i+1), get32(t, s, i))
	}
}

func TestCompactSkipsFewHoles(t *testing.T) {
	mp := mempool.MustNew(t.Name())
	s, err := New(4)
	require.NoError(t, err)
	defer s.Free(mp)

	for i := uint32(0); i < 20; i++ {
		_, err := s.Add(item32(i), mp)
		require.NoError(t, err)
	}
	// One hole out of twenty is below the threshold.
	require.NoError(t, s.Remove(7))
	require.NoError(t, s.Compact(false, mp))
	require.Equal(t, 20, s.Len())
	_, err = s.Get(7)
	require.True(t, akerr.IsNoEntry(err))

	// Forcing compacts anyway.
	require.NoError(t, s.Compact(true, mp))
	require.Equal(t, 19, s.Len())
	require.Equal(t, uint32(8), get32(t, s, 7))

	// Forcing with zero holes stays a no-op.
	require.NoError(t, s.Compact(true, mp))
	require.Equal(t, 19, s.Len())
}

func TestCompactAllHoles(t *testing.T) {
	mp := mempool.MustNew(t.Name())
	s, err := New(4)
	require.NoError(t, err)

	for i := uint32(0); i < 5; i++ {
		_, err := s.Add(item32(i), mp)
		require.NoError(t, err)
	}
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Remove(i))
	}
	require.NoError(t, s.Compact(false, mp))
	require.Equal(t, 0, s.Len())
	require.Equal(t, 0, s.UsedCount())
}

func TestCompactRespectsMinLen(t *testing.T) {
	mp := mempool.MustNew(t.Name())
	s, err := New(4)
	require.NoError(t, err)
	defer s.Free(mp)

	for i := uint32(0); i < 10; i++ {
		_, err := s.Add(item32(i), mp)
		require.NoError(t, err)
	}
	require.NoError(t, s.SetMinLen(8, mp))
	for i := 0; i < 6; i++ {
		require.NoError(t, s.Remove(i))
	}
	require.NoError(t, s.Compact(false, mp))
	// Four live items, but the floor holds the length at eight.
	require.Equal(t, 8, s.Len())
	require.Equal(t, 4, s.UsedCount())
	require.Equal(t, uint32(6), get32(t, s, 0))
}

func TestFreeReuse(t *testing.T) {
	mp := mempool.MustNew(t.Name())
	s, err := New(4)
	require.NoError(t, err)

	for i := uint32(0); i < 5; i++ {
		_, err := s.Add(item32(i), mp)
		require.NoError(t, err)
	}
	s.Free(mp)
	require.Equal(t, 0, s.Len())
	require.Equal(t, 0, s.UsedCount())

	idx, err := s.Add(item32(9), mp)
	require.NoError(t, err)
	require.Equal(t, 0, idx)
	s.Free(mp)
}
