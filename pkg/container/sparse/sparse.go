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

// Package sparse implements a dynamic array with stable indices.
// Removing an item leaves a hole instead of shifting its successors,
// so indices handed out by Add stay valid until the array is
// compacted. This trades memory for index stability; use
// pkg/container/array when indices need not survive removals.
package sparse

import (
	"math"

	"github.com/RoaringBitmap/roaring"

	"github.com/matrixorigin/arraykit/pkg/common/akerr"
	"github.com/matrixorigin/arraykit/pkg/common/mempool"
)

// compactMinHolePct is the fraction of holes below which Compact does
// nothing unless forced.
const compactMinHolePct = 10

// Sparse is a type-erased sparse dynamic array. The buffer holds
// length slots of elemSize bytes; the used bitmap records which slots
// hold live items. Indices fit in uint32, which bounds the slot count
// at about four billion.
type Sparse struct {
	elemSize uint64
	length   uint64
	minLen   uint64
	used     *roaring.Bitmap
	data     []byte
}

// New returns an empty sparse array of elemSize-byte items.
func New(elemSize int) (*Sparse, error) {
	if elemSize <= 0 {
		return nil, akerr.NewInvalidArg("element size", elemSize)
	}
	return &Sparse{
		elemSize: uint64(elemSize),
		used:     roaring.New(),
	}, nil
}

// Len returns the number of slots, holes included.
func (s *Sparse) Len() int { return int(s.length) }

// UsedCount returns the number of slots holding a live item.
func (s *Sparse) UsedCount() int { return int(s.used.GetCardinality()) }

// MinLen returns the configured minimum slot count.
func (s *Sparse) MinLen() int { return int(s.minLen) }

// ElemSize returns the size in bytes of one item.
func (s *Sparse) ElemSize() int { return int(s.elemSize) }

// Add stores item in the first free slot, growing the array by one
// slot when none is free. It returns the index the item landed in;
// that index stays valid until Compact or Truncate.
func (s *Sparse) Add(item []byte, mp *mempool.MPool) (int, error) {
	if uint64(len(item)) != s.elemSize {
		return 0, akerr.NewInvalidArg("item length", len(item))
	}
	idx, ok := s.firstFree()
	if !ok {
		if s.length >= math.MaxUint32 {
			return 0, akerr.NewOverflow("slot count")
		}
		if err := s.grow(s.length+1, mp); err != nil {
			return 0, err
		}
		idx = s.length - 1
	}
	copy(s.slot(idx), item)
	s.used.Add(uint32(idx))
	return int(idx), nil
}

// Get returns the bytes of the item at index, aliasing the buffer. A
// slot inside the array that holds no item yields ErrNoEntry.
func (s *Sparse) Get(index int) ([]byte, error) {
	if index < 0 || uint64(index) >= s.length {
		return nil, akerr.NewInvalidArg("index", index)
	}
	if !s.used.Contains(uint32(index)) {
		return nil, akerr.NewNoEntry(index, int(s.length))
	}
	return s.slot(uint64(index)), nil
}

// Remove marks the slot at index free. Removing an already free slot
// is not an error; the slot count never changes.
func (s *Sparse) Remove(index int) error {
	if index < 0 || uint64(index) >= s.length {
		return akerr.NewInvalidArg("index", index)
	}
	s.used.Remove(uint32(index))
	return nil
}

// Truncate resizes the array to exactly n slots. Shrinking discards
// the items in the dropped slots; growing adds free slots at the end.
// n may not go below the configured minimum length.
func (s *Sparse) Truncate(n int, mp *mempool.MPool) error {
	if n < 0 || uint64(n) < s.minLen || uint64(n) > math.MaxUint32 {
		return akerr.NewInvalidArg("slot count", n)
	}
	newLen := uint64(n)
	switch {
	case newLen == s.length:
	case newLen == 0:
		mp.Free(s.data)
		s.data = nil
		s.length = 0
		s.used.Clear()
	case newLen > s.length:
		return s.grow(newLen, mp)
	default:
		data, err := mp.Realloc(s.data, int(newLen*s.elemSize))
		if err != nil {
			return err
		}
		s.data = data
		s.used.RemoveRange(newLen, s.length)
		s.length = newLen
	}
	return nil
}

// SetMinLen configures the minimum slot count, growing the array when
// it is currently shorter than n.
func (s *Sparse) SetMinLen(n int, mp *mempool.MPool) error {
	if n < 0 {
		return akerr.NewInvalidArg("minimum length", n)
	}
	if uint64(n) > s.length {
		if err := s.Truncate(n, mp); err != nil {
			return err
		}
	}
	s.minLen = uint64(n)
	return nil
}

// Compact moves all live items to the front, preserving their order,
// and shrinks the array to the minimum slot count. Every index handed
// out by Add is invalidated. When less than 10% of the slots are
// holes the work is skipped unless force is set; with no holes at all
// there is nothing to do even when forced.
func (s *Sparse) Compact(force bool, mp *mempool.MPool) error {
	if s.length == 0 {
		return nil
	}
	holes := s.length - s.used.GetCardinality()
	holePct := holes * 100 / s.length
	if holePct < compactMinHolePct && (!force || holes == 0) {
		return nil
	}
	if s.used.IsEmpty() {
		mp.Free(s.data)
		s.data = nil
		s.length = 0
		return nil
	}

	// Slide live items toward the front in one ascending pass; order
	// is preserved and no live slot is overwritten before it moves.
	next := uint64(0)
	it := s.used.Iterator()
	for it.HasNext() {
		i := uint64(it.Next())
		if i != next {
			copy(s.slot(next), s.slot(i))
		}
		next++
	}
	s.used.Clear()
	s.used.AddRange(0, next)

	newLen := next
	if newLen < s.minLen {
		newLen = s.minLen
	}
	if newLen != s.length {
		data, err := mp.Realloc(s.data, int(newLen*s.elemSize))
		if err != nil {
			return err
		}
		s.data = data
		s.length = newLen
	}
	return nil
}

// Free releases the buffer back to the pool and resets the array to
// the empty state. The configured minimum length is kept.
func (s *Sparse) Free(mp *mempool.MPool) {
	mp.Free(s.data)
	s.data = nil
	s.length = 0
	s.used.Clear()
}

func (s *Sparse) slot(i uint64) []byte {
	return s.data[i*s.elemSize : (i+1)*s.elemSize]
}

// firstFree returns the lowest free slot index, if any.
func (s *Sparse) firstFree() (uint64, bool) {
	if s.used.GetCardinality() == s.length {
		return 0, false
	}
	// The bitmap holds only indices below length, so a gap is
	// guaranteed in range.
	for i := uint64(0); i < s.length; i++ {
		if !s.used.Contains(uint32(i)) {
			return i, true
		}
	}
	return 0, false
}

// grow extends the buffer to newLen slots, leaving the new slots
// free. Callers have bounds-checked newLen.
func (s *Sparse) grow(newLen uint64, mp *mempool.MPool) error {
	nbytes := newLen * s.elemSize
	if newLen > math.MaxUint64/s.elemSize || nbytes > math.MaxInt {
		return akerr.NewOverflow("buffer size")
	}
	data, err := mp.Realloc(s.data, int(nbytes))
	if err != nil {
		return err
	}
	s.data = data
	s.length = newLen
	return nil
}
