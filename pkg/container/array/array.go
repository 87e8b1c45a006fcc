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

package array

import (
	"math"

	"github.com/matrixorigin/arraykit/pkg/common/akerr"
	"github.com/matrixorigin/arraykit/pkg/common/mempool"
	"github.com/matrixorigin/arraykit/pkg/common/overflow"
)

// Array is a type-erased dynamic array. It owns a single contiguous
// byte buffer holding length items of elemSize bytes each, with room
// for capacity items. All size-changing operations go through the
// supplied memory pool and report failure as an error; the array is
// left observably unchanged when an operation fails.
//
// Invariants:
//   - length <= capacity <= MaxIndex
//   - capacity*elemSize <= MaxBytes
//   - data == nil iff capacity == 0
type Array struct {
	elemSize uint64
	length   uint64
	capacity uint64
	data     []byte

	// expected final length, used by the capacity planner
	hint    uint64
	hasHint bool
}

// CompareFn compares the items at a and b. It returns a negative
// value if a orders before b, zero if they are equal, and a positive
// value otherwise.
type CompareFn func(a, b []byte) int

// New returns an empty array of elemSize-byte items. No buffer is
// allocated until the first item is added.
func New(elemSize int) (*Array, error) {
	if elemSize <= 0 {
		return nil, akerr.NewInvalidArg("element size", elemSize)
	}
	return &Array{elemSize: uint64(elemSize)}, nil
}

// NewWithHint returns an empty array whose capacity planner is tuned
// for an expected final length of hint items. The initial buffer is
// sized to the lower tail of the expected band, so a caller that
// appends up to roughly hint items reallocates only a handful of
// times.
func NewWithHint(elemSize, hint int, mp *mempool.MPool) (*Array, error) {
	a, err := New(elemSize)
	if err != nil {
		return nil, err
	}
	if hint < 0 || !overflow.IsValidIndex(uint64(hint), a.elemSize) {
		return nil, akerr.NewInvalidArg("length hint", hint)
	}
	a.hint = uint64(hint)
	a.hasHint = true
	if cap0 := a.planCapacity(0); cap0 > 0 {
		data, err := mp.Alloc(int(cap0 * a.elemSize))
		if err != nil {
			return nil, err
		}
		a.data = data
		a.capacity = cap0
	}
	return a, nil
}

// FromBytes returns a new array of n elemSize-byte items copied from
// src. src must hold at least n*elemSize bytes.
func FromBytes(src []byte, n, elemSize int, mp *mempool.MPool) (*Array, error) {
	if elemSize <= 0 {
		return nil, akerr.NewInvalidArg("element size", elemSize)
	}
	if n < 0 {
		return nil, akerr.NewInvalidArg("item count", n)
	}
	if !overflow.IsValidIndex(uint64(n), uint64(elemSize)) {
		return nil, akerr.NewOverflow("item count")
	}
	nbytes := uint64(n) * uint64(elemSize)
	if uint64(len(src)) < nbytes {
		return nil, akerr.NewInvalidArg("source length", len(src))
	}
	a, err := New(elemSize)
	if err != nil {
		return nil, err
	}
	if err := a.resize(uint64(n), mp); err != nil {
		return nil, err
	}
	copy(a.data, src[:nbytes])
	return a, nil
}

// Length returns the number of items in the array.
func (a *Array) Length() int { return int(a.length) }

// Capacity returns the number of items the current buffer can hold.
func (a *Array) Capacity() int { return int(a.capacity) }

// ElemSize returns the size in bytes of one item.
func (a *Array) ElemSize() int { return int(a.elemSize) }

// Data returns the raw buffer holding the first Length()*ElemSize()
// bytes of item data. The slice is invalidated by any size-changing
// operation.
func (a *Array) Data() []byte {
	return a.data[:a.length*a.elemSize]
}

// At returns the bytes of the item at index i. The slice aliases the
// array's buffer.
func (a *Array) At(i int) ([]byte, error) {
	if i < 0 {
		return nil, akerr.NewInvalidArg("index", i)
	}
	if uint64(i) >= a.length {
		return nil, akerr.NewNoEntry(i, int(a.length))
	}
	return a.at(uint64(i)), nil
}

func (a *Array) at(i uint64) []byte {
	return a.data[i*a.elemSize : (i+1)*a.elemSize]
}

func (a *Array) planCapacity(newLen uint64) uint64 {
	if a.hasHint {
		return growCapacityWithHint(a.elemSize, a.capacity, newLen, a.hint)
	}
	return growCapacity(a.elemSize, a.capacity, newLen)
}

// resize sets the logical length to newLen, reallocating the buffer
// when the capacity planner calls for it. newLen must already be a
// valid index for the element size. On failure the array is
// unchanged.
func (a *Array) resize(newLen uint64, mp *mempool.MPool) error {
	if newLen == a.length {
		return nil
	}
	newCap := a.planCapacity(newLen)
	if newCap != a.capacity {
		nbytes := newCap * a.elemSize
		if nbytes > math.MaxInt {
			return akerr.NewOOM()
		}
		data, err := mp.Realloc(a.data, int(nbytes))
		if err != nil {
			return err
		}
		a.data = data
		a.capacity = newCap
	}
	a.length = newLen
	return nil
}

// AppendBytes appends one item to the array. item must be exactly
// ElemSize() bytes.
func (a *Array) AppendBytes(item []byte, mp *mempool.MPool) error {
	if uint64(len(item)) != a.elemSize {
		return akerr.NewInvalidArg("item length", len(item))
	}
	if a.length >= overflow.MaxIndex || !overflow.IsValidIndex(a.length+1, a.elemSize) {
		return akerr.NewOverflow("array length")
	}
	old := a.length
	if err := a.resize(old+1, mp); err != nil {
		return err
	}
	copy(a.data[old*a.elemSize:], item)
	return nil
}

// Extend appends every item of src to a. src may be a itself, in
// which case the array is doubled in place.
func (a *Array) Extend(src *Array, mp *mempool.MPool) error {
	if src.elemSize != a.elemSize {
		return akerr.NewInvalidArg("source element size", int(src.elemSize))
	}
	// Capture the count up front: when src aliases a, resize below
	// bumps src.length too.
	srcLen := src.length
	if !overflow.CanAddWithin(a.length, srcLen, overflow.MaxIndex) ||
		!overflow.IsValidIndex(a.length+srcLen, a.elemSize) {
		return akerr.NewOverflow("array length")
	}
	old := a.length
	if err := a.resize(old+srcLen, mp); err != nil {
		return err
	}
	// Read src.data only after the resize: when src aliases a, the
	// buffer may have moved, and the old prefix was carried over.
	copy(a.data[old*a.elemSize:], src.data[:srcLen*a.elemSize])
	return nil
}

// Remove deletes the item at index, shifting later items left. Giving
// memory back is best effort: when the planner wants a smaller buffer
// but the pool cannot deliver one, the remove still succeeds and the
// array keeps its current capacity.
func (a *Array) Remove(index int, mp *mempool.MPool) error {
	if index < 0 {
		return akerr.NewInvalidArg("index", index)
	}
	if uint64(index) >= a.length {
		return akerr.NewNoEntry(index, int(a.length))
	}
	i := uint64(index)
	if i < a.length-1 {
		copy(a.data[i*a.elemSize:], a.data[(i+1)*a.elemSize:a.length*a.elemSize])
	}
	newLen := a.length - 1
	if newCap := a.planCapacity(newLen); newCap != a.capacity {
		nbytes := newCap * a.elemSize
		if nbytes <= math.MaxInt {
			if data, err := mp.Realloc(a.data, int(nbytes)); err == nil {
				a.data = data
				a.capacity = newCap
			}
		}
	}
	a.length = newLen
	return nil
}

// Dup returns a deep copy of the array holding the same items.
func (a *Array) Dup(mp *mempool.MPool) (*Array, error) {
	return FromBytes(a.data, int(a.length), int(a.elemSize), mp)
}

// Slice returns a new array holding the items from start to stop
// (exclusive), taking every step-th item. Negative steps walk
// backwards, python style: Slice(8, 4, -1) of [0..9] yields
// [8 7 6 5]. Out-of-range bounds are clamped; a range that selects
// nothing yields an empty array.
func (a *Array) Slice(start, stop, step int, mp *mempool.MPool) (*Array, error) {
	if step == 0 {
		return nil, akerr.NewInvalidArg("step", step)
	}
	if start < 0 {
		return nil, akerr.NewInvalidArg("start", start)
	}
	if stop < 0 {
		return nil, akerr.NewInvalidArg("stop", stop)
	}
	lo, hi := uint64(start), uint64(stop)
	if lo > hi {
		lo, hi = hi, lo
	}
	if hi > a.length {
		hi = a.length
	}
	if start == stop || (start < stop) != (step > 0) || lo >= a.length {
		return New(int(a.elemSize))
	}
	if step == 1 {
		return FromBytes(a.data[lo*a.elemSize:], int(hi-lo), int(a.elemSize), mp)
	}
	absStep := uint64(step)
	if step < 0 {
		absStep = uint64(-step)
	}
	sliceLen := 1 + (hi-lo-1)/absStep
	out, err := New(int(a.elemSize))
	if err != nil {
		return nil, err
	}
	if err := out.resize(sliceLen, mp); err != nil {
		return nil, err
	}
	// Walking backwards starts from the last in-range item, not from
	// the (possibly clamped) start bound.
	realStart := uint64(start)
	if realStart > a.length-1 {
		realStart = a.length - 1
	}
	for i := uint64(0); i < sliceLen; i++ {
		src := int64(realStart) + int64(i)*int64(step)
		copy(out.at(i), a.at(uint64(src)))
	}
	return out, nil
}

// MinItem returns the bytes of the smallest item under cmp, or nil if
// the array is empty. Ties go to the lowest index.
func (a *Array) MinItem(cmp CompareFn) []byte {
	if a.length == 0 {
		return nil
	}
	best := uint64(0)
	for i := uint64(1); i < a.length; i++ {
		if cmp(a.at(i), a.at(best)) < 0 {
			best = i
		}
	}
	return a.at(best)
}

// MaxItem returns the bytes of the largest item under cmp, or nil if
// the array is empty. Ties go to the lowest index.
func (a *Array) MaxItem(cmp CompareFn) []byte {
	if a.length == 0 {
		return nil
	}
	best := uint64(0)
	for i := uint64(1); i < a.length; i++ {
		if cmp(a.at(i), a.at(best)) > 0 {
			best = i
		}
	}
	return a.at(best)
}

// Free releases the buffer back to the pool and resets the array to
// the empty state. The array remains usable afterwards.
func (a *Array) Free(mp *mempool.MPool) {
	mp.Free(a.data)
	a.data = nil
	a.length = 0
	a.capacity = 0
}
