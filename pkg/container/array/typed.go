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
	"unsafe"

	"golang.org/x/exp/constraints"

	"github.com/matrixorigin/arraykit/pkg/common/akerr"
	"github.com/matrixorigin/arraykit/pkg/common/mempool"
)

// NewOf returns an empty array sized for values of type T.
func NewOf[T any]() (*Array, error) {
	var zt T
	return New(int(unsafe.Sizeof(zt)))
}

// FromSlice returns a new array holding a copy of the items in s.
func FromSlice[T any](s []T, mp *mempool.MPool) (*Array, error) {
	var zt T
	sz := int(unsafe.Sizeof(zt))
	if len(s) == 0 {
		return New(sz)
	}
	src := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*sz)
	return FromBytes(src, len(s), sz, mp)
}

// ToSlice returns the array's items as a []T sharing the array's
// buffer. The slice is invalidated by any size-changing operation.
// The array's element size must match the size of T.
func ToSlice[T any](a *Array) []T {
	var zt T
	if a.elemSize != uint64(unsafe.Sizeof(zt)) {
		panic("arraykit: element size mismatch")
	}
	if a.length == 0 {
		return nil
	}
	return unsafe.Slice((*T)(unsafe.Pointer(&a.data[0])), a.length)
}

// Append appends v to the array. The array's element size must match
// the size of T.
func Append[T any](a *Array, v T, mp *mempool.MPool) error {
	sz := int(unsafe.Sizeof(v))
	if a.elemSize != uint64(sz) {
		return akerr.NewInvalidArg("item length", sz)
	}
	item := unsafe.Slice((*byte)(unsafe.Pointer(&v)), sz)
	return a.AppendBytes(item, mp)
}

// Get returns the item at index i.
func Get[T any](a *Array, i int) (T, error) {
	var v T
	item, err := a.At(i)
	if err != nil {
		return v, err
	}
	copy(unsafe.Slice((*byte)(unsafe.Pointer(&v)), int(a.elemSize)), item)
	return v, nil
}

// Min returns a pointer to the smallest item under cmp, aliasing the
// array's buffer, or nil if the array is empty. Ties go to the lowest
// index.
func Min[T any](a *Array, cmp func(x, y *T) int) *T {
	item := a.MinItem(wrapCmp(cmp))
	if item == nil {
		return nil
	}
	return (*T)(unsafe.Pointer(&item[0]))
}

// Max returns a pointer to the largest item under cmp, aliasing the
// array's buffer, or nil if the array is empty. Ties go to the lowest
// index.
func Max[T any](a *Array, cmp func(x, y *T) int) *T {
	item := a.MaxItem(wrapCmp(cmp))
	if item == nil {
		return nil
	}
	return (*T)(unsafe.Pointer(&item[0]))
}

func wrapCmp[T any](cmp func(x, y *T) int) CompareFn {
	return func(x, y []byte) int {
		return cmp((*T)(unsafe.Pointer(&x[0])), (*T)(unsafe.Pointer(&y[0])))
	}
}

// OrderedCompare is a ready-made comparator for Min and Max over any
// ordered type.
func OrderedCompare[T constraints.Ordered](x, y *T) int {
	switch {
	case *x < *y:
		return -1
	case *x > *y:
		return 1
	}
	return 0
}
