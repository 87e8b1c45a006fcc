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

// Package overflow holds the arithmetic guards used for container size
// bookkeeping. Indices exposed to clients are signed and capped at
// MaxIndex; byte counts are unsigned and range over the full address
// space up to MaxBytes. Every guard is a pure predicate or a
// saturating operation: none of them allocates or returns an error.
package overflow

import "math"

const (
	// MaxIndex is the largest value representable in the signed index
	// type exposed to clients.
	MaxIndex uint64 = math.MaxInt64

	// MaxBytes is the upper bound of the byte-address space.
	MaxBytes uint64 = math.MaxUint64
)

// CanAddInt64 reports whether x + y is representable as int64.
func CanAddInt64(x, y int64) bool {
	return (y <= 0 || x <= math.MaxInt64-y) &&
		(y >= 0 || x >= math.MinInt64-y)
}

// CanAddSize reports whether x + y does not wrap around uint64.
func CanAddSize(x, y uint64) bool {
	return x <= MaxBytes-y
}

// CanMulSize reports whether x * y does not wrap around uint64.
func CanMulSize(x, y uint64) bool {
	// y <= 1 avoids the division; the product trivially fits.
	return y <= 1 || x <= MaxBytes/y
}

// CanAddWithin reports whether x + y <= limit, with no intermediate
// wraparound.
func CanAddWithin(x, y, limit uint64) bool {
	return x <= limit && y <= limit-x
}

// AddCapped returns min(x+y, limit) without ever wrapping.
func AddCapped(x, y, limit uint64) uint64 {
	if !CanAddWithin(x, y, limit) {
		return limit
	}
	return x + y
}

// FitsIndex reports whether the unsigned value x is representable as a
// signed index.
func FitsIndex(x uint64) bool {
	return x <= MaxIndex
}

// SizeToIndex converts an unsigned size to a signed index, capping at
// MaxIndex. A direct conversion of an oversized value would produce a
// negative index.
func SizeToIndex(x uint64) int64 {
	if x > MaxIndex {
		return math.MaxInt64
	}
	return int64(x)
}

// IsValidIndex reports whether n is a usable element index for
// elements of elemSize bytes: n fits the signed index type, the byte
// offset n*elemSize is computable, and the bytes of the element at n
// still fit the address space.
func IsValidIndex(n, elemSize uint64) bool {
	return FitsIndex(n) &&
		CanMulSize(n, elemSize) &&
		CanAddSize(n*elemSize, elemSize)
}
