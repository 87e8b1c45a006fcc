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
	"github.com/matrixorigin/arraykit/pkg/common/overflow"
)

// Capacity planning constants.
//
// On grow, capacity is set to newLen*(1 + 1/marginRatio) + minMargin.
// minMargin must be <= MaxIndex - MaxIndex/marginRatio so the growth
// formula cannot overflow. The array shrinks only when its length
// drops below capacity/minUsageRatio.
const (
	marginRatio   = 8
	minMargin     = 4
	minUsageRatio = 2

	// A length hint is taken as the mean of the expected length, with
	// an assumed standard deviation of hint/hintStddevRatio.
	hintStddevRatio = 3
)

// growCapacity returns the capacity that should back a buffer of
// newLen elements. Callers must have validated newLen with
// overflow.IsValidIndex; the result always satisfies
// newLen <= result <= MaxIndex and IsValidIndex(result, elemSize).
func growCapacity(elemSize, oldCap, newLen uint64) uint64 {
	// Hysteresis: neither full nor severely under-used, stay put.
	// Avoids overreacting to mixed append/remove patterns.
	if newLen <= oldCap && newLen >= oldCap/minUsageRatio {
		return oldCap
	}
	margin := newLen/marginRatio + minMargin
	// if the margin makes us overflow, don't use it
	if !overflow.CanAddWithin(newLen, margin, overflow.MaxIndex) ||
		!overflow.IsValidIndex(newLen+margin, elemSize) {
		margin = 0
	}
	return newLen + margin
}

// growCapacityWithHint plans capacity around an expected length. The
// hint is treated as the centre of a distribution with standard
// deviation hint/hintStddevRatio; capacity is pinned inside the
// two-sigma band to avoid churn around the expected value.
func growCapacityWithHint(elemSize, oldCap, newLen, hint uint64) uint64 {
	estStddev := hint / hintStddevRatio
	oneSigmaLow := hint - estStddev
	oneSigmaHigh := overflow.AddCapped(hint, estStddev, overflow.MaxIndex)
	twoSigmaLow := hint - 2*estStddev

	// Hysteresis: the current capacity already covers the data and is
	// not absurdly far above the expected band.
	if oldCap >= newLen && oldCap >= twoSigmaLow &&
		(oldCap <= oneSigmaHigh || oldCap-newLen <= estStddev) {
		return oldCap
	}
	switch {
	case newLen < twoSigmaLow:
		// don't shrink below the expected lower tail
		return twoSigmaLow
	case newLen < oneSigmaLow:
		// linear ramp from twoSigmaLow up to hint
		return newLen + (newLen - twoSigmaLow)
	case newLen < hint:
		return hint
	}
	// Beyond the hint the distribution tells us nothing; fall back to
	// a flat margin.
	result := overflow.AddCapped(newLen, minMargin, overflow.MaxIndex)
	if !overflow.IsValidIndex(result, elemSize) {
		return newLen
	}
	return result
}
