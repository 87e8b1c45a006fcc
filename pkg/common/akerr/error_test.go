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

package akerr

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorCodes(t *testing.T) {
	require.Equal(t, ErrOOM, NewOOM().ErrorCode())
	require.Equal(t, ErrInvalidArg, NewInvalidArg("step", 0).ErrorCode())
	require.Equal(t, ErrOverflow, NewOverflow("length").ErrorCode())
	require.Equal(t, ErrNoEntry, NewNoEntry(10, 3).ErrorCode())
	require.Equal(t, ErrInternal, NewInternalError("boom %d", 1).ErrorCode())
}

func TestIsErrCode(t *testing.T) {
	require.True(t, IsErrCode(nil, Ok))
	require.False(t, IsErrCode(nil, ErrOOM))

	err := NewOOM()
	require.True(t, IsOOM(err))
	require.False(t, IsInvalidArg(err))

	// wrapped errors still match
	wrapped := fmt.Errorf("alloc 128 bytes: %w", err)
	require.True(t, IsOOM(wrapped))

	// plain go errors never match
	require.False(t, IsOOM(fmt.Errorf("out of memory")))
}

func TestErrorMessage(t *testing.T) {
	err := NewNoEntry(7, 5)
	require.Contains(t, err.Error(), "index 7")
	require.Contains(t, err.Error(), "length 5")
	require.False(t, err.Succeeded())
}
