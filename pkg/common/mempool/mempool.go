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

// Package mempool is the single allocator behind all container
// buffers. A pool hands out plain byte slices, keeps byte-accurate
// accounting, and enforces an optional capacity; a failed allocation
// is reported as an error, never a panic. Pools are safe for
// concurrent use; the buffers they return are not.
package mempool

import (
	"fmt"
	"sync/atomic"

	"github.com/matrixorigin/arraykit/pkg/common/akerr"
	"github.com/matrixorigin/arraykit/pkg/logutil"
	"go.uber.org/zap"
)

// NoFixed means the pool has no capacity limit.
const NoFixed int64 = 0

type MPool struct {
	name string
	cap  int64 // 0 means unlimited

	currNB        atomic.Int64
	highWaterMark atomic.Int64
	numAlloc      atomic.Int64
	numFree       atomic.Int64
}

// New creates a pool. capBytes caps the total outstanding bytes; pass
// NoFixed for an unlimited pool.
func New(name string, capBytes int64) (*MPool, error) {
	if capBytes < 0 {
		return nil, akerr.NewInvalidArg("mempool cap", capBytes)
	}
	m := &MPool{name: name, cap: capBytes}
	logutil.Debug("mempool created",
		zap.String("name", name),
		zap.Int64("cap", capBytes),
	)
	return m, nil
}

// MustNew creates an unlimited pool, panicking on bad arguments. Used
// for package-level default pools and tests.
func MustNew(name string) *MPool {
	m, err := New(name, NoFixed)
	if err != nil {
		panic(err)
	}
	return m
}

func (m *MPool) Name() string {
	return m.name
}

func (m *MPool) Cap() int64 {
	return m.cap
}

// CurrNB returns the number of bytes currently allocated from the
// pool.
func (m *MPool) CurrNB() int64 {
	return m.currNB.Load()
}

func (m *MPool) HighWaterMark() int64 {
	return m.highWaterMark.Load()
}

func (m *MPool) NumAlloc() int64 {
	return m.numAlloc.Load()
}

func (m *MPool) NumFree() int64 {
	return m.numFree.Load()
}

func (m *MPool) Report() string {
	return fmt.Sprintf("mempool %s: curr %d, high water %d, alloc %d, free %d",
		m.name, m.CurrNB(), m.HighWaterMark(), m.NumAlloc(), m.NumFree())
}

// Alloc returns a zeroed buffer of n bytes. Alloc(0) returns a nil
// buffer and no error; a nil buffer with zero capacity is a valid
// empty allocation.
func (m *MPool) Alloc(n int) ([]byte, error) {
	if n < 0 {
		return nil, akerr.NewInvalidArg("alloc size", n)
	}
	if n == 0 {
		return nil, nil
	}
	if err := m.charge(int64(n)); err != nil {
		return nil, err
	}
	return make([]byte, n), nil
}

// Realloc returns a buffer of n bytes holding the first
// min(len(old), n) bytes of old. The buffer may move; old must not be
// used afterwards.
func (m *MPool) Realloc(old []byte, n int) ([]byte, error) {
	buf, err := m.Alloc(n)
	if err != nil {
		return nil, err
	}
	copy(buf, old)
	m.Free(old)
	return buf, nil
}

// Free returns a buffer to the pool. Freeing nil is a no-op.
func (m *MPool) Free(buf []byte) {
	if buf == nil {
		return
	}
	m.currNB.Add(-int64(cap(buf)))
	m.numFree.Add(1)
}

func (m *MPool) charge(n int64) error {
	curr := m.currNB.Add(n)
	if m.cap != NoFixed && curr > m.cap {
		m.currNB.Add(-n)
		logutil.Warn("mempool cap exceeded",
			zap.String("name", m.name),
			zap.Int64("cap", m.cap),
			zap.Int64("curr", curr-n),
			zap.Int64("request", n),
		)
		return akerr.NewOOM()
	}
	m.numAlloc.Add(1)
	for {
		hwm := m.highWaterMark.Load()
		if curr <= hwm || m.highWaterMark.CompareAndSwap(hwm, curr) {
			return nil
		}
	}
}
