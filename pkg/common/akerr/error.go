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
	"errors"
	"fmt"
)

// Error codes. Zero is success; everything else is a failure with a
// distinct code so that callers can branch without string matching.
const (
	Ok uint16 = 0

	// Group 1: internal errors
	ErrInternal uint16 = 20101
	ErrOOM      uint16 = 20103

	// Group 2: invalid input
	ErrInvalidArg uint16 = 20203
	ErrOverflow   uint16 = 20204

	// Group 3: unexpected state
	ErrNoEntry uint16 = 20301
)

type errorItem struct {
	code            uint16
	msgOrFormat     string
	formattedByArgs bool
}

var errorMsgRefer = map[uint16]errorItem{
	ErrInternal:   {ErrInternal, "internal error: %s", true},
	ErrOOM:        {ErrOOM, "out of memory", false},
	ErrInvalidArg: {ErrInvalidArg, "invalid argument %s: %v", true},
	ErrOverflow:   {ErrOverflow, "%s overflows the indexable range", true},
	ErrNoEntry:    {ErrNoEntry, "no such entry: index %d, length %d", true},
}

func newError(code uint16, args ...any) *Error {
	item, has := errorMsgRefer[code]
	if !has {
		panic(fmt.Sprintf("missing error code: %d", code))
	}
	if !item.formattedByArgs {
		return &Error{code: code, message: item.msgOrFormat}
	}
	return &Error{
		code:    code,
		message: fmt.Sprintf(item.msgOrFormat, args...),
	}
}

// Error is the only error type returned by arraykit packages.
type Error struct {
	code    uint16
	message string
}

func (e *Error) Error() string {
	return e.message
}

func (e *Error) ErrorCode() uint16 {
	return e.code
}

func (e *Error) Succeeded() bool {
	return e.code == Ok
}

func NewInternalError(msg string, args ...any) *Error {
	return newError(ErrInternal, fmt.Sprintf(msg, args...))
}

func NewOOM() *Error {
	return newError(ErrOOM)
}

func NewInvalidArg(arg string, val any) *Error {
	return newError(ErrInvalidArg, arg, val)
}

func NewOverflow(what string) *Error {
	return newError(ErrOverflow, what)
}

func NewNoEntry(index, length int) *Error {
	return newError(ErrNoEntry, index, length)
}

// IsErrCode reports whether err is an akerr Error carrying the given
// code. A nil error only matches Ok.
func IsErrCode(err error, code uint16) bool {
	if err == nil {
		return code == Ok
	}
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.code == code
}

func IsOOM(err error) bool {
	return IsErrCode(err, ErrOOM)
}

func IsInvalidArg(err error) bool {
	return IsErrCode(err, ErrInvalidArg)
}

func IsOverflow(err error) bool {
	return IsErrCode(err, ErrOverflow)
}

func IsNoEntry(err error) bool {
	return IsErrCode(err, ErrNoEntry)
}
