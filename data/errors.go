// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package data

import "fmt"

// Kind classifies an error into the engine's error taxonomy so that
// callers can decide whether to retry, surface, or ignore it without
// string-matching messages.
type Kind string

const (
	KindInvalidInput Kind = "InvalidInput"
	KindNotFound     Kind = "NotFound"
	KindDataError    Kind = "DataError"
	KindTransient    Kind = "Transient"
	KindInternal     Kind = "Internal"
	KindCancelled    Kind = "Cancelled"
)

// ExitCode returns the process exit code associated with this error kind,
// per the §4.G/§6 taxonomy. NotFound is not an error condition (it is
// reported as an empty, ok:true result) so it has no exit code of its own.
func (k Kind) ExitCode() int {
	switch k {
	case KindInvalidInput:
		return 64
	case KindDataError:
		return 65
	case KindInternal, KindTransient:
		return 70
	default:
		return 0
	}
}

// Code returns the envelope error code string for this kind.
func (k Kind) Code() string {
	switch k {
	case KindInvalidInput:
		return "INVALID_INPUT"
	case KindNotFound:
		return "NOT_FOUND"
	case KindDataError:
		return "DATA"
	case KindTransient:
		return "TRANSIENT"
	case KindCancelled:
		return "CANCELLED"
	default:
		return "INTERNAL"
	}
}

// Error wraps a Kind and an optional hint around a causing error.
type Error struct {
	Kind  Kind
	Hint  string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Hint)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Hint, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// NewError builds a taxonomy-classified error.
func NewError(kind Kind, hint string, cause error) *Error {
	return &Error{Kind: kind, Hint: hint, Cause: cause}
}

// KindOf extracts the Kind from err, defaulting to KindInternal when err
// does not carry one.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if ok := asError(err, &e); ok {
		return e.Kind
	}
	return KindInternal
}

func asError(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
