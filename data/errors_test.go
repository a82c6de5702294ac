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

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindExitCode(t *testing.T) {
	cases := []struct {
		k    Kind
		want int
	}{
		{KindInvalidInput, 64},
		{KindDataError, 65},
		{KindInternal, 70},
		{KindTransient, 70},
		{KindNotFound, 0},
		{KindCancelled, 0},
	}
	for _, c := range cases {
		if got := c.k.ExitCode(); got != c.want {
			t.Errorf("%s.ExitCode() = %d, want %d", c.k, got, c.want)
		}
	}
}

func TestKindCode(t *testing.T) {
	cases := []struct {
		k    Kind
		want string
	}{
		{KindInvalidInput, "INVALID_INPUT"},
		{KindNotFound, "NOT_FOUND"},
		{KindDataError, "DATA"},
		{KindTransient, "TRANSIENT"},
		{KindCancelled, "CANCELLED"},
		{KindInternal, "INTERNAL"},
	}
	for _, c := range cases {
		if got := c.k.Code(); got != c.want {
			t.Errorf("%s.Code() = %q, want %q", c.k, got, c.want)
		}
	}
}

func TestErrorUnwrapAndMessage(t *testing.T) {
	cause := errors.New("disk full")
	err := NewError(KindInternal, "write partition", cause)

	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the wrapped cause")
	}
	want := "Internal: write partition: disk full"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	bare := NewError(KindNotFound, "symbol missing", nil)
	if want := "NotFound: symbol missing"; bare.Error() != want {
		t.Errorf("Error() = %q, want %q", bare.Error(), want)
	}
}

func TestKindOf(t *testing.T) {
	if got := KindOf(nil); got != "" {
		t.Errorf("KindOf(nil) = %q, want empty", got)
	}

	taxErr := NewError(KindDataError, "bad bar", nil)
	if got := KindOf(taxErr); got != KindDataError {
		t.Errorf("KindOf(taxErr) = %q, want %q", got, KindDataError)
	}

	wrapped := fmt.Errorf("context: %w", taxErr)
	if got := KindOf(wrapped); got != KindDataError {
		t.Errorf("KindOf(wrapped) = %q, want %q to unwrap through fmt.Errorf", got, KindDataError)
	}

	plain := errors.New("unclassified")
	if got := KindOf(plain); got != KindInternal {
		t.Errorf("KindOf(plain) = %q, want %q as default", got, KindInternal)
	}
}
