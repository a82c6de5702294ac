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
package pool

import (
	"context"
	"errors"
	"strings"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/chartvault/mdcore/data"
)

// WithRetry retries op up to 3 times with exponential backoff starting at
// 10ms when op fails with a transient sqlite condition (SQLITE_BUSY /
// SQLITE_LOCKED), per §7. A non-transient failure or exhausted retries
// surfaces as KindInternal.
func WithRetry(ctx context.Context, op func() error) error {
	const maxAttempts = 3
	backoff := 10 * time.Millisecond

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isTransient(lastErr) {
			return data.NewError(data.KindInternal, "non-transient operation failure", lastErr)
		}

		select {
		case <-ctx.Done():
			return data.NewError(data.KindCancelled, "cancelled during retry backoff", ctx.Err())
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	return data.NewError(data.KindInternal, "transient failure did not clear after retries", lastErr)
}

func isTransient(err error) bool {
	var sqErr sqlite3.Error
	if errors.As(err, &sqErr) {
		return sqErr.Code == sqlite3.ErrBusy || sqErr.Code == sqlite3.ErrLocked
	}
	return strings.Contains(err.Error(), "database is locked") || strings.Contains(err.Error(), "busy")
}
