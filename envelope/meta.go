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
package envelope

import (
	"time"

	"github.com/dustin/go-humanize"

	"github.com/chartvault/mdcore/quality"
)

// CacheState reports whether a handle/statement was already warm when
// a request arrived.
type CacheState string

const (
	CacheCold CacheState = "cold"
	CacheWarm CacheState = "warm"
)

// SourceHint is a heuristic label for where a result's rows came from,
// based on row shape rather than an explicit tag, per §4.G.
type SourceHint string

const (
	SourceSQLite  SourceHint = "sqlite"
	SourceCSV     SourceHint = "csv"
	SourceParquet SourceHint = "parquet"
	SourceStub    SourceHint = "stub"
	SourceEmpty   SourceHint = "empty"
	SourcePartial SourceHint = "partial"
)

// Meta carries the counts, timings, and quality data attached to every
// envelope, per §4.G.
type Meta struct {
	Count            int             `json:"count"`
	BytesEstimate    int64           `json:"bytes_estimate"`
	FirstByteLatency time.Duration   `json:"first_byte_latency_ns"`
	TotalLatency     time.Duration   `json:"total_latency_ns"`
	Cache            CacheState      `json:"cache"`
	Source           SourceHint      `json:"source"`
	Percentiles      Percentiles     `json:"percentiles,omitempty"`
	RowsPerSec       float64         `json:"rows_per_sec"`
	Quality          *quality.Report `json:"quality,omitempty"`
}

// HumanBytes renders m.BytesEstimate via dustin/go-humanize as a
// human-readable size. No code path in this repository calls it.
func (m Meta) HumanBytes() string {
	return humanize.Bytes(uint64(m.BytesEstimate))
}

// NewMeta builds a Meta from the basics every operation has on hand;
// callers set Quality/Percentiles afterward when those are available.
func NewMeta(count int, bytesEstimate int64, firstByte, total time.Duration, cache CacheState, source SourceHint) Meta {
	m := Meta{
		Count:            count,
		BytesEstimate:    bytesEstimate,
		FirstByteLatency: firstByte,
		TotalLatency:     total,
		Cache:            cache,
		Source:           source,
	}
	if total > 0 {
		m.RowsPerSec = float64(count) / total.Seconds()
	}
	return m
}
