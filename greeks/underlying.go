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
package greeks

import (
	"context"
	"time"

	"github.com/chartvault/mdcore/data"
	"github.com/chartvault/mdcore/query"
)

// GetUnderlyingPrice finds the equity bar closest to (at or before) ts
// for underlying and returns its close, for use as the spot price in a
// Black-Scholes valuation, per §4.E. It scans back over the lookback
// window (five calendar days) before giving up.
func GetUnderlyingPrice(ctx context.Context, eng *query.Engine, cat data.Category, underlying string, ts time.Time) (float64, error) {
	const lookback = 5 * 24 * time.Hour
	from := ts.Add(-lookback)

	result, err := eng.RangeBars(ctx, cat, underlying, from, ts, data.Granularity1Day)
	if err != nil {
		return 0, err
	}
	if len(result.Rows) == 0 {
		return 0, data.NewError(data.KindNotFound, "no underlying price available at or before "+ts.Format(time.RFC3339), nil)
	}

	best := result.Rows[0]
	var bestTS int64
	for _, row := range result.Rows {
		rowTS := toInt64(row["ts"])
		if rowTS <= ts.UnixMilli() && rowTS >= bestTS {
			bestTS = rowTS
			best = row
		}
	}

	close := toFloat64(best["c"])
	if close <= 0 {
		return 0, data.NewError(data.KindDataError, "underlying close price is non-positive", nil)
	}
	return close, nil
}

func toFloat64(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int64:
		return float64(t)
	default:
		return 0
	}
}

func toInt64(v any) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case float64:
		return int64(t)
	default:
		return 0
	}
}
