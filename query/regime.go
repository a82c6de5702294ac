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
package query

import (
	"context"
	"time"

	"github.com/chartvault/mdcore/data"
)

// RegimeBar is an equity bar augmented with windowed-return derived
// fields, per §4.D operation 4. The caller (not this package) maps these
// into regime labels.
type RegimeBar struct {
	data.EquityBar
	Return    float64 `json:"return"`
	TrueRange float64 `json:"true_range_pct"`
}

// MarketRegime range-scans equity bars for symbol and computes, per bar,
// the simple return against the prior bar's close and the true-range
// percentage (h-l)/c.
func (e *Engine) MarketRegime(ctx context.Context, cat data.Category, symbol string, from, to time.Time, gran data.Granularity) ([]RegimeBar, Source, error) {
	result, err := e.RangeBars(ctx, cat, symbol, from, to, gran)
	if err != nil {
		return nil, "", err
	}

	bars := make([]RegimeBar, 0, len(result.Rows))
	var prevClose float64
	havePrev := false

	for _, row := range result.Rows {
		bar := data.EquityBar{
			Ticker: toString(row["ticker"]),
			TS:     toInt64(row["ts"]),
			Open:   toFloat64(row["o"]),
			High:   toFloat64(row["h"]),
			Low:    toFloat64(row["l"]),
			Close:  toFloat64(row["c"]),
			Volume: toInt64(row["v"]),
		}

		rb := RegimeBar{EquityBar: bar}
		if bar.Close != 0 {
			rb.TrueRange = (bar.High - bar.Low) / bar.Close
		}
		if havePrev && prevClose != 0 {
			rb.Return = (bar.Close - prevClose) / prevClose
		}
		bars = append(bars, rb)

		prevClose = bar.Close
		havePrev = true
	}

	return bars, result.Source, nil
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

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return ""
}
