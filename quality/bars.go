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
package quality

import (
	"github.com/chartvault/mdcore/data"
)

// ValidateEquityBars checks a chronologically-ordered batch of equity
// bars for the invariants in §4.F: required fields present, OHLC
// ordering, non-negative volume, strictly increasing timestamps.
func ValidateEquityBars(bars []data.EquityBar) Report {
	total := len(bars)
	var violations []string

	complete := 0
	consistent := 0
	accurate := 0
	timely := 0

	var prevTS int64
	havePrev := false

	for _, b := range bars {
		if b.Ticker != "" && b.TS > 0 {
			complete++
		} else {
			violations = append(violations, violationf("bar at ts=%d missing ticker or timestamp", b.TS))
		}

		if err := b.Validate(); err == nil {
			consistent++
		} else {
			violations = append(violations, violationf("OHLC invariant: %v", err))
		}

		// Accuracy: a reported vwap, when present, must fall within the
		// bar's own high/low band.
		if b.VWAP == 0 || (b.VWAP >= b.Low && b.VWAP <= b.High) {
			accurate++
		} else {
			violations = append(violations, violationf("vwap %.4f outside [%.4f,%.4f] for %s@%d", b.VWAP, b.Low, b.High, b.Ticker, b.TS))
		}

		if !havePrev || b.TS > prevTS {
			timely++
		} else {
			violations = append(violations, violationf("timestamp %d not strictly after previous %d", b.TS, prevTS))
		}
		prevTS = b.TS
		havePrev = true
	}

	return newReport(
		ratio(complete, total),
		ratio(consistent, total),
		ratio(accurate, total),
		ratio(timely, total),
		total,
		violations,
	)
}
