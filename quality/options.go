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
	"time"

	"github.com/chartvault/mdcore/data"
)

// expiryHorizonPast and expiryHorizonFuture bound what counts as a
// sensible options expiration relative to the as-of date a chain was
// observed, per §4.F's "expiry within sensible horizon" check.
const (
	expiryHorizonPast   = 10 * 365 * 24 * time.Hour
	expiryHorizonFuture = 3 * 365 * 24 * time.Hour
)

// OptionQuoteSample is one NBBO-bearing observation for a contract,
// sufficient to run the §4.F options checks without requiring the full
// persisted Greeks row.
type OptionQuoteSample struct {
	Contract   string
	TS         int64
	Bid        float64
	Mid        float64
	Ask        float64
	Expiration time.Time
	OptionType data.OptionType
	Strike     float64
}

// ValidateOptionQuotes checks a batch of option quote samples for
// presence of symbol/expiry/right/strike, bid<=mid<=ask when all three
// are positive (the NBBO invariant, §8 invariant 2), and expiry within a
// sensible horizon of asOf, per §4.F.
func ValidateOptionQuotes(samples []OptionQuoteSample, asOf time.Time) Report {
	total := len(samples)
	var violations []string

	complete := 0
	consistent := 0
	accurate := 0
	timely := 0

	var prevTS int64
	havePrev := false

	for _, s := range samples {
		if s.Contract != "" && s.Strike > 0 && !s.Expiration.IsZero() && (s.OptionType == data.Call || s.OptionType == data.Put) {
			complete++
		} else {
			violations = append(violations, violationf("contract %s missing required field(s)", s.Contract))
		}

		if nbboOK(s.Bid, s.Mid, s.Ask) {
			consistent++
		} else {
			violations = append(violations, violationf("NBBO violation for %s: bid=%.2f mid=%.2f ask=%.2f", s.Contract, s.Bid, s.Mid, s.Ask))
		}

		if !s.Expiration.IsZero() && s.Expiration.After(asOf.Add(-expiryHorizonPast)) && s.Expiration.Before(asOf.Add(expiryHorizonFuture)) {
			accurate++
		} else {
			violations = append(violations, violationf("expiry %s outside sensible horizon for %s", s.Expiration.Format("2006-01-02"), s.Contract))
		}

		if !havePrev || s.TS > prevTS {
			timely++
		} else {
			violations = append(violations, violationf("timestamp %d not strictly after previous %d", s.TS, prevTS))
		}
		prevTS = s.TS
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

// nbboOK reports whether bid, mid, ask satisfy bid <= mid <= ask.
// Quotes with a non-positive bid or ask are not yet two-sided and are
// not judged, matching §4.F's "bid <= ask when both positive" scope.
func nbboOK(bid, mid, ask float64) bool {
	if bid <= 0 || ask <= 0 {
		return true
	}
	if bid > ask {
		return false
	}
	if mid > 0 && (mid < bid || mid > ask) {
		return false
	}
	return true
}
