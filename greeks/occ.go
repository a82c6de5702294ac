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

// Package greeks implements the OCC contract parser, the Black-Scholes
// pricer, the Newton-Raphson implied-volatility solver, and the batch
// runner that persists results, per §4.E. No teacher file parses options
// symbols; the parser below replaces exception-as-control-flow (§9) with
// a result-returning scan whose error arm carries a human-readable
// reason, in the idiom of the teacher's sentinel-error style
// (provider.ErrInvalidStatusCode).
package greeks

import (
	"strconv"
	"strings"
	"time"

	"github.com/chartvault/mdcore/data"
)

// ParseOCC parses an OCC-style contract symbol of the form
// O:<UNDERLYING><YYMMDD><C|P><STRIKE*1000, 8 digits>, per §4.E. It locates
// the last 6-digit run immediately followed by 'C' or 'P' and exactly 8
// digits; any deviation is reported as a parse failure rather than a
// panic, so callers can route the contract to [skipped] instead of
// aborting a batch.
func ParseOCC(symbol string) (data.ContractMetadata, error) {
	body := symbol
	if strings.HasPrefix(body, "O:") {
		body = body[2:]
	}

	// Scan right-to-left for a position i such that body[i:i+6] are
	// digits, body[i+6] is 'C' or 'P', and body[i+7:i+15] are 8 digits.
	for i := len(body) - 15; i >= 0; i-- {
		if i+15 != len(body) {
			continue
		}
		if !allDigits(body[i : i+6]) {
			continue
		}
		typeByte := body[i+6]
		if typeByte != 'C' && typeByte != 'P' {
			continue
		}
		strikeSeg := body[i+7 : i+15]
		if !allDigits(strikeSeg) {
			continue
		}

		underlying := body[:i]
		if underlying == "" {
			continue
		}

		expiry, err := parseYYMMDD(body[i : i+6])
		if err != nil {
			continue
		}

		strikeInt, err := strconv.Atoi(strikeSeg)
		if err != nil {
			continue
		}
		strike := float64(strikeInt) / 1000.0
		if strike <= 0 {
			continue
		}

		optType := data.Call
		if typeByte == 'P' {
			optType = data.Put
		}

		return data.ContractMetadata{
			Contract:   symbol,
			Underlying: underlying,
			Expiration: expiry,
			OptionType: optType,
			Strike:     strike,
		}, nil
	}

	return data.ContractMetadata{}, data.NewError(data.KindInvalidInput, "not a recognizable OCC contract symbol: "+symbol, nil)
}

// FormatOCC is the inverse of ParseOCC, used to check the round-trip
// property in §8 invariant 8.
func FormatOCC(m data.ContractMetadata) string {
	typeByte := byte('C')
	if m.OptionType == data.Put {
		typeByte = 'P'
	}
	strikeInt := int64(m.Strike*1000 + 0.5)
	return "O:" + m.Underlying + m.Expiration.Format("060102") + string(typeByte) + padLeft(strikeInt, 8)
}

func parseYYMMDD(s string) (time.Time, error) {
	t, err := time.Parse("060102", s)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(2000+t.Year()%100, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func padLeft(n int64, width int) string {
	s := strconv.FormatInt(n, 10)
	for len(s) < width {
		s = "0" + s
	}
	return s
}
