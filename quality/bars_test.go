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
	"testing"

	"github.com/chartvault/mdcore/data"
)

func TestValidateEquityBarsAllGood(t *testing.T) {
	bars := []data.EquityBar{
		{Ticker: "AAPL", TS: 1000, Open: 10, High: 11, Low: 9, Close: 10.5, Volume: 100, VWAP: 10.2},
		{Ticker: "AAPL", TS: 2000, Open: 10.5, High: 11.5, Low: 10, Close: 11, Volume: 120, VWAP: 10.8},
	}
	r := ValidateEquityBars(bars)
	if r.Overall != 1.0 {
		t.Errorf("Overall = %v, want 1.0 for a clean batch: %+v", r.Overall, r)
	}
	if len(r.Violations) != 0 {
		t.Errorf("expected no violations, got %v", r.Violations)
	}
	if r.Checked != 2 {
		t.Errorf("Checked = %d, want 2", r.Checked)
	}
}

func TestValidateEquityBarsEmptyIsPerfect(t *testing.T) {
	r := ValidateEquityBars(nil)
	if r.Overall != 1.0 {
		t.Errorf("empty batch should score 1.0, got %v", r.Overall)
	}
	if r.Checked != 0 {
		t.Errorf("Checked = %d, want 0", r.Checked)
	}
}

func TestValidateEquityBarsCatchesOutOfOrderTimestamps(t *testing.T) {
	bars := []data.EquityBar{
		{Ticker: "AAPL", TS: 2000, Open: 10, High: 11, Low: 9, Close: 10.5, Volume: 100},
		{Ticker: "AAPL", TS: 1000, Open: 10, High: 11, Low: 9, Close: 10.5, Volume: 100},
	}
	r := ValidateEquityBars(bars)
	if r.Timeliness != 0.5 {
		t.Errorf("Timeliness = %v, want 0.5 (second bar out of order)", r.Timeliness)
	}
	if len(r.Violations) == 0 {
		t.Error("expected a timeliness violation to be recorded")
	}
}

func TestValidateEquityBarsCatchesMissingFields(t *testing.T) {
	bars := []data.EquityBar{
		{Ticker: "", TS: 0, Open: 10, High: 11, Low: 9, Close: 10.5, Volume: 100},
	}
	r := ValidateEquityBars(bars)
	if r.Completeness != 0 {
		t.Errorf("Completeness = %v, want 0 for a bar missing ticker/ts", r.Completeness)
	}
}

func TestValidateEquityBarsCatchesOHLCViolation(t *testing.T) {
	bars := []data.EquityBar{
		{Ticker: "AAPL", TS: 1000, Open: 10, High: 9, Low: 11, Close: 10.5, Volume: 100},
	}
	r := ValidateEquityBars(bars)
	if r.Consistency != 0 {
		t.Errorf("Consistency = %v, want 0 for an inverted high/low bar", r.Consistency)
	}
}

func TestValidateEquityBarsCatchesVWAPOutOfBand(t *testing.T) {
	bars := []data.EquityBar{
		{Ticker: "AAPL", TS: 1000, Open: 10, High: 11, Low: 9, Close: 10.5, Volume: 100, VWAP: 50},
	}
	r := ValidateEquityBars(bars)
	if r.Accuracy != 0 {
		t.Errorf("Accuracy = %v, want 0 for vwap outside the high/low band", r.Accuracy)
	}
}
