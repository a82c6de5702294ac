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
package cmd

import (
	"testing"
	"time"

	"github.com/chartvault/mdcore/data"
)

func TestParseFlexibleTime(t *testing.T) {
	cases := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{"rfc3339", "2024-03-15T00:00:00Z", false},
		{"bare date", "2024-03-15", false},
		{"garbage", "not-a-date", true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := parseFlexibleTime(c.in)
			if c.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", c.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Year() != 2024 || got.Month() != time.March || got.Day() != 15 {
				t.Errorf("parseFlexibleTime(%q) = %v, want 2024-03-15", c.in, got)
			}
		})
	}
}

func TestParseRange(t *testing.T) {
	from, to, err := parseRange("2024-01-01", "2024-01-31")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !from.Before(to) {
		t.Errorf("expected from before to, got from=%v to=%v", from, to)
	}

	if _, _, err := parseRange("garbage", "2024-01-31"); err == nil {
		t.Fatal("expected error for unparseable --from")
	}
	if _, _, err := parseRange("2024-01-01", "garbage"); err == nil {
		t.Fatal("expected error for unparseable --to")
	}
}

func TestParseGranularity(t *testing.T) {
	cases := []struct {
		in      string
		want    data.Granularity
		wantErr bool
	}{
		{"1m", data.Granularity1Min, false},
		{"5m", data.Granularity5Min, false},
		{"1d", data.Granularity1Day, false},
		{"1h", "", true},
	}
	for _, c := range cases {
		got, err := parseGranularity(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("parseGranularity(%q): expected error", c.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseGranularity(%q): unexpected error: %v", c.in, err)
		}
		if got != c.want {
			t.Errorf("parseGranularity(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestRowToEquityBar(t *testing.T) {
	row := map[string]any{
		"ticker": "AAPL",
		"ts":     int64(1700000000000),
		"o":      float64(100.5),
		"h":      float64(101.25),
		"l":      float64(99.75),
		"c":      float64(100.9),
		"v":      int64(123456),
		"trades": int64(42),
		"vwap":   float64(100.6),
		"source": "acquire-data",
	}
	bar := rowToEquityBar(row)
	if bar.Ticker != "AAPL" {
		t.Errorf("Ticker = %q, want AAPL", bar.Ticker)
	}
	if bar.TS != 1700000000000 {
		t.Errorf("TS = %d, want 1700000000000", bar.TS)
	}
	if bar.Open != 100.5 || bar.High != 101.25 || bar.Low != 99.75 || bar.Close != 100.9 {
		t.Errorf("OHLC mismatch: %+v", bar)
	}
	if bar.Volume != 123456 || bar.Trades != 42 {
		t.Errorf("volume/trades mismatch: %+v", bar)
	}
	if bar.Source != "acquire-data" {
		t.Errorf("Source = %q", bar.Source)
	}
}

func TestRowToEquityBarMissingKeys(t *testing.T) {
	bar := rowToEquityBar(map[string]any{})
	if bar.Ticker != "" || bar.TS != 0 || bar.Open != 0 {
		t.Errorf("expected zero-value bar for empty row, got %+v", bar)
	}
}
