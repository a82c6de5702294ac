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

import "fmt"

// EquityBar is one OHLCV observation for a stock, ETF, or index.
type EquityBar struct {
	Ticker string  `json:"ticker"`
	TS     int64   `json:"ts"`
	Open   float64 `json:"o"`
	High   float64 `json:"h"`
	Low    float64 `json:"l"`
	Close  float64 `json:"c"`
	Volume int64   `json:"v"`
	Trades int64   `json:"trades,omitempty"`
	VWAP   float64 `json:"vwap,omitempty"`
	Source string  `json:"source,omitempty"`
}

// Validate checks the OHLC and volume invariants from §8 invariant 1.
func (b *EquityBar) Validate() error {
	lo, hi := minmax(b.Open, b.Close)
	if b.Low > lo {
		return fmt.Errorf("low %.4f exceeds min(open,close) %.4f", b.Low, lo)
	}
	if b.High < hi {
		return fmt.Errorf("high %.4f below max(open,close) %.4f", b.High, hi)
	}
	if b.High < b.Low {
		return fmt.Errorf("high %.4f below low %.4f", b.High, b.Low)
	}
	if b.Volume < 0 {
		return fmt.Errorf("negative volume %d", b.Volume)
	}
	return nil
}

// OptionBar is one OHLCV observation for an options contract.
type OptionBar struct {
	Contract string  `json:"contract"`
	TS       int64   `json:"ts"`
	Open     float64 `json:"o"`
	High     float64 `json:"h"`
	Low      float64 `json:"l"`
	Close    float64 `json:"c"`
	Volume   int64   `json:"v"`
	OI       int64   `json:"oi"`
	Trades   int64   `json:"trades,omitempty"`
}

func (b *OptionBar) Validate() error {
	lo, hi := minmax(b.Open, b.Close)
	if b.Low > lo || b.High < hi || b.High < b.Low {
		return fmt.Errorf("OHLC invariant violated for %s@%d", b.Contract, b.TS)
	}
	if b.Volume < 0 || b.OI < 0 {
		return fmt.Errorf("negative volume/open-interest for %s@%d", b.Contract, b.TS)
	}
	return nil
}

// Mid approximates the option's mid price from its bar per §4.E.
func (b *OptionBar) Mid() float64 {
	return (b.High + b.Low + 2*b.Close) / 4
}

func minmax(a, b float64) (float64, float64) {
	if a < b {
		return a, b
	}
	return b, a
}
