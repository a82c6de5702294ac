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
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/chartvault/mdcore/data"
)

// chainRowLimit is the hard ceiling on an options-chain result, per
// §4.D: larger requests must be paginated by date.
const chainRowLimit = 10000

// ChainRow is one joined aggs+greeks+meta observation within an options
// chain. Strike and Expiration are carried through from op_meta_* so that
// ATM-window/DTE-focus narrowing (filterChain) never needs to re-parse a
// contract symbol to recover them.
type ChainRow struct {
	Contract        string  `json:"contract"`
	TS              int64   `json:"ts"`
	Open            float64 `json:"o"`
	High            float64 `json:"h"`
	Low             float64 `json:"l"`
	Close           float64 `json:"c"`
	Volume          int64   `json:"v"`
	OI              int64   `json:"oi"`
	IV              float64 `json:"iv"`
	Delta           float64 `json:"delta"`
	Gamma           float64 `json:"gamma"`
	Theta           float64 `json:"theta"`
	Vega            float64 `json:"vega"`
	Rho             float64 `json:"rho"`
	UnderlyingPrice float64 `json:"underlying_price"`
	Strike          float64 `json:"strike"`
	Expiration      string  `json:"expiration"`
}

// ChainResult is the outcome of an options-chain query.
type ChainResult struct {
	Rows      []ChainRow
	Truncated bool
	Source    Source
}

// OptionsChain joins each monthly op_aggs_*/op_iv_greeks_* pair for
// underlying across [from, to], filters to rows with a positive
// underlying price, and caps the result at chainRowLimit rows, per §4.D
// operation 2.
func (e *Engine) OptionsChain(ctx context.Context, underlying string, from, to time.Time, atmWindow int, dteFocus []int) (ChainResult, error) {
	if from.After(to) {
		return ChainResult{Source: SourceEmpty}, nil
	}

	refs, err := e.Router.Resolve(data.CategoryOptions, underlying, from, to, data.Granularity1Min)
	if err != nil {
		return ChainResult{}, err
	}
	if len(refs) == 0 {
		return ChainResult{Source: SourceEmpty}, nil
	}

	fromMs, toMs := from.UnixMilli(), to.UnixMilli()
	var rows []ChainRow
	partial := false

	for _, ref := range refs {
		conn, err := e.Pool.Open(ref.Path)
		if err != nil {
			return ChainResult{}, err
		}

		aggsTbl := data.OptionAggsTable(underlying, ref.Key.Date)
		greeksTbl := data.OptionGreeksTable(underlying, ref.Key.Date)
		metaTbl := data.OptionMetaTable(underlying, ref.Key.Date)

		q := fmt.Sprintf(`SELECT a.contract, a.ts, a.o, a.h, a.l, a.c, a.v, a.oi,
			g.iv, g.delta, g.gamma, g.theta, g.vega, g.rho, g.ref_px,
			m.strike, m.expiration
			FROM %s a JOIN %s g ON a.contract = g.contract AND a.ts = g.ts
			JOIN %s m ON a.contract = m.contract
			WHERE a.ts BETWEEN ? AND ? AND g.ref_px > 0
			ORDER BY a.ts
			LIMIT ?`, aggsTbl, greeksTbl, metaTbl)

		sqlRows, err := conn.QueryContext(ctx, q, fromMs, toMs, chainRowLimit+1-len(rows))
		if err != nil {
			if isMissingTable(err) {
				partial = true
				continue
			}
			return ChainResult{}, data.NewError(data.KindInternal, "execute options-chain query", err)
		}

		for sqlRows.Next() {
			var r ChainRow
			if err := sqlRows.Scan(&r.Contract, &r.TS, &r.Open, &r.High, &r.Low, &r.Close, &r.Volume, &r.OI,
				&r.IV, &r.Delta, &r.Gamma, &r.Theta, &r.Vega, &r.Rho, &r.UnderlyingPrice,
				&r.Strike, &r.Expiration); err != nil {
				sqlRows.Close()
				return ChainResult{}, data.NewError(data.KindInternal, "scan options-chain row", err)
			}
			rows = append(rows, r)
			if len(rows) > chainRowLimit {
				break
			}
		}
		sqlRows.Close()

		if len(rows) > chainRowLimit {
			break
		}
	}

	truncated := len(rows) > chainRowLimit
	if truncated {
		rows = rows[:chainRowLimit]
	}

	// atmWindow/dteFocus narrow the chain to strikes/expirations a caller
	// cares about; applied in Go after the query, using the strike and
	// expiration columns joined from op_meta_* (see filterChain).
	rows = filterChain(rows, underlying, atmWindow, dteFocus)

	src := SourceSQLite
	if partial {
		src = SourcePartial
	}
	return ChainResult{Rows: rows, Truncated: truncated, Source: src}, nil
}

// filterChain narrows rows to dteFocus's days-to-expiry and/or a window of
// atmWindow strikes centered on the at-the-money strike, per §4.D
// operation 2 and the "ATM window" glossary entry. Strike/expiration come
// straight from op_meta_* (joined in above), so this never needs to parse
// a contract symbol — avoiding a query->greeks import cycle (greeks
// already imports query for GetUnderlyingPrice).
func filterChain(rows []ChainRow, underlying string, atmWindow int, dteFocus []int) []ChainRow {
	if atmWindow <= 0 && len(dteFocus) == 0 {
		return rows
	}

	if len(dteFocus) > 0 {
		want := make(map[int]bool, len(dteFocus))
		for _, d := range dteFocus {
			want[d] = true
		}
		filtered := rows[:0:0]
		for _, r := range rows {
			if dte, ok := dte(r); ok && want[dte] {
				filtered = append(filtered, r)
			}
		}
		rows = filtered
	}

	if atmWindow > 0 {
		rows = atmFilter(rows, atmWindow)
	}

	return rows
}

// dte returns the whole-day count between r.TS and r.Expiration, or false
// if r.Expiration cannot be parsed (malformed metadata is skipped rather
// than treated as a match).
func dte(r ChainRow) (int, bool) {
	expiry, err := time.Parse("2006-01-02", r.Expiration)
	if err != nil {
		return 0, false
	}
	observed := time.UnixMilli(r.TS)
	days := int(expiry.Sub(observed.Truncate(24*time.Hour)).Hours() / 24)
	return days, true
}

// atmFilter groups rows by expiration, finds each group's strike closest
// to its own underlying price, and keeps only the atmWindow strikes on
// either side of that at-the-money strike.
func atmFilter(rows []ChainRow, atmWindow int) []ChainRow {
	byExpiry := make(map[string][]ChainRow)
	for _, r := range rows {
		byExpiry[r.Expiration] = append(byExpiry[r.Expiration], r)
	}

	var out []ChainRow
	for _, group := range byExpiry {
		strikes := distinctStrikes(group)
		if len(strikes) == 0 {
			continue
		}

		atmIdx := closestStrikeIndex(strikes, referencePrice(group))
		lo := atmIdx - atmWindow
		if lo < 0 {
			lo = 0
		}
		hi := atmIdx + atmWindow
		if hi >= len(strikes) {
			hi = len(strikes) - 1
		}

		keep := make(map[float64]bool, hi-lo+1)
		for _, s := range strikes[lo : hi+1] {
			keep[s] = true
		}
		for _, r := range group {
			if keep[r.Strike] {
				out = append(out, r)
			}
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].TS < out[j].TS })
	return out
}

func distinctStrikes(rows []ChainRow) []float64 {
	seen := make(map[float64]bool)
	var strikes []float64
	for _, r := range rows {
		if !seen[r.Strike] {
			seen[r.Strike] = true
			strikes = append(strikes, r.Strike)
		}
	}
	sort.Float64s(strikes)
	return strikes
}

// referencePrice is the most recently observed underlying price within
// group, used as the ATM reference for that expiration.
func referencePrice(group []ChainRow) float64 {
	var latest ChainRow
	for _, r := range group {
		if r.TS >= latest.TS {
			latest = r
		}
	}
	return latest.UnderlyingPrice
}

func closestStrikeIndex(strikes []float64, price float64) int {
	best := 0
	bestDiff := -1.0
	for i, s := range strikes {
		diff := s - price
		if diff < 0 {
			diff = -diff
		}
		if bestDiff < 0 || diff < bestDiff {
			bestDiff = diff
			best = i
		}
	}
	return best
}

func isMissingTable(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such table")
}

// ZeroDTEOpportunity is one scored, liquid zero-DTE contract.
type ZeroDTEOpportunity struct {
	Underlying string  `json:"underlying"`
	Contract   string  `json:"contract"`
	Score      float64 `json:"score"`
	Volume     int64   `json:"v"`
	OI         int64   `json:"oi"`
}

// ZeroDTEScan resolves the current-month options partition for each
// underlying, selects contracts expiring on tradingDay, scores them by a
// liquidity heuristic (volume + open interest, normalized), and returns
// the top maxOpportunities ordered by score descending, per §4.D
// operation 3.
func (e *Engine) ZeroDTEScan(ctx context.Context, underlyings []string, tradingDay time.Time, maxOpportunities int) ([]ZeroDTEOpportunity, error) {
	expiry := tradingDay.Format("2006-01-02")
	var out []ZeroDTEOpportunity

	for _, u := range underlyings {
		refs, err := e.Router.Resolve(data.CategoryOptions, u, tradingDay, tradingDay, data.Granularity1Min)
		if err != nil {
			return nil, err
		}
		if len(refs) == 0 {
			continue
		}
		ref := refs[0]

		conn, err := e.Pool.Open(ref.Path)
		if err != nil {
			return nil, err
		}

		metaTbl := data.OptionMetaTable(u, ref.Key.Date)
		aggsTbl := data.OptionAggsTable(u, ref.Key.Date)

		q := fmt.Sprintf(`SELECT a.contract, SUM(a.v) AS v, MAX(a.oi) AS oi
			FROM %s a JOIN %s m ON a.contract = m.contract
			WHERE m.expiration = ?
			GROUP BY a.contract`, aggsTbl, metaTbl)

		rows, err := conn.QueryContext(ctx, q, expiry)
		if err != nil {
			if isMissingTable(err) {
				continue
			}
			return nil, data.NewError(data.KindInternal, "execute zero-dte scan", err)
		}

		for rows.Next() {
			var contract string
			var vol, oi int64
			if err := rows.Scan(&contract, &vol, &oi); err != nil {
				rows.Close()
				return nil, data.NewError(data.KindInternal, "scan zero-dte row", err)
			}
			out = append(out, ZeroDTEOpportunity{
				Underlying: u,
				Contract:   contract,
				Volume:     vol,
				OI:         oi,
				Score:      liquidityScore(vol, oi),
			})
		}
		rows.Close()
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if maxOpportunities > 0 && len(out) > maxOpportunities {
		out = out[:maxOpportunities]
	}
	return out, nil
}

// liquidityScore is a simple, bounded heuristic favoring contracts with
// both traded volume and resting open interest.
func liquidityScore(volume, oi int64) float64 {
	v := float64(volume)
	o := float64(oi)
	return (v / (v + 1000)) + (o / (o + 1000))
}
