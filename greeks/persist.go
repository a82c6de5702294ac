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
	"database/sql"
	"fmt"

	"github.com/chartvault/mdcore/data"
	"github.com/chartvault/mdcore/pool"
)

// Upsert writes g into the per-month Greeks table for underlying/month,
// replacing any prior row for the same (contract, ts), per §4.C's
// composite-primary-key design. Observations failing g.Valid() (IV <= 0,
// IV > 5, or |delta| > 1) are never persisted; callers should check
// g.Valid() before calling Upsert rather than rely on this function to
// silently filter (see Runner.runOne).
func Upsert(ctx context.Context, p *pool.Pool, path string, table string, g data.OptionGreeks) error {
	db, err := p.Open(path)
	if err != nil {
		return err
	}

	const q = `
INSERT INTO %s (contract, ts, iv, delta, gamma, theta, vega, rho, ref_px, mid_px, bid, ask, spread_pct)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(contract, ts) DO UPDATE SET
	iv = excluded.iv, delta = excluded.delta, gamma = excluded.gamma,
	theta = excluded.theta, vega = excluded.vega, rho = excluded.rho,
	ref_px = excluded.ref_px, mid_px = excluded.mid_px,
	bid = excluded.bid, ask = excluded.ask, spread_pct = excluded.spread_pct
`
	stmt, err := p.Prepare(db, path, fmt.Sprintf(q, table))
	if err != nil {
		return err
	}

	_, err = stmt.ExecContext(ctx, g.Contract, g.TS, g.IV, g.Delta, g.Gamma, g.Theta, g.Vega, g.Rho,
		g.RefPx, g.MidPx, nullIfZero(g.Bid), nullIfZero(g.Ask), nullIfZero(g.SpreadPct))
	if err != nil {
		return data.NewError(data.KindInternal, "upsert greeks row for "+g.Contract, err)
	}
	return nil
}

func nullIfZero(f float64) any {
	if f == 0 {
		return nil
	}
	return f
}

// DailySummary aggregates one trading day's persisted Greeks for a
// contract, materializing the per-trade-date summary referenced in
// §4.E (mean IV, min/max delta) from whatever rows Upsert already wrote.
type DailySummary struct {
	Contract  string
	TradeDate string
	MeanIV    float64
	MinDelta  float64
	MaxDelta  float64
	Count     int
}

// SummarizeDay computes a DailySummary for contract over [dayStartMs,
// dayEndMs) from the greeksTable in the partition at path.
func SummarizeDay(ctx context.Context, p *pool.Pool, path, greeksTable, contract string, dayStartMs, dayEndMs int64) (DailySummary, error) {
	db, err := p.Open(path)
	if err != nil {
		return DailySummary{}, err
	}

	q := fmt.Sprintf(`SELECT AVG(iv), MIN(delta), MAX(delta), COUNT(*)
		FROM %s WHERE contract = ? AND ts >= ? AND ts < ?`, greeksTable)

	var meanIV, minDelta, maxDelta sql.NullFloat64
	var count int
	row := db.QueryRowContext(ctx, q, contract, dayStartMs, dayEndMs)
	if err := row.Scan(&meanIV, &minDelta, &maxDelta, &count); err != nil {
		return DailySummary{}, data.NewError(data.KindInternal, "summarize day for "+contract, err)
	}

	return DailySummary{
		Contract:  contract,
		MeanIV:    meanIV.Float64,
		MinDelta:  minDelta.Float64,
		MaxDelta:  maxDelta.Float64,
		Count:     count,
	}, nil
}
