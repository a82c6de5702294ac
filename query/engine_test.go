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
	"path/filepath"
	"testing"
	"time"

	"github.com/chartvault/mdcore/data"
	"github.com/chartvault/mdcore/manifest"
	"github.com/chartvault/mdcore/partition"
	"github.com/chartvault/mdcore/pool"
	"github.com/chartvault/mdcore/schema"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	root := t.TempDir()
	tr, err := manifest.New(filepath.Join(root, "manifests"))
	if err != nil {
		t.Fatalf("manifest.New: %v", err)
	}
	r := partition.New(root, pool.New(), schema.NewManager(), tr)
	return New(r, r.Pool)
}

func insertBar(t *testing.T, e *Engine, ref data.Ref, ticker string, ts int64, c float64) {
	t.Helper()
	db, err := e.Pool.Open(ref.Path)
	if err != nil {
		t.Fatalf("Pool.Open: %v", err)
	}
	if _, err := db.Exec("INSERT INTO bars_eq (ticker, ts, o, h, l, c, v) VALUES (?, ?, ?, ?, ?, ?, ?)",
		ticker, ts, c, c, c, c, int64(100)); err != nil {
		t.Fatalf("insert bar: %v", err)
	}
}

func TestRangeBarsSinglePartition(t *testing.T) {
	e := newTestEngine(t)
	day := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
	key := data.PartitionKey{Category: data.CategoryStocks, Symbol: "AAPL", Date: day, Granularity: data.Granularity1Day}

	ref, err := e.Router.Ensure(key)
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	insertBar(t, e, ref, "AAPL", day.UnixMilli(), 150.0)

	res, err := e.RangeBars(context.Background(), data.CategoryStocks, "AAPL",
		day.AddDate(0, 0, -1), day.AddDate(0, 0, 1), data.Granularity1Day)
	if err != nil {
		t.Fatalf("RangeBars: %v", err)
	}
	if res.Source != SourceSQLite {
		t.Errorf("Source = %v, want SourceSQLite", res.Source)
	}
	if len(res.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d: %+v", len(res.Rows), res.Rows)
	}
	if res.Rows[0]["ticker"] != "AAPL" {
		t.Errorf("row ticker = %v, want AAPL", res.Rows[0]["ticker"])
	}
}

func TestRangeBarsEmptyRangeIsNotAnError(t *testing.T) {
	e := newTestEngine(t)
	from := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)

	res, err := e.RangeBars(context.Background(), data.CategoryStocks, "AAPL", from, to, data.Granularity1Day)
	if err != nil {
		t.Fatalf("RangeBars: %v", err)
	}
	if res.Source != SourceEmpty {
		t.Errorf("Source = %v, want SourceEmpty", res.Source)
	}
	if len(res.Rows) != 0 {
		t.Errorf("expected no rows, got %d", len(res.Rows))
	}
}

func TestRangeBarsNoPartitionsYieldsEmpty(t *testing.T) {
	e := newTestEngine(t)
	from := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC)

	res, err := e.RangeBars(context.Background(), data.CategoryStocks, "NOPE", from, to, data.Granularity1Day)
	if err != nil {
		t.Fatalf("RangeBars: %v", err)
	}
	if res.Source != SourceEmpty {
		t.Errorf("Source = %v, want SourceEmpty", res.Source)
	}
}

func TestRangeBarsSpansMultiplePartitionsAndOrdersByTS(t *testing.T) {
	e := newTestEngine(t)
	day2023 := time.Date(2023, time.June, 1, 0, 0, 0, 0, time.UTC)
	day2024 := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)

	ref2023, err := e.Router.Ensure(data.PartitionKey{Category: data.CategoryStocks, Symbol: "AAPL", Date: day2023, Granularity: data.Granularity1Day})
	if err != nil {
		t.Fatalf("Ensure 2023: %v", err)
	}
	ref2024, err := e.Router.Ensure(data.PartitionKey{Category: data.CategoryStocks, Symbol: "AAPL", Date: day2024, Granularity: data.Granularity1Day})
	if err != nil {
		t.Fatalf("Ensure 2024: %v", err)
	}

	insertBar(t, e, ref2024, "AAPL", day2024.UnixMilli(), 200.0)
	insertBar(t, e, ref2023, "AAPL", day2023.UnixMilli(), 150.0)

	res, err := e.RangeBars(context.Background(), data.CategoryStocks, "AAPL",
		day2023.AddDate(0, 0, -1), day2024.AddDate(0, 0, 1), data.Granularity1Day)
	if err != nil {
		t.Fatalf("RangeBars: %v", err)
	}
	if len(res.Rows) != 2 {
		t.Fatalf("expected 2 rows across partitions, got %d", len(res.Rows))
	}
	first := res.Rows[0]["ts"]
	second := res.Rows[1]["ts"]
	ts1, _ := first.(int64)
	ts2, _ := second.(int64)
	if ts1 >= ts2 {
		t.Errorf("expected rows ordered by ts ascending, got %v then %v", first, second)
	}
}

func TestOptionsChainEmptyRangeIsNotAnError(t *testing.T) {
	e := newTestEngine(t)
	from := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)

	res, err := e.OptionsChain(context.Background(), "SPY", from, to, 0, nil)
	if err != nil {
		t.Fatalf("OptionsChain: %v", err)
	}
	if res.Source != SourceEmpty {
		t.Errorf("Source = %v, want SourceEmpty", res.Source)
	}
}

func TestOptionsChainNoPartitionsYieldsEmpty(t *testing.T) {
	e := newTestEngine(t)
	from := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC)

	res, err := e.OptionsChain(context.Background(), "NOPE", from, to, 0, nil)
	if err != nil {
		t.Fatalf("OptionsChain: %v", err)
	}
	if res.Source != SourceEmpty {
		t.Errorf("Source = %v, want SourceEmpty", res.Source)
	}
}

func TestZeroDTEScanNoPartitionsIsEmpty(t *testing.T) {
	e := newTestEngine(t)
	day := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)

	opps, err := e.ZeroDTEScan(context.Background(), []string{"SPY", "QQQ"}, day, 10)
	if err != nil {
		t.Fatalf("ZeroDTEScan: %v", err)
	}
	if len(opps) != 0 {
		t.Errorf("expected no opportunities with no partitions, got %d", len(opps))
	}
}

func TestLiquidityScoreFavorsHigherVolumeAndOI(t *testing.T) {
	low := liquidityScore(10, 10)
	high := liquidityScore(5000, 5000)
	if !(high > low) {
		t.Errorf("liquidityScore(5000,5000)=%v should exceed liquidityScore(10,10)=%v", high, low)
	}
	if s := liquidityScore(0, 0); s != 0 {
		t.Errorf("liquidityScore(0,0) = %v, want 0", s)
	}
}
