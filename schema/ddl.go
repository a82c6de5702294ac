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

// Package schema emits idempotent per-category DDL, following the
// %[1]s-templated-table-name idiom from the teacher's data.DataTypes
// table (data/datatype.go), now sqlite-flavored and WITHOUT ROWID per
// §4.C's "without an internal row-id" requirement.
package schema

import "fmt"

// equityDDL is applied once per equity-family partition file (stocks,
// etfs, indices), per §4.C.
const equityDDL = `
CREATE TABLE IF NOT EXISTS bars_eq (
	ticker     TEXT NOT NULL,
	ts         INTEGER NOT NULL,
	o          REAL NOT NULL,
	h          REAL NOT NULL,
	l          REAL NOT NULL,
	c          REAL NOT NULL,
	v          INTEGER NOT NULL DEFAULT 0,
	trades     INTEGER,
	vwap       REAL,
	source     TEXT,
	created_at INTEGER NOT NULL DEFAULT (strftime('%s','now') * 1000),
	PRIMARY KEY (ticker, ts)
) WITHOUT ROWID;

CREATE INDEX IF NOT EXISTS idx_bars_eq_ts ON bars_eq(ts);
CREATE INDEX IF NOT EXISTS idx_bars_eq_ticker_ts ON bars_eq(ticker, ts);
`

// The v_bars_eq_5m rollup view itself is owned by the golang-migrate
// migration set in db/migrations (see Manager.Apply), not by this
// constant, so its window-function shape can be versioned independently
// of the base table DDL.

// optionsDDL is applied once per monthly options partition file for a
// given underlying symbol, per §4.C.
func optionsDDL(aggsTbl, greeksTbl, metaTbl string) string {
	return fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %[1]s (
	contract TEXT NOT NULL,
	ts       INTEGER NOT NULL,
	o        REAL NOT NULL,
	h        REAL NOT NULL,
	l        REAL NOT NULL,
	c        REAL NOT NULL,
	v        INTEGER NOT NULL DEFAULT 0,
	oi       INTEGER NOT NULL DEFAULT 0,
	trades   INTEGER,
	PRIMARY KEY (contract, ts)
) WITHOUT ROWID;

CREATE INDEX IF NOT EXISTS idx_%[1]s_ts ON %[1]s(ts);
CREATE INDEX IF NOT EXISTS idx_%[1]s_contract ON %[1]s(contract);
CREATE INDEX IF NOT EXISTS idx_%[1]s_contract_ts ON %[1]s(contract, ts);

CREATE TABLE IF NOT EXISTS %[2]s (
	contract    TEXT NOT NULL,
	ts          INTEGER NOT NULL,
	iv          REAL NOT NULL,
	delta       REAL NOT NULL,
	gamma       REAL NOT NULL,
	theta       REAL NOT NULL,
	vega        REAL NOT NULL,
	rho         REAL NOT NULL,
	ref_px      REAL NOT NULL,
	mid_px      REAL NOT NULL,
	bid         REAL,
	ask         REAL,
	spread_pct  REAL,
	PRIMARY KEY (contract, ts)
) WITHOUT ROWID;

CREATE INDEX IF NOT EXISTS idx_%[2]s_ts ON %[2]s(ts);
CREATE INDEX IF NOT EXISTS idx_%[2]s_contract ON %[2]s(contract);
CREATE INDEX IF NOT EXISTS idx_%[2]s_contract_ts ON %[2]s(contract, ts);

CREATE TABLE IF NOT EXISTS %[3]s (
	contract   TEXT PRIMARY KEY,
	underlying TEXT NOT NULL,
	expiration TEXT NOT NULL,
	option_type TEXT NOT NULL,
	strike     REAL NOT NULL
) WITHOUT ROWID;
`, aggsTbl, greeksTbl, metaTbl)
}
