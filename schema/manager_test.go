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
package schema

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/chartvault/mdcore/data"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "partition.sqlite")
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestApplyEquitySchemaCreatesTable(t *testing.T) {
	db := openTestDB(t)
	m := NewManager()

	key := data.PartitionKey{Category: data.CategoryStocks, Symbol: "AAPL", Date: time.Now()}
	hash, err := m.Apply(db, key)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if hash == "" {
		t.Error("expected a non-empty DDL hash")
	}

	if _, err := db.Exec("INSERT INTO bars_eq (ticker, ts, o, h, l, c, v) VALUES (?, ?, ?, ?, ?, ?, ?)",
		"AAPL", int64(1700000000000), 100.0, 101.0, 99.0, 100.5, int64(1000)); err != nil {
		t.Errorf("insert into bars_eq failed after Apply: %v", err)
	}
}

func TestApplyEquitySchemaIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	m := NewManager()
	key := data.PartitionKey{Category: data.CategoryStocks, Symbol: "AAPL", Date: time.Now()}

	if _, err := m.Apply(db, key); err != nil {
		t.Fatalf("Apply (first): %v", err)
	}
	if _, err := m.Apply(db, key); err != nil {
		t.Fatalf("Apply (second, should be idempotent): %v", err)
	}
}

func TestApplyOptionsSchemaCreatesMonthlyTables(t *testing.T) {
	db := openTestDB(t)
	m := NewManager()

	month := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	key := data.PartitionKey{Category: data.CategoryOptions, Symbol: "SPY", Date: month}
	if _, err := m.Apply(db, key); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	aggsTbl := data.OptionAggsTable("SPY", month)
	greeksTbl := data.OptionGreeksTable("SPY", month)
	metaTbl := data.OptionMetaTable("SPY", month)

	for _, tbl := range []string{aggsTbl, greeksTbl, metaTbl} {
		var name string
		if err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", tbl).Scan(&name); err != nil {
			t.Errorf("expected table %s to exist: %v", tbl, err)
		}
	}
}

func TestDDLForDoesNotExecute(t *testing.T) {
	m := NewManager()
	key := data.PartitionKey{Category: data.CategoryStocks}
	ddl := m.DDLFor(key)
	if ddl != equityDDL {
		t.Error("DDLFor(equity family) should return the shared equityDDL constant")
	}
}

func TestHashDDLDeterministic(t *testing.T) {
	a := HashDDL("CREATE TABLE t (v INTEGER)")
	b := HashDDL("CREATE TABLE t (v INTEGER)")
	if a != b {
		t.Error("HashDDL should be deterministic for identical input")
	}
	c := HashDDL("CREATE TABLE t (v TEXT)")
	if a == c {
		t.Error("HashDDL should differ for different DDL text")
	}
}
