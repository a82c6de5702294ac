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
package db

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "partition.sqlite")
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestMigrateRollupsCreatesRollupView(t *testing.T) {
	conn := openTestDB(t)
	if _, err := conn.Exec(`CREATE TABLE bars_eq (
		ticker TEXT NOT NULL, ts INTEGER NOT NULL, o REAL NOT NULL, h REAL NOT NULL,
		l REAL NOT NULL, c REAL NOT NULL, v INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (ticker, ts)
	)`); err != nil {
		t.Fatalf("create bars_eq: %v", err)
	}

	if err := MigrateRollups(conn); err != nil {
		t.Fatalf("MigrateRollups: %v", err)
	}

	var name string
	if err := conn.QueryRow("SELECT name FROM sqlite_master WHERE type='view' AND name='v_bars_eq_5m'").Scan(&name); err != nil {
		t.Fatalf("expected v_bars_eq_5m view to exist: %v", err)
	}
}

func TestMigrateRollupsIsIdempotent(t *testing.T) {
	conn := openTestDB(t)
	if _, err := conn.Exec(`CREATE TABLE bars_eq (
		ticker TEXT NOT NULL, ts INTEGER NOT NULL, o REAL NOT NULL, h REAL NOT NULL,
		l REAL NOT NULL, c REAL NOT NULL, v INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (ticker, ts)
	)`); err != nil {
		t.Fatalf("create bars_eq: %v", err)
	}

	if err := MigrateRollups(conn); err != nil {
		t.Fatalf("MigrateRollups (first): %v", err)
	}
	if err := MigrateRollups(conn); err != nil {
		t.Fatalf("MigrateRollups (second, should be idempotent): %v", err)
	}
}

func TestMigrateRollupsViewAggregatesFiveMinuteBuckets(t *testing.T) {
	conn := openTestDB(t)
	if _, err := conn.Exec(`CREATE TABLE bars_eq (
		ticker TEXT NOT NULL, ts INTEGER NOT NULL, o REAL NOT NULL, h REAL NOT NULL,
		l REAL NOT NULL, c REAL NOT NULL, v INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (ticker, ts)
	)`); err != nil {
		t.Fatalf("create bars_eq: %v", err)
	}
	if err := MigrateRollups(conn); err != nil {
		t.Fatalf("MigrateRollups: %v", err)
	}

	base := int64(1718000000000)
	bucket := (base / 300000) * 300000
	rows := []struct {
		ts         int64
		o, h, l, c float64
		v          int64
	}{
		{bucket, 100, 102, 99, 101, 1000},
		{bucket + 60000, 101, 103, 100, 102, 1000},
	}
	for _, r := range rows {
		if _, err := conn.Exec("INSERT INTO bars_eq (ticker, ts, o, h, l, c, v) VALUES (?, ?, ?, ?, ?, ?, ?)",
			"AAPL", r.ts, r.o, r.h, r.l, r.c, r.v); err != nil {
			t.Fatalf("insert bar: %v", err)
		}
	}

	var v int64
	var h, l float64
	if err := conn.QueryRow("SELECT h, l, v FROM v_bars_eq_5m WHERE ticker = ? AND ts = ?", "AAPL", bucket).
		Scan(&h, &l, &v); err != nil {
		t.Fatalf("query rollup view: %v", err)
	}
	if h != 103 {
		t.Errorf("rollup h = %v, want 103", h)
	}
	if l != 99 {
		t.Errorf("rollup l = %v, want 99", l)
	}
	if v != 2000 {
		t.Errorf("rollup v = %v, want 2000", v)
	}
}
