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
package pool

import (
	"path/filepath"
	"testing"
)

func TestOpenReturnsSameHandleForSamePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partition.sqlite")
	p := New()
	defer p.Close()

	db1, err := p.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	db2, err := p.Open(path)
	if err != nil {
		t.Fatalf("Open (second call): %v", err)
	}
	if db1 != db2 {
		t.Error("expected Open to return the cached handle for an already-open path")
	}
}

func TestOpenAppliesPragmas(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partition.sqlite")
	p := New()
	defer p.Close()

	db, err := p.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("journal_mode = %q, want wal", journalMode)
	}
}

func TestPrepareCachesStatementsByShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partition.sqlite")
	p := New()
	defer p.Close()

	db, err := p.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := db.Exec("CREATE TABLE t (v INTEGER)"); err != nil {
		t.Fatalf("create table: %v", err)
	}

	stmt1, err := p.Prepare(db, path, "INSERT INTO t (v) VALUES (?)")
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	stmt2, err := p.Prepare(db, path, "INSERT INTO t (v) VALUES (?)")
	if err != nil {
		t.Fatalf("Prepare (second call): %v", err)
	}
	if stmt1 != stmt2 {
		t.Error("expected Prepare to return the cached statement for an identical query shape")
	}

	if _, err := stmt1.Exec(42); err != nil {
		t.Fatalf("exec cached statement: %v", err)
	}
}

func TestEvictDropsOnlyThatPathsStatements(t *testing.T) {
	pathA := filepath.Join(t.TempDir(), "a.sqlite")
	pathB := filepath.Join(t.TempDir(), "b.sqlite")
	p := New()
	defer p.Close()

	dbA, err := p.Open(pathA)
	if err != nil {
		t.Fatalf("Open a: %v", err)
	}
	dbB, err := p.Open(pathB)
	if err != nil {
		t.Fatalf("Open b: %v", err)
	}
	if _, err := dbA.Exec("CREATE TABLE t (v INTEGER)"); err != nil {
		t.Fatalf("create table a: %v", err)
	}
	if _, err := dbB.Exec("CREATE TABLE t (v INTEGER)"); err != nil {
		t.Fatalf("create table b: %v", err)
	}

	stmtA, err := p.Prepare(dbA, pathA, "SELECT v FROM t")
	if err != nil {
		t.Fatalf("Prepare a: %v", err)
	}
	stmtB, err := p.Prepare(dbB, pathB, "SELECT v FROM t")
	if err != nil {
		t.Fatalf("Prepare b: %v", err)
	}

	p.Evict(pathA)

	stmtA2, err := p.Prepare(dbA, pathA, "SELECT v FROM t")
	if err != nil {
		t.Fatalf("Prepare a (after evict): %v", err)
	}
	if stmtA == stmtA2 {
		t.Error("expected Evict(pathA) to drop pathA's cached statement")
	}

	stmtB2, err := p.Prepare(dbB, pathB, "SELECT v FROM t")
	if err != nil {
		t.Fatalf("Prepare b (after evicting a): %v", err)
	}
	if stmtB != stmtB2 {
		t.Error("Evict(pathA) should not disturb pathB's cached statement")
	}
}

func TestCloseClearsHandles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partition.sqlite")
	p := New()

	if _, err := p.Open(path); err != nil {
		t.Fatalf("Open: %v", err)
	}
	p.Close()

	if len(p.handles) != 0 {
		t.Errorf("expected Close to clear handles, got %d remaining", len(p.handles))
	}
	if len(p.stmts) != 0 {
		t.Errorf("expected Close to clear cached statements, got %d remaining", len(p.stmts))
	}
}
