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

// Package pool maintains long-lived sqlite handles, one per partition
// path, with tuned pragmas applied on first open. Grounded on
// library.Library's lazy, guarded Connect in the teacher, rebuilt around
// database/sql + mattn/go-sqlite3 per-file handles instead of one shared
// pgxpool, per §4.B.
package pool

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/chartvault/mdcore/data"
)

// Pool is a process-wide, thread-safe mapping from partition path to a
// long-lived *sql.DB handle, plus a compiled-statement cache keyed by
// (path, query-shape-hash). Handles are never closed during process
// lifetime except by Close.
type Pool struct {
	mu      sync.Mutex
	handles map[string]*sql.DB

	stmtMu sync.Mutex
	stmts  map[string]*sql.Stmt
}

// New creates an empty Pool.
func New() *Pool {
	return &Pool{
		handles: make(map[string]*sql.DB),
		stmts:   make(map[string]*sql.Stmt),
	}
}

// pragmas applies the tuning parameters from §4.B in one batched exec.
const pragmas = `
PRAGMA cache_size=-100000;
PRAGMA temp_store=MEMORY;
PRAGMA mmap_size=268435456;
PRAGMA journal_mode=WAL;
PRAGMA synchronous=NORMAL;
PRAGMA auto_vacuum=INCREMENTAL;
PRAGMA page_size=4096;
`

// Open returns the handle for path, opening and tuning it on first
// request. If a handle is already open for path, it is returned as-is
// regardless of the pragmas that were set when it was first opened,
// per §4.B's failure model.
func (p *Pool) Open(path string) (*sql.DB, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if db, ok := p.handles[path]; ok {
		return db, nil
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, data.NewError(data.KindInternal, "open partition "+path, err)
	}
	// sqlite permits only one writer; a single connection avoids
	// SQLITE_BUSY from the driver's own internal pool.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(pragmas); err != nil {
		db.Close()
		return nil, data.NewError(data.KindInternal, "apply pragmas to "+path, err)
	}

	p.handles[path] = db
	log.Debug().Str("path", path).Msg("opened partition handle")
	return db, nil
}

// Close tears down every open handle. Intended for process shutdown only.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for path, db := range p.handles {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Str("path", path).Msg("error closing partition handle")
		}
	}
	p.handles = make(map[string]*sql.DB)

	p.stmtMu.Lock()
	p.stmts = make(map[string]*sql.Stmt)
	p.stmtMu.Unlock()
}

// Prepare returns a compiled statement for (path, query), caching by the
// query's logical shape rather than by parameter values.
func (p *Pool) Prepare(db *sql.DB, path, query string) (*sql.Stmt, error) {
	key := statementKey(path, query)

	p.stmtMu.Lock()
	if stmt, ok := p.stmts[key]; ok {
		p.stmtMu.Unlock()
		return stmt, nil
	}
	p.stmtMu.Unlock()

	stmt, err := db.Prepare(query)
	if err != nil {
		return nil, data.NewError(data.KindInternal, "prepare statement", err)
	}

	p.stmtMu.Lock()
	p.stmts[key] = stmt
	p.stmtMu.Unlock()

	return stmt, nil
}

// Evict drops every cached statement for path. No package in this
// repository calls it; the Query Engine runs its SQL without the
// statement cache.
func (p *Pool) Evict(path string) {
	prefix := path + "\x00"
	p.stmtMu.Lock()
	defer p.stmtMu.Unlock()
	for key, stmt := range p.stmts {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			stmt.Close()
			delete(p.stmts, key)
		}
	}
}

func statementKey(path, query string) string {
	sum := sha256.Sum256([]byte(query))
	return path + "\x00" + hex.EncodeToString(sum[:])
}
