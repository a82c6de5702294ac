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
	"crypto/sha256"
	"database/sql"
	"encoding/base64"

	"github.com/chartvault/mdcore/data"
	"github.com/chartvault/mdcore/db"
)

// Manager applies idempotent DDL to a partition handle and reports the
// content hash of what it applied, so schema drift is detectable via the
// manifest (§4.C).
type Manager struct{}

// NewManager returns a Manager. It is stateless; a single instance can be
// shared across every partition.
func NewManager() *Manager { return &Manager{} }

// Apply creates (or confirms) the tables/indexes/views for key's category
// against db, returning the base64 SHA-256 hash of the DDL text applied.
func (m *Manager) Apply(conn *sql.DB, key data.PartitionKey) (string, error) {
	ddl := m.DDLFor(key)

	if _, err := conn.Exec(ddl); err != nil {
		return "", data.NewError(data.KindInternal, "apply schema DDL", err)
	}

	if key.Category.IsEquityFamily() {
		if err := db.MigrateRollups(conn); err != nil {
			return "", data.NewError(data.KindInternal, "migrate rollup views", err)
		}
	}

	return HashDDL(ddl), nil
}

// DDLFor returns the DDL text that would be applied for key, without
// executing it. Exposed so callers (and tests) can hash DDL identically
// to what Apply executes.
func (m *Manager) DDLFor(key data.PartitionKey) string {
	if key.Category.IsEquityFamily() {
		return equityDDL
	}
	return optionsDDL(
		data.OptionAggsTable(key.Symbol, key.Date),
		data.OptionGreeksTable(key.Symbol, key.Date),
		data.OptionMetaTable(key.Symbol, key.Date),
	)
}

// HashDDL returns the base64-encoded SHA-256 digest of ddl's bytes.
func HashDDL(ddl string) string {
	sum := sha256.Sum256([]byte(ddl))
	return base64.StdEncoding.EncodeToString(sum[:])
}
