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

// Package query builds and executes cross-partition UNION ALL queries
// with parameterized predicates, per §4.D. Table/alias names are drawn
// only from partition.Name's trusted output; dynamic SQL interpolation
// never touches a caller-supplied string, per §9's redesign note.
//
// Grounded on the teacher's library.Library row-scanning idiom
// (georgysavva/scany, used there against pgx, repointed here at
// database/sql via scany/v2/sqlscan) and on the channel-draining
// streaming shape of provider.Dataset.Fetch.
package query

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"

	"github.com/chartvault/mdcore/data"
	"github.com/chartvault/mdcore/partition"
	"github.com/chartvault/mdcore/pool"
)

// Engine executes range scans and options-chain projections across 1..N
// partitions.
type Engine struct {
	Router *partition.Router
	Pool   *pool.Pool
}

// New creates an Engine sharing the given Router and Pool.
func New(r *partition.Router, p *pool.Pool) *Engine {
	return &Engine{Router: r, Pool: p}
}

// Source reports where a result came from, echoed in the response
// envelope's meta.source field per §4.G/§7.
type Source string

const (
	SourceSQLite  Source = "sqlite"
	SourceEmpty   Source = "empty"
	SourcePartial Source = "partial"
)

// RangeResult is the outcome of a range-bars call.
type RangeResult struct {
	Rows   []map[string]any
	Source Source
}

// RangeBars resolves partitions for (category, symbol, from, to,
// granularity), attaches every sibling beyond the first under synthetic
// aliases db1..dbN, and returns their UNION ALL, ordered by ts ascending.
// An inverted or empty range yields an empty, non-error result (§4.D edge
// policies), as does a symbol with no partitions in range.
func (e *Engine) RangeBars(ctx context.Context, cat data.Category, symbol string, from, to time.Time, gran data.Granularity) (RangeResult, error) {
	if from.After(to) {
		return RangeResult{Source: SourceEmpty}, nil
	}

	refs, err := e.Router.Resolve(cat, symbol, from, to, gran)
	if err != nil {
		return RangeResult{}, err
	}
	if len(refs) == 0 {
		return RangeResult{Source: SourceEmpty}, nil
	}

	fromMs, toMs := from.UnixMilli(), to.UnixMilli()
	table := refs[0].Table()

	conn, err := e.Pool.Open(refs[0].Path)
	if err != nil {
		return RangeResult{}, err
	}

	c, err := conn.Conn(ctx)
	if err != nil {
		return RangeResult{}, data.NewError(data.KindInternal, "reserve connection", err)
	}
	defer c.Close()

	aliases := make([]string, 0, len(refs)-1)
	for i, ref := range refs[1:] {
		alias := fmt.Sprintf("db%d", i+1)
		if _, err := c.ExecContext(ctx, fmt.Sprintf("ATTACH DATABASE ? AS %s", alias), ref.Path); err != nil {
			detachAll(ctx, c, aliases)
			return RangeResult{}, data.NewError(data.KindInternal, "attach partition "+ref.Path, err)
		}
		aliases = append(aliases, alias)
	}
	defer detachAll(context.Background(), c, aliases)

	var b strings.Builder
	args := make([]any, 0, len(refs)*2)

	whereExtra := ""
	if cat.IsEquityFamily() {
		whereExtra = " AND ticker = ?"
	}

	fmt.Fprintf(&b, "SELECT * FROM %s WHERE ts BETWEEN ? AND ?%s", table, whereExtra)
	args = append(args, fromMs, toMs)
	if whereExtra != "" {
		args = append(args, symbol)
	}

	for i, ref := range refs[1:] {
		alias := aliases[i]
		tbl := ref.Table()
		b.WriteString(" UNION ALL SELECT * FROM ")
		b.WriteString(alias)
		b.WriteString(".")
		b.WriteString(tbl)
		b.WriteString(" WHERE ts BETWEEN ? AND ?")
		args = append(args, fromMs, toMs)
		if whereExtra != "" {
			b.WriteString(" AND ticker = ?")
			args = append(args, symbol)
		}
	}
	b.WriteString(" ORDER BY ts")

	rows, err := c.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return RangeResult{}, data.NewError(data.KindInternal, "execute range query", err)
	}
	defer rows.Close()

	result, err := scanRows(rows)
	if err != nil {
		return RangeResult{}, err
	}

	src := SourceSQLite
	if hasGap(refs, cat, gran) {
		src = SourcePartial
	}

	return RangeResult{Rows: result, Source: src}, nil
}

// hasGap reports whether the resolved refs skip any bucket between the
// first and last (a missing partition mid-range), per §4.D's "Missing
// partitions mid-range -> skipped; meta.source = partial" policy.
func hasGap(refs []data.Ref, cat data.Category, gran data.Granularity) bool {
	if len(refs) < 2 {
		return false
	}
	cursor := refs[0].BucketFrom
	for _, ref := range refs {
		if !ref.BucketFrom.Equal(cursor) {
			return true
		}
		cursor = ref.BucketTo
	}
	return false
}

func detachAll(ctx context.Context, c *sql.Conn, aliases []string) {
	for _, alias := range aliases {
		_, _ = c.ExecContext(ctx, fmt.Sprintf("DETACH DATABASE %s", alias))
	}
}

// scanRows converts the generic result set into row maps keyed by column
// name, via scany/v2/sqlscan rather than a hand-rolled Columns/Scan loop —
// the same row-scanning library the teacher's library.Library used
// against pgx (pgxscan.Select/ScanOne), repointed at database/sql here.
// dbscan's map destination support is what lets this stay schema-agnostic
// across bars_eq and op_aggs_* without a struct per table shape.
func scanRows(rows *sql.Rows) ([]map[string]any, error) {
	var out []map[string]any
	if err := sqlscan.ScanAll(&out, rows); err != nil {
		return nil, data.NewError(data.KindInternal, "scan rows", err)
	}
	return out, nil
}
